package apperror

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotAMember   = errors.New("you are not in this room")

	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrColumnFull    = errors.New("column is full")
	ErrInvalidColumn = errors.New("invalid column index")

	ErrNotAuthorized = errors.New("only the room creator can do this")

	ErrGameNotReady     = errors.New("game is not ready to start")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameNotFinished  = errors.New("game is not finished yet")
)
