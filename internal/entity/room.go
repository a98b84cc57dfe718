package entity

import (
	"github.com/Noch22/puissance4/internal/apperror"
)

const (
	StatusForming  = "forming"
	StatusReady    = "ready"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

const maxPlayers = 2

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Marker string `json:"marker,omitempty"`
}

// Room owns one game's full state. Slot 0 is the creator and plays yellow,
// slot 1 is the joiner and plays red; the marker is assigned at entry and
// never changes for the life of the room.
type Room struct {
	ID      string
	Players []*Player
	Board   Board
	Turn    int // slot index of the player to move
	Status  string
	Winner  string
}

func NewRoom(id, creatorID, creatorName string) *Room {
	return &Room{
		ID: id,
		Players: []*Player{
			{ID: creatorID, Name: creatorName, Marker: MarkerYellow},
		},
		Board:  NewBoard(),
		Status: StatusForming,
	}
}

// Join seats a second player. Only a forming room accepts one.
func (that *Room) Join(playerID, name string) error {
	if that.Status != StatusForming || len(that.Players) >= maxPlayers {
		return apperror.ErrRoomFull
	}

	that.Players = append(that.Players, &Player{ID: playerID, Name: name, Marker: MarkerRed})
	that.Status = StatusReady

	return nil
}

// Start begins the game. Only the creator may start, and only once both
// players are seated.
func (that *Room) Start(playerID string) error {
	if that.Players[0].ID != playerID {
		return apperror.ErrNotAuthorized
	}

	if that.Status != StatusReady {
		return apperror.ErrGameNotReady
	}

	that.Status = StatusOngoing
	that.Turn = 0

	return nil
}

// Move drops the player's marker into column. On success the board is
// committed, then the winner check runs before the draw check; a
// non-terminal move hands the turn to the other slot. A rejected move
// leaves every piece of room state untouched.
func (that *Room) Move(playerID string, column int) error {
	slot := that.slotOf(playerID)
	if slot < 0 {
		return apperror.ErrNotAMember
	}

	switch that.Status {
	case StatusForming, StatusReady:
		return apperror.ErrGameIsNotStarted
	case StatusFinished:
		return apperror.ErrGameFinished
	}

	if slot != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if _, err := that.Board.ApplyMove(column, that.Players[slot].Marker); err != nil {
		return err
	}

	if winner := that.Board.Winner(); winner != EmptyCell {
		that.Winner = winner
		that.Status = StatusFinished
		return nil
	}

	if that.Board.IsFull() {
		that.Status = StatusFinished
		return nil
	}

	that.Turn = 1 - that.Turn

	return nil
}

// Restart resets the board for a rematch. Only the creator may restart, and
// only after the previous game finished. The turn goes back to slot 0.
func (that *Room) Restart(playerID string) error {
	if that.slotOf(playerID) < 0 {
		return apperror.ErrNotAMember
	}

	if that.Players[0].ID != playerID {
		return apperror.ErrNotAuthorized
	}

	if that.Status != StatusFinished {
		return apperror.ErrGameNotFinished
	}

	that.Board = NewBoard()
	that.Winner = EmptyCell
	that.Turn = 0
	that.Status = StatusOngoing

	return nil
}

// Leave removes the matching player and reports whether the room emptied
// out. A departure mid-game does not declare the survivor the winner; the
// room just sits with one player until they leave too.
func (that *Room) Leave(playerID string) (bool, error) {
	slot := that.slotOf(playerID)
	if slot < 0 {
		return false, apperror.ErrNotAMember
	}

	that.Players = append(that.Players[:slot], that.Players[slot+1:]...)

	return len(that.Players) == 0, nil
}

// CurrentPlayer returns the player whose turn it is, or nil outside an
// ongoing game.
func (that *Room) CurrentPlayer() *Player {
	if that.Status != StatusOngoing || that.Turn >= len(that.Players) {
		return nil
	}

	return that.Players[that.Turn]
}

func (that *Room) HasPlayer(playerID string) bool {
	return that.slotOf(playerID) >= 0
}

func (that *Room) slotOf(playerID string) int {
	for i, player := range that.Players {
		if player.ID == playerID {
			return i
		}
	}

	return -1
}

// RoomState is a value snapshot handed to the transport layer for
// broadcasting, so no caller ever holds a mutable reference to the room.
type RoomState struct {
	ID          string   `json:"roomId"`
	Status      string   `json:"status"`
	Board       Board    `json:"board"`
	Players     []Player `json:"players"`
	CurrentTurn *Player  `json:"currentPlayer,omitempty"`
	Winner      string   `json:"winner,omitempty"`
}

func (that *Room) Snapshot() *RoomState {
	state := &RoomState{
		ID:      that.ID,
		Status:  that.Status,
		Board:   that.Board,
		Players: make([]Player, 0, len(that.Players)),
		Winner:  that.Winner,
	}

	for _, player := range that.Players {
		state.Players = append(state.Players, *player)
	}

	if current := that.CurrentPlayer(); current != nil {
		turn := *current
		state.CurrentTurn = &turn
	}

	return state
}
