package websocket

import (
	"encoding/json"

	"github.com/Noch22/puissance4/internal/entity"
)

// Client -> server events.
const (
	eventCreateRoom  = "create-room"
	eventJoinRoom    = "join-room"
	eventStartGame   = "start-game"
	eventPlayMove    = "play-move"
	eventRestartGame = "restart-game"
	eventSendMessage = "send-message"
)

// Server -> client events.
const (
	eventRoomCreated   = "room-created"
	eventPlayerColor   = "player-color"
	eventPlayerJoined  = "player-joined"
	eventReadyToStart  = "ready-to-start"
	eventGameStarted   = "game-started"
	eventTurn          = "turn"
	eventUpdatedBoard  = "updated-board"
	eventGameOver      = "game-over"
	eventNoWinner      = "no-winner"
	eventGameRestarted = "game-restarted"
	eventPlayerLeft    = "player-left"
	eventRoomClosed    = "room-closed"
	eventNewMessage    = "new-message"

	eventJoinError    = "join-error"
	eventMoveError    = "move-error"
	eventStartError   = "start-error"
	eventRestartError = "restart-error"
)

// Message is the wire envelope: a named event and its payload.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createRoomPayload struct {
	Name string `json:"name"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type playMovePayload struct {
	RoomID string `json:"roomId"`
	Column *int   `json:"column"`
}

type chatPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
	Name   string `json:"name"`
}

type roomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type playerColorPayload struct {
	Color string `json:"color"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type turnPayload struct {
	CurrentPlayer *entity.Player `json:"currentPlayer"`
}

type boardPayload struct {
	State entity.Board `json:"state"`
}

type gameOverPayload struct {
	Winner string `json:"winner"`
}

type chatMessagePayload struct {
	Text string `json:"text"`
	Name string `json:"name"`
}
