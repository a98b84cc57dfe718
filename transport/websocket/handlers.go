package websocket

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Noch22/puissance4/internal/entity"
)

func (that *Server) handleCreateRoom(c *client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "playerID", c.id)

	var payload createRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if c.room() != "" {
		return c.send(eventJoinError, messagePayload{Message: "you are already in a room"})
	}

	state, err := that.rooms.CreateRoom(c.id, payload.Name)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return c.send(eventJoinError, messagePayload{Message: "could not create a room"})
	}

	c.setRoom(state.ID)
	that.addMember(state.ID, c)

	log.Info("room created", "roomID", state.ID)

	return c.send(eventRoomCreated, roomCreatedPayload{RoomID: state.ID})
}

func (that *Server) handleJoinRoom(c *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "playerID", c.id)

	var payload joinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if c.room() != "" {
		return c.send(eventJoinError, messagePayload{Message: "you are already in a room"})
	}

	return that.withRoomOrder(strings.ToUpper(payload.RoomID), func() error {
		state, err := that.rooms.JoinRoom(payload.RoomID, c.id, payload.Name)
		if err != nil {
			log.Info("failed to join room", "roomID", payload.RoomID, "error", err)
			return c.send(eventJoinError, messagePayload{Message: err.Error()})
		}

		c.setRoom(state.ID)
		that.addMember(state.ID, c)

		color := entity.MarkerRed
		for _, player := range state.Players {
			if player.ID == c.id {
				color = player.Marker
			}
		}

		if err = c.send(eventPlayerColor, playerColorPayload{Color: color}); err != nil {
			return err
		}

		that.broadcast(state.ID, eventPlayerJoined, messagePayload{Message: "A player has joined the room!"})

		if state.Status == entity.StatusReady {
			that.broadcast(state.ID, eventReadyToStart, messagePayload{Message: "Both players are here, the game can begin!"})
		}

		log.Info("player joined room", "roomID", state.ID)

		return nil
	})
}

func (that *Server) handleStartGame(c *client, msg *Message) error {
	log := that.logger.With("method", "handleStartGame", "playerID", c.id)

	var payload roomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.withRoomOrder(strings.ToUpper(payload.RoomID), func() error {
		state, err := that.rooms.StartGame(payload.RoomID, c.id)
		if err != nil {
			log.Info("failed to start game", "roomID", payload.RoomID, "error", err)
			return c.send(eventStartError, messagePayload{Message: err.Error()})
		}

		that.broadcast(state.ID, eventGameStarted, messagePayload{Message: "The game has started!"})
		that.broadcast(state.ID, eventTurn, turnPayload{CurrentPlayer: state.CurrentTurn})

		log.Info("game started", "roomID", state.ID)

		return nil
	})
}

func (that *Server) handlePlayMove(c *client, msg *Message) error {
	log := that.logger.With("method", "handlePlayMove", "playerID", c.id)

	var payload playMovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Column == nil {
		log.Error("column is missing in payload")
		return c.send(eventMoveError, messagePayload{Message: "column is required"})
	}

	return that.withRoomOrder(strings.ToUpper(payload.RoomID), func() error {
		state, err := that.rooms.PlayMove(payload.RoomID, c.id, *payload.Column)
		if err != nil {
			log.Info("move rejected", "roomID", payload.RoomID, "column", *payload.Column, "error", err)
			return c.send(eventMoveError, messagePayload{Message: err.Error()})
		}

		that.broadcast(state.ID, eventUpdatedBoard, boardPayload{State: state.Board})

		switch {
		case state.Winner != entity.EmptyCell:
			that.broadcast(state.ID, eventGameOver, gameOverPayload{Winner: state.Winner})
		case state.Status == entity.StatusFinished:
			that.broadcast(state.ID, eventNoWinner, messagePayload{Message: "The game is over, nobody wins."})
		default:
			that.broadcast(state.ID, eventTurn, turnPayload{CurrentPlayer: state.CurrentTurn})
		}

		return nil
	})
}

func (that *Server) handleRestartGame(c *client, msg *Message) error {
	log := that.logger.With("method", "handleRestartGame", "playerID", c.id)

	var payload roomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.withRoomOrder(strings.ToUpper(payload.RoomID), func() error {
		state, err := that.rooms.RestartGame(payload.RoomID, c.id)
		if err != nil {
			log.Info("failed to restart game", "roomID", payload.RoomID, "error", err)
			return c.send(eventRestartError, messagePayload{Message: err.Error()})
		}

		that.broadcast(state.ID, eventGameRestarted, messagePayload{Message: "The game has been restarted."})
		that.broadcast(state.ID, eventUpdatedBoard, boardPayload{State: state.Board})
		that.broadcast(state.ID, eventTurn, turnPayload{CurrentPlayer: state.CurrentTurn})

		log.Info("game restarted", "roomID", state.ID)

		return nil
	})
}

// handleSendMessage relays chat without touching room state. The named room
// is not trusted: the sender must hold a slot in it, and the fan-out goes to
// the sender's own room.
func (that *Server) handleSendMessage(c *client, msg *Message) error {
	log := that.logger.With("method", "handleSendMessage", "playerID", c.id)

	var payload chatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if !that.rooms.IsMember(payload.RoomID, c.id) {
		log.Warn("chat from non-member dropped", "roomID", payload.RoomID)
		return nil
	}

	roomID := c.room()

	return that.withRoomOrder(roomID, func() error {
		that.broadcast(roomID, eventNewMessage, chatMessagePayload{Text: payload.Text, Name: payload.Name})

		return nil
	})
}
