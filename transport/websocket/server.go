package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Noch22/puissance4/internal/entity"
	"github.com/Noch22/puissance4/internal/pkg"
)

// rooms is the slice of the session layer the gateway needs.
type rooms interface {
	CreateRoom(playerID, name string) (*entity.RoomState, error)
	JoinRoom(roomID, playerID, name string) (*entity.RoomState, error)
	StartGame(roomID, playerID string) (*entity.RoomState, error)
	PlayMove(roomID, playerID string, column int) (*entity.RoomState, error)
	RestartGame(roomID, playerID string) (*entity.RoomState, error)
	LeaveByPlayer(playerID string) (*entity.RoomState, error)
	IsMember(roomID, playerID string) bool
}

// orderStripes bounds the pool of per-room fan-out locks.
const orderStripes = 32

// Server terminates the per-client websocket channels, maps inbound events
// to room operations and fans room state changes back out to every member
// of the affected room.
type Server struct {
	logger *slog.Logger
	rooms  rooms

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	members map[string]map[string]*client // roomID -> playerID -> client

	// order serializes a room's state change together with its fan-out, so
	// broadcasts reach the wire in commit order. Striped by room code; two
	// rooms sharing a stripe only cost each other a short wait.
	order [orderStripes]sync.Mutex

	handlers map[string]func(c *client, message *Message) error
}

// client is one connected player. The room binding has its own mutex: the
// read loop sets it on create/join, and the reaper clears it when the room
// is closed underneath the player.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	roomID string

	writeMu sync.Mutex
}

func (that *client) room() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.roomID
}

func (that *client) setRoom(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.roomID = roomID
}

// send delivers one event to this client. gorilla allows a single concurrent
// writer, hence the write mutex.
func (that *client) send(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(Message{Event: event, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write %s message: %w", event, err)
	}

	return nil
}

func New(logger *slog.Logger, rooms rooms) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		members:  make(map[string]map[string]*client),
		handlers: make(map[string]func(*client, *Message) error),
	}

	server.handlers[eventCreateRoom] = server.handleCreateRoom
	server.handlers[eventJoinRoom] = server.handleJoinRoom
	server.handlers[eventStartGame] = server.handleStartGame
	server.handlers[eventPlayMove] = server.handlePlayMove
	server.handlers[eventRestartGame] = server.handleRestartGame
	server.handlers[eventSendMessage] = server.handleSendMessage

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.ServeWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeWS - upgrades the connection and runs its read loop until the client
// goes away.
func (that *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{id: pkg.GeneratePlayerID(), conn: conn}

	defer that.handleDisconnect(c)
	defer conn.Close()

	log.Info("client connected", "playerID", c.id)

	that.readLoop(c)
}

// readLoop - processes messages from the client, one at a time and to
// completion, so a client's events apply in the order they were sent.
func (that *Server) readLoop(c *client) {
	log := that.logger.With("method", "readLoop", "playerID", c.id)

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		handler, ok := that.handlers[message.Event]
		if !ok {
			log.Warn("unknown event", "event", message.Event)
			continue
		}

		if err := handler(c, &message); err != nil {
			log.Error("failed to handle event", "event", message.Event, "error", err)
		}
	}
}

// withRoomOrder runs fn while holding the room's fan-out lock. An accepted
// operation and its broadcasts complete before the next one for the same
// room begins, so no client ever receives an older board after a newer one.
func (that *Server) withRoomOrder(roomID string, fn func() error) error {
	lock := that.orderLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	return fn()
}

func (that *Server) orderLock(roomID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(roomID))

	return &that.order[h.Sum32()%orderStripes]
}

func (that *Server) addMember(roomID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.members[roomID] == nil {
		that.members[roomID] = make(map[string]*client)
	}
	that.members[roomID][c.id] = c
}

func (that *Server) removeMember(roomID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.members[roomID]
	if !ok {
		return
	}

	delete(members, c.id)
	if len(members) == 0 {
		delete(that.members, roomID)
	}
}

// broadcast fans one event out to every channel member of the room. The
// member list is copied under the read lock so a slow write never holds it.
func (that *Server) broadcast(roomID, event string, payload any) {
	that.mu.RLock()
	clients := make([]*client, 0, len(that.members[roomID]))
	for _, member := range that.members[roomID] {
		clients = append(clients, member)
	}
	that.mu.RUnlock()

	for _, member := range clients {
		if err := member.send(event, payload); err != nil {
			that.logger.Error("failed to broadcast", "event", event, "roomID", roomID, "playerID", member.id, "error", err)
		}
	}
}

// CloseRoom evicts every channel member of a room the session layer has
// dropped, unbinding their connections so they are free to create or join
// again. Wired to the idle reaper.
func (that *Server) CloseRoom(roomID string) {
	log := that.logger.With("method", "CloseRoom", "roomID", roomID)

	that.mu.Lock()
	clients := that.members[roomID]
	delete(that.members, roomID)
	that.mu.Unlock()

	for _, member := range clients {
		member.setRoom("")

		if err := member.send(eventRoomClosed, messagePayload{Message: "The room was closed due to inactivity."}); err != nil {
			log.Error("failed to notify evicted player", "playerID", member.id, "error", err)
		}
	}

	log.Info("room closed")
}

// handleDisconnect - a dropped connection is a leave, not an error. The
// survivors hear about it; an emptied room is already gone by the time the
// session layer returns.
func (that *Server) handleDisconnect(c *client) {
	log := that.logger.With("method", "handleDisconnect", "playerID", c.id)

	roomID := c.room()
	if roomID == "" {
		log.Info("client disconnected outside any room")
		return
	}

	that.removeMember(roomID, c)

	_ = that.withRoomOrder(roomID, func() error {
		if _, err := that.rooms.LeaveByPlayer(c.id); err != nil {
			log.Error("failed to leave room", "roomID", roomID, "error", err)
			return nil
		}

		that.broadcast(roomID, eventPlayerLeft, messagePayload{Message: "A player has left the room."})

		return nil
	})

	log.Info("player left room", "roomID", roomID)
}
