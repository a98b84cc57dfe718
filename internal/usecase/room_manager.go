package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Noch22/puissance4/internal/apperror"
	"github.com/Noch22/puissance4/internal/entity"
	"github.com/Noch22/puissance4/internal/pkg"
)

var ErrNoFreeRoomCode = errors.New("could not allocate a free room code")

// re-rolls before giving up on a free room code
const codeAttempts = 10

type roomEntry struct {
	room       *entity.Room
	lastActive time.Time
}

// RoomManager is the process-wide session store. It exclusively owns every
// Room: all mutation goes through a lookup-then-operate path under one lock,
// so no two operations on the same room ever interleave, and every method
// returns a value snapshot rather than the room itself.
type RoomManager struct {
	logger *slog.Logger

	mu    sync.Mutex
	rooms map[string]*roomEntry

	idleTTL time.Duration
	onReap  func(roomID string)
}

func NewRoomManager(logger *slog.Logger, idleTTL time.Duration) *RoomManager {
	return &RoomManager{
		logger:  logger,
		rooms:   make(map[string]*roomEntry),
		idleTTL: idleTTL,
	}
}

// CreateRoom allocates a fresh room with the caller seated in slot 0 and
// returns its state, including the rendezvous code.
func (that *RoomManager) CreateRoom(playerID, name string) (*entity.RoomState, error) {
	log := that.logger.With("method", "CreateRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	code, err := that.freeRoomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	room := entity.NewRoom(code, playerID, name)
	that.rooms[code] = &roomEntry{room: room, lastActive: time.Now()}

	log.Info("room created", "roomID", code, "playerID", playerID)

	return room.Snapshot(), nil
}

// JoinRoom seats playerID in slot 1 of the named room.
func (that *RoomManager) JoinRoom(roomID, playerID, name string) (*entity.RoomState, error) {
	log := that.logger.With("method", "JoinRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	entry, err := that.entry(roomID)
	if err != nil {
		return nil, err
	}

	if err = entry.room.Join(playerID, name); err != nil {
		return nil, err
	}

	entry.lastActive = time.Now()

	log.Info("player joined room", "roomID", entry.room.ID, "playerID", playerID)

	return entry.room.Snapshot(), nil
}

// StartGame moves a ready room into play. Only the creator may start.
func (that *RoomManager) StartGame(roomID, playerID string) (*entity.RoomState, error) {
	log := that.logger.With("method", "StartGame")

	that.mu.Lock()
	defer that.mu.Unlock()

	entry, err := that.entry(roomID)
	if err != nil {
		return nil, err
	}

	if err = entry.room.Start(playerID); err != nil {
		return nil, err
	}

	entry.lastActive = time.Now()

	log.Info("game started", "roomID", entry.room.ID)

	return entry.room.Snapshot(), nil
}

// PlayMove applies one move and returns the resulting state. Rejections
// (membership, turn order, full column) come back as sentinel errors with
// the room left untouched.
func (that *RoomManager) PlayMove(roomID, playerID string, column int) (*entity.RoomState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, err := that.entry(roomID)
	if err != nil {
		return nil, err
	}

	if err = entry.room.Move(playerID, column); err != nil {
		return nil, err
	}

	entry.lastActive = time.Now()

	return entry.room.Snapshot(), nil
}

// RestartGame resets a finished room for a rematch.
func (that *RoomManager) RestartGame(roomID, playerID string) (*entity.RoomState, error) {
	log := that.logger.With("method", "RestartGame")

	that.mu.Lock()
	defer that.mu.Unlock()

	entry, err := that.entry(roomID)
	if err != nil {
		return nil, err
	}

	if err = entry.room.Restart(playerID); err != nil {
		return nil, err
	}

	entry.lastActive = time.Now()

	log.Info("game restarted", "roomID", entry.room.ID)

	return entry.room.Snapshot(), nil
}

// LeaveByPlayer removes the player from whichever room holds them, used when
// a connection drops without naming a room. An emptied room is destroyed;
// its code then looks exactly like one that never existed. The returned
// state is nil when the room was destroyed.
func (that *RoomManager) LeaveByPlayer(playerID string) (*entity.RoomState, error) {
	log := that.logger.With("method", "LeaveByPlayer")

	that.mu.Lock()
	defer that.mu.Unlock()

	for code, entry := range that.rooms {
		if !entry.room.HasPlayer(playerID) {
			continue
		}

		empty, err := entry.room.Leave(playerID)
		if err != nil {
			return nil, err
		}

		if empty {
			delete(that.rooms, code)
			log.Info("room destroyed", "roomID", code)

			return nil, nil
		}

		entry.lastActive = time.Now()

		log.Info("player left room", "roomID", code, "playerID", playerID)

		return entry.room.Snapshot(), nil
	}

	return nil, apperror.ErrRoomNotFound
}

// Lookup returns a snapshot of the named room.
func (that *RoomManager) Lookup(roomID string) (*entity.RoomState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, err := that.entry(roomID)
	if err != nil {
		return nil, err
	}

	return entry.room.Snapshot(), nil
}

// IsMember reports whether playerID holds a slot in the named room.
func (that *RoomManager) IsMember(roomID, playerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, err := that.entry(roomID)
	if err != nil {
		return false
	}

	return entry.room.HasPlayer(playerID)
}

// StartReaper bounds the lifetime of forming rooms whose creator never got
// company. It is a no-op unless both the interval and the TTL are positive.
func (that *RoomManager) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || that.idleTTL <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				that.Cleanup()
			}
		}
	}()
}

// OnRoomReaped registers a callback invoked with the code of every room the
// reaper drops. The gateway uses it to evict the room's channel members, so
// their connections do not stay bound to a room that no longer exists.
// Register before StartReaper.
func (that *RoomManager) OnRoomReaped(fn func(roomID string)) {
	that.onReap = fn
}

// Cleanup drops forming rooms idle past the TTL. Exported so tests can drive
// the reaping deterministically.
func (that *RoomManager) Cleanup() {
	log := that.logger.With("method", "Cleanup")

	that.mu.Lock()
	var reaped []string
	now := time.Now()
	for code, entry := range that.rooms {
		if entry.room.Status == entity.StatusForming && now.Sub(entry.lastActive) > that.idleTTL {
			delete(that.rooms, code)
			reaped = append(reaped, code)
			log.Info("idle room reaped", "roomID", code)
		}
	}
	that.mu.Unlock()

	// the callback writes to client sockets, so it runs outside the lock
	if that.onReap != nil {
		for _, code := range reaped {
			that.onReap(code)
		}
	}
}

// entry resolves a case-normalized room code. Callers must hold the lock.
func (that *RoomManager) entry(roomID string) (*roomEntry, error) {
	entry, ok := that.rooms[strings.ToUpper(roomID)]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return entry, nil
}

// freeRoomCode re-rolls on collision; codes are short, so a clash is rare
// but legal. Callers must hold the lock.
func (that *RoomManager) freeRoomCode() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := pkg.GenerateRoomCode()
		if _, taken := that.rooms[code]; !taken {
			return code, nil
		}
	}

	return "", ErrNoFreeRoomCode
}
