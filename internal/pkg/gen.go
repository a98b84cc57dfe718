package pkg

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// GenerateRoomCode - returns a short human-typeable code such as "ABC123".
// Uniqueness is the session store's job; this only rolls the dice.
func GenerateRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// fall back to the clock as a randomness source
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}

	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}

	return string(buf)
}

// GeneratePlayerID - mints the application-level identity for a connection.
// It is stable for the connection's lifetime and independent of the
// transport, so a slot is never keyed by a socket.
func GeneratePlayerID() string {
	return uuid.NewString()
}
