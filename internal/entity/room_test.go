package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noch22/puissance4/internal/apperror"
)

const (
	creatorID = "creator-id"
	joinerID  = "joiner-id"
)

func newReadyRoom(t *testing.T) *Room {
	t.Helper()

	room := NewRoom("ABC123", creatorID, "alice")
	require.NoError(t, room.Join(joinerID, "bob"))

	return room
}

func newOngoingRoom(t *testing.T) *Room {
	t.Helper()

	room := newReadyRoom(t)
	require.NoError(t, room.Start(creatorID))

	return room
}

func TestNewRoom(t *testing.T) {
	room := NewRoom("ABC123", creatorID, "alice")

	require.Equal(t, StatusForming, room.Status)
	require.Len(t, room.Players, 1)
	assert.Equal(t, MarkerYellow, room.Players[0].Marker)
	assert.Equal(t, "alice", room.Players[0].Name)
	assert.Equal(t, NewBoard(), room.Board)
	assert.Nil(t, room.CurrentPlayer())
}

func TestRoom_Join(t *testing.T) {
	t.Run("second player takes slot 1 with the red marker", func(t *testing.T) {
		room := NewRoom("ABC123", creatorID, "alice")

		require.NoError(t, room.Join(joinerID, "bob"))

		require.Equal(t, StatusReady, room.Status)
		require.Len(t, room.Players, 2)
		assert.Equal(t, MarkerRed, room.Players[1].Marker)
	})

	t.Run("error on third player", func(t *testing.T) {
		room := newReadyRoom(t)

		err := room.Join("third-id", "carol")
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		require.Len(t, room.Players, 2)
	})
}

func TestRoom_Start(t *testing.T) {
	t.Run("creator starts a ready room", func(t *testing.T) {
		room := newReadyRoom(t)

		require.NoError(t, room.Start(creatorID))

		require.Equal(t, StatusOngoing, room.Status)
		require.Equal(t, creatorID, room.CurrentPlayer().ID)
	})

	t.Run("error when the joiner starts", func(t *testing.T) {
		room := newReadyRoom(t)

		err := room.Start(joinerID)
		require.ErrorIs(t, err, apperror.ErrNotAuthorized)
		require.Equal(t, StatusReady, room.Status)
	})

	t.Run("error before the second player arrives", func(t *testing.T) {
		room := NewRoom("ABC123", creatorID, "alice")

		err := room.Start(creatorID)
		require.ErrorIs(t, err, apperror.ErrGameNotReady)
		require.Equal(t, StatusForming, room.Status)
	})
}

func TestRoom_Move(t *testing.T) {
	t.Run("turns alternate between slots", func(t *testing.T) {
		room := newOngoingRoom(t)

		require.NoError(t, room.Move(creatorID, 0))
		require.Equal(t, joinerID, room.CurrentPlayer().ID)

		require.NoError(t, room.Move(joinerID, 1))
		require.Equal(t, creatorID, room.CurrentPlayer().ID)
	})

	t.Run("error when it is not your turn", func(t *testing.T) {
		room := newOngoingRoom(t)
		before := room.Board

		err := room.Move(joinerID, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.Equal(t, before, room.Board)
		require.Equal(t, creatorID, room.CurrentPlayer().ID)
	})

	t.Run("error for a stranger", func(t *testing.T) {
		room := newOngoingRoom(t)

		err := room.Move("stranger-id", 0)
		require.ErrorIs(t, err, apperror.ErrNotAMember)
	})

	t.Run("error before the game starts", func(t *testing.T) {
		room := newReadyRoom(t)

		err := room.Move(creatorID, 0)
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("rejected column keeps the turn", func(t *testing.T) {
		room := newOngoingRoom(t)

		err := room.Move(creatorID, BoardCols)

		require.ErrorIs(t, err, apperror.ErrInvalidColumn)
		require.Equal(t, creatorID, room.CurrentPlayer().ID)
	})

	t.Run("vertical four finishes the game", func(t *testing.T) {
		room := newOngoingRoom(t)

		// slot 0 stacks column 3 while slot 1 plays column 4 in between
		moves := []struct {
			playerID string
			column   int
		}{
			{creatorID, 3}, {joinerID, 4},
			{creatorID, 3}, {joinerID, 4},
			{creatorID, 3}, {joinerID, 4},
			{creatorID, 3},
		}
		for _, move := range moves {
			require.NoError(t, room.Move(move.playerID, move.column))
		}

		require.Equal(t, StatusFinished, room.Status)
		require.Equal(t, MarkerYellow, room.Winner)
		assert.Nil(t, room.CurrentPlayer())

		// Then: the finished room rejects further moves
		err := room.Move(joinerID, 0)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("filling the board without a run is a draw on the last move", func(t *testing.T) {
		room := newOngoingRoom(t)

		for i, column := range drawSequence() {
			playerID := creatorID
			if i%2 == 1 {
				playerID = joinerID
			}

			require.NoError(t, room.Move(playerID, column), "move %d column %d", i, column)

			if i < BoardRows*BoardCols-1 {
				require.Equal(t, StatusOngoing, room.Status, "move %d ended the game early", i)
			}
		}

		require.Equal(t, StatusFinished, room.Status)
		require.Equal(t, EmptyCell, room.Winner)
		require.True(t, room.Board.IsFull())
	})
}

func TestRoom_Restart(t *testing.T) {
	finished := func(t *testing.T) *Room {
		t.Helper()

		room := newOngoingRoom(t)
		for _, move := range []struct {
			playerID string
			column   int
		}{
			{creatorID, 3}, {joinerID, 4},
			{creatorID, 3}, {joinerID, 4},
			{creatorID, 3}, {joinerID, 4},
			{creatorID, 3},
		} {
			require.NoError(t, room.Move(move.playerID, move.column))
		}
		require.Equal(t, StatusFinished, room.Status)

		return room
	}

	t.Run("creator restart resets board and turn", func(t *testing.T) {
		room := finished(t)

		require.NoError(t, room.Restart(creatorID))

		require.Equal(t, StatusOngoing, room.Status)
		require.Equal(t, NewBoard(), room.Board)
		require.Equal(t, EmptyCell, room.Winner)
		require.Equal(t, creatorID, room.CurrentPlayer().ID)
	})

	t.Run("error when the joiner restarts", func(t *testing.T) {
		room := finished(t)

		err := room.Restart(joinerID)
		require.ErrorIs(t, err, apperror.ErrNotAuthorized)
		require.Equal(t, StatusFinished, room.Status)
	})

	t.Run("error while the game is still running", func(t *testing.T) {
		room := newOngoingRoom(t)

		err := room.Restart(creatorID)
		require.ErrorIs(t, err, apperror.ErrGameNotFinished)
	})

	t.Run("error for a stranger", func(t *testing.T) {
		room := finished(t)

		err := room.Restart("stranger-id")
		require.ErrorIs(t, err, apperror.ErrNotAMember)
	})
}

func TestRoom_Leave(t *testing.T) {
	t.Run("leaving with two players keeps the room", func(t *testing.T) {
		room := newOngoingRoom(t)

		empty, err := room.Leave(joinerID)
		require.NoError(t, err)
		require.False(t, empty)
		require.Len(t, room.Players, 1)
	})

	t.Run("last player empties the room", func(t *testing.T) {
		room := NewRoom("ABC123", creatorID, "alice")

		empty, err := room.Leave(creatorID)
		require.NoError(t, err)
		require.True(t, empty)
	})

	t.Run("error for a stranger", func(t *testing.T) {
		room := newReadyRoom(t)

		_, err := room.Leave("stranger-id")
		require.ErrorIs(t, err, apperror.ErrNotAMember)
	})
}

func TestRoom_Snapshot(t *testing.T) {
	room := newOngoingRoom(t)

	state := room.Snapshot()

	require.Equal(t, room.ID, state.ID)
	require.Len(t, state.Players, 2)
	require.NotNil(t, state.CurrentTurn)
	require.Equal(t, creatorID, state.CurrentTurn.ID)

	// mutating the snapshot must not reach the room
	state.Players[0].Name = "mallory"
	state.Board[5][0] = MarkerRed
	assert.Equal(t, "alice", room.Players[0].Name)
	assert.Equal(t, EmptyCell, room.Board[5][0])
}

// drawSequence is a 42-move legal game that fills every cell without either
// player ever making four in a row: columns are filled in interleaved pairs
// so each cell receives the marker of whoever is due to move.
func drawSequence() []int {
	pairs := [][2]int{{0, 6}, {4, 2}, {5, 3}}

	var columns []int
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		for i := 0; i < 3; i++ {
			columns = append(columns, a, b, b, a)
		}
	}

	// column 1 is filled last by straight ping-pong
	for i := 0; i < BoardRows; i++ {
		columns = append(columns, 1)
	}

	return columns
}
