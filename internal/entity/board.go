package entity

import (
	"github.com/Noch22/puissance4/internal/apperror"
)

const (
	BoardRows = 6
	BoardCols = 7

	winLength = 4
)

const (
	MarkerYellow = "yellow"
	MarkerRed    = "red"

	EmptyCell = ""
)

// winDirections are scanned in a fixed order so results are reproducible:
// horizontal, vertical, diagonal down-right, diagonal down-left.
var winDirections = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Board is the 6x7 grid with row 0 on top. A cell is EmptyCell or holds one
// of the two markers; once set, a cell never changes until the whole board
// is replaced on restart.
type Board [BoardRows][BoardCols]string

func NewBoard() Board {
	return Board{}
}

// ApplyMove drops marker into the lowest empty cell of column, scanning from
// the bottom row upward, and returns the row it landed in.
func (that *Board) ApplyMove(column int, marker string) (int, error) {
	if column < 0 || column >= BoardCols {
		return 0, apperror.ErrInvalidColumn
	}

	for row := BoardRows - 1; row >= 0; row-- {
		if that[row][column] == EmptyCell {
			that[row][column] = marker
			return row, nil
		}
	}

	return 0, apperror.ErrColumnFull
}

// Winner scans every occupied cell in row-major order for four consecutive
// identical markers in one of the four directions. It returns the first
// marker found, or EmptyCell when nobody has won.
func (that *Board) Winner() string {
	for row := 0; row < BoardRows; row++ {
		for col := 0; col < BoardCols; col++ {
			marker := that[row][col]
			if marker == EmptyCell {
				continue
			}

			for _, dir := range winDirections {
				count := 0
				for k := 0; k < winLength; k++ {
					r := row + dir[0]*k
					c := col + dir[1]*k
					if r < 0 || r >= BoardRows || c < 0 || c >= BoardCols || that[r][c] != marker {
						break
					}
					count++
				}

				if count == winLength {
					return marker
				}
			}
		}
	}

	return EmptyCell
}

// IsFull reports whether no column can take another marker. Gravity fills
// columns bottom-up, so checking the top row is enough. Callers must check
// Winner first: a winning move can also fill the board, and the win takes
// precedence.
func (that *Board) IsFull() bool {
	for col := 0; col < BoardCols; col++ {
		if that[0][col] == EmptyCell {
			return false
		}
	}

	return true
}
