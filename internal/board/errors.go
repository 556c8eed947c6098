package board

import "errors"

var (
	// ErrMissingPlacement is returned by Build when a cell has no placement handle.
	ErrMissingPlacement = errors.New("board: missing placement for cell")

	// ErrUnknownCell is returned when looking up an id that is not on the board.
	ErrUnknownCell = errors.New("board: unknown cell")
)
