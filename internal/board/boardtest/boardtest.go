// Package boardtest builds small boards for tests.
package boardtest

import (
	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

// Rect returns rows*cols records on one elevation, all with the same label.
func Rect(rows, cols, elevation, label int) []board.TileRecord {
	out := make([]board.TileRecord, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, board.TileRecord{
				Label:     label,
				Elevation: elevation,
				Row:       r,
				Col:       c,
				Center:    [2]float64{float64(r), float64(c)},
			})
		}
	}
	return out
}

// Relabel sets the label of the record at (row, col) on elevation.
func Relabel(records []board.TileRecord, id hex.CellID, label int) {
	for i := range records {
		if records[i].ID() == id {
			records[i].Label = label
		}
	}
}

// AnyPlacement resolves every id to a distinct position.
var AnyPlacement = board.PlacementFunc(func(id hex.CellID) (board.Vec3, bool) {
	return board.Vec3{X: float64(id.Col), Y: float64(id.Elevation), Z: float64(id.Row)}, true
})

// Build builds a board from records with AnyPlacement and panics on error.
func Build(records []board.TileRecord) *board.Board {
	b, err := board.Build(records, AnyPlacement)
	if err != nil {
		panic(err)
	}
	return b
}
