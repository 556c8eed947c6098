// Package boardfile reads the board documents written by the level
// authoring tool and turns them into a board.
package boardfile

import (
	"errors"

	"github.com/gravitas-games/hexboard/internal/board"
)

var (
	// ErrUnsupportedFormat is returned for a file extension other than .json, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("boardfile: unsupported format")

	// ErrBadTuple is returned when a tuple does not hold exactly two values.
	ErrBadTuple = errors.New("boardfile: malformed tuple")
)

// Info is the board-info document.
type Info struct {
	Rows  int        `json:"rows" yaml:"rows"`
	Cols  int        `json:"cols" yaml:"cols"`
	Tiles []TileInfo `json:"tileInfo" yaml:"tileInfo"`
}

// TileInfo describes one authored tile. Surrounding is the tool's own
// neighbour list and is not used to build adjacency.
type TileInfo struct {
	Label       int       `json:"label" yaml:"label"`
	GridPos     IntPair   `json:"gridPos" yaml:"gridPos"`
	Surrounding []IntPair `json:"surrounding" yaml:"surrounding"`
	Center      FloatPair `json:"center" yaml:"center"`
	Elevation   int       `json:"elevation" yaml:"elevation"`
}

// Records converts the tiles to board records, in document order.
func (i *Info) Records() []board.TileRecord {
	out := make([]board.TileRecord, 0, len(i.Tiles))
	for _, t := range i.Tiles {
		out = append(out, board.TileRecord{
			Label:     t.Label,
			Elevation: t.Elevation,
			Row:       t.GridPos.Item1,
			Col:       t.GridPos.Item2,
			Center:    [2]float64{t.Center.Item1, t.Center.Item2},
		})
	}
	return out
}

// MaxElevation returns the highest elevation of any panel tile, or 1.
func (i *Info) MaxElevation() int {
	max := 1
	for _, t := range i.Tiles {
		if board.IsPanel(t.Label) && t.Elevation > max {
			max = t.Elevation
		}
	}
	return max
}
