package board

import (
	"github.com/gravitas-games/hexboard/pkg/hex"
)

// Terrain labels carried by tile records.
const (
	LabelVoid = 0
	LabelWall = 4
)

// IsPanel reports whether label marks a walkable panel (1..3).
func IsPanel(label int) bool {
	return label >= 1 && label <= 3
}

// Vec3 is a world-space position supplied by the scene; the board never
// interprets it.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// placementLift is how far above a tile units stand.
const placementLift = 1.0

// Cell is a single addressable location on the board.
type Cell struct {
	id        hex.CellID
	label     int
	neighbors [hex.NumDirections]hex.CellID
	present   [hex.NumDirections]bool
	position  Vec3
	center    [2]float64
}

func newCell(id hex.CellID, label int, position Vec3, center [2]float64) *Cell {
	c := &Cell{
		id:       id,
		label:    label,
		position: position,
		center:   center,
	}
	c.neighbors = id.Neighbors()
	for i := range c.present {
		c.present[i] = true
	}
	return c
}

// Center returns the authored tile centre. Pillars share the centre of the
// tile above them.
func (c *Cell) Center() [2]float64 { return c.center }

// ID returns the cell's identity.
func (c *Cell) ID() hex.CellID { return c.id }

// Label returns the terrain classification.
func (c *Cell) Label() int { return c.label }

// Elevation returns the elevation layer of the cell.
func (c *Cell) Elevation() int { return c.id.Elevation }

// IsPanel reports whether the cell is walkable terrain.
func (c *Cell) IsPanel() bool { return IsPanel(c.label) }

// Position returns the world position recovered from the placement handle.
func (c *Cell) Position() Vec3 { return c.position }

// PlacementPosition is the point where a unit standing on the cell sits.
func (c *Cell) PlacementPosition() Vec3 {
	p := c.position
	p.Y += placementLift
	return p
}

// Neighbor returns the id in direction d (wrapped modulo 6) and false when
// that slot was pruned during construction.
func (c *Cell) Neighbor(d hex.Direction) (hex.CellID, bool) {
	d = hex.Wrap(int(d))
	return c.neighbors[d], c.present[d]
}

// Neighbors returns the ids of all surviving neighbour slots in direction order.
func (c *Cell) Neighbors() []hex.CellID {
	out := make([]hex.CellID, 0, hex.NumDirections)
	for d := 0; d < hex.NumDirections; d++ {
		if c.present[d] {
			out = append(out, c.neighbors[d])
		}
	}
	return out
}

// DirectionTo returns the slot holding id, or false if id is not adjacent.
func (c *Cell) DirectionTo(id hex.CellID) (hex.Direction, bool) {
	for d := 0; d < hex.NumDirections; d++ {
		if c.present[d] && c.neighbors[d] == id {
			return hex.Direction(d), true
		}
	}
	return -1, false
}

// prune drops every neighbour slot that is not a key of cells.
func (c *Cell) prune(cells map[hex.CellID]*Cell) {
	for d := 0; d < hex.NumDirections; d++ {
		if _, ok := cells[c.neighbors[d]]; !ok {
			c.present[d] = false
		}
	}
}
