package board

import "github.com/gravitas-games/hexboard/pkg/hex"

// PlacementLookup resolves the scene handle of a cell to its world position.
type PlacementLookup interface {
	Placement(id hex.CellID) (Vec3, bool)
}

// PlacementMap is a PlacementLookup backed by a map.
type PlacementMap map[hex.CellID]Vec3

// Placement implements PlacementLookup.
func (m PlacementMap) Placement(id hex.CellID) (Vec3, bool) {
	p, ok := m[id]
	return p, ok
}

// PlacementFunc adapts a function to PlacementLookup.
type PlacementFunc func(id hex.CellID) (Vec3, bool)

// Placement implements PlacementLookup.
func (f PlacementFunc) Placement(id hex.CellID) (Vec3, bool) { return f(id) }
