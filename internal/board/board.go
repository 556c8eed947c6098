package board

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/hexboard/pkg/hex"
)

// TileRecord is one entry of the board description produced by the
// authoring tool.
type TileRecord struct {
	Label     int
	Elevation int
	Row       int
	Col       int
	Center    [2]float64 // opaque, kept on the cell
}

// ID returns the cell id described by the record.
func (t TileRecord) ID() hex.CellID {
	return hex.ID(t.Elevation, t.Row, t.Col)
}

// Board owns every cell and the adjacency between them. It is immutable once
// built and safe for concurrent readers.
type Board struct {
	cells    map[hex.CellID]*Cell
	walkable mapset.Set[hex.CellID]
	all      mapset.Set[hex.CellID]
	byPos    map[Vec3]hex.CellID
}

// Stats summarises a board.
type Stats struct {
	Cells     int `json:"cells"`
	Walkable  int `json:"walkable"`
	Walls     int `json:"walls"`
	Elevation int `json:"max_elevation"`
}

// Build creates a board from the tile records, synthesising wall pillars
// beneath elevated tiles. Every inserted cell must resolve through
// placements; otherwise no board is returned.
func Build(records []TileRecord, placements PlacementLookup) (*Board, error) {
	b := &Board{
		cells:    make(map[hex.CellID]*Cell, len(records)),
		walkable: mapset.New[hex.CellID](),
		byPos:    make(map[Vec3]hex.CellID, len(records)),
	}

	for _, t := range records {
		id := t.ID()
		if err := b.insert(id, t.Label, t.Center, placements); err != nil {
			return nil, err
		}
		if IsPanel(t.Label) {
			b.walkable.Put(id)
		} else if b.walkable.Has(id) {
			b.walkable.Remove(id)
		}

		// Pillars under the tile, first writer wins.
		for level := t.Elevation - 1; level >= 1; level-- {
			pillarID := id.Below(level)
			if _, exists := b.cells[pillarID]; exists {
				log.WithFields(log.Fields{
					"pillar": pillarID.String(),
					"tile":   id.String(),
				}).Warn("Pillar position already occupied, skipping")
				continue
			}
			if err := b.insert(pillarID, LabelWall, t.Center, placements); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range b.cells {
		c.prune(b.cells)
	}

	b.all = mapset.New[hex.CellID]()
	for id := range b.cells {
		b.all.Put(id)
	}

	log.WithFields(log.Fields{
		"cells":    len(b.cells),
		"walkable": b.walkable.Size(),
	}).Debug("Board built")
	return b, nil
}

func (b *Board) insert(id hex.CellID, label int, center [2]float64, placements PlacementLookup) error {
	pos, ok := placements.Placement(id)
	if !ok {
		return fmt.Errorf("%w %s", ErrMissingPlacement, id)
	}
	if prev, exists := b.cells[id]; exists {
		log.WithFields(log.Fields{
			"cell":      id.String(),
			"old_label": prev.label,
			"new_label": label,
		}).Debug("Tile record replaces existing cell")
		if b.byPos[prev.position] == id {
			delete(b.byPos, prev.position)
		}
	}
	b.cells[id] = newCell(id, label, pos, center)

	if other, taken := b.byPos[pos]; taken && other != id {
		log.WithFields(log.Fields{
			"cell":     id.String(),
			"occupant": other.String(),
		}).Warn("World position already mapped to another cell")
	} else {
		b.byPos[pos] = id
	}
	return nil
}

// Cell returns the cell with the given id.
func (b *Board) Cell(id hex.CellID) (*Cell, error) {
	c, ok := b.cells[id]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownCell, id)
	}
	return c, nil
}

// Has reports whether id is on the board.
func (b *Board) Has(id hex.CellID) bool {
	_, ok := b.cells[id]
	return ok
}

// IsWalkable reports whether id is a panel.
func (b *Board) IsWalkable(id hex.CellID) bool {
	return b.walkable.Has(id)
}

// Walkable returns the set of panel ids. Callers must not modify it.
func (b *Board) Walkable() mapset.Set[hex.CellID] { return b.walkable }

// AllIDs returns the set of every cell id. Callers must not modify it.
func (b *Board) AllIDs() mapset.Set[hex.CellID] { return b.all }

// Len returns the number of cells.
func (b *Board) Len() int { return len(b.cells) }

// IDs returns every cell id in ascending order.
func (b *Board) IDs() []hex.CellID {
	ids := make([]hex.CellID, 0, len(b.cells))
	for id := range b.cells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// IDAt maps a world position back to the cell placed there.
func (b *Board) IDAt(pos Vec3) (hex.CellID, bool) {
	id, ok := b.byPos[pos]
	return id, ok
}

// Stats returns counts describing the board.
func (b *Board) Stats() Stats {
	s := Stats{Cells: len(b.cells), Walkable: b.walkable.Size()}
	for _, c := range b.cells {
		if c.label == LabelWall {
			s.Walls++
		}
		if c.id.Elevation > s.Elevation {
			s.Elevation = c.id.Elevation
		}
	}
	return s
}
