package boardfile

import (
	"fmt"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

// Scene heights used by the authoring tool.
const (
	levelHeight  = 3.0
	panelOffset  = 0.01
	pillarOffset = 1.0
)

// PlacementEntry is one named scene object and its world position.
type PlacementEntry struct {
	Name     string     `json:"name" yaml:"name"`
	Position [3]float64 `json:"position" yaml:"position"`
}

// PlacementDoc lists the scene objects of a board.
type PlacementDoc struct {
	Placements []PlacementEntry `json:"placements" yaml:"placements"`
}

// Lookup parses every entry name as a scene label and keys the positions
// by cell id.
func (d *PlacementDoc) Lookup() (board.PlacementMap, error) {
	out := make(board.PlacementMap, len(d.Placements))
	for i, e := range d.Placements {
		id, err := hex.ParseLabel(e.Name)
		if err != nil {
			return nil, fmt.Errorf("placement %d: %w", i, err)
		}
		out[id] = board.Vec3{X: e.Position[0], Y: e.Position[1], Z: e.Position[2]}
	}
	return out, nil
}

type gridKey struct{ row, col int }

// Derive lays cells out the way the authoring tool does: panels sit on top
// of their level, pillars and walls fill the levels below, and wall tiles
// are stacked up to the highest panel level.
func Derive(info *Info) board.PlacementLookup {
	tiles := make(map[gridKey][]TileInfo, len(info.Tiles))
	for _, t := range info.Tiles {
		k := gridKey{t.GridPos.Item1, t.GridPos.Item2}
		tiles[k] = append(tiles[k], t)
	}
	top := info.MaxElevation()

	return board.PlacementFunc(func(id hex.CellID) (board.Vec3, bool) {
		var wall bool
		var center FloatPair
		for _, t := range tiles[gridKey{id.Row, id.Col}] {
			switch {
			case t.Elevation == id.Elevation && board.IsPanel(t.Label):
				return scenePosition(t.Center, id.Elevation, panelOffset), true
			case t.Elevation >= id.Elevation,
				t.Label == board.LabelWall && id.Elevation <= top:
				wall, center = true, t.Center
			}
		}
		if !wall || id.Elevation < 1 {
			return board.Vec3{}, false
		}
		return scenePosition(center, id.Elevation, pillarOffset), true
	})
}

func scenePosition(center FloatPair, elevation int, offset float64) board.Vec3 {
	return board.Vec3{
		X: center.Item2,
		Y: offset + float64(elevation-1)*levelHeight,
		Z: center.Item1,
	}
}
