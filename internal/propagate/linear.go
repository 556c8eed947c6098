package propagate

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

type linearFrame struct {
	cell   *board.Cell
	spread int
	reach  int
}

type linearKey struct {
	id     hex.CellID
	spread int
	reach  int
}

// budget truncates a pattern budget toward zero. Budgets are only compared
// against zero after truncation, so negatives clamp to 0.
func budget(v float64) int {
	if n := int(v); n > 0 {
		return n
	}
	return 0
}

func dec(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}

// linear walks Reach cells along the direction and fans out sideways,
// each side branch continuing with one less spread and one less reach.
// A frame's contribution depends only on (cell, spread, reach), so frames
// already expanded are skipped.
func (r *run) linear(origin *board.Cell, p Linear) error {
	dir := int(hex.Wrap(int(p.Direction)))
	seen := mapset.New[linearKey]()
	stack := []linearFrame{{cell: origin, spread: budget(p.Spread), reach: budget(p.Reach)}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := linearKey{id: f.cell.ID(), spread: f.spread, reach: f.reach}
		if seen.Has(key) {
			continue
		}
		seen.Put(key)

		if f.reach > 0 {
			next, ok, err := r.step(f.cell, dir)
			if err != nil {
				return err
			}
			if ok {
				r.add(next, f.cell)
				stack = append(stack, linearFrame{cell: next, spread: f.spread, reach: f.reach - 1})
			}
		}

		for s := f.spread; s > 0; s-- {
			for _, side := range [2]int{dir - s, dir + s} {
				next, ok, err := r.step(f.cell, side)
				if err != nil {
					return err
				}
				if ok {
					r.add(next, f.cell)
					stack = append(stack, linearFrame{cell: next, spread: s - 1, reach: dec(f.reach)})
				}
			}
		}
	}
	return nil
}
