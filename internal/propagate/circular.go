package propagate

import (
	"math"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

type circleFrame struct {
	cell   *board.Cell
	from   *board.Cell
	radius int
	dirAvg float64
}

// Directions and running averages used once the average leaves [0,5].
const (
	seamLowDir  = 0
	seamLowAvg  = -1.0
	seamHighDir = 5
	seamHighAvg = 5.5
)

// circular seeds a ring walk from each of the origin's six neighbours. Every
// ring cell expands toward floor(dirAvg) and the next direction, plus the
// previous one when dirAvg is integral, with dirAvg pulled toward the chosen
// direction by 1/(radius+1). The stack is popped in the same order a
// depth-first recursion would visit cells, and that order decides which
// dirAvg a cell is expanded with.
func (r *run) circular(origin *board.Cell, p Circular) error {
	var seeds []circleFrame
	for d := 0; d < hex.NumDirections; d++ {
		c, ok, err := r.step(origin, d)
		if err != nil {
			return err
		}
		if ok {
			seeds = append(seeds, circleFrame{cell: c, from: origin, radius: 1, dirAvg: float64(d)})
		}
	}
	stack := make([]circleFrame, 0, len(seeds))
	for i := len(seeds) - 1; i >= 0; i-- {
		stack = append(stack, seeds[i])
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if float64(f.radius) > p.Spread || r.added.Has(f.cell.ID()) {
			continue
		}
		r.add(f.cell, f.from)

		children, err := r.ringChildren(f)
		if err != nil {
			return err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

func (r *run) ringChildren(f circleFrame) ([]circleFrame, error) {
	type candidate struct {
		dir int
		avg float64
	}
	var cands []candidate

	if f.dirAvg < 0 || f.dirAvg > 5 {
		cands = []candidate{{seamLowDir, seamLowAvg}, {seamHighDir, seamHighAvg}}
	} else {
		dir := int(math.Floor(f.dirAvg))
		bias := func(d int) float64 {
			return f.dirAvg + (float64(d)-f.dirAvg)/float64(f.radius+1)
		}
		cands = []candidate{{dir, bias(dir)}, {dir + 1, bias(dir + 1)}}
		if f.dirAvg == math.Trunc(f.dirAvg) {
			cands = append(cands, candidate{dir - 1, bias(dir - 1)})
		}
	}

	out := make([]circleFrame, 0, len(cands))
	for _, c := range cands {
		next, ok, err := r.step(f.cell, c.dir)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, circleFrame{cell: next, from: f.cell, radius: f.radius + 1, dirAvg: c.avg})
		}
	}
	return out, nil
}
