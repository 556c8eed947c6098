package propagate_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/internal/board/boardtest"
	"github.com/gravitas-games/hexboard/internal/propagate"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

func ids(cells []*board.Cell) []hex.CellID {
	out := make([]hex.CellID, len(cells))
	for i, c := range cells {
		out[i] = c.ID()
	}
	return out
}

func cell(t *testing.T, b *board.Board, id hex.CellID) *board.Cell {
	t.Helper()
	c, err := b.Cell(id)
	require.NoError(t, err)
	return c
}

func TestLinearSingleStep(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(5, 5, 1, 1))
	origin := cell(t, b, hex.ID(1, 2, 2))

	for d := hex.Direction(0); d < hex.NumDirections; d++ {
		got, err := propagate.Propagate(b, b.Walkable(), origin, propagate.Linear{Direction: d, Spread: 0, Reach: 1})
		require.NoError(t, err)
		assert.Equal(t, []hex.CellID{origin.ID().Neighbor(d)}, ids(got), "direction %v", d)
	}
}

func TestLinearBeam(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(5, 5, 1, 1))
	got, err := propagate.Propagate(b, b.Walkable(), cell(t, b, hex.ID(1, 2, 0)),
		propagate.Linear{Direction: hex.CenterRight, Reach: 3})
	require.NoError(t, err)
	assert.Equal(t, []hex.CellID{hex.ID(1, 2, 1), hex.ID(1, 2, 2), hex.ID(1, 2, 3)}, ids(got))
}

func TestLinearFan(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(7, 7, 1, 1))
	origin := hex.ID(1, 3, 3)
	ahead := origin.Neighbor(hex.CenterRight)
	want := mapset.New[hex.CellID]()
	for _, id := range []hex.CellID{
		ahead,
		ahead.Neighbor(hex.TopRight),
		ahead.Neighbor(hex.BottomRight),
		origin.Neighbor(hex.TopRight),
		origin.Neighbor(hex.BottomRight),
	} {
		want.Put(id)
	}

	for _, p := range []propagate.Linear{
		{Direction: hex.CenterRight, Spread: 1, Reach: 1},
		{Direction: hex.CenterRight, Spread: 1.7, Reach: 1.2},
		{Direction: hex.Direction(9), Spread: 1.99, Reach: 1.5},
	} {
		got, err := propagate.Propagate(b, b.Walkable(), cell(t, b, origin), p)
		require.NoError(t, err)
		require.Len(t, got, want.Size(), p.String())
		for _, c := range got {
			assert.True(t, want.Has(c.ID()), "%v: unexpected %v", p, c.ID())
		}
	}
}

func TestLinearStopsAtNonViable(t *testing.T) {
	records := boardtest.Rect(5, 5, 1, 1)
	boardtest.Relabel(records, hex.ID(1, 2, 2), board.LabelWall)
	b := boardtest.Build(records)

	got, err := propagate.Propagate(b, b.Walkable(), cell(t, b, hex.ID(1, 2, 0)),
		propagate.Linear{Direction: hex.CenterRight, Reach: 4})
	require.NoError(t, err)
	assert.Equal(t, []hex.CellID{hex.ID(1, 2, 1)}, ids(got))
}

func TestCircularRadiusOne(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(9, 9, 1, 1))
	origin := cell(t, b, hex.ID(1, 4, 4))

	for _, spread := range []float64{1, 1.9} {
		got, err := propagate.Propagate(b, b.Walkable(), origin, propagate.Circular{Spread: spread})
		require.NoError(t, err)
		assert.ElementsMatch(t, origin.Neighbors(), ids(got))
	}
}

func TestCircularRadiusTwoHasNoGaps(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(9, 9, 1, 1))
	origin := hex.ID(1, 4, 4)
	got, err := propagate.Propagate(b, b.Walkable(), cell(t, b, origin), propagate.Circular{Spread: 2})
	require.NoError(t, err)

	assert.Len(t, got, 18)
	for _, c := range got {
		d := hex.Distance(origin, c.ID())
		assert.True(t, d >= 1 && d <= 2, "%v at distance %d", c.ID(), d)
	}
}

func TestCircularZeroSpread(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(3, 3, 1, 1))
	got, err := propagate.Propagate(b, b.Walkable(), cell(t, b, hex.ID(1, 1, 1)), propagate.Circular{Spread: 0.5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResultsStayInsideViableSet(t *testing.T) {
	records := boardtest.Rect(11, 11, 1, 1)
	for _, id := range []hex.CellID{hex.ID(1, 4, 5), hex.ID(1, 5, 7), hex.ID(1, 6, 4), hex.ID(1, 3, 3)} {
		boardtest.Relabel(records, id, board.LabelWall)
	}
	boardtest.Relabel(records, hex.ID(1, 7, 6), board.LabelVoid)
	b := boardtest.Build(records)
	origin := cell(t, b, hex.ID(1, 5, 5))

	patterns := []propagate.Pattern{
		propagate.Circular{Spread: 3},
		propagate.Circular{Spread: 5},
		propagate.Linear{Direction: hex.TopLeft, Spread: 2, Reach: 3},
		propagate.Linear{Direction: hex.BottomRight, Spread: 3, Reach: 5},
	}
	for _, p := range patterns {
		got, err := propagate.Propagate(b, b.Walkable(), origin, p)
		require.NoError(t, err)
		seen := mapset.New[hex.CellID]()
		for _, c := range got {
			assert.True(t, b.IsWalkable(c.ID()), "%v: %v outside viable set", p, c.ID())
			assert.False(t, seen.Has(c.ID()), "%v: duplicate %v", p, c.ID())
			seen.Put(c.ID())
		}
	}
}

func TestMatchesRecursiveDefinition(t *testing.T) {
	records := boardtest.Rect(13, 13, 1, 1)
	for _, id := range []hex.CellID{hex.ID(1, 5, 6), hex.ID(1, 7, 8), hex.ID(1, 6, 4), hex.ID(1, 8, 5), hex.ID(1, 4, 9)} {
		boardtest.Relabel(records, id, board.LabelWall)
	}
	b := boardtest.Build(records)
	origin := cell(t, b, hex.ID(1, 6, 6))

	for spread := 0.0; spread <= 6; spread += 0.5 {
		want := recursiveCircle(t, b, origin, spread)
		got, err := propagate.Propagate(b, b.Walkable(), origin, propagate.Circular{Spread: spread})
		require.NoError(t, err)
		assert.ElementsMatch(t, want, ids(got), "circular spread %v", spread)
	}

	for d := 0; d < hex.NumDirections; d++ {
		for _, sr := range [][2]float64{{0, 4}, {1, 2}, {2, 2}, {3, 4}, {2.5, 1.5}} {
			p := propagate.Linear{Direction: hex.Direction(d), Spread: sr[0], Reach: sr[1]}
			want := recursiveLinear(t, b, origin, p)
			got, err := propagate.Propagate(b, b.Walkable(), origin, p)
			require.NoError(t, err)
			assert.ElementsMatch(t, want, ids(got), p.String())
		}
	}
}

func TestObstructionRemovesCells(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(9, 9, 1, 1))
	origin := cell(t, b, hex.ID(1, 4, 4))
	blocked := hex.ID(1, 4, 3)

	var calls int
	obstruct := func(c, from *board.Cell) bool {
		calls++
		return c.ID() == blocked
	}
	got, err := propagate.Propagate(b, b.Walkable(), origin, propagate.Circular{Spread: 2},
		propagate.WithObstruction(obstruct))
	require.NoError(t, err)

	assert.Len(t, got, 17)
	assert.NotContains(t, ids(got), blocked)
	// Cells behind the blocked one are still reached.
	assert.Contains(t, ids(got), blocked.Neighbor(hex.CenterLeft))
	assert.Equal(t, 18, calls)
}

func TestInvalidPatterns(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(3, 3, 1, 1))
	origin := cell(t, b, hex.ID(1, 1, 1))

	_, err := propagate.Propagate(b, b.Walkable(), origin, propagate.Circular{Spread: math.NaN()})
	assert.ErrorIs(t, err, propagate.ErrInvalidPattern)
	_, err = propagate.Propagate(b, b.Walkable(), origin, propagate.Linear{Reach: math.Inf(1)})
	assert.ErrorIs(t, err, propagate.ErrInvalidPattern)

	_, err = propagate.ParsePattern("cone", 0, 1, 1)
	assert.ErrorIs(t, err, propagate.ErrUnknownPattern)

	p, err := propagate.ParsePattern("Linear", 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, propagate.Linear{Direction: 1, Spread: 1, Reach: 2}, p)

	p, err = propagate.ParsePattern("circular", 3, 2, 9)
	require.NoError(t, err)
	assert.Equal(t, propagate.Circular{Spread: 2}, p)
}

// propagateWithin runs Propagate and fails the test if it does not return
// before the deadline.
func propagateWithin(t *testing.T, d time.Duration, b *board.Board, origin *board.Cell, p propagate.Pattern, opts ...propagate.Option) ([]*board.Cell, error) {
	t.Helper()
	type result struct {
		cells []*board.Cell
		err   error
	}
	done := make(chan result, 1)
	go func() {
		cells, err := propagate.Propagate(b, b.Walkable(), origin, p, opts...)
		done <- result{cells, err}
	}()
	select {
	case r := <-done:
		return r.cells, r.err
	case <-time.After(d):
		t.Fatalf("%v did not finish within %s", p, d)
		return nil, nil
	}
}

func TestBudgetAboveLimitRejected(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(5, 5, 1, 1))
	origin := cell(t, b, hex.ID(1, 2, 2))

	for _, p := range []propagate.Pattern{
		propagate.Linear{Spread: 1e17},
		propagate.Linear{Spread: 20000, Reach: 5},
		propagate.Linear{Spread: 1, Reach: propagate.DefaultMaxBudget + 1},
		propagate.Circular{Spread: 1e17},
	} {
		_, err := propagateWithin(t, time.Second, b, origin, p)
		assert.ErrorIs(t, err, propagate.ErrInvalidPattern, p)
	}
}

func TestBudgetAtLimitFinishes(t *testing.T) {
	b := boardtest.Build(boardtest.Rect(5, 5, 1, 1))
	origin := cell(t, b, hex.ID(1, 2, 2))

	coversBoard := func(cells []*board.Cell) {
		got := mapset.New[hex.CellID]()
		for _, c := range cells {
			got.Put(c.ID())
		}
		b.AllIDs().Each(func(id hex.CellID) {
			if id != origin.ID() {
				assert.True(t, got.Has(id), id.String())
			}
		})
	}

	cells, err := propagateWithin(t, 5*time.Second, b, origin,
		propagate.Linear{Spread: propagate.DefaultMaxBudget, Reach: propagate.DefaultMaxBudget})
	require.NoError(t, err)
	coversBoard(cells)

	cells, err = propagateWithin(t, 5*time.Second, b, origin,
		propagate.Linear{Direction: hex.CenterRight, Spread: 64, Reach: 5}, propagate.WithMaxBudget(64))
	require.NoError(t, err)
	coversBoard(cells)
}

// recursiveCircle is the straightforward recursive ring walk.
func recursiveCircle(t *testing.T, b *board.Board, origin *board.Cell, spread float64) []hex.CellID {
	added := mapset.New[hex.CellID]()
	var out []hex.CellID
	viableStep := func(c *board.Cell, d int) *board.Cell {
		id, ok := c.Neighbor(hex.Wrap(d))
		if !ok || !b.IsWalkable(id) {
			return nil
		}
		return cell(t, b, id)
	}

	var rec func(c *board.Cell, radius int, avg float64)
	rec = func(c *board.Cell, radius int, avg float64) {
		if float64(radius) > spread || added.Has(c.ID()) {
			return
		}
		added.Put(c.ID())
		out = append(out, c.ID())

		if avg < 0 || avg > 5 {
			if n := viableStep(c, 0); n != nil {
				rec(n, radius+1, -1)
			}
			if n := viableStep(c, 5); n != nil {
				rec(n, radius+1, 5.5)
			}
			return
		}
		dir := int(math.Floor(avg))
		type next struct {
			c   *board.Cell
			avg float64
		}
		var nexts []next
		for _, d := range []int{dir, dir + 1, dir - 1} {
			if d == dir-1 && math.Mod(avg, 1) != 0 {
				continue
			}
			if n := viableStep(c, d); n != nil {
				nexts = append(nexts, next{n, avg + (float64(d)-avg)/float64(radius+1)})
			}
		}
		for _, n := range nexts {
			rec(n.c, radius+1, n.avg)
		}
	}

	for d := 0; d < hex.NumDirections; d++ {
		if n := viableStep(origin, d); n != nil {
			rec(n, 1, float64(d))
		}
	}
	return out
}

// recursiveLinear is the straightforward recursive beam.
func recursiveLinear(t *testing.T, b *board.Board, origin *board.Cell, p propagate.Linear) []hex.CellID {
	added := mapset.New[hex.CellID]()
	var out []hex.CellID
	dir := int(p.Direction)
	visit := func(c *board.Cell, d int) *board.Cell {
		id, ok := c.Neighbor(hex.Wrap(d))
		if !ok || !b.IsWalkable(id) {
			return nil
		}
		if !added.Has(id) {
			added.Put(id)
			out = append(out, id)
		}
		return cell(t, b, id)
	}

	var rec func(c *board.Cell, spread, reach float64)
	rec = func(c *board.Cell, spread, reach float64) {
		if int(reach) > 0 {
			if n := visit(c, dir); n != nil {
				rec(n, spread, reach-1)
			}
		}
		for int(spread) > 0 {
			for _, side := range []int{dir - int(spread), dir + int(spread)} {
				if n := visit(c, side); n != nil {
					rec(n, spread-1, reach-1)
				}
			}
			spread--
		}
	}
	rec(origin, p.Spread, p.Reach)
	return out
}
