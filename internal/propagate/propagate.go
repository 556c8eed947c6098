// Package propagate computes the cells affected by an effect spreading from
// an origin cell.
//
// Propagation only reads the board. Visited cells, pending work and the
// removal list live in a per-call run, and out-of-board or non-viable steps
// are skipped rather than reported.
package propagate

import (
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

// Graph is the read-only board view propagation needs.
type Graph interface {
	Cell(id hex.CellID) (*board.Cell, error)
}

// Viable is the set of ids an effect may spread onto.
type Viable interface {
	Has(id hex.CellID) bool
}

// Exclusion marks Cell, reached from From, for removal from the result.
type Exclusion struct {
	Cell hex.CellID
	From hex.CellID
}

// Obstruction decides whether cell, reached from from, is blocked. Blocked
// cells still carry the spread further but are dropped from the result.
type Obstruction func(cell, from *board.Cell) bool

// Option configures a propagation call.
type Option func(*options)

type options struct {
	obstruction Obstruction
	maxBudget   float64
}

// DefaultMaxBudget bounds spread and reach when no WithMaxBudget option is
// given. Linear work grows with the square of the spread.
const DefaultMaxBudget = 16

// WithMaxBudget overrides the largest spread or reach a pattern may carry.
// Non-positive values keep the default.
func WithMaxBudget(n float64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBudget = n
		}
	}
}

// WithObstruction installs an obstruction check.
func WithObstruction(fn Obstruction) Option {
	return func(o *options) {
		if fn != nil {
			o.obstruction = fn
		}
	}
}

// run holds the scratch state of one propagation call.
type run struct {
	graph    Graph
	viable   Viable
	opts     options
	added    mapset.Set[hex.CellID]
	cells    map[hex.CellID]*board.Cell
	removals []Exclusion
}

// Propagate returns the cells affected by pattern spreading from origin,
// restricted to viable, in ascending id order.
func Propagate(g Graph, viable Viable, origin *board.Cell, p Pattern, opts ...Option) ([]*board.Cell, error) {
	r := &run{
		graph:  g,
		viable: viable,
		opts:   options{maxBudget: DefaultMaxBudget},
		added:  mapset.New[hex.CellID](),
		cells:  make(map[hex.CellID]*board.Cell),
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	if err := Validate(p, r.opts.maxBudget); err != nil {
		return nil, err
	}

	var err error
	switch p := p.(type) {
	case Linear:
		err = r.linear(origin, p)
	case Circular:
		err = r.circular(origin, p)
	}
	if err != nil {
		return nil, err
	}

	for _, ex := range r.removals {
		if r.added.Has(ex.Cell) {
			r.added.Remove(ex.Cell)
			delete(r.cells, ex.Cell)
		}
	}

	out := make([]*board.Cell, 0, len(r.cells))
	for _, c := range r.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })

	log.WithFields(log.Fields{
		"origin":   origin.ID().String(),
		"pattern":  p.String(),
		"affected": len(out),
		"removed":  len(r.removals),
	}).Debug("Propagation complete")
	return out, nil
}

// step returns the viable neighbour of from in direction d, if any.
func (r *run) step(from *board.Cell, d int) (*board.Cell, bool, error) {
	id, ok := from.Neighbor(hex.Wrap(d))
	if !ok || !r.viable.Has(id) {
		return nil, false, nil
	}
	c, err := r.graph.Cell(id)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// add records c in the result and consults the obstruction check.
func (r *run) add(c, from *board.Cell) {
	if r.added.Has(c.ID()) {
		return
	}
	r.added.Put(c.ID())
	r.cells[c.ID()] = c
	if r.opts.obstruction != nil && r.opts.obstruction(c, from) {
		r.removals = append(r.removals, Exclusion{Cell: c.ID(), From: from.ID()})
	}
}
