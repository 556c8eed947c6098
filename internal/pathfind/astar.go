package pathfind

import (
	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/heap"

	"github.com/gravitas-games/hexboard/pkg/hex"
)

// searchState is the per-call A* bookkeeping for one cell.
type searchState struct {
	g, h, f int
	parent  hex.CellID
	closed  bool
}

// frontierEntry is a queued cell. g identifies the state version the entry
// was pushed for; entries whose g no longer matches are stale.
type frontierEntry struct {
	f  int
	g  int
	id hex.CellID
}

// lessEntry orders the frontier by fCost, then by id.
func lessEntry(a, b frontierEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.id.Less(b.id)
}

// Heuristic estimates the remaining steps from a to goal. It is the exact
// hex distance on an open board, so it never overestimates.
func Heuristic(a, goal hex.CellID) int {
	return hex.Distance(a, goal)
}

// FindPathAStar finds a shortest path with A*. Ties on fCost are broken by
// the lower CellID.
func FindPathAStar(g Graph, start, goal hex.CellID) (Result, error) {
	if !g.IsWalkable(goal) {
		log.WithFields(log.Fields{
			"start": start.String(),
			"goal":  goal.String(),
		}).Debug("A* goal is not walkable, cancelling search")
		return Result{Status: NotReachable}, nil
	}
	if _, err := g.Cell(start); err != nil {
		return Result{}, err
	}

	states := make(map[hex.CellID]*searchState)
	open := heap.New[frontierEntry](lessEntry)

	h0 := Heuristic(start, goal)
	states[start] = &searchState{g: 0, h: h0, f: h0}
	open.Push(frontierEntry{f: h0, g: 0, id: start})

	for open.Size() > 0 {
		entry, _ := open.Pop()
		cur := states[entry.id]
		if cur.closed || entry.g != cur.g {
			continue
		}
		cur.closed = true

		if entry.id == goal {
			parent := make(map[hex.CellID]hex.CellID, len(states))
			for id, st := range states {
				if id != start {
					parent[id] = st.parent
				}
			}
			path, err := reconstruct(g, parent, start, goal)
			if err != nil {
				return Result{}, err
			}
			return Result{Path: path, Status: Found}, nil
		}

		cell, err := g.Cell(entry.id)
		if err != nil {
			return Result{}, err
		}
		for _, nbr := range cell.Neighbors() {
			if !eligible(g, nbr, goal) {
				continue
			}
			next, seen := states[nbr]
			if seen && next.closed {
				continue
			}
			tentative := cur.g + 1
			switch {
			case !seen:
				h := Heuristic(nbr, goal)
				next = &searchState{g: tentative, h: h, f: tentative + h, parent: entry.id}
				states[nbr] = next
			case tentative < next.g:
				next.g = tentative
				next.f = tentative + next.h
				next.parent = entry.id
			default:
				continue
			}
			open.Push(frontierEntry{f: next.f, g: next.g, id: nbr})
		}
	}

	log.WithFields(log.Fields{
		"start":    start.String(),
		"goal":     goal.String(),
		"explored": len(states),
	}).Info("A* goal never reached")
	return Result{Status: NotFound}, nil
}
