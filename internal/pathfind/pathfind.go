// Package pathfind finds shortest walkable paths across a board.
//
// Both algorithms treat every step as cost 1 and only step onto panels (or
// the goal itself). Search state is kept per call, so any number of searches
// may run concurrently against one board.
package pathfind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

// ErrUnknownAlgorithm is returned for an Algorithm value outside the known set.
var ErrUnknownAlgorithm = errors.New("pathfind: unknown algorithm")

// Graph is the read-only view of a board that searches need.
type Graph interface {
	Cell(id hex.CellID) (*board.Cell, error)
	IsWalkable(id hex.CellID) bool
}

// Algorithm selects a search strategy.
type Algorithm int

const (
	BFS Algorithm = iota
	AStar
)

func (a Algorithm) String() string {
	switch a {
	case BFS:
		return "bfs"
	case AStar:
		return "astar"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps "bfs" or "astar" (case-insensitive) to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bfs":
		return BFS, nil
	case "astar", "a*":
		return AStar, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Status tells apart the three outcomes of a search.
type Status int

const (
	// Found means Path leads from start to goal.
	Found Status = iota
	// NotReachable means the goal is not a panel, so no search was run.
	NotReachable
	// NotFound means the goal is a panel but the search exhausted its frontier.
	NotFound
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotReachable:
		return "not_reachable"
	case NotFound:
		return "not_found"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of a search. Path runs from the first step after
// start through goal inclusive and is empty unless Status is Found.
type Result struct {
	Path   []*board.Cell
	Status Status
}

// OK reports whether a path was found.
func (r Result) OK() bool { return r.Status == Found }

// IDs returns the ids along the path.
func (r Result) IDs() []hex.CellID {
	ids := make([]hex.CellID, len(r.Path))
	for i, c := range r.Path {
		ids[i] = c.ID()
	}
	return ids
}

// FindPath runs the selected algorithm. The only errors are an unknown
// algorithm and a start id that is not on the board.
func FindPath(g Graph, start, goal hex.CellID, algo Algorithm) (Result, error) {
	switch algo {
	case BFS:
		return FindPathBFS(g, start, goal)
	case AStar:
		return FindPathAStar(g, start, goal)
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, algo)
	}
}

// eligible reports whether a search may step onto id.
func eligible(g Graph, id, goal hex.CellID) bool {
	return id == goal || g.IsWalkable(id)
}

// reconstruct follows parent links from goal back to start and returns the
// cells in travel order, start excluded.
func reconstruct(g Graph, parent map[hex.CellID]hex.CellID, start, goal hex.CellID) ([]*board.Cell, error) {
	var path []*board.Cell
	for cur := goal; cur != start; {
		c, err := g.Cell(cur)
		if err != nil {
			return nil, err
		}
		path = append(path, c)
		prev, ok := parent[cur]
		if !ok {
			return nil, fmt.Errorf("pathfind: broken parent chain at %s", cur)
		}
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
