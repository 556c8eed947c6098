package pathfind

import (
	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/gravitas-games/hexboard/pkg/hex"
)

// bfsWalker holds the state of one breadth-first search.
type bfsWalker struct {
	graph   Graph
	start   hex.CellID
	goal    hex.CellID
	queue   *queue.Queue[hex.CellID]
	visited mapset.Set[hex.CellID]
	parent  map[hex.CellID]hex.CellID
}

// FindPathBFS finds a shortest path with breadth-first search. Neighbours
// are enqueued in direction order 0..5, which makes the result deterministic.
func FindPathBFS(g Graph, start, goal hex.CellID) (Result, error) {
	if !g.IsWalkable(goal) {
		log.WithFields(log.Fields{
			"start": start.String(),
			"goal":  goal.String(),
		}).Debug("BFS goal is not walkable, cancelling search")
		return Result{Status: NotReachable}, nil
	}
	if _, err := g.Cell(start); err != nil {
		return Result{}, err
	}

	w := &bfsWalker{
		graph:   g,
		start:   start,
		goal:    goal,
		queue:   queue.New[hex.CellID](),
		visited: mapset.New[hex.CellID](),
		parent:  make(map[hex.CellID]hex.CellID),
	}
	return w.run()
}

func (w *bfsWalker) run() (Result, error) {
	w.queue.Enqueue(w.start)
	w.visited.Put(w.start)

	current := w.start
	for !w.queue.Empty() {
		current = w.queue.Dequeue()
		if current == w.goal {
			path, err := reconstruct(w.graph, w.parent, w.start, w.goal)
			if err != nil {
				return Result{}, err
			}
			return Result{Path: path, Status: Found}, nil
		}

		cell, err := w.graph.Cell(current)
		if err != nil {
			return Result{}, err
		}
		for _, nbr := range cell.Neighbors() {
			if w.visited.Has(nbr) || !eligible(w.graph, nbr, w.goal) {
				continue
			}
			w.visited.Put(nbr)
			w.parent[nbr] = current
			w.queue.Enqueue(nbr)
		}
	}

	fields := log.Fields{
		"start":   w.start.String(),
		"goal":    w.goal.String(),
		"last":    current.String(),
		"visited": w.visited.Size(),
	}
	if cell, err := w.graph.Cell(current); err == nil {
		fields["last_neighbors"] = cell.Neighbors()
	}
	log.WithFields(fields).Info("BFS found no viable path")
	return Result{Status: NotFound}, nil
}
