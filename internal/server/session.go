package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/internal/cache"
	"github.com/gravitas-games/hexboard/internal/config"
	"github.com/gravitas-games/hexboard/internal/network"
	"github.com/gravitas-games/hexboard/internal/pathfind"
	"github.com/gravitas-games/hexboard/internal/propagate"
	"github.com/gravitas-games/hexboard/pkg/hex"
	"github.com/gravitas-games/hexboard/pkg/models"
)

var (
	// ErrNotJoined is returned for player-scoped requests before "join".
	ErrNotJoined = errors.New("server: player has not joined")

	// ErrInvalidOptions is returned for an options update with an unknown
	// feature, or a spread or reach that is not finite or exceeds the
	// propagation budget.
	ErrInvalidOptions = errors.New("server: invalid options")
)

// Session serves queries against one board. The board is shared read-only;
// per-player options and pending path selections are guarded by mu.
type Session struct {
	ID        string
	BoardID   string
	CreatedAt time.Time

	board     *board.Board
	cache     cache.Cache
	defaults  models.UserOptions
	maxBudget float64

	// Player management
	players     map[string]*models.Player // playerID -> Player
	connections map[string]*Connection    // playerID -> Connection
	selections  map[string]hex.CellID     // playerID -> primed path start
	mu          sync.RWMutex
}

// NewSession creates a session over b. A nil cache disables result caching.
func NewSession(id string, cfg *config.Config, b *board.Board, c cache.Cache) *Session {
	if c == nil {
		c = cache.Nop{}
	}

	defaults := models.DefaultOptions()
	defaults.Direction = int(hex.Wrap(cfg.Propagation.Direction))
	if cfg.Propagation.Spread != nil {
		defaults.Spread = *cfg.Propagation.Spread
	}
	if cfg.Propagation.Reach != nil {
		defaults.Reach = *cfg.Propagation.Reach
	}
	maxBudget := cfg.Propagation.MaxBudget
	if maxBudget <= 0 {
		maxBudget = propagate.DefaultMaxBudget
	}

	s := &Session{
		ID:          id,
		BoardID:     cfg.Board.ID,
		CreatedAt:   time.Now(),
		board:       b,
		cache:       c,
		defaults:    defaults,
		maxBudget:   maxBudget,
		players:     make(map[string]*models.Player),
		connections: make(map[string]*Connection),
		selections:  make(map[string]hex.CellID),
	}

	log.WithFields(log.Fields{
		"session": id,
		"board":   s.BoardID,
		"cells":   b.Len(),
	}).Info("Session created")
	return s
}

// Board returns the board the session serves.
func (s *Session) Board() *board.Board { return s.board }

// AddPlayer adds a player to the session with the default options
func (s *Session) AddPlayer(player *models.Player, conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player.Options = s.defaults
	s.players[player.ID] = player
	s.connections[player.ID] = conn
	delete(s.selections, player.ID)

	log.WithFields(log.Fields{
		"player":   player.ID,
		"username": player.Username,
		"session":  s.ID,
	}).Info("Player joined session")
}

// RemovePlayer removes a player from the session
func (s *Session) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player, exists := s.players[playerID]; exists {
		log.WithFields(log.Fields{
			"player":   playerID,
			"username": player.Username,
			"session":  s.ID,
		}).Info("Player left session")
		delete(s.players, playerID)
		delete(s.connections, playerID)
		delete(s.selections, playerID)
	}
}

// GetPlayer retrieves a player by ID
func (s *Session) GetPlayer(playerID string) (*models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, exists := s.players[playerID]
	return player, exists
}

// PlayerCount returns the number of joined players
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// BroadcastExcept sends a message to all players except the specified connection
func (s *Session) BroadcastExcept(exclude *Connection, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if conn != exclude {
			conn.SendMessage(msg)
		}
	}
}

// Welcome builds the welcome payload for a joined player.
func (s *Session) Welcome(playerID string) (network.WelcomePayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, ok := s.players[playerID]
	if !ok {
		return network.WelcomePayload{}, ErrNotJoined
	}
	return network.WelcomePayload{
		PlayerID:  player.ID,
		Username:  player.Username,
		SessionID: s.ID,
		BoardID:   s.BoardID,
		Board:     s.board.Stats(),
		Options:   player.Options,
	}, nil
}

// UpdateOptions applies the fields set in update to the player's options.
func (s *Session) UpdateOptions(playerID string, update network.OptionsPayload) (models.UserOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return models.UserOptions{}, ErrNotJoined
	}

	opts := player.Options
	if update.Feature != nil {
		f := models.Feature(*update.Feature)
		if !f.Valid() {
			return opts, fmt.Errorf("%w: feature %d", ErrInvalidOptions, *update.Feature)
		}
		opts.Feature = f
	}
	if update.Direction != nil {
		opts.Direction = int(hex.Wrap(*update.Direction))
	}
	if update.Spread != nil {
		if !propagate.InBudget(*update.Spread, s.maxBudget) {
			return opts, fmt.Errorf("%w: spread %v", ErrInvalidOptions, *update.Spread)
		}
		opts.Spread = *update.Spread
	}
	if update.Reach != nil {
		if !propagate.InBudget(*update.Reach, s.maxBudget) {
			return opts, fmt.Errorf("%w: reach %v", ErrInvalidOptions, *update.Reach)
		}
		opts.Reach = *update.Reach
	}

	player.Options = opts
	log.WithFields(log.Fields{
		"player":    playerID,
		"feature":   opts.Feature.String(),
		"direction": opts.Direction,
		"spread":    opts.Spread,
		"reach":     opts.Reach,
	}).Debug("Options updated")
	return opts, nil
}

// Select handles a click on the labelled cell with the player's current
// feature. Pathing features take two selections: the first primes the start
// cell and the second runs the search. Propagation features run on every
// selection and clear any primed start.
func (s *Session) Select(ctx context.Context, playerID, label string) (*network.ServerMessage, error) {
	id, err := hex.ParseLabel(label)
	if err != nil {
		return nil, err
	}
	cell, err := s.board.Cell(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	player, ok := s.players[playerID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotJoined
	}
	opts := player.Options

	if opts.Feature.IsPathing() {
		start, primed := s.selections[playerID]
		if !primed {
			s.selections[playerID] = id
			s.mu.Unlock()
			return &network.ServerMessage{
				Type:    network.MsgTypePrimed,
				Payload: network.PrimedPayload{Cell: s.cellPayload(cell)},
			}, nil
		}
		delete(s.selections, playerID)
		s.mu.Unlock()

		algo := pathfind.BFS
		if opts.Feature == models.FeatureAStar {
			algo = pathfind.AStar
		}
		res, err := s.Path(ctx, start, id, algo)
		if err != nil {
			return nil, err
		}
		return &network.ServerMessage{Type: network.MsgTypePathResult, Payload: res}, nil
	}

	delete(s.selections, playerID)
	s.mu.Unlock()

	var p propagate.Pattern = propagate.Circular{Spread: opts.Spread}
	if opts.Feature == models.FeatureLinear {
		p = propagate.Linear{Direction: hex.Wrap(opts.Direction), Spread: opts.Spread, Reach: opts.Reach}
	}
	res, err := s.Propagate(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &network.ServerMessage{Type: network.MsgTypePropagationResult, Payload: res}, nil
}

type cachedPath struct {
	Status pathfind.Status `json:"status"`
	Path   []hex.CellID    `json:"path"`
}

// Path runs a path search, consulting the result cache first.
func (s *Session) Path(ctx context.Context, start, goal hex.CellID, algo pathfind.Algorithm) (network.PathResultPayload, error) {
	startCell, err := s.board.Cell(start)
	if err != nil {
		return network.PathResultPayload{}, err
	}
	out := network.PathResultPayload{
		Algorithm: algo.String(),
		Start:     s.cellPayload(startCell),
		Goal:      network.CellID(goal),
	}

	key := cache.PathKey(s.BoardID, algo, start, goal)
	var hit cachedPath
	if found, err := s.cache.Get(ctx, key, &hit); err != nil {
		log.WithError(err).Warn("Path cache lookup failed")
	} else if found {
		cells, err := s.resolve(hit.Path)
		if err == nil {
			out.Status = hit.Status.String()
			out.Path = cells
			out.Cached = true
			return out, nil
		}
		log.WithError(err).WithField("key", key).Warn("Discarding stale cached path")
	}

	res, err := pathfind.FindPath(s.board, start, goal, algo)
	if err != nil {
		return network.PathResultPayload{}, err
	}
	out.Status = res.Status.String()
	out.Path = s.cellPayloads(res.Path)

	if err := s.cache.Set(ctx, key, cachedPath{Status: res.Status, Path: res.IDs()}); err != nil {
		log.WithError(err).Warn("Path cache store failed")
	}
	return out, nil
}

// Propagate spreads p from origin over the walkable cells, consulting the
// result cache first.
func (s *Session) Propagate(ctx context.Context, origin hex.CellID, p propagate.Pattern) (network.PropagationResultPayload, error) {
	if err := propagate.Validate(p, s.maxBudget); err != nil {
		return network.PropagationResultPayload{}, err
	}
	originCell, err := s.board.Cell(origin)
	if err != nil {
		return network.PropagationResultPayload{}, err
	}
	out := network.PropagationResultPayload{
		Origin:  s.cellPayload(originCell),
		Pattern: p.String(),
	}

	key := cache.PropagationKey(s.BoardID, origin, p)
	var hit []hex.CellID
	if found, err := s.cache.Get(ctx, key, &hit); err != nil {
		log.WithError(err).Warn("Propagation cache lookup failed")
	} else if found {
		cells, err := s.resolve(hit)
		if err == nil {
			out.Cells = cells
			out.Cached = true
			return out, nil
		}
		log.WithError(err).WithField("key", key).Warn("Discarding stale cached propagation")
	}

	cells, err := propagate.Propagate(s.board, s.board.Walkable(), originCell, p,
		propagate.WithMaxBudget(s.maxBudget))
	if err != nil {
		return network.PropagationResultPayload{}, err
	}
	out.Cells = s.cellPayloads(cells)

	ids := make([]hex.CellID, len(cells))
	for i, c := range cells {
		ids[i] = c.ID()
	}
	if err := s.cache.Set(ctx, key, ids); err != nil {
		log.WithError(err).Warn("Propagation cache store failed")
	}
	return out, nil
}

// CellDetail describes the labelled cell and its neighbours.
func (s *Session) CellDetail(label string) (network.CellDetailPayload, error) {
	id, err := hex.ParseLabel(label)
	if err != nil {
		return network.CellDetailPayload{}, err
	}
	cell, err := s.board.Cell(id)
	if err != nil {
		return network.CellDetailPayload{}, err
	}
	neighbors, err := s.resolve(cell.Neighbors())
	if err != nil {
		return network.CellDetailPayload{}, err
	}
	return network.CellDetailPayload{CellPayload: s.cellPayload(cell), Neighbors: neighbors}, nil
}

func (s *Session) cellPayload(c *board.Cell) network.CellPayload {
	return network.NewCellPayload(c, s.board.IsWalkable(c.ID()))
}

func (s *Session) cellPayloads(cells []*board.Cell) []network.CellPayload {
	out := make([]network.CellPayload, len(cells))
	for i, c := range cells {
		out[i] = s.cellPayload(c)
	}
	return out
}

func (s *Session) resolve(ids []hex.CellID) ([]network.CellPayload, error) {
	out := make([]network.CellPayload, 0, len(ids))
	for _, id := range ids {
		c, err := s.board.Cell(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s.cellPayload(c))
	}
	return out, nil
}

// errorCode maps a query error to its wire code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, hex.ErrMalformedLabel):
		return network.ErrCodeInvalidLabel
	case errors.Is(err, board.ErrUnknownCell):
		return network.ErrCodeUnknownCell
	case errors.Is(err, pathfind.ErrUnknownAlgorithm):
		return network.ErrCodeInvalidAlgorithm
	case errors.Is(err, propagate.ErrUnknownPattern), errors.Is(err, propagate.ErrInvalidPattern):
		return network.ErrCodeInvalidPattern
	case errors.Is(err, ErrInvalidOptions):
		return network.ErrCodeInvalidOptions
	case errors.Is(err, ErrNotJoined):
		return network.ErrCodeNotJoined
	default:
		return network.ErrCodeInternal
	}
}
