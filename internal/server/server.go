package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/internal/cache"
	"github.com/gravitas-games/hexboard/internal/config"
	"github.com/gravitas-games/hexboard/internal/network"
	"github.com/gravitas-games/hexboard/pkg/hex"
	"github.com/gravitas-games/hexboard/pkg/models"
)

// Server exposes a board over HTTP and WebSocket
type Server struct {
	config       *config.Config
	session      *Session
	router       *way.Router
	upgrader     websocket.Upgrader
	httpSrv      *http.Server
	jwtValidator *JWTValidator // nil when auth is disabled
	redis        *redis.Client // nil when Redis is disabled

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex
	guests      atomic.Int64

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server for b. Redis and JWT auth are only set up when
// configured.
func New(cfg *config.Config, b *board.Board) (*Server, error) {
	log.Info("Initializing server")

	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:      cfg,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	var resultCache cache.Cache = cache.Nop{}
	if cfg.Redis.Enabled() {
		srv.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := srv.redis.Ping(ctx).Err(); err != nil {
			srv.redis.Close()
			cancel()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		resultCache = cache.NewRedis(srv.redis, cfg.Redis.CachePrefix, cfg.Redis.CacheTTL())
		log.WithField("address", cfg.Redis.Address).Info("Connected to Redis")
	}

	if cfg.JWT.Enabled() {
		v, err := NewJWTValidator(ctx, cfg, srv.redis)
		if err != nil {
			srv.closeRedis()
			cancel()
			return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
		}
		srv.jwtValidator = v
	} else {
		log.Warn("JWT auth disabled, connections join as guests")
	}

	srv.session = NewSession("main", cfg, b, resultCache)
	srv.routes()

	log.Info("Server initialized")
	return srv, nil
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/ws", s.handleWebSocket)
	s.router.HandleFunc("GET", "/health", s.handleHealth)
	s.router.HandleFunc("GET", "/board", s.handleBoard)
	s.router.HandleFunc("GET", "/cells/:label", s.handleCell)
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler { return s.router }

// Session returns the session the server serves
func (s *Server) Session() *Session { return s.session }

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithFields(log.Fields{
		"ws":     fmt.Sprintf("ws://%s/ws", addr),
		"health": fmt.Sprintf("http://%s/health", addr),
	}).Info("Server listening")

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	log.Info("Shutting down server")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	// Closing the socket ends each read pump, which leaves the session.
	s.connMu.RLock()
	for conn := range s.connections {
		conn.ws.Close()
	}
	s.connMu.RUnlock()

	s.closeRedis()

	log.Info("Server shutdown complete")
	return nil
}

func (s *Server) closeRedis() {
	if s.redis == nil {
		return
	}
	if err := s.redis.Close(); err != nil {
		log.WithError(err).Warn("Redis close error")
	}
}

// authenticate resolves the player for an upgrade request. Without a
// validator every connection is a numbered guest.
func (s *Server) authenticate(r *http.Request) (*models.Player, error) {
	if s.jwtValidator == nil {
		n := s.guests.Add(1)
		return &models.Player{
			ID:        "guest-" + strconv.FormatInt(n, 10),
			Username:  "guest",
			Activated: 1,
		}, nil
	}

	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidToken)
	}
	return s.jwtValidator.ValidateToken(r.Context(), tokenString)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	entry := log.WithField("remote", r.RemoteAddr)

	player, err := s.authenticate(r)
	if err != nil {
		entry.WithError(err).Info("Rejected WebSocket connection")
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		entry.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	conn := NewConnection(ws, s, player)

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	entry.WithField("player", player.ID).Info("WebSocket connection established")

	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	entry.WithField("player", player.ID).Info("WebSocket connection closed")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// boardResponse is the body of GET /board
type boardResponse struct {
	ID      string      `json:"id"`
	Session string      `json:"session"`
	Players int         `json:"players"`
	Stats   board.Stats `json:"stats"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, boardResponse{
		ID:      s.session.BoardID,
		Session: s.session.ID,
		Players: s.session.PlayerCount(),
		Stats:   s.session.Board().Stats(),
	})
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	detail, err := s.session.CellDetail(way.Param(r.Context(), "label"))
	switch {
	case errors.Is(err, hex.ErrMalformedLabel):
		writeJSON(w, http.StatusBadRequest, network.ErrorPayload{Code: network.ErrCodeInvalidLabel, Message: err.Error()})
	case errors.Is(err, board.ErrUnknownCell):
		writeJSON(w, http.StatusNotFound, network.ErrorPayload{Code: network.ErrCodeUnknownCell, Message: err.Error()})
	case err != nil:
		log.WithError(err).Error("Cell lookup failed")
		writeJSON(w, http.StatusInternalServerError, network.ErrorPayload{Code: network.ErrCodeInternal, Message: err.Error()})
	default:
		writeJSON(w, http.StatusOK, detail)
	}
}
