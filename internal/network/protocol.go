package network

import (
	"encoding/json"

	"github.com/gravitas-games/hexboard/internal/board"
	"github.com/gravitas-games/hexboard/pkg/hex"
	"github.com/gravitas-games/hexboard/pkg/models"
)

// Message types - Client → Server
const (
	MsgTypeJoin      = "join"
	MsgTypeLeave     = "leave"
	MsgTypePing      = "ping"
	MsgTypeOptions   = "options"
	MsgTypeSelect    = "select"
	MsgTypePath      = "path"
	MsgTypePropagate = "propagate"
)

// Message types - Server → Client
const (
	MsgTypeWelcome           = "welcome"
	MsgTypePlayerJoined      = "player_joined"
	MsgTypePlayerLeft        = "player_left"
	MsgTypeOptionsUpdated    = "options_updated"
	MsgTypePrimed            = "primed"
	MsgTypePathResult        = "path_result"
	MsgTypePropagationResult = "propagation_result"
	MsgTypeError             = "error"
	MsgTypePong              = "pong"
)

// Error codes
const (
	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeUnknownType      = "unknown_message_type"
	ErrCodeNotJoined        = "not_joined"
	ErrCodeInvalidLabel     = "invalid_label"
	ErrCodeUnknownCell      = "unknown_cell"
	ErrCodeInvalidAlgorithm = "invalid_algorithm"
	ErrCodeInvalidPattern   = "invalid_pattern"
	ErrCodeInvalidOptions   = "invalid_options"
	ErrCodeInternal         = "internal_error"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// OptionsPayload updates the sender's options. Omitted fields keep their
// current value.
type OptionsPayload struct {
	Feature   *int     `json:"feature,omitempty"`
	Direction *int     `json:"direction,omitempty"`
	Spread    *float64 `json:"spread,omitempty"`
	Reach     *float64 `json:"reach,omitempty"`
}

// SelectPayload names the clicked cell by its scene label, e.g. "(1, 2, 3)_Panel".
type SelectPayload struct {
	Label string `json:"label"`
}

// PathPayload requests a path search between two labelled cells
type PathPayload struct {
	Start     string `json:"start"`
	Goal      string `json:"goal"`
	Algorithm string `json:"algorithm"` // "bfs" or "astar"
}

// PropagatePayload requests a propagation from a labelled cell
type PropagatePayload struct {
	Origin    string  `json:"origin"`
	Pattern   string  `json:"pattern"` // "linear" or "circular"
	Direction int     `json:"direction"`
	Spread    float64 `json:"spread"`
	Reach     float64 `json:"reach"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after joining
type WelcomePayload struct {
	PlayerID  string             `json:"player_id"`
	Username  string             `json:"username"`
	SessionID string             `json:"session_id"`
	BoardID   string             `json:"board_id"`
	Board     board.Stats        `json:"board"`
	Options   models.UserOptions `json:"options"`
}

// PlayerJoinedPayload notifies clients when a player joins
type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// PlayerLeftPayload notifies clients when a player leaves
type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// CellPayload describes one cell
type CellPayload struct {
	ID        [3]int     `json:"id"` // elevation, row, col
	Label     string     `json:"label"`
	TileLabel int        `json:"tile_label"`
	Walkable  bool       `json:"walkable"`
	Position  board.Vec3 `json:"position"`
}

// CellDetailPayload is a cell together with its neighbours
type CellDetailPayload struct {
	CellPayload
	Neighbors []CellPayload `json:"neighbors"`
}

// PrimedPayload acknowledges the first cell of a path selection
type PrimedPayload struct {
	Cell CellPayload `json:"cell"`
}

// PathResultPayload carries the outcome of a path search. Path excludes
// the start cell and ends at the goal.
type PathResultPayload struct {
	Algorithm string        `json:"algorithm"`
	Start     CellPayload   `json:"start"`
	Goal      [3]int        `json:"goal"`
	Status    string        `json:"status"`
	Path      []CellPayload `json:"path"`
	Cached    bool          `json:"cached"`
}

// PropagationResultPayload carries the cells an effect reached
type PropagationResultPayload struct {
	Origin  CellPayload   `json:"origin"`
	Pattern string        `json:"pattern"`
	Cells   []CellPayload `json:"cells"`
	Cached  bool          `json:"cached"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CellID packs an id the way payloads carry it.
func CellID(id hex.CellID) [3]int {
	return [3]int{id.Elevation, id.Row, id.Col}
}

// NewCellPayload describes c. walkable reports whether the board treats c
// as a panel.
func NewCellPayload(c *board.Cell, walkable bool) CellPayload {
	suffix := "Panel"
	switch {
	case c.Label() == board.LabelWall:
		suffix = "Wall"
	case !c.IsPanel():
		suffix = "Void"
	}
	return CellPayload{
		ID:        CellID(c.ID()),
		Label:     hex.FormatLabel(c.ID(), suffix),
		TileLabel: c.Label(),
		Walkable:  walkable,
		Position:  c.Position(),
	}
}
