package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/gravitas-games/hexboard/internal/network"
	"github.com/gravitas-games/hexboard/internal/pathfind"
	"github.com/gravitas-games/hexboard/internal/propagate"
	"github.com/gravitas-games/hexboard/pkg/hex"
	"github.com/gravitas-games/hexboard/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Upper bound for a single query, cache round trips included
	queryTimeout = 5 * time.Second
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	ws     *websocket.Conn
	server *Server

	// Player information, set from the token or as a guest
	player *models.Player
	joined bool

	// Buffered channel for outbound messages
	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

// NewConnection creates a new connection for player
func NewConnection(ws *websocket.Conn, server *Server, player *models.Player) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		player: player,
		send:   make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.readPump() // Blocking
}

func (c *Connection) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"player": c.player.ID,
		"remote": c.ws.RemoteAddr().String(),
	})
}

// readPump pumps messages from the WebSocket connection to the session
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger().WithError(err).Warn("WebSocket read error")
			}
			return
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.logger().WithError(err).Debug("Failed to parse client message")
			c.SendError(network.ErrCodeInvalidMessage, "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger().WithError(err).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.server.ctx.Done():
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	c.logger().WithField("type", msg.Type).Debug("Received message")

	ctx, cancel := context.WithTimeout(c.server.ctx, queryTimeout)
	defer cancel()

	switch msg.Type {
	case network.MsgTypeJoin:
		c.handleJoin()
	case network.MsgTypeLeave:
		c.handleLeave()
	case network.MsgTypePing:
		c.handlePing()
	case network.MsgTypeOptions:
		c.handleOptions(msg.Payload)
	case network.MsgTypeSelect:
		c.handleSelect(ctx, msg.Payload)
	case network.MsgTypePath:
		c.handlePath(ctx, msg.Payload)
	case network.MsgTypePropagate:
		c.handlePropagate(ctx, msg.Payload)
	default:
		c.logger().WithField("type", msg.Type).Debug("Unknown message type")
		c.SendError(network.ErrCodeUnknownType, "Unknown message type")
	}
}

// handleJoin adds the player to the session and greets it
func (c *Connection) handleJoin() {
	session := c.server.session

	c.player.Connected = true
	c.player.ConnectedAt = time.Now()
	c.player.SessionID = session.ID

	session.AddPlayer(c.player, c)
	c.joined = true

	welcome, err := session.Welcome(c.player.ID)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypeWelcome, Payload: welcome})

	session.BroadcastExcept(c, &network.ServerMessage{
		Type: network.MsgTypePlayerJoined,
		Payload: network.PlayerJoinedPayload{
			PlayerID: c.player.ID,
			Username: c.player.Username,
		},
	})
}

// handleLeave removes the player from the session
func (c *Connection) handleLeave() {
	if !c.joined {
		return
	}
	c.joined = false
	c.server.session.RemovePlayer(c.player.ID)

	c.server.session.BroadcastExcept(c, &network.ServerMessage{
		Type: network.MsgTypePlayerLeft,
		Payload: network.PlayerLeftPayload{
			PlayerID: c.player.ID,
			Username: c.player.Username,
		},
	})
}

func (c *Connection) handlePing() {
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePong,
		Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

func (c *Connection) handleOptions(payload json.RawMessage) {
	var update network.OptionsPayload
	if err := json.Unmarshal(payload, &update); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid options payload")
		return
	}
	opts, err := c.server.session.UpdateOptions(c.player.ID, update)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypeOptionsUpdated, Payload: opts})
}

func (c *Connection) handleSelect(ctx context.Context, payload json.RawMessage) {
	var sel network.SelectPayload
	if err := json.Unmarshal(payload, &sel); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid select payload")
		return
	}
	reply, err := c.server.session.Select(ctx, c.player.ID, sel.Label)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	c.SendMessage(reply)
}

func (c *Connection) handlePath(ctx context.Context, payload json.RawMessage) {
	var req network.PathPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid path payload")
		return
	}
	start, err := hex.ParseLabel(req.Start)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	goal, err := hex.ParseLabel(req.Goal)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	algo, err := pathfind.ParseAlgorithm(req.Algorithm)
	if err != nil {
		c.sendQueryError(err)
		return
	}

	res, err := c.server.session.Path(ctx, start, goal, algo)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypePathResult, Payload: res})
}

func (c *Connection) handlePropagate(ctx context.Context, payload json.RawMessage) {
	var req network.PropagatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid propagate payload")
		return
	}
	origin, err := hex.ParseLabel(req.Origin)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	p, err := propagate.ParsePattern(req.Pattern, req.Direction, req.Spread, req.Reach)
	if err != nil {
		c.sendQueryError(err)
		return
	}

	res, err := c.server.session.Propagate(ctx, origin, p)
	if err != nil {
		c.sendQueryError(err)
		return
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypePropagationResult, Payload: res})
}

// sendQueryError reports err to the client under its wire code
func (c *Connection) sendQueryError(err error) {
	code := errorCode(err)
	entry := c.logger().WithError(err).WithField("code", code)
	if code == network.ErrCodeInternal {
		entry.Error("Query failed")
	} else {
		entry.Debug("Query rejected")
	}
	c.SendError(code, err.Error())
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger().WithError(err).Error("Failed to marshal message")
		return
	}

	select {
	case c.send <- data:
	case <-c.closed:
	default:
		c.logger().Warn("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close leaves the session and stops the write pump. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.handleLeave()
		close(c.closed)
	})
}
