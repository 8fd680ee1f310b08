package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lorrc/logistics-ops-backend/internal/auth"
	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	apperrors "github.com/lorrc/logistics-ops-backend/internal/core/errors"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Insight requests carry a
	// context bundle, so this is larger than a bare control message.
	maxMessageSize = 8192
)

// Client is the transport side of one session: it owns the websocket
// connection, pumps messages both ways, and decodes inbound control
// messages into registry and insight-service calls.
type Client struct {
	conn     *websocket.Conn
	registry ports.SessionRegistry
	insights ports.InsightService
	tm       *auth.TokenManager

	// Session ID assigned by the registry at registration.
	id uuid.UUID

	// Buffered channel of outbound messages. mu serializes sends against
	// Close so the channel is never closed mid-send.
	send chan domain.Message

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	logger    *slog.Logger
}

var _ ports.Connection = (*Client)(nil)

// NewClient wraps an upgraded connection and registers it as a new session.
func NewClient(
	conn *websocket.Conn,
	registry ports.SessionRegistry,
	insights ports.InsightService,
	tm *auth.TokenManager,
	sendBuffer int,
	logger *slog.Logger,
) *Client {
	c := &Client{
		conn:     conn,
		registry: registry,
		insights: insights,
		tm:       tm,
		send:     make(chan domain.Message, sendBuffer),
	}
	c.id = registry.Register(c)
	c.logger = logger.With("session_id", c.id.String())
	return c
}

// ID returns the session ID the registry assigned to this connection.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// SendMessage queues a message for the write pump. It fails fast when the
// connection is closed or the buffer is full; it never blocks. The lock
// pairs with Close: the channel cannot be closed between the check and
// the send.
func (c *Client) SendMessage(msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return apperrors.ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return apperrors.ErrSendBufferFull
	}
}

// Close marks the connection closed and shuts down the write pump. Safe to
// call more than once; the registry and the read pump may race here.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	return nil
}

// ReadPump pumps control messages from the connection into the registry and
// insight service. Runs in its own goroutine; exits on any read error and
// tears the session down.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Remove(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.registry.Touch(c.id)
		c.handleControlMessage(message)
	}
}

// WritePump pumps queued messages to the connection and keeps it alive with
// pings. Runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// Close() shut the channel. Send a close frame.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(msg); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (c *Client) writeJSON(msg domain.Message) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(msg); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Control Messages ---

// controlMessage is the decoded form of everything a client may send.
// Dispatch is on Type; the remaining fields are per-kind.
type controlMessage struct {
	Type string `json:"type"`

	// AUTHENTICATE / AUTH
	Token    string `json:"token,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`

	// SUBSCRIBE_REGIONS
	Regions []string `json:"regions,omitempty"`

	// REQUEST_INSIGHTS
	Context json.RawMessage `json:"context,omitempty"`
}

// handleControlMessage decodes and dispatches one inbound message.
// Malformed input is logged and ignored; the connection stays open.
func (c *Client) handleControlMessage(raw []byte) {
	var msg controlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Warn("failed to unmarshal control message", "error", err)
		return
	}

	switch msg.Type {
	case "AUTHENTICATE", "AUTH":
		c.handleAuthenticate(msg)

	case "SUBSCRIBE_REGIONS":
		c.handleSubscribeRegions(msg)

	case "REQUEST_INSIGHTS":
		c.handleRequestInsights(msg)

	case "PING":
		// Client-side keep-alive, respond with pong
		_ = c.SendMessage(domain.Message{Type: domain.MessagePong, Timestamp: time.Now().UTC()})

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

// handleAuthenticate binds an identity to the session. A token, when
// present, is validated and wins over the plain fields.
func (c *Client) handleAuthenticate(msg controlMessage) {
	identity := domain.Identity{
		UserID:   msg.UserID,
		Username: msg.Username,
		Role:     domain.Role(msg.Role),
	}

	if msg.Token != "" {
		claims, err := c.tm.ValidateToken(msg.Token)
		if err != nil {
			c.logger.Warn("authentication rejected", "error", err)
			_ = c.SendMessage(domain.NewSystemMessage("authentication failed: invalid token"))
			return
		}
		identity = domain.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     domain.Role(claims.Role),
		}
	}

	if err := c.registry.Authenticate(c.id, identity); err != nil {
		c.logger.Warn("authentication rejected", "error", err)
		_ = c.SendMessage(domain.NewSystemMessage("authentication failed: " + err.Error()))
		return
	}

	if !domain.KnownRole(identity.Role) {
		c.logger.Info("session authenticated with unrecognized role", "role", identity.Role)
	}
	_ = c.SendMessage(domain.NewSystemMessage("authenticated as " + identity.Username))
}

// handleSubscribeRegions replaces the session's region-interest set.
func (c *Client) handleSubscribeRegions(msg controlMessage) {
	if err := c.registry.SetRegions(c.id, msg.Regions); err != nil {
		c.logger.Warn("region subscription rejected", "error", err)
		_ = c.SendMessage(domain.NewSystemMessage("subscription failed: " + err.Error()))
		return
	}
	_ = c.SendMessage(domain.NewSystemMessage("region subscription updated"))
}

// handleRequestInsights runs the synthesizer off the read pump so a slow
// prediction call never stalls inbound message handling. The reply is
// dropped silently if the session is gone by the time it resolves.
func (c *Client) handleRequestInsights(msg controlMessage) {
	snap, ok := c.registry.Snapshot(c.id)
	if !ok || !snap.Authenticated() {
		_ = c.SendMessage(domain.NewSystemMessage("authenticate before requesting insights"))
		return
	}

	var ic domain.InsightContext
	if len(msg.Context) > 0 {
		if err := json.Unmarshal(msg.Context, &ic); err != nil {
			c.logger.Warn("failed to unmarshal insight context", "error", err)
			_ = c.SendMessage(domain.NewAIInsight(nil, "insight request rejected: malformed context"))
			return
		}
	}

	role := snap.Role()
	go func() {
		insights, err := c.insights.Synthesize(context.Background(), role, ic)
		if err != nil {
			c.logger.Error("insight synthesis failed", "role", role, "error", err)
			_ = c.SendMessage(domain.NewAIInsight(nil, "insight synthesis failed"))
			return
		}

		note := "insights generated for role " + string(role)
		if len(insights) == 0 {
			note = "no insights for the current context"
		}
		// Send error means the session closed mid-request; discard.
		_ = c.SendMessage(domain.NewAIInsight(insights, note))
	}()
}
