package notes

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"note-keeper/cmd/server/ctxkeys"
	"note-keeper/cmd/server/handlers/handlerutil"
	"note-keeper/cmd/server/handlers/httperr"
	"note-keeper/internal/identity"
	"note-keeper/internal/logger"
	"note-keeper/internal/services/notes"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsPingWriteTimeout = 5 * time.Second

	msgFailedToCloseWebSocketConnection = "failed to close WebSocket connection"
)

var errNoOwner = errors.New("owner not found in websocket context")

// Hub interface for WebSocket management
type Hub interface {
	Subscribe(connULID ulid.ULID, ownerID string) (*notes.Subscriber, func())
}

// Authenticator verifies a raw bearer token
type Authenticator interface {
	Authenticate(raw string) (identity.Owner, error)
}

// WebSocketHandlers contains WebSocket-related handlers
type WebSocketHandlers struct {
	hub           Hub
	authenticator Authenticator
	maxSessionSec int
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(hub Hub, authenticator Authenticator, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:           hub,
		authenticator: authenticator,
		maxSessionSec: maxSessionSec,
	}
}

// WSUpgrade authenticates the ?token= query parameter and lets the
// upgrade through. Browsers cannot set headers on a WebSocket handshake.
// @Summary Live note events
// @Description Streams created and deleted events for the caller's notes as JSON frames.
// @Tags notes
// @Param token query string true "JWT"
// @Success 101
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /ws/notes/stream [get]
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
		return httperr.BadRequest("WebSocket upgrade required")
	}

	token := c.Query("token")
	if token == "" {
		logger.L().Warn("missing token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(httperr.E{Status: fiber.StatusUnauthorized, Message: "Missing token"})
	}

	owner, err := h.authenticator.Authenticate(token)
	if err != nil {
		logger.L().Info("invalid token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path(), "error", err)
		return httperr.Fail(httperr.E{Status: fiber.StatusUnauthorized, Message: "Invalid token"})
	}

	handlerutil.SetOwner(c, owner)
	c.Locals(ctxkeys.ParentCtxKey, c.UserContext())

	return c.Next()
}

// wsConnection holds connection-specific data
type wsConnection struct {
	ownerID  string
	connULID ulid.ULID
	connID   string
}

// WSNotesStream pushes the owner's note events until the client leaves or
// the session cap is reached.
func (h *WebSocketHandlers) WSNotesStream(c *websocket.Conn) {
	conn, parentCtx, err := h.initializeConnection(c)
	if err != nil {
		logger.L().Error("websocket init failed", "error", err)
		h.closeConnection(c)
		return
	}

	ctx, cancelCtx := context.WithCancel(parentCtx)
	defer cancelCtx()

	subscriber, cancel := h.hub.Subscribe(conn.connULID, conn.ownerID)
	defer cancel()

	logger.L().Info("WebSocket connection established", "user_id", conn.ownerID, "conn_id", conn.connID)

	sessionTimer := h.startSessionTimer(c, conn, cancelCtx)
	defer sessionTimer.Stop()

	ping := h.startKeepAlive(ctx, c, conn)
	defer ping.Stop()

	go h.handleOutgoingMessages(ctx, c, conn, subscriber)

	h.handleIncomingMessages(c, conn)

	logger.L().Info("WebSocket connection closed", "user_id", conn.ownerID, "conn_id", conn.connID)
}

func (h *WebSocketHandlers) initializeConnection(c *websocket.Conn) (*wsConnection, context.Context, error) {
	owner, ok := c.Locals(ctxkeys.OwnerKey).(identity.Owner)
	if !ok || owner.IsZero() {
		return nil, nil, errNoOwner
	}

	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		parentCtx = context.Background()
	}

	connULID := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	return &wsConnection{
		ownerID:  owner.ID,
		connULID: connULID,
		connID:   connULID.String(),
	}, parentCtx, nil
}

func (h *WebSocketHandlers) closeConnection(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		logger.L().Debug(msgFailedToCloseWebSocketConnection, "error", err)
	}
}

func (h *WebSocketHandlers) startSessionTimer(c *websocket.Conn, conn *wsConnection, cancelCtx context.CancelFunc) *time.Timer {
	return time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, func() {
		logger.L().Info("WebSocket session timeout", "user_id", conn.ownerID, "conn_id", conn.connID)
		h.sendCloseMessage(c, conn)
		h.closeConnection(c)
		cancelCtx()
	})
}

func (h *WebSocketHandlers) sendCloseMessage(c *websocket.Conn, conn *wsConnection) {
	err := c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout"),
		time.Now().Add(wsPingWriteTimeout))
	if err != nil {
		logger.L().Warn("failed to send close message", "error", err, "user_id", conn.ownerID, "conn_id", conn.connID)
	}
}

func (h *WebSocketHandlers) startKeepAlive(ctx context.Context, c *websocket.Conn, conn *wsConnection) *time.Ticker {
	ping := time.NewTicker(wsPingInterval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if h.sendPing(c, conn) != nil {
					return
				}
			}
		}
	}()
	return ping
}

// sendPing uses WriteControl, which is safe alongside the data writer.
func (h *WebSocketHandlers) sendPing(c *websocket.Conn, conn *wsConnection) error {
	if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsPingWriteTimeout)); err != nil {
		logger.L().Warn("failed to write ping message", "error", err, "user_id", conn.ownerID, "conn_id", conn.connID)
		return err
	}
	return nil
}

func (h *WebSocketHandlers) handleOutgoingMessages(ctx context.Context, c *websocket.Conn, conn *wsConnection, subscriber *notes.Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in WebSocket sender", "error", r, "user_id", conn.ownerID)
		}
	}()

	for {
		select {
		case event, ok := <-subscriber.Ch:
			if !ok {
				return
			}
			if h.sendEvent(c, conn, event) != nil {
				return
			}
		case <-subscriber.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *WebSocketHandlers) sendEvent(c *websocket.Conn, conn *wsConnection, event notes.NoteEvent) error {
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		logger.L().Error("failed to set write deadline", "error", err, "user_id", conn.ownerID, "conn_id", conn.connID)
		return err
	}
	if err := c.WriteJSON(buildEventMessage(event)); err != nil {
		logger.L().Warn("failed to write WebSocket message", "error", err, "user_id", conn.ownerID, "conn_id", conn.connID)
		return err
	}
	return nil
}

// buildEventMessage trims deleted events down to the note id.
func buildEventMessage(event notes.NoteEvent) map[string]any {
	if event.Type == notes.EventDeleted && event.Note != nil {
		return map[string]any{
			"type": event.Type,
			"note": map[string]any{"id": event.Note.ID},
		}
	}
	return map[string]any{
		"type": event.Type,
		"note": event.Note,
	}
}

// handleIncomingMessages drains client frames so control frames get
// processed. Returns when the connection closes.
func (h *WebSocketHandlers) handleIncomingMessages(c *websocket.Conn, conn *wsConnection) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Warn("WebSocket error", "error", err, "user_id", conn.ownerID, "conn_id", conn.connID)
			}
			return
		}
	}
}

// LogWSConnections logs every WebSocket upgrade attempt. The token is
// verified so the logged user_id can't be spoofed.
func LogWSConnections(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			userID := ""
			if owner, err := authenticator.Authenticate(c.Query("token")); err == nil {
				userID = owner.ID
			}
			logger.L().Info("WebSocket upgrade attempt", "ip", c.IP(), "user_id", userID)
		}
		return c.Next()
	}
}
