package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionValidator resolves a session token to its live session
type SessionValidator interface {
	ValidateToken(token string) (*domain.Session, error)
}

// WebSocketHandler opens the per-session change feed
type WebSocketHandler struct {
	hub       *websocket.Hub
	validator SessionValidator
	origins   []string
	upgrader  ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler.
// Browsers may only connect from one of allowedOrigins.
func NewWebSocketHandler(hub *websocket.Hub, validator SessionValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:       hub,
		validator: validator,
		origins:   allowedOrigins,
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  256,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts non-browser clients, which send no Origin
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(h.origins, origin) {
		return true
	}
	log.Warn().Str("origin", origin).Msg("Dashboard feed rejected: origin not allowed")
	return false
}

// feedToken reads the session token from ?token=, or from the Authorization header for non-browser clients
func feedToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// HandleWS upgrades GET /ws to the session's change feed. The feed receives
// transaction.created and transaction.deleted events for the signed-in user and is
// closed with code 4001 on logout and 4002 when the session expires.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := feedToken(c)
	if token == "" {
		return NewUnauthorizedError(c, "Session token is required")
	}

	session, err := h.validator.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("Dashboard feed rejected")
		return NewUnauthorizedError(c, MsgSessionExpired)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Debug().Err(err).Str("username", session.Username).Msg("Dashboard feed upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, websocket.OwnerOf(session), h.hub)
	h.hub.Register(client)
	go client.Run()

	log.Info().
		Str("username", session.Username).
		Str("session_id", session.ID.String()).
		Str("client_id", client.ID()).
		Msg("Dashboard feed connected")
	return nil
}
