package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/lorrc/logistics-ops-backend/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/logistics-ops-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/logistics-ops-backend/internal/auth"
	"github.com/lorrc/logistics-ops-backend/internal/config"
	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

// WebSocketHandler admits new real-time sessions: it upgrades the
// connection, registers a session, and starts the I/O pumps. Sessions are
// admitted unauthenticated; identity arrives either as a `token` query
// parameter or later via an AUTHENTICATE control message.
type WebSocketHandler struct {
	registry   ports.SessionRegistry
	insights   ports.InsightService
	tm         *auth.TokenManager
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	registry ports.SessionRegistry,
	insights ports.InsightService,
	tm *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		registry:   registry,
		insights:   insights,
		tm:         tm,
		sendBuffer: cfg.WebSocket.SendBufferSize,
		logger:     logger,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	// An optional token pre-authenticates the session before upgrade.
	var identity *domain.Identity
	if tokenString := r.URL.Query().Get("token"); tokenString != "" {
		claims, err := h.tm.ValidateToken(tokenString)
		if err != nil {
			h.logger.Warn("websocket connection rejected: invalid token",
				"request_id", requestID,
				"remote_addr", r.RemoteAddr,
				"error", err,
			)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		identity = &domain.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     domain.Role(claims.Role),
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	client := wsAdapter.NewClient(conn, h.registry, h.insights, h.tm, h.sendBuffer, h.logger)

	if identity != nil {
		if err := h.registry.Authenticate(client.ID(), *identity); err != nil {
			h.logger.Warn("token pre-authentication failed",
				"request_id", requestID,
				"session_id", client.ID(),
				"error", err,
			)
		}
	}

	h.logger.Info("websocket connection established",
		"request_id", requestID,
		"session_id", client.ID(),
		"remote_addr", r.RemoteAddr,
	)

	go client.WritePump()
	go client.ReadPump()

	_ = client.SendMessage(domain.NewSystemMessage("connected to logistics operations stream"))
}
