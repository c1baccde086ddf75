package websocket

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"task-manager-be/internal/pkg/clock"
	"task-manager-be/internal/pkg/logger"
	"task-manager-be/internal/service"
	"task-manager-be/pkg/debounce"
)

// Handler upgrades authenticated requests to live-search sockets.
type Handler struct {
	hub           *Hub
	sessions      service.ISessionService
	search        service.ISearchService
	activity      service.IPublisherService
	debounceDelay time.Duration
	logger        logger.ILogger
}

func NewHandler(
	hub *Hub,
	sessions service.ISessionService,
	search service.ISearchService,
	activity service.IPublisherService,
	debounceDelay time.Duration,
	log logger.ILogger,
) *Handler {
	return &Handler{
		hub:           hub,
		sessions:      sessions,
		search:        search,
		activity:      activity,
		debounceDelay: debounceDelay,
		logger:        log,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *Handler) ServeWs(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	session, ok := h.sessions.ValidateToken(c.Context(), tokenStr)
	if !ok {
		h.logger.Warn("Hub", "Invalid token in WS handshake", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired session"})
	}
	sessionID := session.Id

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("Hub", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			h.serve(conn, sessionID)
			h.logger.Info("Hub", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *Handler) serve(conn *websocket.Conn, sessionID string) {
	client := &Client{
		Hub:       h.hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		search:    h.search,
		activity:  h.activity,
	}
	client.debouncer = debounce.New[string](h.debounceDelay, clock.NewReal(), client.runSearch)

	client.Hub.register <- client

	// writePump in its own goroutine; readPump blocks until the socket dies.
	go client.writePump()
	client.readPump()
}
