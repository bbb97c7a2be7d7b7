// Package transport owns the WebSocket surface: connection upgrade and
// lifecycle, frame routing, message handlers, and real-time delivery.
package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/auth"
	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
	"github.com/peergrid/messenger/internal/v1/ratelimit"
	"github.com/peergrid/messenger/internal/v1/room"
	"github.com/peergrid/messenger/internal/v1/session"
	"github.com/peergrid/messenger/internal/v1/store"
	"github.com/peergrid/messenger/internal/v1/types"
)

var errOriginNotAllowed = errors.New("origin not allowed")

// Hub coordinates every live connection and holds the shared dependencies
// the handlers need.
type Hub struct {
	store          *store.Store
	hasher         *auth.Hasher
	sessions       *session.Registry
	rooms          *room.Registry
	rateLimiter    *ratelimit.RateLimiter
	allowedOrigins []string

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewHub wires the hub with its dependencies.
func NewHub(st *store.Store, hasher *auth.Hasher, rl *ratelimit.RateLimiter, allowedOrigins []string) *Hub {
	return &Hub{
		store:          st,
		hasher:         hasher,
		sessions:       session.NewRegistry(),
		rooms:          room.NewRegistry(),
		rateLimiter:    rl,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*Client]struct{}),
	}
}

// Sessions exposes the session registry for health and tests.
func (h *Hub) Sessions() *session.Registry { return h.sessions }

// Rooms exposes the room registry for health and tests.
func (h *Hub) Rooms() *room.Registry { return h.rooms }

// ServeWs rate-limits, validates the origin, upgrades the request, and
// starts the connection pumps.
func (h *Hub) ServeWs(c *gin.Context) {
	if h.rateLimiter != nil && !h.rateLimiter.CheckWebSocket(c) {
		return // Response already written by CheckWebSocket
	}

	if err := validateOrigin(c.Request, h.allowedOrigins); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return validateOrigin(r, h.allowedOrigins) == nil
		},
		WriteBufferPool: &sync.Pool{
			New: func() any {
				return make([]byte, 4096)
			},
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to upgrade connection", zap.Error(err))
		return
	}

	h.HandleConnection(conn)
}

// HandleConnection registers an established WebSocket connection and
// starts its pumps.
func (h *Hub) HandleConnection(conn wsConnection) *Client {
	client := newClient(h, conn, types.PeerIDType(uuid.NewString()))

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	metrics.IncConnection()
	logging.Info(context.Background(), "Client connected",
		zap.String("peerId", string(client.peerID)))

	go client.writePump()
	go client.readPump()

	return client
}

// handleDisconnect runs the cleanup for a connection whose read pump has
// exited: leave the room, release the session binding, close the writer.
func (h *Hub) handleDisconnect(c *Client) {
	ctx := context.Background()

	h.rooms.Leave(ctx, c)
	if userID := c.UserID(); userID != 0 {
		h.sessions.Remove(userID, c)
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.Disconnect()
	logging.Info(ctx, "Client disconnected", zap.String("peerId", string(c.peerID)))
}

// validateOrigin checks if the request origin is in the allowed list.
// Requests without an Origin header (non-browser clients) are allowed.
func validateOrigin(r *http.Request, allowedOrigins []string) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		logging.Warn(context.Background(), "Invalid origin URL", zap.String("origin", origin), zap.Error(err))
		return err
	}

	for _, allowed := range allowedOrigins {
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return nil
		}
	}

	logging.Warn(context.Background(), "Origin not in allowed list",
		zap.String("origin", origin), zap.Strings("allowedOrigins", allowedOrigins))
	return errOriginNotAllowed
}

// Shutdown disconnects every live client.
func (h *Hub) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "Shutting down hub - closing all connections...")

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Disconnect()
	}

	logging.Info(ctx, "All connections closed", zap.Int("count", len(clients)))
	return nil
}
