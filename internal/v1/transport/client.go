package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
	"github.com/peergrid/messenger/internal/v1/protocol"
	"github.com/peergrid/messenger/internal/v1/types"
)

// Send errors. Either one means the connection is dead or drowning and the
// caller should stop treating it as online.
var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// wsConnection is the subset of the gorilla connection the client uses.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
}

// Client is one live WebSocket connection. It starts in StateConnected and
// moves to StateAuthorized once register or login binds a user identity.
type Client struct {
	conn wsConnection
	hub  *Hub

	peerID types.PeerIDType

	mu          sync.RWMutex
	state       types.ConnState
	userID      types.UserIDType
	displayName types.DisplayNameType
	closed      bool

	closeOnce sync.Once
	send      chan []byte
}

func newClient(hub *Hub, conn wsConnection, peerID types.PeerIDType) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		peerID: peerID,
		state:  types.StateConnected,
		send:   make(chan []byte, 256),
	}
}

// PeerID returns the connection-scoped identifier used in rooms.
func (c *Client) PeerID() types.PeerIDType { return c.peerID }

// UserID returns the bound user id, or 0 before authorization.
func (c *Client) UserID() types.UserIDType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// DisplayName returns the name presented in rooms.
func (c *Client) DisplayName() types.DisplayNameType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayName
}

// State returns the connection lifecycle state.
func (c *Client) State() types.ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// authorize binds a user identity and moves the connection to
// StateAuthorized.
func (c *Client) authorize(userID types.UserIDType, displayName types.DisplayNameType) {
	c.mu.Lock()
	c.userID = userID
	c.displayName = displayName
	c.state = types.StateAuthorized
	c.mu.Unlock()
}

// setDisplayName updates the room-facing name without touching identity.
func (c *Client) setDisplayName(name types.DisplayNameType) {
	c.mu.Lock()
	c.displayName = name
	c.mu.Unlock()
}

// Send queues an encoded frame for the write pump. It reports an error if
// the connection is closed or its buffer is full.
func (c *Client) Send(data []byte) (err error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnClosed
	}
	c.mu.RUnlock()

	// Disconnect may close the channel between the check above and the
	// send below.
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnClosed
		}
	}()

	select {
	case c.send <- data:
		return nil
	default:
		logging.Warn(context.Background(), "Client send buffer full",
			zap.String("peerId", string(c.peerID)))
		return ErrSendBufferFull
	}
}

// Disconnect closes the send channel, which makes the write pump flush,
// send a close frame, and tear down the socket.
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.state = types.StateClosed
		c.mu.Unlock()
		close(c.send)
	})
}

// readPump reads inbound frames and hands them to the router until the
// transport fails, then runs connection cleanup.
func (c *Client) readPump() {
	defer func() {
		c.hub.handleDisconnect(c)
		_ = c.conn.Close()
		metrics.DecConnection()
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		c.hub.dispatch(context.Background(), c, data)
	}
}

// writePump serializes all writes to the socket.
func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	writeWait := 10 * time.Second

	for {
		message, ok := <-c.send
		if !ok {
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Error(context.Background(), "error writing message", zap.Error(err))
			return
		}
	}
}

// sendError emits an error envelope, ignoring transport failures; the read
// pump notices those on its own.
func (c *Client) sendError(message string) {
	_ = c.Send(protocol.Failure(message))
}
