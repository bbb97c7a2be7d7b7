package transport

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/peergrid/messenger/internal/v1/auth"
	"github.com/peergrid/messenger/internal/v1/store"
	"github.com/peergrid/messenger/internal/v1/types"
)

// fakeSocket scripts inbound frames and records outbound writes for pump
// tests.
type fakeSocket struct {
	mu      sync.Mutex
	inbound chan []byte
	written [][]byte
	closed  bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{inbound: make(chan []byte, 16)}
}

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbound
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return websocket.TextMessage, data, nil
}

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	f.written = append(f.written, data)
	return nil
}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeSocket) writtenFrames() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.written))
	for _, raw := range f.written {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// newTestHub builds a hub over an in-memory database with a cheap hash
// cost.
func newTestHub(t *testing.T) *Hub {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewHub(st, auth.NewHasher(1), nil, []string{"http://localhost:3000"})
}

// newIdleClient creates a registered client whose pumps are not running,
// so outbound frames accumulate in the send buffer for inspection.
func newIdleClient(h *Hub, peerID string) *Client {
	c := newClient(h, newFakeSocket(), types.PeerIDType(peerID))
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// sentFrames drains and decodes everything queued on the client.
func sentFrames(c *Client) []map[string]any {
	var out []map[string]any
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return out
			}
			var m map[string]any
			if err := json.Unmarshal(raw, &m); err == nil {
				out = append(out, m)
			}
		default:
			return out
		}
	}
}

func lastFrame(t *testing.T, c *Client) map[string]any {
	t.Helper()
	frames := sentFrames(c)
	require.NotEmpty(t, frames)
	return frames[len(frames)-1]
}
