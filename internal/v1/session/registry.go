// Package session tracks which authenticated user owns which live
// connection. One connection per user: a later login evicts the earlier
// connection.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
	"github.com/peergrid/messenger/internal/v1/types"
)

// Registry maps authenticated user IDs onto their live connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[types.UserIDType]types.ClientConn
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[types.UserIDType]types.ClientConn),
	}
}

// Bind associates userID with conn and returns the evicted previous
// connection, if any. The caller notifies and closes the evicted
// connection outside the registry lock.
func (r *Registry) Bind(userID types.UserIDType, conn types.ClientConn) types.ClientConn {
	r.mu.Lock()
	evicted := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if evicted != nil && evicted != conn {
		logging.Info(context.Background(), "Evicting previous session",
			zap.Int64("userId", int64(userID)))
	} else {
		evicted = nil
	}
	metrics.AuthorizedSessions.Set(float64(r.Len()))
	return evicted
}

// Remove drops the binding for userID, but only if it still points at
// conn. A stale connection's cleanup must not purge its successor.
func (r *Registry) Remove(userID types.UserIDType, conn types.ClientConn) {
	r.mu.Lock()
	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
	}
	r.mu.Unlock()

	metrics.AuthorizedSessions.Set(float64(r.Len()))
}

// Lookup returns the live connection for userID, or nil.
func (r *Registry) Lookup(userID types.UserIDType) types.ClientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[userID]
}

// Len reports the number of bound sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
