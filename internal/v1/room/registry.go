package room

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
	"github.com/peergrid/messenger/internal/v1/protocol"
	"github.com/peergrid/messenger/internal/v1/types"
)

// Registry owns every active room. Rooms are created lazily on join and
// dropped as soon as the last peer leaves.
type Registry struct {
	mu     sync.Mutex
	rooms  map[types.RoomIDType]*Room
	byPeer map[types.PeerIDType]*Room
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[types.RoomIDType]*Room),
		byPeer: make(map[types.PeerIDType]*Room),
	}
}

// Join adds conn to roomID under the given display name. The joiner
// receives a user-list of the peers already present, strictly before
// those peers receive the user-joined announcement. A connection is in
// at most one room; joining while in a room leaves the old room first.
func (reg *Registry) Join(ctx context.Context, roomID types.RoomIDType, conn types.ClientConn, name types.DisplayNameType) {
	reg.Leave(ctx, conn)

	reg.mu.Lock()
	r, ok := reg.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		reg.rooms[roomID] = r
		metrics.ActiveRooms.Inc()
		logging.Info(ctx, "Creating room", zap.String("roomId", string(roomID)))
	}

	peers := make([]*member, 0, len(r.members))
	users := make([]protocol.RoomUser, 0, len(r.members))
	for peerID, m := range r.members {
		peers = append(peers, m)
		users = append(users, protocol.RoomUser{ID: string(peerID), Name: string(m.name)})
	}

	r.members[conn.PeerID()] = &member{conn: conn, name: name}
	reg.byPeer[conn.PeerID()] = r
	metrics.RoomMembers.WithLabelValues(string(roomID)).Set(float64(len(r.members)))
	reg.mu.Unlock()

	if raw, err := json.Marshal(protocol.NewUserList(users)); err == nil {
		if err := conn.Send(raw); err != nil {
			logging.Warn(ctx, "Failed to send user-list to joiner",
				zap.String("roomId", string(roomID)), zap.Error(err))
		}
	}

	joined, err := json.Marshal(protocol.NewUserJoined(string(conn.PeerID()), string(name)))
	if err != nil {
		return
	}
	for _, peer := range peers {
		if err := peer.conn.Send(joined); err != nil {
			logging.Warn(ctx, "Failed to announce joiner to peer",
				zap.String("roomId", string(roomID)), zap.Error(err))
		}
	}

	logging.Info(ctx, "Peer joined room",
		zap.String("roomId", string(roomID)),
		zap.String("peerId", string(conn.PeerID())))
}

// Leave removes conn from its room, if any, announcing user-left to the
// remaining peers. Empty rooms are dropped.
func (reg *Registry) Leave(ctx context.Context, conn types.ClientConn) {
	reg.mu.Lock()
	r, ok := reg.byPeer[conn.PeerID()]
	if !ok {
		reg.mu.Unlock()
		return
	}
	delete(reg.byPeer, conn.PeerID())
	delete(r.members, conn.PeerID())

	var remaining []*member
	if len(r.members) == 0 {
		delete(reg.rooms, r.id)
		metrics.ActiveRooms.Dec()
		metrics.RoomMembers.DeleteLabelValues(string(r.id))
		logging.Info(ctx, "Dropping empty room", zap.String("roomId", string(r.id)))
	} else {
		remaining = make([]*member, 0, len(r.members))
		for _, m := range r.members {
			remaining = append(remaining, m)
		}
		metrics.RoomMembers.WithLabelValues(string(r.id)).Set(float64(len(r.members)))
	}
	reg.mu.Unlock()

	left, err := json.Marshal(protocol.NewUserLeft(string(conn.PeerID())))
	if err != nil {
		return
	}
	for _, peer := range remaining {
		if err := peer.conn.Send(left); err != nil {
			logging.Warn(ctx, "Failed to announce departure to peer",
				zap.String("roomId", string(r.id)), zap.Error(err))
		}
	}
}

// Relay forwards an offer, answer, or ice-candidate from conn to the
// peer identified by targetID in the same room. The outbound frame
// carries the sender's peer id; the payload is not inspected.
func (reg *Registry) Relay(ctx context.Context, conn types.ClientConn, frameType string, targetID types.PeerIDType, payload json.RawMessage) error {
	reg.mu.Lock()
	r, ok := reg.byPeer[conn.PeerID()]
	if !ok {
		reg.mu.Unlock()
		return ErrNotInRoom
	}
	target, ok := r.members[targetID]
	if !ok {
		reg.mu.Unlock()
		return ErrTargetNotFound
	}
	reg.mu.Unlock()

	raw, err := relayFrame(frameType, conn.PeerID(), payload)
	if err != nil {
		return err
	}
	if err := target.conn.Send(raw); err != nil {
		logging.Warn(ctx, "Failed to relay frame",
			zap.String("frameType", frameType),
			zap.String("targetId", string(targetID)), zap.Error(err))
	}
	return nil
}

// RoomOf returns the id of the room conn is in, or "" when not in one.
func (reg *Registry) RoomOf(conn types.ClientConn) types.RoomIDType {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.byPeer[conn.PeerID()]; ok {
		return r.id
	}
	return ""
}

// Len reports the number of active rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
