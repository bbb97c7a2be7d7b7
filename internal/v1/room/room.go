// Package room implements the signaling room registry and the relay of
// WebRTC negotiation frames between peers in the same room.
package room

import (
	"encoding/json"
	"errors"

	"github.com/peergrid/messenger/internal/v1/protocol"
	"github.com/peergrid/messenger/internal/v1/types"
)

// Relay errors; their text is safe to echo to the client.
var (
	ErrNotInRoom      = errors.New("Not in a room")
	ErrTargetNotFound = errors.New("Target peer not found")
)

// member is one peer inside a room.
type member struct {
	conn types.ClientConn
	name types.DisplayNameType
}

// Room groups the peers negotiating with each other. All mutation goes
// through the Registry, which owns the lock.
type Room struct {
	id      types.RoomIDType
	members map[types.PeerIDType]*member
}

func newRoom(id types.RoomIDType) *Room {
	return &Room{
		id:      id,
		members: make(map[types.PeerIDType]*member),
	}
}

// ID returns the room identifier.
func (r *Room) ID() types.RoomIDType { return r.id }

// relayFrame builds the outbound frame for an offer, answer, or
// ice-candidate with sender_id in place of the inbound target_id. The
// payload is passed through opaquely.
func relayFrame(frameType string, senderID types.PeerIDType, payload json.RawMessage) ([]byte, error) {
	frame := protocol.RelayFrame{
		Type:     frameType,
		SenderID: string(senderID),
	}
	switch frameType {
	case protocol.TypeOffer:
		frame.Offer = payload
	case protocol.TypeAnswer:
		frame.Answer = payload
	case protocol.TypeICECandidate:
		frame.Candidate = payload
	default:
		return nil, errors.New("not a relay frame type: " + frameType)
	}
	return json.Marshal(frame)
}
