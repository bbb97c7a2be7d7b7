package transport

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
	"github.com/peergrid/messenger/internal/v1/protocol"
	"github.com/peergrid/messenger/internal/v1/types"
)

// preAuthTypes are the only frame types legal before authorization.
var preAuthTypes = map[string]bool{
	protocol.TypeRegister: true,
	protocol.TypeLogin:    true,
}

// dispatch processes one inbound frame: decode, state gate, handler. Every
// failure becomes an error envelope on the originating connection; the
// connection itself stays open.
func (h *Hub) dispatch(ctx context.Context, c *Client, raw []byte) {
	frame, err := protocol.Decode(raw)
	if err != nil {
		metrics.FramesTotal.WithLabelValues("invalid", "error").Inc()
		c.sendError(err.Error())
		return
	}

	frameType := frame.FrameType()
	timer := prometheus.NewTimer(metrics.FrameProcessingDuration.WithLabelValues(frameType))
	defer timer.ObserveDuration()

	if !preAuthTypes[frameType] && c.State() != types.StateAuthorized {
		metrics.FramesTotal.WithLabelValues(frameType, "unauthorized").Inc()
		c.sendError("Unauthorized")
		return
	}

	if err := h.handleFrame(ctx, c, frame); err != nil {
		metrics.FramesTotal.WithLabelValues(frameType, "error").Inc()
		logging.Warn(ctx, "Frame handling failed",
			zap.String("frameType", frameType),
			zap.String("peerId", string(c.peerID)),
			zap.Error(err))
		c.sendError(err.Error())
		return
	}
	metrics.FramesTotal.WithLabelValues(frameType, "success").Inc()
}

// handleFrame routes a decoded frame to its handler. The returned error
// text is wire-visible.
func (h *Hub) handleFrame(ctx context.Context, c *Client, frame protocol.Frame) (err error) {
	// A handler panic must not take the connection down with it.
	defer func() {
		if r := recover(); r != nil {
			logging.Error(ctx, "Recovered from handler panic",
				zap.String("frameType", frame.FrameType()), zap.Any("panic", r))
			err = fmt.Errorf("Server error: %v", r)
		}
	}()

	switch f := frame.(type) {
	case *protocol.Register:
		return h.handleRegister(ctx, c, f)
	case *protocol.Login:
		return h.handleLogin(ctx, c, f)
	case *protocol.CreateGroup:
		return h.handleCreateGroup(ctx, c, f)
	case *protocol.PrivateMessage:
		return h.handlePrivateMessage(ctx, c, f)
	case *protocol.GroupMessage:
		return h.handleGroupMessage(ctx, c, f)
	case *protocol.GetUserContacts:
		return h.handleGetUserContacts(ctx, c)
	case *protocol.Join:
		return h.handleJoin(ctx, c, f)
	case *protocol.Leave:
		return h.handleLeave(ctx, c)
	case *protocol.Offer:
		return h.rooms.Relay(ctx, c, protocol.TypeOffer, types.PeerIDType(f.TargetID), f.Offer)
	case *protocol.Answer:
		return h.rooms.Relay(ctx, c, protocol.TypeAnswer, types.PeerIDType(f.TargetID), f.Answer)
	case *protocol.ICECandidate:
		return h.rooms.Relay(ctx, c, protocol.TypeICECandidate, types.PeerIDType(f.TargetID), f.Candidate)
	case *protocol.CreateRoom:
		return h.handleCreateRoom(ctx, c, f)
	default:
		return fmt.Errorf("Unhandled message type: %s", frame.FrameType())
	}
}
