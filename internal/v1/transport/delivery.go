package transport

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
	"github.com/peergrid/messenger/internal/v1/protocol"
	"github.com/peergrid/messenger/internal/v1/store"
	"github.com/peergrid/messenger/internal/v1/types"
)

// deliverPrivate pushes a persisted private message to the receiver if they
// are online and records the delivery. An offline receiver leaves the
// message undelivered; a failed send additionally purges the dead session
// binding. Delivery failures never fail the sender's request.
func (h *Hub) deliverPrivate(ctx context.Context, msg *store.Message) {
	receiverID := types.UserIDType(msg.ReceiverID)
	receiver := h.sessions.Lookup(receiverID)
	if receiver == nil {
		metrics.PrivateDeliveries.WithLabelValues("offline").Inc()
		return
	}

	raw, err := json.Marshal(protocol.PrivateMessagePush{
		Type:       protocol.TypePrivateMessage,
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt.UTC().Format(time.RFC3339),
		IsGroup:    false,
	})
	if err != nil {
		logging.Error(ctx, "Failed to encode private message push", zap.Error(err))
		return
	}

	if err := receiver.Send(raw); err != nil {
		metrics.PrivateDeliveries.WithLabelValues("send_failed").Inc()
		h.sessions.Remove(receiverID, receiver)
		logging.Warn(ctx, "Receiver connection dead, leaving message undelivered",
			zap.Int64("receiverId", msg.ReceiverID), zap.Error(err))
		return
	}

	if err := h.store.MarkDelivered(ctx, msg.ID, time.Now().UTC()); err != nil {
		logging.Error(ctx, "Failed to record delivery",
			zap.Int64("messageId", msg.ID), zap.Error(err))
		return
	}
	metrics.PrivateDeliveries.WithLabelValues("delivered").Inc()
}

// fanOutGroupMessage pushes a persisted group message to every online
// member except the sender.
func (h *Hub) fanOutGroupMessage(ctx context.Context, msg *store.Message) {
	memberIDs, err := h.store.ListGroupMemberIDs(ctx, msg.GroupID)
	if err != nil {
		logging.Error(ctx, "Failed to load group members for fan-out",
			zap.Int64("groupId", msg.GroupID), zap.Error(err))
		return
	}

	raw, err := json.Marshal(protocol.GroupMessagePush{
		Type:      protocol.TypeGroupMessage,
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		GroupID:   msg.GroupID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
		IsGroup:   true,
	})
	if err != nil {
		logging.Error(ctx, "Failed to encode group message push", zap.Error(err))
		return
	}

	for _, memberID := range memberIDs {
		if memberID == msg.SenderID {
			continue
		}
		member := h.sessions.Lookup(types.UserIDType(memberID))
		if member == nil {
			continue
		}
		if err := member.Send(raw); err != nil {
			h.sessions.Remove(types.UserIDType(memberID), member)
			logging.Warn(ctx, "Group member connection dead",
				zap.Int64("memberId", memberID), zap.Error(err))
		}
	}
}
