package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateMessageDeliveredOnline(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	alice := newIdleClient(h, "peer-a")
	registerUser(t, h, alice, "alice")
	bob := newIdleClient(h, "peer-b")
	registerUser(t, h, bob, "bobby")

	h.dispatch(ctx, alice, []byte(`{"type":"private_message","sender_id":1,"receiver_id":2,"content":"hi"}`))

	// Receiver gets the live push as a bare frame.
	push := lastFrame(t, bob)
	assert.Equal(t, "private_message", push["type"])
	assert.Equal(t, float64(1), push["sender_id"])
	assert.Equal(t, float64(2), push["receiver_id"])
	assert.Equal(t, "hi", push["content"])
	assert.Equal(t, false, push["is_group"])
	assert.NotContains(t, push, "status")

	// Sender gets the confirmation envelope.
	echo := lastFrame(t, alice)
	require.Equal(t, "message_sent", echo["type"])
	assert.Equal(t, "success", echo["status"])

	// The store recorded the delivery.
	msg, err := h.store.GetMessage(ctx, 1)
	require.NoError(t, err)
	assert.True(t, msg.IsDelivered)
	assert.NotNil(t, msg.DeliveredAt)
}

func TestPrivateMessageOfflineReceiver(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	alice := newIdleClient(h, "peer-a")
	registerUser(t, h, alice, "alice")
	bob := newIdleClient(h, "peer-b")
	registerUser(t, h, bob, "bobby")
	bob.Disconnect()
	h.handleDisconnect(bob)

	h.dispatch(ctx, alice, []byte(`{"type":"private_message","sender_id":1,"receiver_id":2,"content":"hi"}`))

	// Sender still gets message_sent; the message stays undelivered.
	echo := lastFrame(t, alice)
	assert.Equal(t, "message_sent", echo["type"])

	msg, err := h.store.GetMessage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, msg.IsDelivered)
	assert.Nil(t, msg.DeliveredAt)
}

func TestPrivateMessageDeadConnectionPurged(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	alice := newIdleClient(h, "peer-a")
	registerUser(t, h, alice, "alice")
	bob := newIdleClient(h, "peer-b")
	registerUser(t, h, bob, "bobby")

	// Closed without cleanup: the registry still holds the dead binding.
	bob.Disconnect()
	require.NotNil(t, h.sessions.Lookup(2))

	h.dispatch(ctx, alice, []byte(`{"type":"private_message","sender_id":1,"receiver_id":2,"content":"hi"}`))

	msg, err := h.store.GetMessage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, msg.IsDelivered)
	assert.Nil(t, h.sessions.Lookup(2), "dead binding should be lazily purged")
}

func TestGroupMessageFanOut(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	alice := newIdleClient(h, "peer-a")
	registerUser(t, h, alice, "alice")
	bob := newIdleClient(h, "peer-b")
	registerUser(t, h, bob, "bobby")
	carol := newIdleClient(h, "peer-c")
	registerUser(t, h, carol, "carol")

	h.dispatch(ctx, alice, []byte(`{"type":"create_group","name":"team chat","members":[2]}`))
	require.Equal(t, "group_created", lastFrame(t, alice)["type"])

	h.dispatch(ctx, alice, []byte(`{"type":"group_message","group_id":1,"content":"hi all"}`))

	// The member gets the push, the non-member gets nothing, the sender
	// gets only the confirmation.
	push := lastFrame(t, bob)
	assert.Equal(t, "group_message", push["type"])
	assert.Equal(t, float64(1), push["group_id"])
	assert.Equal(t, "hi all", push["content"])
	assert.Equal(t, true, push["is_group"])

	assert.Empty(t, sentFrames(carol))

	echo := lastFrame(t, alice)
	assert.Equal(t, "message_sent", echo["type"])
}

func TestGroupMessageFromNonMember(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	alice := newIdleClient(h, "peer-a")
	registerUser(t, h, alice, "alice")
	bob := newIdleClient(h, "peer-b")
	registerUser(t, h, bob, "bobby")

	h.dispatch(ctx, alice, []byte(`{"type":"create_group","name":"team chat","members":[1]}`))
	require.Equal(t, "group_created", lastFrame(t, alice)["type"])

	h.dispatch(ctx, bob, []byte(`{"type":"group_message","group_id":1,"content":"hi"}`))
	assert.Equal(t, "Not a member of this group", lastFrame(t, bob)["message"])
}
