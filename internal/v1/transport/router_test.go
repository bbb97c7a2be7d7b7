package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peergrid/messenger/internal/v1/types"
)

func TestDispatchInvalidJSON(t *testing.T) {
	h := newTestHub(t)
	c := newIdleClient(h, "peer-1")

	h.dispatch(context.Background(), c, []byte(`{broken`))

	frame := lastFrame(t, c)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "Invalid JSON format", frame["message"])
}

func TestDispatchUnknownType(t *testing.T) {
	h := newTestHub(t)
	c := newIdleClient(h, "peer-1")

	h.dispatch(context.Background(), c, []byte(`{"type":"teleport"}`))

	frame := lastFrame(t, c)
	assert.Equal(t, "Invalid message type: teleport", frame["message"])
}

func TestDispatchValidationError(t *testing.T) {
	h := newTestHub(t)
	c := newIdleClient(h, "peer-1")

	h.dispatch(context.Background(), c, []byte(`{"type":"register","username":"ab"}`))

	frame := lastFrame(t, c)
	assert.Equal(t, "error", frame["type"])
	msg := frame["message"].(string)
	assert.Contains(t, msg, "Validation error:")
	assert.Contains(t, msg, "username")
	assert.Contains(t, msg, "password")
	assert.Contains(t, msg, "email")
}

func TestAuthGate(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	gated := []string{
		`{"type":"private_message","sender_id":1,"receiver_id":2,"content":"x"}`,
		`{"type":"group_message","group_id":1,"content":"x"}`,
		`{"type":"create_group","name":"abc","members":[1]}`,
		`{"type":"get_user_contacts"}`,
		`{"type":"join","room_id":"r","name":"n"}`,
		`{"type":"offer","target_id":"p","offer":{}}`,
		`{"type":"leave"}`,
	}

	for _, raw := range gated {
		c := newIdleClient(h, "peer-gate")
		h.dispatch(ctx, c, []byte(raw))

		frames := sentFrames(c)
		require.Len(t, frames, 1, "frame: %s", raw)
		assert.Equal(t, "error", frames[0]["type"])
		assert.Equal(t, "Unauthorized", frames[0]["message"])

		// The connection survives the rejection.
		assert.Equal(t, types.StateConnected, c.State())
	}
}

func TestAuthGateAllowsRegisterAndLogin(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	c := newIdleClient(h, "peer-1")

	h.dispatch(ctx, c, []byte(`{"type":"register","username":"alice","password":"hunter2hunter","email":"a@x"}`))

	frame := lastFrame(t, c)
	assert.Equal(t, "auth_success", frame["type"])
	assert.Equal(t, types.StateAuthorized, c.State())
}
