package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Store, username, email string) *User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), username, email, "aa", "bb")
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "a@x.test", "deadbeef", "cafebabe")
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.test", u.Email)
	assert.Equal(t, "deadbeef", u.Salt)
	assert.Equal(t, "cafebabe", u.PasswordHash)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestCreateUser_Conflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "alice", "a@x.test")

	_, err := s.CreateUser(ctx, "alice", "other@x.test", "aa", "bb")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.CreateUser(ctx, "bob", "a@x.test", "aa", "bb")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUserByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := mustCreateUser(t, s, "alice", "a@x.test")

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	bob := mustCreateUser(t, s, "bobby", "b@x.test")

	c, err := s.AddContact(ctx, alice.ID, bob.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, c.UserID)
	assert.Equal(t, bob.ID, c.ContactID)
	assert.Equal(t, StatusApproved, c.Status)

	_, err = s.AddContact(ctx, alice.ID, bob.ID, StatusPending)
	assert.ErrorIs(t, err, ErrContactExists)

	_, err = s.AddContact(ctx, alice.ID, alice.ID, StatusApproved)
	assert.ErrorIs(t, err, ErrSelfContact)

	_, err = s.AddContact(ctx, alice.ID, bob.ID, ContactStatus("friendzoned"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListContacts_Directed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	bob := mustCreateUser(t, s, "bobby", "b@x.test")
	carol := mustCreateUser(t, s, "carol", "c@x.test")

	_, err := s.AddContact(ctx, alice.ID, bob.ID, StatusApproved)
	require.NoError(t, err)
	_, err = s.AddContact(ctx, alice.ID, carol.ID, StatusPending)
	require.NoError(t, err)
	// Reverse direction must not show up in alice's list.
	_, err = s.AddContact(ctx, bob.ID, alice.ID, StatusApproved)
	require.NoError(t, err)

	rows, err := s.ListContacts(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, bob.ID, rows[0].ContactID)
	assert.Equal(t, "bobby", rows[0].Username)
	assert.Equal(t, StatusApproved, rows[0].Status)
	assert.Equal(t, carol.ID, rows[1].ContactID)
	assert.Equal(t, StatusPending, rows[1].Status)

	empty, err := s.ListContacts(ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateGroup_EnrollsCreatorAndMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	bob := mustCreateUser(t, s, "bobby", "b@x.test")

	g, err := s.CreateGroup(ctx, "team chat", alice.ID, []int64{bob.ID})
	require.NoError(t, err)
	assert.Equal(t, "team chat", g.Name)
	assert.Equal(t, alice.ID, g.CreatorID)

	ids, err := s.ListGroupMemberIDs(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, bob.ID}, ids)

	// Creator listed in memberIDs must not produce a duplicate row.
	g2, err := s.CreateGroup(ctx, "team two", alice.ID, []int64{alice.ID, bob.ID})
	require.NoError(t, err)
	ids2, err := s.ListGroupMemberIDs(ctx, g2.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, bob.ID}, ids2)
}

func TestCreateGroup_Atomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")

	// Member id 999 violates the foreign key, so the whole transaction
	// must roll back, including the group row.
	_, err := s.CreateGroup(ctx, "doomed group", alice.ID, []int64{999})
	require.Error(t, err)

	groups, err := s.ListGroupsForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, groups, "failed group creation must not persist anything")
}

func TestListGroupsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	bob := mustCreateUser(t, s, "bobby", "b@x.test")

	g1, err := s.CreateGroup(ctx, "alpha", alice.ID, []int64{bob.ID})
	require.NoError(t, err)
	_, err = s.CreateGroup(ctx, "beta", bob.ID, nil)
	require.NoError(t, err)

	groups, err := s.ListGroupsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g1.ID, groups[0].ID)

	ok, err := s.IsGroupMember(ctx, g1.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsGroupMember(ctx, g1.ID, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreatePrivateMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	bob := mustCreateUser(t, s, "bobby", "b@x.test")

	m, err := s.CreatePrivateMessage(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)

	assert.Equal(t, "hi", m.Content)
	assert.Equal(t, alice.ID, m.SenderID)
	assert.Equal(t, bob.ID, m.ReceiverID)
	assert.False(t, m.IsGroup)
	assert.False(t, m.IsDelivered)
	assert.Nil(t, m.DeliveredAt)
}

func TestMarkDelivered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	bob := mustCreateUser(t, s, "bobby", "b@x.test")

	m, err := s.CreatePrivateMessage(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, s.MarkDelivered(ctx, m.ID, at))

	got, err := s.GetMessage(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDelivered)
	require.NotNil(t, got.DeliveredAt)
	assert.WithinDuration(t, at, *got.DeliveredAt, time.Second)

	assert.ErrorIs(t, s.MarkDelivered(ctx, 999, at), ErrMessageNotFound)
}

func TestCreateGroupMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "a@x.test")
	g, err := s.CreateGroup(ctx, "alpha", alice.ID, nil)
	require.NoError(t, err)

	m, err := s.CreateGroupMessage(ctx, alice.ID, g.ID, "hello group")
	require.NoError(t, err)

	assert.True(t, m.IsGroup)
	assert.Equal(t, g.ID, m.GroupID)
	assert.Zero(t, m.ReceiverID)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
