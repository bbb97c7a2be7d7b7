package transport

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/auth"
	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/protocol"
	"github.com/peergrid/messenger/internal/v1/room"
	"github.com/peergrid/messenger/internal/v1/store"
	"github.com/peergrid/messenger/internal/v1/types"
)

// sanitizeUser strips the credential columns before a user row goes on the
// wire.
func sanitizeUser(u *store.User) map[string]any {
	data := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if u.Nickname != "" {
		data["nickname"] = u.Nickname
	}
	return data
}

// bindSession records the user-to-connection binding, evicting and closing
// any previous connection of the same user.
func (h *Hub) bindSession(ctx context.Context, c *Client, userID types.UserIDType) {
	if evicted := h.sessions.Bind(userID, c); evicted != nil {
		_ = evicted.Send(protocol.Failure("Signed in from another location"))
		evicted.Disconnect()
		logging.Info(ctx, "Evicted previous connection on duplicate login",
			zap.Int64("userId", int64(userID)))
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client, f *protocol.Register) error {
	salt, err := auth.NewSalt()
	if err != nil {
		return fmt.Errorf("Server error: %v", err)
	}
	hash := h.hasher.Hash(f.Password, salt)

	user, err := h.store.CreateUser(ctx, f.Username, f.Email, hex.EncodeToString(salt), hash)
	if err != nil {
		return err
	}

	h.bindSession(ctx, c, types.UserIDType(user.ID))
	c.authorize(types.UserIDType(user.ID), types.DisplayNameType(user.Username))

	logging.Info(ctx, "User registered",
		zap.String("username", user.Username),
		zap.String("email", logging.RedactEmail(user.Email)))

	raw, err := protocol.Success(protocol.TypeAuthSuccess, sanitizeUser(user))
	if err != nil {
		return err
	}
	return c.Send(raw)
}

func (h *Hub) handleLogin(ctx context.Context, c *Client, f *protocol.Login) error {
	// The same response for a missing user and a wrong password, so login
	// probing cannot enumerate accounts.
	user, err := h.store.GetUserByUsername(ctx, f.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return errors.New("Invalid credentials")
		}
		return err
	}
	if !h.hasher.Verify(f.Password, user.Salt, user.PasswordHash) {
		return errors.New("Invalid credentials")
	}

	h.bindSession(ctx, c, types.UserIDType(user.ID))
	c.authorize(types.UserIDType(user.ID), types.DisplayNameType(user.Username))

	logging.Info(ctx, "User logged in", zap.String("username", user.Username))

	raw, err := protocol.Success(protocol.TypeAuthSuccess, sanitizeUser(user))
	if err != nil {
		return err
	}
	return c.Send(raw)
}

func (h *Hub) handleCreateGroup(ctx context.Context, c *Client, f *protocol.CreateGroup) error {
	group, err := h.store.CreateGroup(ctx, f.Name, int64(c.UserID()), f.Members)
	if err != nil {
		return err
	}

	raw, err := protocol.Success(protocol.TypeGroupCreated, map[string]any{
		"id":         group.ID,
		"name":       group.Name,
		"creator_id": group.CreatorID,
		"created_at": group.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return c.Send(raw)
}

func (h *Hub) handleGetUserContacts(ctx context.Context, c *Client) error {
	userID := int64(c.UserID())

	rows, err := h.store.ListContacts(ctx, userID)
	if err != nil {
		return err
	}
	contacts := make([]protocol.ContactEntry, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, protocol.ContactEntry{
			UserID:         r.ContactID,
			UserName:       r.Username,
			CustomNickname: r.CustomNickname,
			Status:         string(r.Status),
		})
	}

	groupRows, err := h.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return err
	}
	groups := make([]protocol.GroupEntry, 0, len(groupRows))
	for _, g := range groupRows {
		groups = append(groups, protocol.GroupEntry{
			GroupID:   g.ID,
			GroupName: g.Name,
			Status:    "member",
		})
	}

	raw, err := json.Marshal(protocol.NewUserContacts(contacts, groups))
	if err != nil {
		return err
	}
	return c.Send(raw)
}

func (h *Hub) handlePrivateMessage(ctx context.Context, c *Client, f *protocol.PrivateMessage) error {
	// The connection's bound identity is authoritative; the sender_id field
	// is not trusted.
	msg, err := h.store.CreatePrivateMessage(ctx, int64(c.UserID()), f.ReceiverID, f.Content)
	if err != nil {
		return err
	}

	h.deliverPrivate(ctx, msg)

	raw, err := protocol.Success(protocol.TypeMessageSent, map[string]any{
		"id":          msg.ID,
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
		"content":     msg.Content,
	})
	if err != nil {
		return err
	}
	return c.Send(raw)
}

func (h *Hub) handleGroupMessage(ctx context.Context, c *Client, f *protocol.GroupMessage) error {
	senderID := int64(c.UserID())

	ok, err := h.store.IsGroupMember(ctx, f.GroupID, senderID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("Not a member of this group")
	}

	msg, err := h.store.CreateGroupMessage(ctx, senderID, f.GroupID, f.Content)
	if err != nil {
		return err
	}

	h.fanOutGroupMessage(ctx, msg)

	raw, err := protocol.Success(protocol.TypeMessageSent, map[string]any{
		"id":       msg.ID,
		"group_id": msg.GroupID,
		"content":  msg.Content,
	})
	if err != nil {
		return err
	}
	return c.Send(raw)
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, f *protocol.Join) error {
	c.setDisplayName(types.DisplayNameType(f.Name))
	h.rooms.Join(ctx, types.RoomIDType(f.RoomID), c, types.DisplayNameType(f.Name))
	return nil
}

func (h *Hub) handleLeave(ctx context.Context, c *Client) error {
	if h.rooms.RoomOf(c) == "" {
		return room.ErrNotInRoom
	}
	h.rooms.Leave(ctx, c)
	return nil
}

func (h *Hub) handleCreateRoom(ctx context.Context, c *Client, f *protocol.CreateRoom) error {
	roomID := f.RoomID
	if roomID == "" {
		roomID = uuid.NewString()
	}

	raw, err := protocol.Success(protocol.TypeCreateRoom, map[string]any{"room_id": roomID})
	if err != nil {
		return err
	}
	if err := c.Send(raw); err != nil {
		return err
	}

	c.setDisplayName(types.DisplayNameType(f.Name))
	h.rooms.Join(ctx, types.RoomIDType(roomID), c, types.DisplayNameType(f.Name))
	return nil
}
