package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the standard outbound response frame. Relay and room frames
// bypass it and go out as bare JSON objects.
type Envelope struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Success encodes a success envelope of the given type. Data may be nil.
func Success(frameType string, data any) ([]byte, error) {
	out, err := json.Marshal(Envelope{
		Type:      frameType,
		Status:    "success",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", frameType, err)
	}
	return out, nil
}

// Failure encodes an error envelope carrying a human-readable message.
func Failure(message string) []byte {
	out, err := json.Marshal(Envelope{
		Type:      TypeError,
		Status:    "error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   message,
	})
	if err != nil {
		// An Envelope of plain strings cannot fail to marshal.
		panic(fmt.Sprintf("failed to encode error envelope: %v", err))
	}
	return out
}

// RoomUser is one entry of a user-list frame.
type RoomUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserListFrame is sent to a joiner, listing the peers already in the room.
type UserListFrame struct {
	Type  string     `json:"type"`
	Users []RoomUser `json:"users"`
}

// NewUserList builds a user-list frame. Users must be non-nil so an empty
// room encodes as [] rather than null.
func NewUserList(users []RoomUser) UserListFrame {
	if users == nil {
		users = []RoomUser{}
	}
	return UserListFrame{Type: TypeUserList, Users: users}
}

// UserJoinedFrame announces a new peer to the rest of the room.
type UserJoinedFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// NewUserJoined builds a user-joined frame.
func NewUserJoined(peerID, name string) UserJoinedFrame {
	return UserJoinedFrame{Type: TypeUserJoined, UserID: peerID, Name: name}
}

// UserLeftFrame announces a departed peer to the rest of the room.
type UserLeftFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// NewUserLeft builds a user-left frame.
func NewUserLeft(peerID string) UserLeftFrame {
	return UserLeftFrame{Type: TypeUserLeft, UserID: peerID}
}

// RelayFrame is an offer, answer, or ice-candidate forwarded to its target
// with target_id rewritten to the sender's peer id. Exactly one payload
// field is set, matching Type.
type RelayFrame struct {
	Type      string          `json:"type"`
	SenderID  string          `json:"sender_id"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// PrivateMessagePush is the live frame delivered to an online receiver.
type PrivateMessagePush struct {
	Type       string `json:"type"`
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	IsGroup    bool   `json:"is_group"`
}

// GroupMessagePush is the live frame fanned out to online group members.
type GroupMessagePush struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	SenderID  int64  `json:"sender_id"`
	GroupID   int64  `json:"group_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	IsGroup   bool   `json:"is_group"`
}

// ContactEntry is one row of a user_contacts frame.
type ContactEntry struct {
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
	CustomNickname string `json:"custom_nickname,omitempty"`
	Status         string `json:"status"`
}

// GroupEntry is one group row of a user_contacts frame.
type GroupEntry struct {
	GroupID   int64  `json:"group_id"`
	GroupName string `json:"group_name"`
	Status    string `json:"status"`
}

// UserContactsFrame carries the caller's contact and group lists. It is a
// bare frame without the status/timestamp envelope.
type UserContactsFrame struct {
	Type     string         `json:"type"`
	Contacts []ContactEntry `json:"contacts"`
	Groups   []GroupEntry   `json:"groups"`
}

// NewUserContacts builds a user_contacts frame with non-nil slices so
// empty lists encode as [].
func NewUserContacts(contacts []ContactEntry, groups []GroupEntry) UserContactsFrame {
	if contacts == nil {
		contacts = []ContactEntry{}
	}
	if groups == nil {
		groups = []GroupEntry{}
	}
	return UserContactsFrame{Type: TypeUserContacts, Contacts: contacts, Groups: groups}
}
