// Package protocol implements the JSON wire codec: inbound frame decoding
// with per-type schema validation, and outbound envelope encoding.
package protocol

import "encoding/json"

// Inbound frame types.
const (
	TypeRegister        = "register"
	TypeLogin           = "login"
	TypeCreateGroup     = "create_group"
	TypePrivateMessage  = "private_message"
	TypeGroupMessage    = "group_message"
	TypeGetUserContacts = "get_user_contacts"
	TypeJoin            = "join"
	TypeOffer           = "offer"
	TypeAnswer          = "answer"
	TypeICECandidate    = "ice-candidate"
	TypeLeave           = "leave"
	TypeCreateRoom      = "create-room"
)

// Outbound frame types.
const (
	TypeAuthSuccess  = "auth_success"
	TypeError        = "error"
	TypeUserContacts = "user_contacts"
	TypeUserList     = "user-list"
	TypeUserJoined   = "user-joined"
	TypeUserLeft     = "user-left"
	TypeMessageSent  = "message_sent"
	TypeGroupCreated = "group_created"
)

// Frame is any decoded inbound message.
type Frame interface {
	FrameType() string
}

// Register creates a new account.
type Register struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required"`
}

func (Register) FrameType() string { return TypeRegister }

// Login authenticates an existing account.
type Login struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

func (Login) FrameType() string { return TypeLogin }

// CreateGroup creates a chat group with an initial member list.
type CreateGroup struct {
	Name    string  `json:"name" validate:"required,min=3,max=50"`
	Members []int64 `json:"members" validate:"required"`
}

func (CreateGroup) FrameType() string { return TypeCreateGroup }

// PrivateMessage sends a message to a single user.
type PrivateMessage struct {
	SenderID   int64  `json:"sender_id" validate:"required"`
	ReceiverID int64  `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=500"`
}

func (PrivateMessage) FrameType() string { return TypePrivateMessage }

// GroupMessage sends a message to every member of a group.
type GroupMessage struct {
	GroupID int64  `json:"group_id" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}

func (GroupMessage) FrameType() string { return TypeGroupMessage }

// GetUserContacts requests the caller's contact and group lists.
type GetUserContacts struct{}

func (GetUserContacts) FrameType() string { return TypeGetUserContacts }

// Join enters a signaling room under a display name.
type Join struct {
	RoomID string `json:"room_id" validate:"required,max=64"`
	Name   string `json:"name" validate:"required,max=50"`
}

func (Join) FrameType() string { return TypeJoin }

// Offer relays an SDP offer to a peer in the same room. The SDP payload
// is opaque to the server.
type Offer struct {
	TargetID string          `json:"target_id" validate:"required"`
	Offer    json.RawMessage `json:"offer" validate:"required"`
}

func (Offer) FrameType() string { return TypeOffer }

// Answer relays an SDP answer to a peer in the same room.
type Answer struct {
	TargetID string          `json:"target_id" validate:"required"`
	Answer   json.RawMessage `json:"answer" validate:"required"`
}

func (Answer) FrameType() string { return TypeAnswer }

// ICECandidate relays an ICE candidate to a peer in the same room. The
// candidate object is opaque to the server.
type ICECandidate struct {
	TargetID  string          `json:"target_id" validate:"required"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

func (ICECandidate) FrameType() string { return TypeICECandidate }

// Leave exits the current signaling room.
type Leave struct{}

func (Leave) FrameType() string { return TypeLeave }

// CreateRoom creates a signaling room and joins it. An empty RoomID asks
// the server to generate one.
type CreateRoom struct {
	RoomID string `json:"room_id" validate:"omitempty,max=64"`
	Name   string `json:"name" validate:"required,max=50"`
}

func (CreateRoom) FrameType() string { return TypeCreateRoom }
