package store

import "time"

// ContactStatus is the lifecycle state of a directed contact relation.
type ContactStatus string

const (
	StatusPending  ContactStatus = "pending"
	StatusApproved ContactStatus = "approved"
	StatusBlocked  ContactStatus = "blocked"
	StatusDeleted  ContactStatus = "deleted"
)

// Valid reports whether s is one of the recognised contact states.
func (s ContactStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusBlocked, StatusDeleted:
		return true
	}
	return false
}

// User is a registered account. PasswordHash and Salt never leave the server.
type User struct {
	ID           int64
	Username     string
	Nickname     string // optional, empty when unset
	Email        string
	PasswordHash string
	Salt         string // hex-encoded
	CreatedAt    time.Time
}

// Contact is one directed row of the user contact graph.
type Contact struct {
	ID             int64
	UserID         int64
	ContactID      int64
	CustomNickname string
	Status         ContactStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ContactRow is a contact joined with the target user's username, as
// returned to clients in the user_contacts response.
type ContactRow struct {
	ContactID      int64
	Username       string
	CustomNickname string
	Status         ContactStatus
}

// Group is a named chat group.
type Group struct {
	ID        int64
	Name      string
	CreatorID int64
	CreatedAt time.Time
}

// Message is one persisted chat message. Exactly one of ReceiverID /
// GroupID is set; IsDelivered and DeliveredAt apply to private messages.
type Message struct {
	ID          int64
	Content     string
	IsGroup     bool
	SenderID    int64
	ReceiverID  int64 // 0 for group messages
	GroupID     int64 // 0 for private messages
	IsDelivered bool
	DeliveredAt *time.Time
	CreatedAt   time.Time
}
