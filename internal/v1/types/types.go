package types

// --- Core Domain Types ---

// UserIDType is the stable identifier of a registered user.
type UserIDType int64

// PeerIDType identifies a single live connection inside a room. It is
// distinct from the user ID: the same user reconnecting gets a new peer ID.
type PeerIDType string

// RoomIDType identifies a signaling room.
type RoomIDType string

// DisplayNameType is the human-readable name a client presents in a room.
type DisplayNameType string

// ConnState tracks the per-connection lifecycle.
type ConnState int32

const (
	// StateConnected is the initial state: the transport is up but the
	// client has not authenticated yet. Only register/login are legal.
	StateConnected ConnState = iota
	// StateAuthorized means a user identity is bound to the connection.
	StateAuthorized
	// StateClosed means the transport terminated and cleanup ran.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthorized:
		return "authorized"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ClientConn is the behavior the registries need from a live connection.
// It decouples the session and room packages from the transport package.
type ClientConn interface {
	PeerID() PeerIDType
	UserID() UserIDType
	DisplayName() DisplayNameType
	// Send queues an encoded frame for transmission. It returns an error
	// when the connection is closed or its send buffer is full, so callers
	// can treat the connection as dead.
	Send(data []byte) error
	// Disconnect forcefully closes the connection (e.g. on eviction).
	Disconnect()
}
