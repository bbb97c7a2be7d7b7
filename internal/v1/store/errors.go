package store

import "errors"

var (
	// ErrUsernameTaken is returned by CreateUser when the username exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned by CreateUser when the email exists.
	ErrEmailTaken = errors.New("email already taken")
	// ErrUserNotFound is returned by lookups for a missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrGroupNotFound is returned by lookups for a missing group.
	ErrGroupNotFound = errors.New("group not found")
	// ErrMessageNotFound is returned when marking delivery of a missing message.
	ErrMessageNotFound = errors.New("message not found")
	// ErrSelfContact is returned when a user adds themselves as a contact.
	ErrSelfContact = errors.New("cannot add self as contact")
	// ErrContactExists is returned on a duplicate (user, contact) pair.
	ErrContactExists = errors.New("contact already exists")
	// ErrInvalidStatus is returned for an unrecognised contact status.
	ErrInvalidStatus = errors.New("invalid contact status")
)
