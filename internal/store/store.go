package store

import (
	"context"
	"errors"
	"time"
)

// Status is the moderation state of a message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPublished, StatusRejected, StatusDeleted:
		return true
	}
	return false
}

// Role defines the user role in the board.
type Role string

const (
	RoleStudent Role = "alumno"
	RoleTeacher Role = "profesor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// User represents a registered board user.
type User struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash string
	Role         Role
	Theme        string
	CreatedAt    time.Time
}

// Message represents a persisted board message.
// A message is never physically removed: delete sets StatusDeleted and
// DeletedAt, keeping the record for audit.
type Message struct {
	ID        int64
	AuthorID  int64
	Author    string // display name of the author, resolved on read
	Subject   string
	Content   string
	Status    Status
	CreatedAt time.Time
	DeletedAt *time.Time
}

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional update does not match the
	// expected current state (e.g. two moderators racing on one message).
	ErrConflict = errors.New("conflicting update")
	// ErrUnavailable is returned when the backing storage cannot be reached.
	// It is distinct from ErrNotFound so callers can fail loudly on outages
	// instead of treating them as missing data.
	ErrUnavailable = errors.New("store unavailable")
)

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, name, passwordHash string, role Role) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpdateUserTheme stores the user's UI theme preference.
	UpdateUserTheme(ctx context.Context, userID int64, theme string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// InsertMessage persists a new message and fills in its ID and CreatedAt.
	InsertMessage(ctx context.Context, msg *Message) error

	// GetMessageByID retrieves a message by ID, including deleted ones.
	GetMessageByID(ctx context.Context, id int64) (*Message, error)

	// TransitionStatus conditionally moves a non-deleted message from one
	// status to another. It returns ErrConflict when the current status is
	// not `from`, so exactly one of two racing transitions wins.
	TransitionStatus(ctx context.Context, id int64, from, to Status) error

	// UpdateMessageContent replaces subject and content of a non-deleted
	// message and resets its status to pending.
	UpdateMessageContent(ctx context.Context, id int64, subject, content string) error

	// SoftDeleteMessage marks a message deleted and stamps DeletedAt.
	// Returns ErrConflict if it is already deleted.
	SoftDeleteMessage(ctx context.Context, id int64) error

	// ListMessagesByStatus returns all non-deleted messages with the given
	// status, newest first by creation order.
	ListMessagesByStatus(ctx context.Context, status Status) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close releases the underlying storage resources.
	Close() error
}
