package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tablon-server/internal/store"
)

// Schema for the board tables. Applied on open; CREATE TABLE IF NOT EXISTS
// keeps reopening an existing database harmless.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'alumno',
	theme         TEXT NOT NULL DEFAULT 'light',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id  INTEGER NOT NULL,
	subject    TEXT NOT NULL,
	content    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at DATETIME,
	FOREIGN KEY (author_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_status ON messages(status, id DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply an alternative schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// wrap maps driver failures onto the store error taxonomy: missing rows become
// store.ErrNotFound, anything else store.ErrUnavailable.
func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %v: %w", op, err, store.ErrUnavailable)
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, name, passwordHash string, role store.Role) (*store.User, error) {
	query := `
		INSERT INTO users (username, name, password_hash, role)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, name, passwordHash, role)
	if err != nil {
		return nil, wrap("insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, wrap("get last insert id", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, name, password_hash, role, theme, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, name, password_hash, role, theme, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.Theme,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, wrap("query user", err)
	}
	return &user, nil
}

// UpdateUserTheme stores the user's UI theme preference.
func (s *SQLiteStore) UpdateUserTheme(ctx context.Context, userID int64, theme string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET theme = ? WHERE id = ?`, theme, userID)
	if err != nil {
		return wrap("update theme", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap("update theme", err)
	}
	if affected == 0 {
		return fmt.Errorf("update theme: %w", store.ErrNotFound)
	}
	return nil
}

// ==== MessageStore implementation ====

// InsertMessage persists a new message and fills in its ID and CreatedAt.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *store.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO messages (author_id, subject, content, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.AuthorID, msg.Subject, msg.Content, msg.Status, msg.CreatedAt)
	if err != nil {
		return wrap("insert message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return wrap("get last insert id", err)
	}
	msg.ID = id
	return nil
}

// GetMessageByID retrieves a message by ID, including deleted ones.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT m.id, m.author_id, u.name, m.subject, m.content, m.status, m.created_at, m.deleted_at
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.id = ?
	`
	var msg store.Message
	var deletedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.AuthorID,
		&msg.Author,
		&msg.Subject,
		&msg.Content,
		&msg.Status,
		&msg.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, wrap("query message", err)
	}
	if deletedAt.Valid {
		msg.DeletedAt = &deletedAt.Time
	}
	return &msg, nil
}

// TransitionStatus conditionally moves a non-deleted message from one status
// to another. The WHERE clause carries the expected current status, so of two
// racing moderators exactly one UPDATE matches a row; the loser sees
// store.ErrConflict.
func (s *SQLiteStore) TransitionStatus(ctx context.Context, id int64, from, to store.Status) error {
	query := `
		UPDATE messages
		SET status = ?
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return wrap("transition status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap("transition status", err)
	}
	if affected == 0 {
		return s.missOrMissing(ctx, id, "transition status")
	}
	return nil
}

// UpdateMessageContent replaces subject and content of a non-deleted message
// and resets its status to pending.
func (s *SQLiteStore) UpdateMessageContent(ctx context.Context, id int64, subject, content string) error {
	query := `
		UPDATE messages
		SET subject = ?, content = ?, status = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, subject, content, store.StatusPending, id)
	if err != nil {
		return wrap("update message", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap("update message", err)
	}
	if affected == 0 {
		return s.missOrMissing(ctx, id, "update message")
	}
	return nil
}

// SoftDeleteMessage marks a message deleted and stamps DeletedAt.
func (s *SQLiteStore) SoftDeleteMessage(ctx context.Context, id int64) error {
	query := `
		UPDATE messages
		SET status = ?, deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, store.StatusDeleted, time.Now().UTC(), id)
	if err != nil {
		return wrap("delete message", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap("delete message", err)
	}
	if affected == 0 {
		return s.missOrMissing(ctx, id, "delete message")
	}
	return nil
}

// missOrMissing disambiguates a zero-row conditional update: the message
// either does not exist (ErrNotFound) or is in a different state (ErrConflict).
func (s *SQLiteStore) missOrMissing(ctx context.Context, id int64, op string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	if err != nil {
		return wrap(op, err)
	}
	return fmt.Errorf("%s: %w", op, store.ErrConflict)
}

// ListMessagesByStatus returns all non-deleted messages with the given status,
// newest first by creation order (descending ID preserves insertion order for
// same-instant ties).
func (s *SQLiteStore) ListMessagesByStatus(ctx context.Context, status store.Status) ([]*store.Message, error) {
	query := `
		SELECT m.id, m.author_id, u.name, m.subject, m.content, m.status, m.created_at, m.deleted_at
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.status = ? AND m.deleted_at IS NULL
		ORDER BY m.id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, wrap("list messages", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&msg.ID,
			&msg.AuthorID,
			&msg.Author,
			&msg.Subject,
			&msg.Content,
			&msg.Status,
			&msg.CreatedAt,
			&deletedAt,
		); err != nil {
			return nil, wrap("scan message", err)
		}
		if deletedAt.Valid {
			msg.DeletedAt = &deletedAt.Time
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list messages", err)
	}
	return messages, nil
}
