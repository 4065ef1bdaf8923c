// Package jsonfile implements store.Store on top of plain JSON files.
//
// Every operation reads the whole file and every mutation rewrites it under an
// in-process mutex (tmp file + rename, so a crash never leaves a half-written
// file). Serializing writes this way approximates the conditional-update
// guarantee of the SQLite backend, but only within a single process: two
// server processes sharing the same data directory can still lose updates.
// That is a known limitation of the flat-file backend, not something this
// package tries to paper over.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tablon-server/internal/store"
)

const (
	messagesFile = "messages.json"
	usersFile    = "users.json"
)

// Store implements store.Store persisting to JSON files in a directory.
type Store struct {
	mu  sync.Mutex
	dir string
}

type messageRecord struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Subject   string     `json:"subject"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type userRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Theme        string    `json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
}

type messagesFileData struct {
	LastID   int64           `json:"last_id"`
	Messages []messageRecord `json:"messages"`
}

type usersFileData struct {
	LastID int64        `json:"last_id"`
	Users  []userRecord `json:"users"`
}

// New creates a JSON file store rooted at dir, creating the directory and
// empty data files if they do not exist yet.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{dir: dir}
	if err := s.ensureFile(messagesFile, messagesFileData{Messages: []messageRecord{}}); err != nil {
		return nil, err
	}
	if err := s.ensureFile(usersFile, usersFileData{Users: []userRecord{}}); err != nil {
		return nil, err
	}
	return s, nil
}

// Close is a no-op; files are written synchronously on every mutation.
func (s *Store) Close() error {
	return nil
}

func (s *Store) ensureFile(name string, empty any) error {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return s.writeFile(name, empty)
}

func (s *Store) readFile(name string, into any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %v: %w", name, err, store.ErrUnavailable)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decode %s: %v: %w", name, err, store.ErrUnavailable)
	}
	return nil
}

func (s *Store) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %v: %w", name, err, store.ErrUnavailable)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %v: %w", name, err, store.ErrUnavailable)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %v: %w", name, err, store.ErrUnavailable)
	}
	return nil
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *Store) CreateUser(_ context.Context, username, name, passwordHash string, role store.Role) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data usersFileData
	if err := s.readFile(usersFile, &data); err != nil {
		return nil, err
	}

	for _, u := range data.Users {
		if u.Username == username {
			return nil, fmt.Errorf("username taken: %w", store.ErrConflict)
		}
	}

	data.LastID++
	rec := userRecord{
		ID:           data.LastID,
		Username:     username,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         string(role),
		Theme:        "light",
		CreatedAt:    time.Now().UTC(),
	}
	data.Users = append(data.Users, rec)

	if err := s.writeFile(usersFile, data); err != nil {
		return nil, err
	}
	return userFromRecord(rec), nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data usersFileData
	if err := s.readFile(usersFile, &data); err != nil {
		return nil, err
	}
	for _, u := range data.Users {
		if u.ID == id {
			return userFromRecord(u), nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data usersFileData
	if err := s.readFile(usersFile, &data); err != nil {
		return nil, err
	}
	for _, u := range data.Users {
		if u.Username == username {
			return userFromRecord(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
}

// UpdateUserTheme stores the user's UI theme preference.
func (s *Store) UpdateUserTheme(_ context.Context, userID int64, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data usersFileData
	if err := s.readFile(usersFile, &data); err != nil {
		return err
	}
	for i := range data.Users {
		if data.Users[i].ID == userID {
			data.Users[i].Theme = theme
			return s.writeFile(usersFile, data)
		}
	}
	return fmt.Errorf("user %d: %w", userID, store.ErrNotFound)
}

func userFromRecord(rec userRecord) *store.User {
	return &store.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		Role:         store.Role(rec.Role),
		Theme:        rec.Theme,
		CreatedAt:    rec.CreatedAt,
	}
}

// ==== MessageStore implementation ====

// InsertMessage persists a new message and fills in its ID and CreatedAt.
func (s *Store) InsertMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data messagesFileData
	if err := s.readFile(messagesFile, &data); err != nil {
		return err
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	data.LastID++
	msg.ID = data.LastID
	data.Messages = append(data.Messages, messageRecord{
		ID:        msg.ID,
		AuthorID:  msg.AuthorID,
		Subject:   msg.Subject,
		Content:   msg.Content,
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt,
	})

	return s.writeFile(messagesFile, data)
}

// GetMessageByID retrieves a message by ID, including deleted ones.
func (s *Store) GetMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data messagesFileData
	if err := s.readFile(messagesFile, &data); err != nil {
		return nil, err
	}
	names, err := s.authorNames()
	if err != nil {
		return nil, err
	}
	for _, m := range data.Messages {
		if m.ID == id {
			return messageFromRecord(m, names), nil
		}
	}
	return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
}

// TransitionStatus conditionally moves a non-deleted message between
// statuses. The check and the rewrite happen under the store mutex, which is
// what makes the transition atomic for this backend.
func (s *Store) TransitionStatus(_ context.Context, id int64, from, to store.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data messagesFileData
	if err := s.readFile(messagesFile, &data); err != nil {
		return err
	}
	for i := range data.Messages {
		if data.Messages[i].ID != id {
			continue
		}
		if data.Messages[i].DeletedAt != nil || data.Messages[i].Status != string(from) {
			return fmt.Errorf("transition status: %w", store.ErrConflict)
		}
		data.Messages[i].Status = string(to)
		return s.writeFile(messagesFile, data)
	}
	return fmt.Errorf("message %d: %w", id, store.ErrNotFound)
}

// UpdateMessageContent replaces subject and content of a non-deleted message
// and resets its status to pending.
func (s *Store) UpdateMessageContent(_ context.Context, id int64, subject, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data messagesFileData
	if err := s.readFile(messagesFile, &data); err != nil {
		return err
	}
	for i := range data.Messages {
		if data.Messages[i].ID != id {
			continue
		}
		if data.Messages[i].DeletedAt != nil {
			return fmt.Errorf("update message: %w", store.ErrConflict)
		}
		data.Messages[i].Subject = subject
		data.Messages[i].Content = content
		data.Messages[i].Status = string(store.StatusPending)
		return s.writeFile(messagesFile, data)
	}
	return fmt.Errorf("message %d: %w", id, store.ErrNotFound)
}

// SoftDeleteMessage marks a message deleted and stamps DeletedAt.
func (s *Store) SoftDeleteMessage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data messagesFileData
	if err := s.readFile(messagesFile, &data); err != nil {
		return err
	}
	for i := range data.Messages {
		if data.Messages[i].ID != id {
			continue
		}
		if data.Messages[i].DeletedAt != nil {
			return fmt.Errorf("delete message: %w", store.ErrConflict)
		}
		now := time.Now().UTC()
		data.Messages[i].Status = string(store.StatusDeleted)
		data.Messages[i].DeletedAt = &now
		return s.writeFile(messagesFile, data)
	}
	return fmt.Errorf("message %d: %w", id, store.ErrNotFound)
}

// ListMessagesByStatus returns all non-deleted messages with the given
// status, newest first by creation order.
func (s *Store) ListMessagesByStatus(_ context.Context, status store.Status) ([]*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data messagesFileData
	if err := s.readFile(messagesFile, &data); err != nil {
		return nil, err
	}
	names, err := s.authorNames()
	if err != nil {
		return nil, err
	}

	messages := make([]*store.Message, 0)
	// records are appended in creation order; walk backwards for newest-first
	for i := len(data.Messages) - 1; i >= 0; i-- {
		m := data.Messages[i]
		if m.DeletedAt != nil || m.Status != string(status) {
			continue
		}
		messages = append(messages, messageFromRecord(m, names))
	}
	return messages, nil
}

// authorNames loads the user file and indexes display names by user ID.
// Callers must hold s.mu.
func (s *Store) authorNames() (map[int64]string, error) {
	var data usersFileData
	if err := s.readFile(usersFile, &data); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(data.Users))
	for _, u := range data.Users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func messageFromRecord(rec messageRecord, names map[int64]string) *store.Message {
	return &store.Message{
		ID:        rec.ID,
		AuthorID:  rec.AuthorID,
		Author:    names[rec.AuthorID],
		Subject:   rec.Subject,
		Content:   rec.Content,
		Status:    store.Status(rec.Status),
		CreatedAt: rec.CreatedAt,
		DeletedAt: rec.DeletedAt,
	}
}
