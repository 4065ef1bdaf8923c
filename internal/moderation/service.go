package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"tablon-server/internal/store"
)

// MaxContentLength is the maximum message content length in runes.
const MaxContentLength = 280

// Actor is the request-scoped identity performing an operation. It is
// resolved by the transport layer and passed explicitly into every call;
// the core holds no session state.
type Actor struct {
	UserID int64
	Role   store.Role
}

// Event kinds published after successful lifecycle transitions.
const (
	EventMessagePending   = "message_pending"
	EventMessagePublished = "message_published"
	EventMessageRejected  = "message_rejected"
	EventMessageDeleted   = "message_deleted"
)

// Event describes a completed lifecycle transition.
type Event struct {
	Kind    string
	Message *store.Message
}

// Publisher receives lifecycle events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Service enforces the message lifecycle: which transitions are legal from
// which state, and who may trigger them. All persistence goes through the
// store interface; racing transitions on one message are decided by the
// store's conditional update, so of two concurrent moderator actions exactly
// one wins and the other gets ErrInvalidTransition.
type Service struct {
	store    store.MessageStore
	screener *Screener
	events   Publisher
}

// NewService creates a moderation service. events may be nil.
func NewService(st store.MessageStore, screener *Screener, events Publisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{
		store:    st,
		screener: screener,
		events:   events,
	}
}

// CreateMessage validates and stores a new submission. The screener decides
// the initial status: safe text enters the moderation queue as pending,
// unsafe text is auto-rejected. A message is never published at creation.
func (s *Service) CreateMessage(ctx context.Context, actor Actor, subject, content string) (*store.Message, error) {
	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)

	if subject == "" {
		return nil, fmt.Errorf("subject is required: %w", ErrValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("content is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, fmt.Errorf("content exceeds %d characters: %w", MaxContentLength, ErrValidation)
	}

	status := store.StatusPending
	if s.screener.Screen(content) == VerdictUnsafe {
		status = store.StatusRejected
	}

	msg := &store.Message{
		AuthorID: actor.UserID,
		Subject:  subject,
		Content:  content,
		Status:   status,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, mapStoreErr("create message", err)
	}

	if status == store.StatusPending {
		s.events.Publish(Event{Kind: EventMessagePending, Message: msg})
	} else {
		s.events.Publish(Event{Kind: EventMessageRejected, Message: msg})
	}
	return msg, nil
}

// ApproveMessage publishes a pending message. Teacher role only.
func (s *Service) ApproveMessage(ctx context.Context, actor Actor, id int64) error {
	return s.moderate(ctx, actor, id, store.StatusPublished, EventMessagePublished)
}

// RejectMessage rejects a pending message. Teacher role only.
func (s *Service) RejectMessage(ctx context.Context, actor Actor, id int64) error {
	return s.moderate(ctx, actor, id, store.StatusRejected, EventMessageRejected)
}

func (s *Service) moderate(ctx context.Context, actor Actor, id int64, to store.Status, event string) error {
	if actor.Role != store.RoleTeacher {
		return fmt.Errorf("moderation requires teacher role: %w", ErrForbidden)
	}

	// Only pending messages can be moderated; the conditional update keeps
	// a double approve/reject race from applying twice.
	if err := s.store.TransitionStatus(ctx, id, store.StatusPending, to); err != nil {
		return mapStoreErr("moderate message", err)
	}

	if msg, err := s.store.GetMessageByID(ctx, id); err == nil {
		s.events.Publish(Event{Kind: event, Message: msg})
	}
	return nil
}

// EditMessage updates subject and content of the author's own message. The
// edit resets status to pending from any non-deleted state, re-entering the
// moderation queue. The screener is not re-run on edit: only initial
// creation is screened.
func (s *Service) EditMessage(ctx context.Context, actor Actor, id int64, subject, content string) error {
	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)

	if subject == "" {
		return fmt.Errorf("subject is required: %w", ErrValidation)
	}
	if content == "" {
		return fmt.Errorf("content is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return fmt.Errorf("content exceeds %d characters: %w", MaxContentLength, ErrValidation)
	}

	msg, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		return mapStoreErr("edit message", err)
	}
	if msg.AuthorID != actor.UserID {
		return fmt.Errorf("message %d belongs to another user: %w", id, ErrForbidden)
	}

	if err := s.store.UpdateMessageContent(ctx, id, subject, content); err != nil {
		return mapStoreErr("edit message", err)
	}

	if updated, err := s.store.GetMessageByID(ctx, id); err == nil {
		s.events.Publish(Event{Kind: EventMessagePending, Message: updated})
	}
	return nil
}

// DeleteMessage soft-deletes the author's own message. The record is kept
// for audit; deleted is terminal.
func (s *Service) DeleteMessage(ctx context.Context, actor Actor, id int64) error {
	msg, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		return mapStoreErr("delete message", err)
	}
	if msg.AuthorID != actor.UserID {
		return fmt.Errorf("message %d belongs to another user: %w", id, ErrForbidden)
	}

	if err := s.store.SoftDeleteMessage(ctx, id); err != nil {
		return mapStoreErr("delete message", err)
	}

	s.events.Publish(Event{Kind: EventMessageDeleted, Message: msg})
	return nil
}

// mapStoreErr translates store sentinel errors into the domain taxonomy.
func mapStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
