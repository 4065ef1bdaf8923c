package moderation

import (
	"context"

	"tablon-server/internal/store"
)

// The listing views are read-only projections over the store, newest first.
// They always hit the store so a moderation decision is visible on the next
// read; deleted messages never appear in any of them.

// ListPublished returns the public feed, optionally restricted to one
// subject. An empty filter or SubjectAll returns every published message.
func (s *Service) ListPublished(ctx context.Context, subjectFilter string) ([]*store.Message, error) {
	msgs, err := s.store.ListMessagesByStatus(ctx, store.StatusPublished)
	if err != nil {
		return nil, mapStoreErr("list published", err)
	}
	if subjectFilter == "" || subjectFilter == SubjectAll {
		return msgs, nil
	}

	filtered := make([]*store.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Subject == subjectFilter {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// ListPending returns the moderation queue.
func (s *Service) ListPending(ctx context.Context) ([]*store.Message, error) {
	msgs, err := s.store.ListMessagesByStatus(ctx, store.StatusPending)
	if err != nil {
		return nil, mapStoreErr("list pending", err)
	}
	return msgs, nil
}

// ListRejected returns rejected messages for the audit/history view.
func (s *Service) ListRejected(ctx context.Context) ([]*store.Message, error) {
	msgs, err := s.store.ListMessagesByStatus(ctx, store.StatusRejected)
	if err != nil {
		return nil, mapStoreErr("list rejected", err)
	}
	return msgs, nil
}
