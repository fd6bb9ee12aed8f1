package audit

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/logger"
)

const (
	maxTextLen = 500
	ellipsis   = "..."
)

// Actor identifies who triggered an audited operation and from where.
type Actor struct {
	UserID    uint
	IPAddress string
	UserAgent string
}

// Service provides high-level audit logging functionality. Recording is
// synchronous; a failed write is logged and never surfaces to the caller.
type Service struct {
	repo    *audit.Repository
	enabled bool
}

// NewService creates a new audit service. A disabled service drops events.
func NewService(repo *audit.Repository, enabled bool) *Service {
	return &Service{repo: repo, enabled: enabled}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	if s == nil || !s.enabled {
		return nil
	}
	return s.repo.LogEvent(ctx, event)
}

func (s *Service) record(ctx context.Context, event *entities.AuditEvent) {
	if err := s.Log(ctx, event); err != nil {
		logger.For(ctx).WithError(err).WithField("action", event.Action).Warn("Failed to record audit event")
	}
}

func newEvent(actor Actor, eventType entities.AuditEventType, action string) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:    actor.UserID,
		EventType: eventType,
		Action:    action,
		IPAddress: actor.IPAddress,
		UserAgent: truncate(actor.UserAgent, maxTextLen),
		Status:    entities.AuditStatusSuccess,
	}
}

func (s *Service) LogBookCreate(ctx context.Context, actor Actor, book *entities.Book) {
	s.logBook(ctx, actor, "book_create", "Created", book.ID, book.Name)
}

func (s *Service) LogBookUpdate(ctx context.Context, actor Actor, book *entities.Book) {
	s.logBook(ctx, actor, "book_update", "Updated", book.ID, book.Name)
}

func (s *Service) LogBookDelete(ctx context.Context, actor Actor, bookID uint, name string) {
	s.logBook(ctx, actor, "book_delete", "Deleted", bookID, name)
}

func (s *Service) logBook(ctx context.Context, actor Actor, action, verb string, bookID uint, name string) {
	event := newEvent(actor, entities.AuditEventBook, action)
	event.EntityType = entities.AuditEntityBook
	event.EntityID = &bookID
	event.Description = truncate(fmt.Sprintf("%s book: %s", verb, name), maxTextLen)
	s.record(ctx, event)
}

// LogRelationUpdate records a change to the actor's relation with a book.
func (s *Service) LogRelationUpdate(ctx context.Context, actor Actor, rel *entities.UserBookRelation) {
	event := newEvent(actor, entities.AuditEventRelation, "relation_update")
	event.EntityType = entities.AuditEntityBook
	event.EntityID = &rel.BookID

	rate := "none"
	if rel.Rate != nil {
		rate = rel.Rate.Label()
	}
	event.Description = fmt.Sprintf("like=%t in_bookmarks=%t rate=%s", rel.Like, rel.InBookmarks, rate)
	s.record(ctx, event)
}

// LogAuth records an authentication event. failure is stored as the error
// message when success is false.
func (s *Service) LogAuth(ctx context.Context, actor Actor, action string, success bool, failure string) {
	event := newEvent(actor, entities.AuditEventAuth, action)
	if !success {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(failure, maxTextLen)
	}
	s.record(ctx, event)
}

// Events retrieves paginated audit events.
func (s *Service) Events(ctx context.Context, f audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.Events(ctx, f)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens s to at most maxLen bytes, cutting on a rune boundary
// so the stored text stays valid UTF-8.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
