package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

const DefaultPageSize = 50

// Filter narrows Events. Zero values mean "any".
type Filter struct {
	UserID    uint
	EventType entities.AuditEventType
	Limit     int
	Offset    int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// Events retrieves a page of audit events, most recent first, along with the
// total number of events matching the filter.
func (r *Repository) Events(ctx context.Context, f Filter) ([]entities.AuditEvent, int64, error) {
	events := make([]entities.AuditEvent, 0)
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{})
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
