package entities

import "time"

type AuditEventType string

const (
	AuditEventBook     AuditEventType = "book"
	AuditEventRelation AuditEventType = "relation"
	AuditEventAuth     AuditEventType = "auth"
)

// AuditEntityBook is the entity type of book and relation events; the
// entity id is always the book id.
const AuditEntityBook = "book"

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent records one write or login attempt. UserID is zero for
// anonymous attempts (e.g. a failed login for an unknown username).
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // book_create, relation_update, login...
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
