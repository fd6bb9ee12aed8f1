package entities

import (
	"time"
)

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	IsStaff          bool       `gorm:"not null;default:false" json:"is_staff"`
	TokenHash        string     `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	TokenCreatedAt   *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"not null;default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Price      Price     `gorm:"type:integer;not null" json:"price"`
	AuthorName string    `gorm:"size:255;not null;index" json:"author_name"`
	OwnerID    *uint     `gorm:"index" json:"-"` // nil means the book has no owner
	Owner      *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether userID is the book's owner.
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}

// UserBookRelation holds one user's like/bookmark/rating state for a book.
// There is at most one row per (user, book) pair.
type UserBookRelation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_book_relation" json:"user_id"`
	BookID      uint      `gorm:"not null;uniqueIndex:idx_user_book_relation;index" json:"book_id"`
	Like        bool      `gorm:"column:like;not null;default:false" json:"like"`
	InBookmarks bool      `gorm:"not null;default:false" json:"in_bookmarks"`
	Rate        *Rate     `gorm:"type:smallint;check:chk_user_book_relations_rate,rate IS NULL OR rate BETWEEN 1 AND 5" json:"rate"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book        Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (UserBookRelation) TableName() string {
	return "user_book_relations"
}
