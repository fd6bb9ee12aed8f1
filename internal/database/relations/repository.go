// Package relations stores each user's like, bookmark and rating state per book.
//
// # Usage
//
//	repo := relations.NewRepository(db)
//	like := true
//	rel, err := repo.Upsert(ctx, userID, bookID, relations.Patch{Like: &like})
package relations

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookstore/internal/entities"
)

var (
	ErrNotFound     = errors.New("relation not found")
	ErrBookNotFound = errors.New("book not found")
)

// Patch lists the fields to change. Nil pointers leave a field untouched.
// Rate is applied only when RateSet is true; a nil Rate then clears it.
type Patch struct {
	Like        *bool
	InBookmarks *bool
	RateSet     bool
	Rate        *entities.Rate
}

func (p Patch) columns() map[string]any {
	updates := make(map[string]any)
	if p.Like != nil {
		updates["like"] = *p.Like
	}
	if p.InBookmarks != nil {
		updates["in_bookmarks"] = *p.InBookmarks
	}
	if p.RateSet {
		if p.Rate == nil {
			updates["rate"] = nil
		} else {
			updates["rate"] = uint8(*p.Rate)
		}
	}
	return updates
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates the (user, book) relation with defaults when it does not
// exist yet, applies patch to it and returns the stored row. The insert
// relies on the (user_id, book_id) unique index, so two concurrent first
// writes still end up sharing one row.
func (r *Repository) Upsert(ctx context.Context, userID, bookID uint, patch Patch) (*entities.UserBookRelation, error) {
	var rel entities.UserBookRelation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var books int64
		if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).Count(&books).Error; err != nil {
			return fmt.Errorf("failed to check book %d: %w", bookID, err)
		}
		if books == 0 {
			return fmt.Errorf("%w: id %d", ErrBookNotFound, bookID)
		}

		fresh := entities.UserBookRelation{UserID: userID, BookID: bookID}
		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
				DoNothing: true,
			}).
			Create(&fresh).Error
		if err != nil {
			return fmt.Errorf("failed to create relation: %w", err)
		}

		if updates := patch.columns(); len(updates) > 0 {
			err := tx.Model(&entities.UserBookRelation{}).
				Where("user_id = ? AND book_id = ?", userID, bookID).
				Updates(updates).Error
			if err != nil {
				return fmt.Errorf("failed to update relation: %w", err)
			}
		}

		return tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&rel).Error
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Get returns the caller's relation to a book.
func (r *Repository) Get(ctx context.Context, userID, bookID uint) (*entities.UserBookRelation, error) {
	var rel entities.UserBookRelation
	err := r.db.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relation: %w", err)
	}
	return &rel, nil
}

// ListForUser returns all relations of a user ordered by book.
func (r *Repository) ListForUser(ctx context.Context, userID uint) ([]entities.UserBookRelation, error) {
	rels := make([]entities.UserBookRelation, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("book_id ASC").Find(&rels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	return rels, nil
}
