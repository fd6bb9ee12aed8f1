// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	list, err := repo.List(ctx, books.ListOptions{Search: "Author 1", Ordering: "-price"})
//	book, err := repo.GetByID(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/logger"
)

var ErrNotFound = errors.New("book not found")

// ListOptions narrows and orders a List call. Both fields take the raw
// query-string values; see ParseSearchTerms and ParseOrdering.
type ListOptions struct {
	Search   string
	Ordering string
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the books matching opts.Search, ordered by opts.Ordering with
// creation order as the final tiebreak.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]entities.Book, error) {
	defer logger.Track(ctx, "list books")()

	query := r.db.WithContext(ctx).Model(&entities.Book{})
	query = applySearch(query, ParseSearchTerms(opts.Search))
	query = applyOrdering(query, ParseOrdering(opts.Ordering))

	books := make([]entities.Book, 0)
	if err := query.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return &book, nil
}

// Create inserts the book and assigns its ID.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update writes name, price and author_name. The owner is never changed.
func (r *Repository) Update(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).
		Model(book).
		Select("name", "price", "author_name").
		Updates(book)
	if result.Error != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, book.ID)
	}
	return nil
}

// Delete removes the book together with every user relation pointing at it.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.UserBookRelation{}).Error; err != nil {
			return fmt.Errorf("failed to delete relations of book %d: %w", id, err)
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete book %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil
	})
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}
