package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/metrics"
	"github.com/mrlokans/bookstore/internal/permissions"
	"github.com/mrlokans/bookstore/internal/serializers"
)

// BookStore is the book persistence the API needs; books.Repository implements it.
type BookStore interface {
	List(ctx context.Context, opts books.ListOptions) ([]entities.Book, error)
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	Update(ctx context.Context, book *entities.Book) error
	Delete(ctx context.Context, id uint) error
}

var _ BookStore = (*books.Repository)(nil)

type BooksController struct {
	store BookStore
	audit *audit.Service
}

func NewBooksController(store BookStore, auditService *audit.Service) *BooksController {
	return &BooksController{
		store: store,
		audit: auditService,
	}
}

// List returns every book matching ?search=, ordered by ?ordering=.
// GET /api/books
func (controller *BooksController) List(c *gin.Context) {
	list, err := controller.store.List(c.Request.Context(), books.ListOptions{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, serializers.NewBookRepresentations(list))
}

// Get returns one book.
// GET /api/books/:id
func (controller *BooksController) Get(c *gin.Context) {
	book, ok := controller.loadBook(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, serializers.NewBookRepresentation(book))
}

// Create adds a book owned by the caller.
// POST /api/books
func (controller *BooksController) Create(c *gin.Context) {
	caller := auth.GetCaller(c)
	if err := permissions.CheckAuthenticated(caller); err != nil {
		respondError(c, err, "create book")
		return
	}

	var input serializers.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondDecodeError(c, err)
		return
	}
	if err := input.Validate(); err != nil {
		respondError(c, err, "create book")
		return
	}

	ownerID := caller.UserID
	book := input.NewBook(&ownerID)
	if err := controller.store.Create(c.Request.Context(), book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	metrics.BookWritesTotal.WithLabelValues("create").Inc()
	controller.audit.LogBookCreate(c.Request.Context(), auth.AuditActor(c), book)
	c.JSON(http.StatusCreated, serializers.NewBookRepresentation(book))
}

// Update replaces name, price and author of a book.
// PUT /api/books/:id
func (controller *BooksController) Update(c *gin.Context) {
	book, ok := controller.loadWritableBook(c)
	if !ok {
		return
	}

	var input serializers.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondDecodeError(c, err)
		return
	}
	controller.save(c, book, input)
}

// Patch changes only the fields present in the body.
// PATCH /api/books/:id
func (controller *BooksController) Patch(c *gin.Context) {
	book, ok := controller.loadWritableBook(c)
	if !ok {
		return
	}

	var patch serializers.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondDecodeError(c, err)
		return
	}
	controller.save(c, book, patch.Merge(book))
}

func (controller *BooksController) save(c *gin.Context, book *entities.Book, input serializers.BookInput) {
	if err := input.Validate(); err != nil {
		respondError(c, err, "update book")
		return
	}

	input.ApplyTo(book)
	if err := controller.store.Update(c.Request.Context(), book); err != nil {
		respondError(c, err, "update book")
		return
	}

	metrics.BookWritesTotal.WithLabelValues("update").Inc()
	controller.audit.LogBookUpdate(c.Request.Context(), auth.AuditActor(c), book)
	c.JSON(http.StatusOK, serializers.NewBookRepresentation(book))
}

// Delete removes a book together with every user's relation to it.
// DELETE /api/books/:id
func (controller *BooksController) Delete(c *gin.Context) {
	book, ok := controller.loadWritableBook(c)
	if !ok {
		return
	}

	if err := controller.store.Delete(c.Request.Context(), book.ID); err != nil {
		respondError(c, err, "delete book")
		return
	}

	metrics.BookWritesTotal.WithLabelValues("delete").Inc()
	controller.audit.LogBookDelete(c.Request.Context(), auth.AuditActor(c), book.ID, book.Name)
	c.Status(http.StatusNoContent)
}

func (controller *BooksController) loadBook(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id", "book")
	if !ok {
		return nil, false
	}
	book, err := controller.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get book")
		return nil, false
	}
	return book, true
}

// loadWritableBook resolves the book and then the caller's right to change it,
// so an unknown id is a 404 for everyone.
func (controller *BooksController) loadWritableBook(c *gin.Context) (*entities.Book, bool) {
	book, ok := controller.loadBook(c)
	if !ok {
		return nil, false
	}
	if err := permissions.CheckBookWrite(auth.GetCaller(c), book.OwnerID); err != nil {
		respondError(c, err, "check book permissions")
		return nil, false
	}
	return book, true
}
