package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database/relations"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/metrics"
	"github.com/mrlokans/bookstore/internal/serializers"
)

// RelationStore is the relation persistence the API needs; relations.Repository implements it.
type RelationStore interface {
	Upsert(ctx context.Context, userID, bookID uint, patch relations.Patch) (*entities.UserBookRelation, error)
	Get(ctx context.Context, userID, bookID uint) (*entities.UserBookRelation, error)
	ListForUser(ctx context.Context, userID uint) ([]entities.UserBookRelation, error)
}

var _ RelationStore = (*relations.Repository)(nil)

type RelationsController struct {
	store RelationStore
	books BookStore
	audit *audit.Service
}

func NewRelationsController(store RelationStore, bookStore BookStore, auditService *audit.Service) *RelationsController {
	return &RelationsController{
		store: store,
		books: bookStore,
		audit: auditService,
	}
}

// Update merges the body into the caller's relation to a book, creating it on first use.
// PATCH /api/relations/:book_id
func (controller *RelationsController) Update(c *gin.Context) {
	bookID, ok := parseIDParam(c, "book_id", "book")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := controller.books.GetByID(ctx, bookID); err != nil {
		respondError(c, err, "get book")
		return
	}

	var patch serializers.RelationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondDecodeError(c, err)
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(c, err, "update relation")
		return
	}

	rel, err := controller.store.Upsert(ctx, auth.GetUserID(c), bookID, patch.ToStorePatch())
	if err != nil {
		respondError(c, err, "update relation")
		return
	}

	metrics.RelationUpdatesTotal.Inc()
	controller.audit.LogRelationUpdate(ctx, auth.AuditActor(c), rel)
	c.JSON(http.StatusOK, serializers.NewRelationRepresentation(rel))
}

// Get returns the caller's relation to one book.
// GET /api/relations/:book_id
func (controller *RelationsController) Get(c *gin.Context) {
	bookID, ok := parseIDParam(c, "book_id", "relation")
	if !ok {
		return
	}
	rel, err := controller.store.Get(c.Request.Context(), auth.GetUserID(c), bookID)
	if err != nil {
		respondError(c, err, "get relation")
		return
	}
	c.JSON(http.StatusOK, serializers.NewRelationRepresentation(rel))
}

// List returns all of the caller's relations ordered by book.
// GET /api/relations
func (controller *RelationsController) List(c *gin.Context) {
	rels, err := controller.store.ListForUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list relations")
		return
	}
	c.JSON(http.StatusOK, serializers.NewRelationRepresentations(rels))
}

// Rates lists the valid rating values with their labels.
// GET /api/relations/rates
func (controller *RelationsController) Rates(c *gin.Context) {
	c.JSON(http.StatusOK, entities.RateChoices())
}
