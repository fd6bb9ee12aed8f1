package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/entities"
)

type auditPage struct {
	Data    []entities.AuditEvent `json:"data"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	HasMore bool                  `json:"has_more"`
}

func TestAuditAPI(t *testing.T) {
	env := newAPIEnv(t)
	writer, writerToken := env.user("writer", false)
	_, staffToken := env.user("boss", true)

	rr := env.request(http.MethodPost, "/api/books", map[string]any{"name": "A", "price": 1, "author_name": "B"}, writerToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct{ ID uint }
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, http.StatusOK,
		env.request(http.MethodPatch, relationURL(created.ID), map[string]any{"like": true}, writerToken).Code)
	require.Equal(t, http.StatusNoContent,
		env.request(http.MethodDelete, bookURL(created.ID), nil, writerToken).Code)

	assert.Equal(t, http.StatusUnauthorized, env.request(http.MethodGet, "/api/audit", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, env.request(http.MethodGet, "/api/audit", nil, writerToken).Code)

	rr = env.request(http.MethodGet, "/api/audit", nil, staffToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var page auditPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "book_delete", page.Data[0].Action)
	assert.Equal(t, "relation_update", page.Data[1].Action)
	assert.Equal(t, "book_create", page.Data[2].Action)
	for _, e := range page.Data {
		assert.Equal(t, writer.ID, e.UserID)
		assert.Equal(t, entities.AuditStatusSuccess, e.Status)
	}

	rr = env.request(http.MethodGet, "/api/audit?type=book&limit=1&offset=1", nil, staffToken)
	require.Equal(t, http.StatusOK, rr.Code)
	page = auditPage{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "book_create", page.Data[0].Action)
	assert.False(t, page.HasMore)

	assert.Equal(t, http.StatusBadRequest, env.request(http.MethodGet, "/api/audit?limit=-1", nil, staffToken).Code)
	assert.Equal(t, http.StatusBadRequest, env.request(http.MethodGet, "/api/audit?user_id=x", nil, staffToken).Code)
}
