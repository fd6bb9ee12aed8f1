package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/entities"
)

func relationURL(bookID uint) string {
	return "/api/relations/" + strconv.FormatUint(uint64(bookID), 10)
}

func TestRelationsAPI_LikeThenBookmark(t *testing.T) {
	env := newAPIEnv(t)
	user, token := env.user("test_username", false)
	book := env.book("Test book1", 25, "C Author 1", &user.ID)

	rr := env.request(http.MethodPatch, relationURL(book.ID), map[string]any{"like": true}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rel, err := env.relations.Get(context.Background(), user.ID, book.ID)
	require.NoError(t, err)
	assert.True(t, rel.Like)
	assert.False(t, rel.InBookmarks)

	rr = env.request(http.MethodPatch, relationURL(book.ID), map[string]any{"in_bookmarks": true}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"book":`+strconv.Itoa(int(book.ID))+`,"like":true,"in_bookmarks":true,"rate":null}`, rr.Body.String())

	list, err := env.relations.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRelationsAPI_Rate(t *testing.T) {
	env := newAPIEnv(t)
	user, token := env.user("test_username", false)
	book := env.book("Test book1", 25, "C Author 1", nil)

	rr := env.request(http.MethodPatch, relationURL(book.ID), map[string]any{"rate": 3, "like": true}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rel, err := env.relations.Get(context.Background(), user.ID, book.ID)
	require.NoError(t, err)
	require.NotNil(t, rel.Rate)
	assert.Equal(t, entities.RateGood, *rel.Rate)

	invalid := []any{
		map[string]any{"rate": 6, "like": false},
		map[string]any{"rate": 0, "like": false},
		map[string]any{"rate": "bad", "like": false},
		map[string]any{"rate": 2.5, "like": false},
		map[string]any{"rate": 2, "like": "yes"},
		map[string]any{"rate": 2, "like": nil},
		map[string]any{"in_bookmarks": nil},
	}
	for _, body := range invalid {
		rr = env.request(http.MethodPatch, relationURL(book.ID), body, token)
		require.Equal(t, http.StatusBadRequest, rr.Code, mustJSON(t, body))
	}

	// Nothing from the rejected patches was applied.
	rel, err = env.relations.Get(context.Background(), user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RateGood, *rel.Rate)
	assert.True(t, rel.Like)

	// Omitting rate keeps it; an explicit null clears it.
	rr = env.request(http.MethodPatch, relationURL(book.ID), map[string]any{"in_bookmarks": true}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rate":3`)

	rr = env.request(http.MethodPatch, relationURL(book.ID), `{"rate": null}`, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rate":null`)
}

func TestRelationsAPI_Errors(t *testing.T) {
	env := newAPIEnv(t)
	_, token := env.user("test_username", false)
	book := env.book("Test book1", 25, "C Author 1", nil)

	assert.Equal(t, http.StatusUnauthorized,
		env.request(http.MethodPatch, relationURL(book.ID), map[string]any{"like": true}, "").Code)
	assert.Equal(t, http.StatusNotFound,
		env.request(http.MethodPatch, relationURL(999), map[string]any{"like": true}, token).Code)
	assert.Equal(t, http.StatusNotFound,
		env.request(http.MethodPatch, relationURL(999), map[string]any{"rate": 9}, token).Code)
	assert.Equal(t, http.StatusNotFound,
		env.request(http.MethodGet, relationURL(book.ID), nil, token).Code)
}

func TestRelationsAPI_PerUser(t *testing.T) {
	env := newAPIEnv(t)
	alice, aliceToken := env.user("alice", false)
	_, bobToken := env.user("bob", false)
	book1 := env.book("Test book1", 25, "C Author 1", nil)
	book2 := env.book("Test book2", 55, "B Author 2", nil)

	require.Equal(t, http.StatusOK,
		env.request(http.MethodPatch, relationURL(book2.ID), map[string]any{"like": true}, aliceToken).Code)
	require.Equal(t, http.StatusOK,
		env.request(http.MethodPatch, relationURL(book1.ID), map[string]any{"rate": 5}, aliceToken).Code)
	require.Equal(t, http.StatusOK,
		env.request(http.MethodPatch, relationURL(book1.ID), map[string]any{"rate": 1}, bobToken).Code)

	rr := env.request(http.MethodGet, "/api/relations", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[
		{"book":`+strconv.Itoa(int(book1.ID))+`,"like":false,"in_bookmarks":false,"rate":5},
		{"book":`+strconv.Itoa(int(book2.ID))+`,"like":true,"in_bookmarks":false,"rate":null}
	]`, rr.Body.String())

	rr = env.request(http.MethodGet, relationURL(book1.ID), nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rate":1`)

	rels, err := env.relations.ListForUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, rels, 2)
}

func TestRelationsAPI_ConcurrentFirstWrites(t *testing.T) {
	env := newAPIEnv(t)
	user, token := env.user("test_username", false)
	book := env.book("Test book1", 25, "C Author 1", nil)

	bodies := []map[string]any{{"like": true}, {"in_bookmarks": true}, {"rate": 4}, {"like": true}}
	var wg sync.WaitGroup
	codes := make([]int, len(bodies))
	for i, body := range bodies {
		wg.Add(1)
		go func(i int, body map[string]any) {
			defer wg.Done()
			codes[i] = env.request(http.MethodPatch, relationURL(book.ID), body, token).Code
		}(i, body)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	rels, err := env.relations.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.True(t, rels[0].Like)
	assert.True(t, rels[0].InBookmarks)
	require.NotNil(t, rels[0].Rate)
	assert.Equal(t, entities.RateAmazing, *rels[0].Rate)
}

func TestRelationsAPI_Rates(t *testing.T) {
	env := newAPIEnv(t)

	rr := env.request(http.MethodGet, "/api/relations/rates", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[
		{"value":1,"label":"Ok"},
		{"value":2,"label":"Fine"},
		{"value":3,"label":"Good"},
		{"value":4,"label":"Amazing"},
		{"value":5,"label":"Perfect"}
	]`, rr.Body.String())
}
