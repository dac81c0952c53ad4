package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

func TestListBooks_ReturnsCatalog(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/books", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, len(domain.EmotionTags), envelope.Data.Total)
	require.Len(t, envelope.Data.Books, envelope.Data.Total)
	for _, book := range envelope.Data.Books {
		assert.False(t, book.IsBookmarked)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/books/0000000000000", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestToggleBookmark_SaveAndRemove(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "reader@example.com")

	resp := ts.api.Put("/api/v1/bookshelf/9791100010000",
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "toggle failed: %s", resp.Body.String())

	var toggle testEnvelope[ToggleBookmarkResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggle))
	assert.True(t, toggle.Data.Bookmarked)
	assert.Equal(t, "9791100010000", toggle.Data.ISBN13)

	// The catalog listing now carries the flag.
	resp = ts.api.Get("/api/v1/books/9791100010000", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var book testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.True(t, book.Data.IsBookmarked)

	// A second toggle removes the bookmark.
	resp = ts.api.Put("/api/v1/bookshelf/9791100010000",
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggle))
	assert.False(t, toggle.Data.Bookmarked)
}

func TestToggleBookmark_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "reader@example.com")

	resp := ts.api.Put("/api/v1/bookshelf/0000000000000",
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestToggleBookmark_ExternalBookWithDetails(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "reader@example.com")

	// Recommendation results are not in the catalog; the request body
	// supplies the details to save.
	resp := ts.api.Put("/api/v1/bookshelf/9771000000017",
		"Authorization: Bearer "+token,
		map[string]any{
			"title":  "외부 추천 도서",
			"author": "외부 작가",
			"cover":  "https://covers.example/9771000000017.jpg",
		})
	require.Equal(t, http.StatusOK, resp.Code, "toggle failed: %s", resp.Body.String())

	var toggle testEnvelope[ToggleBookmarkResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggle))
	assert.True(t, toggle.Data.Bookmarked)

	resp = ts.api.Get("/api/v1/bookshelf", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var shelf testEnvelope[ListBookshelfResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &shelf))
	require.Len(t, shelf.Data.Entries, 1)
	assert.Equal(t, "9771000000017", shelf.Data.Entries[0].ISBN13)
	assert.Equal(t, "외부 추천 도서", shelf.Data.Entries[0].Title)
}

func TestListBookshelf_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "reader@example.com")

	for _, isbn := range []string{"9791100010000", "9791100010001"} {
		resp := ts.api.Put("/api/v1/bookshelf/"+isbn,
			"Authorization: Bearer "+token)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/bookshelf", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListBookshelfResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, 2, envelope.Data.Total)
	require.Len(t, envelope.Data.Entries, 2)
	assert.Equal(t, "9791100010001", envelope.Data.Entries[0].ISBN13)
	assert.Equal(t, "9791100010000", envelope.Data.Entries[1].ISBN13)
	assert.NotEmpty(t, envelope.Data.Entries[0].Title)
}

func TestBookmarkFlagsAreScopedToUser(t *testing.T) {
	ts := setupTestServer(t)
	token1, _ := ts.registerUser(t, "one@example.com")
	token2, _ := ts.registerUser(t, "two@example.com")

	resp := ts.api.Put("/api/v1/bookshelf/9791100010000",
		"Authorization: Bearer "+token1)
	require.Equal(t, http.StatusOK, resp.Code)

	// The second user sees the book without a flag.
	resp = ts.api.Get("/api/v1/books/9791100010000", "Authorization: Bearer "+token2)
	require.Equal(t, http.StatusOK, resp.Code)

	var book testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.False(t, book.Data.IsBookmarked)

	// And the first user sees it flagged again.
	resp = ts.api.Get("/api/v1/books/9791100010000", "Authorization: Bearer "+token1)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.True(t, book.Data.IsBookmarked)
}
