package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

func (s *Server) registerBookshelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookshelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookshelf",
		Summary:     "List bookshelf",
		Description: "Returns the user's saved books, most recently saved first",
		Tags:        []string{"Bookshelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookshelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookmark",
		Method:      http.MethodPut,
		Path:        "/api/v1/bookshelf/{isbn13}",
		Summary:     "Toggle bookmark",
		Description: "Saves the book if absent, removes it if present",
		Tags:        []string{"Bookshelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleBookmark)
}

// === DTOs ===

// ListBookshelfInput contains parameters for listing the bookshelf.
type ListBookshelfInput struct {
	Authorization string `header:"Authorization"`
}

// BookshelfEntryResponse contains a saved book.
type BookshelfEntryResponse struct {
	ISBN13  string    `json:"isbn13" doc:"ISBN-13 identifier"`
	Title   string    `json:"title" doc:"Book title"`
	Author  string    `json:"author" doc:"Author"`
	Cover   string    `json:"cover,omitempty" doc:"Cover image URL"`
	SavedAt time.Time `json:"saved_at" doc:"When the book was saved"`
}

// ListBookshelfResponse contains the bookshelf listing.
type ListBookshelfResponse struct {
	Entries []BookshelfEntryResponse `json:"entries" doc:"Saved books, newest first"`
	Total   int                      `json:"total" doc:"Number of saved books"`
}

// ListBookshelfOutput wraps the bookshelf listing for Huma.
type ListBookshelfOutput struct {
	Body ListBookshelfResponse
}

// ToggleBookmarkRequest carries book details for saving books outside
// the catalog, such as external recommendation results. Ignored when
// the ISBN resolves in the catalog.
type ToggleBookmarkRequest struct {
	Title  string `json:"title,omitempty" doc:"Book title"`
	Author string `json:"author,omitempty" doc:"Author"`
	Cover  string `json:"cover,omitempty" doc:"Cover image URL"`
}

// ToggleBookmarkInput contains parameters for toggling a bookmark.
type ToggleBookmarkInput struct {
	Authorization string                `header:"Authorization"`
	ISBN13        string                `path:"isbn13" doc:"ISBN-13 identifier"`
	Body          ToggleBookmarkRequest `required:"false"`
}

// ToggleBookmarkResponse reports the bookmark state after the toggle.
type ToggleBookmarkResponse struct {
	ISBN13     string `json:"isbn13" doc:"ISBN-13 identifier"`
	Bookmarked bool   `json:"bookmarked" doc:"Whether the book is now saved"`
}

// ToggleBookmarkOutput wraps the toggle response for Huma.
type ToggleBookmarkOutput struct {
	Body ToggleBookmarkResponse
}

func toBookshelfEntryResponse(entry domain.BookshelfEntry) BookshelfEntryResponse {
	return BookshelfEntryResponse{
		ISBN13:  entry.ISBN13,
		Title:   entry.Title,
		Author:  entry.Author,
		Cover:   entry.Cover,
		SavedAt: entry.SavedAt,
	}
}

// === Handlers ===

func (s *Server) handleListBookshelf(ctx context.Context, _ *ListBookshelfInput) (*ListBookshelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Bookshelf.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]BookshelfEntryResponse, len(entries))
	for i, entry := range entries {
		resp[i] = toBookshelfEntryResponse(entry)
	}

	return &ListBookshelfOutput{
		Body: ListBookshelfResponse{
			Entries: resp,
			Total:   len(resp),
		},
	}, nil
}

func (s *Server) handleToggleBookmark(ctx context.Context, input *ToggleBookmarkInput) (*ToggleBookmarkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	bookmarked, err := s.services.Bookshelf.Toggle(ctx, userID, domain.Book{
		ISBN13: input.ISBN13,
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Cover:  input.Body.Cover,
	})
	if err != nil {
		return nil, err
	}

	return &ToggleBookmarkOutput{
		Body: ToggleBookmarkResponse{
			ISBN13:     input.ISBN13,
			Bookmarked: bookmarked,
		},
	}, nil
}
