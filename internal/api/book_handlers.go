package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	domainerrors "github.com/bookdamapp/bookdam-server/internal/errors"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the full catalog with the user's bookmark flags",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{isbn13}",
		Summary:     "Get book",
		Description: "Returns a single catalog book by ISBN-13",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)
}

// === DTOs ===

// ListBooksInput contains parameters for listing the catalog.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ISBN13       string  `json:"isbn13" doc:"ISBN-13 identifier"`
	Title        string  `json:"title" doc:"Book title"`
	Author       string  `json:"author" doc:"Author"`
	Description  string  `json:"description,omitempty" doc:"Description"`
	Cover        string  `json:"cover,omitempty" doc:"Cover image URL"`
	Publisher    string  `json:"publisher,omitempty" doc:"Publisher"`
	CategoryName string  `json:"category_name,omitempty" doc:"Category"`
	Emotion      string  `json:"emotion,omitempty" doc:"Emotion tag"`
	Link         string  `json:"link,omitempty" doc:"External link"`
	Similarity   float64 `json:"similarity,omitempty" doc:"Recommendation similarity score"`
	IsBookmarked bool    `json:"is_bookmarked" doc:"Whether the book is on the bookshelf"`
}

// ListBooksResponse contains the catalog listing.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Catalog books"`
	Total int            `json:"total" doc:"Number of books"`
}

// ListBooksOutput wraps the catalog listing for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for fetching a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ISBN13        string `path:"isbn13" doc:"ISBN-13 identifier"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

func toBookResponse(book domain.Book, bookmarked bool) BookResponse {
	return BookResponse{
		ISBN13:       book.ISBN13,
		Title:        book.Title,
		Author:       book.Author,
		Description:  book.Description,
		Cover:        book.Cover,
		Publisher:    book.Publisher,
		CategoryName: book.CategoryName,
		Emotion:      book.Emotion,
		Link:         book.Link,
		Similarity:   book.Similarity,
		IsBookmarked: bookmarked,
	}
}

// toBookResponses stamps each book with the requesting user's bookmark
// flag. Flags come from the per-request saved set, never from shared
// state, so concurrent requests cannot see each other's bookshelf.
func toBookResponses(books []domain.Book, saved map[string]bool) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i, book := range books {
		resp[i] = toBookResponse(book, saved[book.ISBN13])
	}
	return resp
}

// savedSet fetches the user's bookshelf ISBN set for flagging responses.
func (s *Server) savedSet(ctx context.Context, userID string) (map[string]bool, error) {
	return s.services.Bookshelf.SavedISBNs(ctx, userID)
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.savedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	books := s.services.Catalog.Snapshot()
	return &ListBooksOutput{
		Body: ListBooksResponse{
			Books: toBookResponses(books, saved),
			Total: len(books),
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.savedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	book, ok := s.services.Catalog.Get(input.ISBN13)
	if !ok {
		return nil, domainerrors.NotFoundf("book %s is not in the catalog", input.ISBN13)
	}

	return &BookOutput{Body: toBookResponse(book, saved[book.ISBN13])}, nil
}
