package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	domainerrors "github.com/bookdamapp/bookdam-server/internal/errors"
	"github.com/bookdamapp/bookdam-server/internal/store"
)

// BookshelfService manages per-user bookmarks. The store is the source
// of truth; bookmark flags are derived from it per request, never held
// in shared state.
type BookshelfService struct {
	store   *store.Store
	catalog *CatalogService
	logger  *slog.Logger
}

// NewBookshelfService creates a bookshelf service.
func NewBookshelfService(st *store.Store, catalog *CatalogService, logger *slog.Logger) *BookshelfService {
	return &BookshelfService{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// Toggle flips the bookmark state of a book for the user and returns
// the new state. The catalog record wins for details when the ISBN is
// in the catalog; otherwise the caller's book is written as-is, so
// external recommendation results can be saved too. An unknown ISBN
// with no details to write is NOT_FOUND.
func (s *BookshelfService) Toggle(ctx context.Context, userID string, book domain.Book) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	saved, err := s.store.HasBookshelfEntry(ctx, userID, book.ISBN13)
	if err != nil {
		return false, fmt.Errorf("check bookshelf entry: %w", err)
	}

	if saved {
		if err := s.store.DeleteBookshelfEntry(ctx, userID, book.ISBN13); err != nil {
			return true, fmt.Errorf("delete bookshelf entry: %w", err)
		}
		return false, nil
	}

	if catalogBook, ok := s.catalog.Get(book.ISBN13); ok {
		book = catalogBook
	} else if book.Title == "" {
		return false, domainerrors.NotFoundf("book %s is not in the catalog", book.ISBN13)
	}

	entry := &domain.BookshelfEntry{
		SavedAt: time.Now(),
		UserID:  userID,
		ISBN13:  book.ISBN13,
		Title:   book.Title,
		Author:  book.Author,
		Cover:   book.Cover,
	}
	if err := s.store.PutBookshelfEntry(ctx, entry); err != nil {
		return false, fmt.Errorf("put bookshelf entry: %w", err)
	}
	return true, nil
}

// SavedISBNs returns the set of ISBNs on the user's bookshelf. Handlers
// apply it to the books they return, so each response carries its own
// user's flags regardless of concurrent requests.
func (s *BookshelfService) SavedISBNs(ctx context.Context, userID string) (map[string]bool, error) {
	entries, err := s.store.ListBookshelf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookshelf: %w", err)
	}

	saved := make(map[string]bool, len(entries))
	for i := range entries {
		saved[entries[i].ISBN13] = true
	}
	return saved, nil
}

// List returns the user's bookshelf entries, newest first.
func (s *BookshelfService) List(ctx context.Context, userID string) ([]domain.BookshelfEntry, error) {
	entries, err := s.store.ListBookshelf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookshelf: %w", err)
	}

	slices.SortFunc(entries, func(a, b domain.BookshelfEntry) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return entries, nil
}
