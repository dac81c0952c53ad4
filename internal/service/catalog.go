// Package service contains the business logic: catalog snapshots, daily
// and emotion discovery picks, remote recommendation aggregation, the
// bookshelf, local search, and accounts.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	domainerrors "github.com/bookdamapp/bookdam-server/internal/errors"
	"github.com/bookdamapp/bookdam-server/internal/store"
)

// CatalogService holds an in-memory snapshot of the book catalog.
//
// The published slice is never mutated, so readers can hold it without
// locking; Load swaps in a fresh slice atomically. The snapshot carries
// no per-user state; bookmark flags are applied per request from the
// user's bookshelf.
type CatalogService struct {
	store  *store.Store
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot []domain.Book
	byISBN   map[string]int // ISBN-13 -> index into snapshot
}

// NewCatalogService creates a catalog service with an empty snapshot.
// Call Load to populate it from the store.
func NewCatalogService(st *store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  st,
		logger: logger,
		byISBN: make(map[string]int),
	}
}

// Load reads all book records from the store and replaces the snapshot
// atomically. Records failing validation are dropped with a warning.
// On store error the previous snapshot is left unchanged.
func (s *CatalogService) Load(ctx context.Context) error {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		s.logger.Error("catalog load failed, keeping previous snapshot", "error", err)
		return err
	}

	valid := make([]domain.Book, 0, len(books))
	for i := range books {
		if !books[i].Valid() {
			s.logger.Warn("dropping malformed catalog record",
				"isbn13", books[i].ISBN13,
				"title", books[i].Title,
			)
			continue
		}
		valid = append(valid, books[i])
	}

	s.publish(valid)

	s.logger.Info("catalog loaded",
		"books", len(valid),
		"dropped", len(books)-len(valid),
	)
	return nil
}

// publish swaps in a new snapshot and rebuilds the ISBN index.
func (s *CatalogService) publish(books []domain.Book) {
	byISBN := make(map[string]int, len(books))
	for i := range books {
		byISBN[books[i].ISBN13] = i
	}

	s.mu.Lock()
	s.snapshot = books
	s.byISBN = byISBN
	s.mu.Unlock()
}

// Snapshot returns the current catalog view. The returned slice is
// immutable; callers must not modify it.
func (s *CatalogService) Snapshot() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Get returns the catalog book with the given ISBN-13, if present.
func (s *CatalogService) Get(isbn13 string) (domain.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byISBN[isbn13]
	if !ok {
		return domain.Book{}, false
	}
	return s.snapshot[i], true
}

// Size returns the number of books in the snapshot.
func (s *CatalogService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot)
}

// Ready reports whether the catalog has been loaded with at least one book.
func (s *CatalogService) Ready() bool {
	return s.Size() > 0
}

// WaitReady polls until the catalog is non-empty, checking every interval
// up to maxWait. Returns an UNAVAILABLE error if the catalog is still
// empty at the deadline.
func (s *CatalogService) WaitReady(ctx context.Context, interval, maxWait time.Duration) error {
	if s.Ready() {
		return nil
	}

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return domainerrors.Unavailable("catalog is empty")
		case <-ticker.C:
			if s.Ready() {
				return nil
			}
		}
	}
}
