package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

// Catalog books are keyed by ISBN-13: book:{isbn13}
const bookPrefix = "book:"

// PutBooks writes a batch of catalog books, replacing existing records
// with the same ISBN. Books that fail validation are skipped with a
// warning rather than aborting the batch.
func (s *Store) PutBooks(ctx context.Context, books []domain.Book) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	stored := 0
	for i := range books {
		book := &books[i]
		if !book.Valid() {
			if s.logger != nil {
				s.logger.Warn("skipping malformed catalog record",
					"isbn13", book.ISBN13,
					"title", book.Title,
				)
			}
			continue
		}

		data, err := json.Marshal(book)
		if err != nil {
			return stored, fmt.Errorf("marshal book %s: %w", book.ISBN13, err)
		}
		if err := wb.Set([]byte(bookPrefix+book.ISBN13), data); err != nil {
			return stored, fmt.Errorf("batch set book %s: %w", book.ISBN13, err)
		}
		stored++
	}

	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush book batch: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("catalog books stored",
			"stored", stored,
			"skipped", len(books)-stored,
		)
	}
	return stored, nil
}

// GetBook retrieves a catalog book by ISBN-13.
func (s *Store) GetBook(ctx context.Context, isbn13 string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book domain.Book
	if err := s.get([]byte(bookPrefix+isbn13), &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// ListBooks returns every catalog book. Records that no longer unmarshal
// are dropped with a warning so a single bad write cannot poison the
// whole catalog.
func (s *Store) ListBooks(ctx context.Context) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var books []domain.Book
	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var book domain.Book
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("dropping unreadable catalog record",
						"key", string(item.Key()),
						"error", err,
					)
				}
				continue
			}
			books = append(books, book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return books, nil
}

// CountBooks returns the number of catalog books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	prefix := []byte(bookPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // We only need keys.
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}

	return count, nil
}
