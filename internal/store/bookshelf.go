package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

// Bookshelf entries are keyed per user: bookshelf:{userID}:{isbn13}
const bookshelfPrefix = "bookshelf:"

func bookshelfKey(userID, isbn13 string) []byte {
	return fmt.Appendf(nil, "%s%s:%s", bookshelfPrefix, userID, isbn13)
}

// PutBookshelfEntry writes a bookshelf entry, replacing any existing one
// for the same user and ISBN.
func (s *Store) PutBookshelfEntry(ctx context.Context, entry *domain.BookshelfEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.set(bookshelfKey(entry.UserID, entry.ISBN13), entry); err != nil {
		return fmt.Errorf("put bookshelf entry: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("bookshelf entry saved",
			"user_id", entry.UserID,
			"isbn13", entry.ISBN13,
		)
	}
	return nil
}

// DeleteBookshelfEntry removes a bookshelf entry.
// Idempotent: deleting a missing entry is not an error.
func (s *Store) DeleteBookshelfEntry(ctx context.Context, userID, isbn13 string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.delete(bookshelfKey(userID, isbn13)); err != nil {
		return fmt.Errorf("delete bookshelf entry: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("bookshelf entry removed",
			"user_id", userID,
			"isbn13", isbn13,
		)
	}
	return nil
}

// HasBookshelfEntry reports whether the user has saved the given ISBN.
func (s *Store) HasBookshelfEntry(ctx context.Context, userID, isbn13 string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists(bookshelfKey(userID, isbn13))
}

// GetBookshelfEntry retrieves one bookshelf entry.
func (s *Store) GetBookshelfEntry(ctx context.Context, userID, isbn13 string) (*domain.BookshelfEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry domain.BookshelfEntry
	if err := s.get(bookshelfKey(userID, isbn13), &entry); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bookshelf entry: %w", err)
	}
	return &entry, nil
}

// ListBookshelf returns all bookshelf entries for a user.
func (s *Store) ListBookshelf(ctx context.Context, userID string) ([]domain.BookshelfEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []domain.BookshelfEntry
	prefix := fmt.Appendf(nil, "%s%s:", bookshelfPrefix, userID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.BookshelfEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bookshelf: %w", err)
	}

	return entries, nil
}

// DeleteBookshelfForUser deletes every bookshelf entry belonging to a
// user. This is the cascade step of account withdrawal and must run
// before the user record itself is removed.
func (s *Store) DeleteBookshelfForUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", bookshelfPrefix, userID)

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // We only need keys.
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan bookshelf for user: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete bookshelf for user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("deleted bookshelf for user",
			"user_id", userID,
			"count", len(keys),
		)
	}
	return len(keys), nil
}
