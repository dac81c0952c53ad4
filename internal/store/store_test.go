package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookdam-store-test-*")
	require.NoError(t, err)

	s, err := New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return s
}

func testBook(isbn, title string) domain.Book {
	return domain.Book{
		ISBN13:    isbn,
		Title:     title,
		Author:    "작가",
		Publisher: "출판사",
		Emotion:   "감동",
	}
}

func TestUsersCRUD(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	user := &domain.User{
		ID:        "user_1",
		Email:     "Reader@Example.com",
		Nickname:  "reader",
		Provider:  "password",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.Users.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "reader", got.Nickname)

	// Email index lookups are case-insensitive.
	byEmail, err := s.Users.GetByIndex(ctx, "email", "reader@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user_1", byEmail.ID)

	// Duplicate email is rejected even with different case.
	dup := &domain.User{ID: "user_2", Email: "READER@example.com", Nickname: "other"}
	err = s.Users.Create(ctx, dup.ID, dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got.Nickname = "renamed"
	require.NoError(t, s.Users.Update(ctx, "user_1", got))

	got, err = s.Users.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Nickname)

	require.NoError(t, s.Users.Delete(ctx, "user_1"))
	_, err = s.Users.Get(ctx, "user_1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Index entry is gone too, so the email can be reused.
	_, err = s.Users.GetByIndex(ctx, "email", "reader@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, s.Users.Delete(ctx, "user_1"))
}

func TestPutBooksSkipsInvalid(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	books := []domain.Book{
		testBook("9791100000001", "첫 번째 책"),
		{ISBN13: "", Title: "no isbn", Author: "a"},
		{ISBN13: "9791100000002", Title: "", Author: "a"},
		testBook("9791100000003", "두 번째 책"),
	}

	stored, err := s.PutBooks(ctx, books)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	count, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := s.GetBook(ctx, "9791100000001")
	require.NoError(t, err)
	assert.Equal(t, "첫 번째 책", got.Title)

	_, err = s.GetBook(ctx, "9791100000002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutBooksReplacesExisting(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.PutBooks(ctx, []domain.Book{testBook("9791100000001", "old title")})
	require.NoError(t, err)

	_, err = s.PutBooks(ctx, []domain.Book{testBook("9791100000001", "new title")})
	require.NoError(t, err)

	got, err := s.GetBook(ctx, "9791100000001")
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)

	count, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListBooks(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.PutBooks(ctx, []domain.Book{
		testBook("9791100000001", "a"),
		testBook("9791100000002", "b"),
		testBook("9791100000003", "c"),
	})
	require.NoError(t, err)

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestBookshelfLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	entry := &domain.BookshelfEntry{
		SavedAt: time.Now(),
		UserID:  "user_1",
		ISBN13:  "9791100000001",
		Title:   "저장한 책",
		Author:  "작가",
	}

	has, err := s.HasBookshelfEntry(ctx, "user_1", entry.ISBN13)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.PutBookshelfEntry(ctx, entry))

	has, err = s.HasBookshelfEntry(ctx, "user_1", entry.ISBN13)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := s.GetBookshelfEntry(ctx, "user_1", entry.ISBN13)
	require.NoError(t, err)
	assert.Equal(t, "저장한 책", got.Title)

	// Other users do not see the entry.
	has, err = s.HasBookshelfEntry(ctx, "user_2", entry.ISBN13)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.DeleteBookshelfEntry(ctx, "user_1", entry.ISBN13))
	has, err = s.HasBookshelfEntry(ctx, "user_1", entry.ISBN13)
	require.NoError(t, err)
	assert.False(t, has)

	// Idempotent delete.
	assert.NoError(t, s.DeleteBookshelfEntry(ctx, "user_1", entry.ISBN13))
}

func TestDeleteBookshelfForUser(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, isbn := range []string{"9791100000001", "9791100000002", "9791100000003"} {
		require.NoError(t, s.PutBookshelfEntry(ctx, &domain.BookshelfEntry{
			SavedAt: time.Now(),
			UserID:  "user_1",
			ISBN13:  isbn,
		}))
	}
	require.NoError(t, s.PutBookshelfEntry(ctx, &domain.BookshelfEntry{
		SavedAt: time.Now(),
		UserID:  "user_2",
		ISBN13:  "9791100000001",
	}))

	removed, err := s.DeleteBookshelfForUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	entries, err := s.ListBookshelf(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// user_2's shelf is untouched.
	entries, err = s.ListBookshelf(ctx, "user_2")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
