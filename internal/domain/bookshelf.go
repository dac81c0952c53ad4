package domain

import "time"

// BookshelfEntry is a per-user bookmark record. The store owns these;
// responses mirror their presence into Book.IsBookmarked per request.
type BookshelfEntry struct {
	SavedAt time.Time `json:"saved_at"` // Set server-side at write time
	UserID  string    `json:"user_id"`
	ISBN13  string    `json:"isbn13"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Cover   string    `json:"cover,omitempty"`
}
