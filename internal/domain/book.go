// Package domain contains the core business entities and domain logic for the Bookdam catalog.
package domain

import "slices"

// Book represents a book in the catalog.
// ISBN13 is the identity; two books with the same ISBN13 are the same book.
type Book struct {
	ISBN13       string  `json:"isbn13"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Description  string  `json:"description,omitempty"`
	Cover        string  `json:"cover,omitempty"`
	Publisher    string  `json:"publisher,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	Link         string  `json:"link,omitempty"`
	Similarity   float64 `json:"similarity,omitempty"`
	IsBookmarked bool    `json:"is_bookmarked"`
}

// Valid reports whether the book carries the fields every catalog record must
// have. Records failing this check are dropped at load time rather than
// surfaced as errors.
func (b *Book) Valid() bool {
	return b.ISBN13 != "" && b.Title != "" && b.Author != ""
}

// EmotionTags is the fixed set of affective categories a book can carry.
// A book's Emotion is either one of these or empty.
var EmotionTags = []string{
	"감동", // moving
	"공포", // horror
	"분노", // anger
	"불안", // anxiety
	"쉬움", // easy read
	"슬픔", // sadness
	"중립", // neutral
	"흥미", // intriguing
}

// ValidEmotionTag reports whether tag is one of the fixed emotion tags.
func ValidEmotionTag(tag string) bool {
	return slices.Contains(EmotionTags, tag)
}
