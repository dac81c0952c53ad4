// Package search provides full-text catalog search using Bleve.
// Titles, authors, and publishers are searchable with CJK-aware analysis
// so Korean queries match without exact substrings.
package search

import "github.com/bookdamapp/bookdam-server/internal/domain"

// Document is the indexed representation of a catalog book.
type Document struct {
	ISBN13    string `json:"isbn13"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher,omitempty"`
	Emotion   string `json:"emotion,omitempty"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names (capitalized), but the index
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"isbn13": d.ISBN13,
		"title":  d.Title,
		"author": d.Author,
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Emotion != "" {
		m["emotion"] = d.Emotion
	}
	return m
}

// BookToDocument converts a catalog book to its indexed form.
func BookToDocument(book *domain.Book) *Document {
	return &Document{
		ISBN13:    book.ISBN13,
		Title:     book.Title,
		Author:    book.Author,
		Publisher: book.Publisher,
		Emotion:   book.Emotion,
	}
}
