// Package main provides a tool to import a book catalog into the database.
//
// The input is a JSON array of book records. Imported books replace existing
// records with the same ISBN-13, and the search index is rebuilt afterwards
// so full-text search covers the new catalog.
//
// Usage:
//
//	go run ./cmd/seed --file catalog.json
//	go run ./cmd/seed --file catalog.json --data ~/Bookdam/data
package main

import (
	"context"
	"encoding/json/v2"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/search"
	"github.com/bookdamapp/bookdam-server/internal/store"
)

var (
	catalogFile = flag.String("file", "", "Path to the JSON catalog file (required)")
	dataPath    = flag.String("data", "", "Data directory (default: ~/Bookdam/data)")
	skipIndex   = flag.Bool("skip-index", false, "Skip rebuilding the search index")
)

func main() {
	flag.Parse()

	if *catalogFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	base := *dataPath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = filepath.Join(home, "Bookdam", "data")
	}

	f, err := os.Open(*catalogFile)
	if err != nil {
		log.Fatalf("Failed to open catalog file: %v", err)
	}
	defer f.Close()

	var books []domain.Book
	if err := json.UnmarshalRead(f, &books); err != nil {
		log.Fatalf("Failed to parse catalog file: %v", err)
	}

	fmt.Printf("Read %d records from %s\n", len(books), *catalogFile)

	dbPath := filepath.Join(base, "db")
	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	stored, err := s.PutBooks(ctx, books)
	if err != nil {
		log.Fatalf("Failed to store books: %v", err)
	}
	fmt.Printf("Stored %d books (%d invalid records skipped)\n", stored, len(books)-stored)

	if *skipIndex {
		return
	}

	index, err := search.NewIndex(search.Options{DataPath: base})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	if err := index.Rebuild(); err != nil {
		log.Fatalf("Failed to rebuild search index: %v", err)
	}

	docs := make([]*search.Document, 0, len(books))
	for i := range books {
		if !books[i].Valid() {
			continue
		}
		docs = append(docs, search.BookToDocument(&books[i]))
	}

	if err := index.IndexDocuments(docs); err != nil {
		log.Fatalf("Failed to index books: %v", err)
	}

	count, _ := index.DocumentCount()
	fmt.Printf("Indexed %d books\n", count)
}
