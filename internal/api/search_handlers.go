package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search over the local catalog",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecentSearches",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/recent",
		Summary:     "List recent searches",
		Description: "Returns the most recent search terms, newest first",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecentSearches)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeRecentSearch",
		Method:      http.MethodDelete,
		Path:        "/api/v1/search/recent/{query}",
		Summary:     "Remove recent search",
		Description: "Removes a single term from the recent search list",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveRecentSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearRecentSearches",
		Method:      http.MethodDelete,
		Path:        "/api/v1/search/recent",
		Summary:     "Clear recent searches",
		Description: "Removes all recent search terms",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClearRecentSearches)
}

// === DTOs ===

// SearchBooksInput contains full-text search parameters.
type SearchBooksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
}

// SearchBooksResponse contains search results.
type SearchBooksResponse struct {
	Query string         `json:"query" doc:"Search query"`
	Books []BookResponse `json:"books" doc:"Matching books"`
	Total int            `json:"total" doc:"Number of results"`
}

// SearchBooksOutput wraps the search response for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

// RecentSearchesInput contains parameters for listing recent searches.
type RecentSearchesInput struct {
	Authorization string `header:"Authorization"`
}

// RecentSearchesResponse contains recent search terms.
type RecentSearchesResponse struct {
	Searches []string `json:"searches" doc:"Recent search terms, newest first"`
}

// RecentSearchesOutput wraps the recent searches response for Huma.
type RecentSearchesOutput struct {
	Body RecentSearchesResponse
}

// RemoveRecentSearchInput contains parameters for removing a term.
type RemoveRecentSearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `path:"query" doc:"Search term to remove"`
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.savedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Search.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchBooksOutput{
		Body: SearchBooksResponse{
			Query: input.Query,
			Books: toBookResponses(books, saved),
			Total: len(books),
		},
	}, nil
}

func (s *Server) handleListRecentSearches(ctx context.Context, _ *RecentSearchesInput) (*RecentSearchesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	searches, err := s.services.Recommend.RecentSearches(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &RecentSearchesOutput{
		Body: RecentSearchesResponse{Searches: searches},
	}, nil
}

func (s *Server) handleRemoveRecentSearch(ctx context.Context, input *RemoveRecentSearchInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recommend.RemoveRecentSearch(ctx, userID, input.Query); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "search removed"}}, nil
}

func (s *Server) handleClearRecentSearches(ctx context.Context, _ *RecentSearchesInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recommend.ClearRecentSearches(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "searches cleared"}}, nil
}
