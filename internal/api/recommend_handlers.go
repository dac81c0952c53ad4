package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerRecommendRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recommendBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommend",
		Summary:     "Recommend books",
		Description: "Classifies the query's emotion and returns recommendations ordered by similarity",
		Tags:        []string{"Recommend"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecommendBooks)
}

// === DTOs ===

// RecommendBooksInput contains recommendation parameters.
type RecommendBooksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Page          int    `query:"page" default:"1" minimum:"1" doc:"Result page, 9 books per page"`
}

// RecommendBooksResponse contains one page of recommendations.
type RecommendBooksResponse struct {
	Query      string         `json:"query" doc:"Search query"`
	Emotion    string         `json:"emotion,omitempty" doc:"Emotion the query was classified as"`
	Page       int            `json:"page" doc:"Current page"`
	TotalPages int            `json:"total_pages" doc:"Number of pages available"`
	Total      int            `json:"total" doc:"Total recommendations gathered"`
	Books      []BookResponse `json:"books" doc:"Recommendations for this page"`
}

// RecommendBooksOutput wraps the recommendation response for Huma.
type RecommendBooksOutput struct {
	Body RecommendBooksResponse
}

// === Handlers ===

func (s *Server) handleRecommendBooks(ctx context.Context, input *RecommendBooksInput) (*RecommendBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.savedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess, err := s.services.Recommend.Search(ctx, userID, input.Query)
	if err != nil {
		return nil, err
	}

	books := sess.Page(input.Page)

	return &RecommendBooksOutput{
		Body: RecommendBooksResponse{
			Query:      sess.Query,
			Emotion:    sess.Emotion,
			Page:       input.Page,
			TotalPages: sess.TotalPages(),
			Total:      len(sess.Results()),
			Books:      toBookResponses(books, saved),
		},
	}, nil
}
