package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerDiscoveryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDailyPicks",
		Method:      http.MethodGet,
		Path:        "/api/v1/discovery/daily",
		Summary:     "Daily picks",
		Description: "Returns today's randomized selection, stable for the calendar day",
		Tags:        []string{"Discovery"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDailyPicks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEmotionPicks",
		Method:      http.MethodGet,
		Path:        "/api/v1/discovery/emotion",
		Summary:     "Emotion picks",
		Description: "Returns books for the emotion tag drawn for this server run",
		Tags:        []string{"Discovery"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEmotionPicks)
}

// === DTOs ===

// DailyPicksInput contains parameters for the daily selection.
type DailyPicksInput struct {
	Authorization string `header:"Authorization"`
}

// DailyPicksResponse contains today's selection.
type DailyPicksResponse struct {
	Date  string         `json:"date" doc:"Calendar date the picks belong to"`
	Books []BookResponse `json:"books" doc:"Selected books"`
}

// DailyPicksOutput wraps the daily picks response for Huma.
type DailyPicksOutput struct {
	Body DailyPicksResponse
}

// EmotionPicksInput contains parameters for the emotion selection.
type EmotionPicksInput struct {
	Authorization string `header:"Authorization"`
}

// EmotionPicksResponse contains the emotion tag and its books.
type EmotionPicksResponse struct {
	Emotion string         `json:"emotion" doc:"Emotion tag drawn for this server run"`
	Books   []BookResponse `json:"books" doc:"Books carrying the tag"`
}

// EmotionPicksOutput wraps the emotion picks response for Huma.
type EmotionPicksOutput struct {
	Body EmotionPicksResponse
}

// === Handlers ===

func (s *Server) handleDailyPicks(ctx context.Context, _ *DailyPicksInput) (*DailyPicksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.savedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	books, err := s.services.Discovery.DailyPicks(ctx, now)
	if err != nil {
		return nil, err
	}

	return &DailyPicksOutput{
		Body: DailyPicksResponse{
			Date:  now.Format("2006-01-02"),
			Books: toBookResponses(books, saved),
		},
	}, nil
}

func (s *Server) handleEmotionPicks(ctx context.Context, _ *EmotionPicksInput) (*EmotionPicksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.savedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	emotion, books, err := s.services.Discovery.EmotionPicks(ctx)
	if err != nil {
		return nil, err
	}

	return &EmotionPicksOutput{
		Body: EmotionPicksResponse{
			Emotion: emotion,
			Books:   toBookResponses(books, saved),
		},
	}, nil
}
