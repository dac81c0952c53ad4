package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	domainerrors "github.com/bookdamapp/bookdam-server/internal/errors"
	"github.com/bookdamapp/bookdam-server/internal/kv"
	"github.com/bookdamapp/bookdam-server/internal/recommend"
)

// recentSearchesKey is where a user's recent search terms live in the
// KV store. History is per user; one account can never read or clear
// another's.
func recentSearchesKey(userID string) string {
	return "search:recent:" + userID
}

// RecommendService aggregates remote recommendations: a query is
// classified once, then a fixed number of pages is fetched strictly in
// order and the merged results are windowed back out page by page.
type RecommendService struct {
	client *recommend.Client
	cache  kv.Store
	logger *slog.Logger

	pageSize  int
	maxPages  int
	recentMax int
}

// RecommendOptions configures a RecommendService.
type RecommendOptions struct {
	PageSize  int // Window size of Session.Page
	MaxPages  int // Pages fetched per search
	RecentMax int // Recent search terms kept
}

// NewRecommendService creates a recommendation service.
func NewRecommendService(client *recommend.Client, cache kv.Store, logger *slog.Logger, opts RecommendOptions) *RecommendService {
	if opts.PageSize <= 0 {
		opts.PageSize = recommend.PageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	if opts.RecentMax <= 0 {
		opts.RecentMax = 3
	}
	return &RecommendService{
		client:    client,
		cache:     cache,
		logger:    logger,
		pageSize:  opts.PageSize,
		maxPages:  opts.MaxPages,
		recentMax: opts.RecentMax,
	}
}

// Session is the per-query aggregation state. Its fetch runs at most
// once; results are immutable afterwards.
type Session struct {
	Query   string
	Emotion string

	pageSize int
	once     sync.Once
	results  []domain.Book
}

// Search records the query in the user's recent-search history,
// classifies it, and aggregates all recommendation pages. The returned
// session is done: every page window is available via Page.
func (s *RecommendService) Search(ctx context.Context, userID, query string) (*Session, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.Validation("search query cannot be empty")
	}

	if err := s.recordSearch(ctx, userID, query); err != nil {
		// History is a convenience; a failed write must not block the search.
		s.logger.Warn("recording recent search failed", "query", query, "error", err)
	}

	sess := &Session{Query: query, pageSize: s.pageSize}
	s.run(ctx, sess)
	return sess, nil
}

// run executes the classify-then-fetch sequence exactly once per session.
// Classification completes before the first page fetch so every page
// carries the same emotion filter.
func (s *RecommendService) run(ctx context.Context, sess *Session) {
	sess.once.Do(func() {
		sess.Emotion = s.client.Classify(ctx, sess.Query)

		for page := 1; page <= s.maxPages; page++ {
			books, err := s.client.FetchPage(ctx, sess.Query, sess.Emotion, page)
			if err != nil {
				// A failed page contributes nothing; the sequence continues.
				s.logger.Warn("recommendation page failed, continuing",
					"query", sess.Query,
					"page", page,
					"error", err,
				)
				continue
			}
			sess.results = append(sess.results, books...)
		}

		// Stable: ties keep arrival order.
		slices.SortStableFunc(sess.results, func(a, b domain.Book) int {
			return cmp.Compare(b.Similarity, a.Similarity)
		})

		s.logger.Info("recommendation search aggregated",
			"query", sess.Query,
			"emotion", sess.Emotion,
			"results", len(sess.results),
		)
	})
}

// Results returns all aggregated results, best similarity first.
func (sess *Session) Results() []domain.Book {
	return sess.results
}

// Page returns the n-th fixed-size window of the results (1-based).
// Windows past the end are empty, never an error.
func (sess *Session) Page(n int) []domain.Book {
	if n < 1 {
		n = 1
	}
	start := (n - 1) * sess.pageSize
	if start >= len(sess.results) {
		return []domain.Book{}
	}
	end := min(start+sess.pageSize, len(sess.results))
	return sess.results[start:end]
}

// TotalPages returns the number of non-empty windows.
func (sess *Session) TotalPages() int {
	return (len(sess.results) + sess.pageSize - 1) / sess.pageSize
}

// recordSearch prepends the term to the recent-search history. An
// existing match moves to the front instead of duplicating, and the
// history is trimmed to the configured maximum.
func (s *RecommendService) recordSearch(ctx context.Context, userID, term string) error {
	var recent []string
	if err := s.cache.Get(ctx, recentSearchesKey(userID), &recent); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}

	next := make([]string, 0, len(recent)+1)
	next = append(next, term)
	for _, t := range recent {
		if t != term {
			next = append(next, t)
		}
	}
	if len(next) > s.recentMax {
		next = next[:s.recentMax]
	}

	return s.cache.Set(ctx, recentSearchesKey(userID), next)
}

// RecentSearches returns the user's recent search terms, most recent first.
func (s *RecommendService) RecentSearches(ctx context.Context, userID string) ([]string, error) {
	var recent []string
	err := s.cache.Get(ctx, recentSearchesKey(userID), &recent)
	if errors.Is(err, kv.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return recent, nil
}

// RemoveRecentSearch deletes one term from the user's history.
// Removing an absent term is not an error.
func (s *RecommendService) RemoveRecentSearch(ctx context.Context, userID, term string) error {
	recent, err := s.RecentSearches(ctx, userID)
	if err != nil {
		return err
	}

	next := slices.DeleteFunc(recent, func(t string) bool { return t == term })
	return s.cache.Set(ctx, recentSearchesKey(userID), next)
}

// ClearRecentSearches empties the user's history.
func (s *RecommendService) ClearRecentSearches(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, recentSearchesKey(userID))
}
