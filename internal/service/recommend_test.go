package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookdamapp/bookdam-server/internal/errors"
	"github.com/bookdamapp/bookdam-server/internal/kv"
	"github.com/bookdamapp/bookdam-server/internal/recommend"
)

// recommendBackend fakes the external recommendation service. Pages
// listed in failPages return 500; the rest return a full page of nine
// items with descending similarity within the page. When flatSim is
// set every item carries the same similarity instead.
type recommendBackend struct {
	emotion   string
	flatSim   bool
	failPages map[string]bool
	requests  []string
}

func (b *recommendBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze":
			fmt.Fprintf(w, `{"emotion":%q}`, b.emotion)
		case "/v1/recommend":
			page := r.URL.Query().Get("page")
			b.requests = append(b.requests, page)
			if b.failPages[page] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			items := make([]string, 0, 9)
			for i := 0; i < 9; i++ {
				// Page 1 scores highest, later pages lower.
				sim := 1.0 - float64(i)/100
				switch page {
				case "2":
					sim -= 0.1
				case "3":
					sim -= 0.2
				case "4":
					sim -= 0.3
				case "5":
					sim -= 0.4
				}
				if b.flatSim {
					sim = 0.5
				}
				items = append(items, fmt.Sprintf(
					`{"isbn13":"978%s%06d","title":"book p%s-%d","author":"a","similarity":%.3f}`,
					page, i, page, i, sim,
				))
			}
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
		default:
			http.NotFound(w, r)
		}
	}
}

func newRecommendService(t *testing.T, backend *recommendBackend) *RecommendService {
	t.Helper()

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := recommend.NewClient(srv.URL, time.Second, svcLogger())
	return NewRecommendService(client, kv.NewMemory(), svcLogger(), RecommendOptions{})
}

func TestSearchAggregatesAllPages(t *testing.T) {
	backend := &recommendBackend{emotion: "흥미", failPages: map[string]bool{}}
	svc := newRecommendService(t, backend)

	sess, err := svc.Search(context.Background(), "user_1", "여행")
	require.NoError(t, err)

	assert.Equal(t, "여행", sess.Query)
	assert.Equal(t, "흥미", sess.Emotion)
	assert.Len(t, sess.Results(), 45)
	assert.Equal(t, 5, sess.TotalPages())

	// Pages were fetched strictly in order.
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, backend.requests)
}

func TestSearchSkipsFailedPages(t *testing.T) {
	backend := &recommendBackend{
		emotion:   "중립",
		failPages: map[string]bool{"1": true, "3": true},
	}
	svc := newRecommendService(t, backend)

	sess, err := svc.Search(context.Background(), "user_1", "실패 섞인 검색")
	require.NoError(t, err)

	// Pages 2, 4, 5 contribute nine books each.
	results := sess.Results()
	require.Len(t, results, 27)
	assert.Equal(t, 3, sess.TotalPages())

	// All five pages were still attempted, in order.
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, backend.requests)

	// Merged results are sorted by similarity, best first.
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestSearchEqualSimilarityKeepsArrivalOrder(t *testing.T) {
	backend := &recommendBackend{emotion: "중립", flatSim: true, failPages: map[string]bool{}}
	svc := newRecommendService(t, backend)

	sess, err := svc.Search(context.Background(), "user_1", "동점")
	require.NoError(t, err)

	// With every similarity tied, the sort must not reorder anything:
	// results stay in page order, then item order within the page.
	results := sess.Results()
	require.Len(t, results, 45)
	for p := 0; p < 5; p++ {
		for i := 0; i < 9; i++ {
			want := fmt.Sprintf("978%d%06d", p+1, i)
			assert.Equal(t, want, results[p*9+i].ISBN13)
		}
	}
}

func TestSessionPageWindows(t *testing.T) {
	backend := &recommendBackend{
		emotion:   "중립",
		failPages: map[string]bool{"1": true, "3": true},
	}
	svc := newRecommendService(t, backend)

	sess, err := svc.Search(context.Background(), "user_1", "창밖")
	require.NoError(t, err)
	require.Len(t, sess.Results(), 27)

	assert.Len(t, sess.Page(1), 9)
	assert.Len(t, sess.Page(2), 9)
	assert.Len(t, sess.Page(3), 9)

	// Windows past the end are empty, never an error.
	assert.Empty(t, sess.Page(4))
	assert.Empty(t, sess.Page(100))

	// Page numbers below one clamp to the first window.
	assert.Equal(t, sess.Page(1), sess.Page(0))
}

func TestSessionFetchRunsOnce(t *testing.T) {
	backend := &recommendBackend{emotion: "감동", failPages: map[string]bool{}}
	svc := newRecommendService(t, backend)

	sess, err := svc.Search(context.Background(), "user_1", "한 번만")
	require.NoError(t, err)
	require.Len(t, backend.requests, 5)

	// A second run on the same session must not refetch.
	svc.run(context.Background(), sess)
	assert.Len(t, backend.requests, 5)
	assert.Len(t, sess.Results(), 45)
}

func TestSearchEmptyQuery(t *testing.T) {
	backend := &recommendBackend{emotion: "", failPages: map[string]bool{}}
	svc := newRecommendService(t, backend)

	_, err := svc.Search(context.Background(), "user_1", "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestRecentSearchesDedupeAndTrim(t *testing.T) {
	backend := &recommendBackend{emotion: "", failPages: map[string]bool{
		"1": true, "2": true, "3": true, "4": true, "5": true,
	}}
	svc := newRecommendService(t, backend)
	ctx := context.Background()

	for _, q := range []string{"하나", "둘", "셋", "넷"} {
		_, err := svc.Search(ctx, "user_1", q)
		require.NoError(t, err)
	}

	// Only the three most recent remain, newest first.
	recent, err := svc.RecentSearches(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"넷", "셋", "둘"}, recent)

	// Repeating a term moves it to the front without duplicating.
	_, err = svc.Search(ctx, "user_1", "셋")
	require.NoError(t, err)
	recent, err = svc.RecentSearches(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"셋", "넷", "둘"}, recent)
}

func TestRecentSearchesAreScopedToUser(t *testing.T) {
	backend := &recommendBackend{emotion: "", failPages: map[string]bool{
		"1": true, "2": true, "3": true, "4": true, "5": true,
	}}
	svc := newRecommendService(t, backend)
	ctx := context.Background()

	_, err := svc.Search(ctx, "user_a", "바다")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "user_b", "산")
	require.NoError(t, err)

	recentA, err := svc.RecentSearches(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"바다"}, recentA)

	recentB, err := svc.RecentSearches(ctx, "user_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"산"}, recentB)

	// Clearing one user's history leaves the other's untouched.
	require.NoError(t, svc.ClearRecentSearches(ctx, "user_b"))

	recentA, err = svc.RecentSearches(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"바다"}, recentA)

	recentB, err = svc.RecentSearches(ctx, "user_b")
	require.NoError(t, err)
	assert.Empty(t, recentB)
}

func TestRemoveAndClearRecentSearches(t *testing.T) {
	backend := &recommendBackend{emotion: "", failPages: map[string]bool{
		"1": true, "2": true, "3": true, "4": true, "5": true,
	}}
	svc := newRecommendService(t, backend)
	ctx := context.Background()

	for _, q := range []string{"하나", "둘"} {
		_, err := svc.Search(ctx, "user_1", q)
		require.NoError(t, err)
	}

	require.NoError(t, svc.RemoveRecentSearch(ctx, "user_1", "하나"))
	recent, err := svc.RecentSearches(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"둘"}, recent)

	// Removing an absent term is not an error.
	assert.NoError(t, svc.RemoveRecentSearch(ctx, "user_1", "없는 검색어"))

	require.NoError(t, svc.ClearRecentSearches(ctx, "user_1"))
	recent, err = svc.RecentSearches(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, recent)
}
