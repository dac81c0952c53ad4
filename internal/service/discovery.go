package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/kv"
)

// dailyPicksKey is where the daily pick cache lives in the KV store.
const dailyPicksKey = "discovery:daily"

// dailyDateLayout is the calendar-day granularity of the daily cache.
const dailyDateLayout = "2006-01-02"

// dailyPicksCache is the persisted daily pick set.
type dailyPicksCache struct {
	Date  string   `json:"date"`
	ISBNs []string `json:"isbns"`
}

// DiscoveryService produces the daily pick set and the per-process
// emotion pick set.
type DiscoveryService struct {
	catalog *CatalogService
	cache   kv.Store
	logger  *slog.Logger

	dailyCount   int
	pollInterval time.Duration
	maxWait      time.Duration

	// Emotion picks are chosen once per process and never re-derived,
	// even if the catalog changes afterwards.
	mu            sync.Mutex
	emotionChosen bool
	emotionTag    string
	emotionPicks  []domain.Book
}

// DiscoveryOptions configures a DiscoveryService.
type DiscoveryOptions struct {
	DailyCount   int           // Size of a regenerated daily pick set
	PollInterval time.Duration // Catalog readiness poll interval
	MaxWait      time.Duration // Bound on the catalog readiness wait
}

// NewDiscoveryService creates a discovery service.
func NewDiscoveryService(catalog *CatalogService, cache kv.Store, logger *slog.Logger, opts DiscoveryOptions) *DiscoveryService {
	if opts.DailyCount <= 0 {
		opts.DailyCount = 10
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 300 * time.Millisecond
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 30 * time.Second
	}
	return &DiscoveryService{
		catalog:      catalog,
		cache:        cache,
		logger:       logger,
		dailyCount:   opts.DailyCount,
		pollInterval: opts.PollInterval,
		maxWait:      opts.MaxWait,
	}
}

// DailyPicks returns today's pick set.
//
// A cached set is reused when its date equals today and at least one of
// its ISBNs still resolves in the catalog; the cache carries no count
// guarantee, so a partially invalidated set returns fewer books.
// Otherwise a fresh set is drawn by uniform shuffle and persisted.
func (s *DiscoveryService) DailyPicks(ctx context.Context, now time.Time) ([]domain.Book, error) {
	if err := s.catalog.WaitReady(ctx, s.pollInterval, s.maxWait); err != nil {
		return nil, err
	}

	today := now.Format(dailyDateLayout)

	var cached dailyPicksCache
	err := s.cache.Get(ctx, dailyPicksKey, &cached)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		s.logger.Warn("daily pick cache read failed, regenerating", "error", err)
	}
	if err == nil && cached.Date == today {
		picks := s.resolve(cached.ISBNs)
		if len(picks) > 0 {
			s.logger.Debug("daily picks served from cache",
				"date", today,
				"count", len(picks),
			)
			return picks, nil
		}
		s.logger.Info("cached daily picks no longer resolve, regenerating", "date", today)
	}

	picks := s.draw()
	isbns := make([]string, len(picks))
	for i := range picks {
		isbns[i] = picks[i].ISBN13
	}

	if err := s.cache.Set(ctx, dailyPicksKey, dailyPicksCache{Date: today, ISBNs: isbns}); err != nil {
		// A failed cache write means tomorrow's set regenerates early,
		// nothing worse.
		s.logger.Warn("daily pick cache write failed", "error", err)
	}

	s.logger.Info("daily picks regenerated", "date", today, "count", len(picks))
	return picks, nil
}

// resolve filters the catalog, in catalog order, down to the cached ISBNs.
func (s *DiscoveryService) resolve(isbns []string) []domain.Book {
	member := make(map[string]bool, len(isbns))
	for _, isbn := range isbns {
		member[isbn] = true
	}

	snapshot := s.catalog.Snapshot()
	picks := make([]domain.Book, 0, len(isbns))
	for i := range snapshot {
		if member[snapshot[i].ISBN13] {
			picks = append(picks, snapshot[i])
		}
	}
	return picks
}

// draw shuffles the catalog uniformly and takes the first dailyCount books.
func (s *DiscoveryService) draw() []domain.Book {
	snapshot := s.catalog.Snapshot()
	shuffled := make([]domain.Book, len(snapshot))
	copy(shuffled, snapshot)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:min(s.dailyCount, len(shuffled))]
}

// EmotionPicks returns the process-lifetime emotion pick set, choosing a
// tag on first call. If the catalog is still empty the call polls up to
// the configured bound and then fails with UNAVAILABLE without memoizing,
// so a later call can succeed. A chosen tag with zero matching books
// memoizes an empty list; it is not an error and the tag is not redrawn.
func (s *DiscoveryService) EmotionPicks(ctx context.Context) (string, []domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emotionChosen {
		return s.emotionTag, s.emotionPicks, nil
	}

	if err := s.catalog.WaitReady(ctx, s.pollInterval, s.maxWait); err != nil {
		return "", nil, err
	}

	tag := domain.EmotionTags[rand.IntN(len(domain.EmotionTags))]

	snapshot := s.catalog.Snapshot()
	matched := make([]domain.Book, 0)
	for i := range snapshot {
		if snapshot[i].Emotion == tag {
			matched = append(matched, snapshot[i])
		}
	}
	rand.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})
	picks := matched[:min(s.dailyCount, len(matched))]

	s.emotionChosen = true
	s.emotionTag = tag
	s.emotionPicks = picks

	s.logger.Info("emotion picks chosen",
		"emotion", tag,
		"count", len(picks),
	)
	return tag, picks, nil
}
