package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/ranking"
	"github.com/dcimring/pickleball-ratings/internal/tourney"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxHints caps the "did you mean" names attached to an unmatched row
const maxHints = 3

// RankingSource fetches the current snapshot of one mode
type RankingSource interface {
	CurrentRankings(ctx context.Context, mode models.Mode) (models.Collection, error)
	Ping(ctx context.Context) error
}

// SnapshotCache shares the loaded snapshot between server instances
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) (int64, error)
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
	GetVersion(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// RankingService holds the ranked collections in memory and derives
// standings and tourney reports from them
type RankingService struct {
	source RankingSource
	cache  SnapshotCache
	logger *zap.Logger

	current atomic.Pointer[models.Snapshot]
	loaded  atomic.Bool

	// serializes Load and Sync so snapshots are installed in order
	mu sync.Mutex
}

// NewRankingService creates a new ranking service. cache may be nil.
func NewRankingService(source RankingSource, cache SnapshotCache, logger *zap.Logger) *RankingService {
	return &RankingService{
		source: source,
		cache:  cache,
		logger: logger.Named("rankings"),
	}
}

// Load fetches both modes from the ranking source and installs the result.
// A mode whose fetch fails keeps its previously loaded rows, or degrades to
// an empty collection before the first load; the combined fetch error is
// returned after the snapshot is installed. The cache is
// only written when both modes were fetched.
func (s *RankingService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		singles, doubles       models.Collection
		singlesErr, doublesErr error
		g                      errgroup.Group
	)
	g.Go(func() error {
		singles, singlesErr = s.fetch(ctx, models.ModeSingles)
		return nil
	})
	g.Go(func() error {
		doubles, doublesErr = s.fetch(ctx, models.ModeDoubles)
		return nil
	})
	_ = g.Wait()

	prev := s.current.Load()
	if prev != nil {
		if singlesErr != nil {
			singles = prev.Singles
		}
		if doublesErr != nil {
			doubles = prev.Doubles
		}
	}

	snap := models.Snapshot{
		Singles:  singles,
		Doubles:  doubles,
		LoadedAt: time.Now().UTC(),
	}
	if prev != nil {
		snap.Version = prev.Version
	}

	fetchErr := multierr.Combine(singlesErr, doublesErr)
	if fetchErr == nil && s.cache != nil {
		version, err := s.cache.SaveSnapshot(ctx, snap)
		if err != nil {
			s.logger.Warn("failed to cache snapshot", zap.Error(err))
		} else {
			snap.Version = version
		}
	}

	s.install(snap)
	s.logger.Info("rankings loaded",
		zap.Int("singles", len(snap.Singles)),
		zap.Int("doubles", len(snap.Doubles)),
		zap.Int64("version", snap.Version))

	return fetchErr
}

func (s *RankingService) fetch(ctx context.Context, mode models.Mode) (models.Collection, error) {
	rows, err := s.source.CurrentRankings(ctx, mode)
	if err != nil {
		s.logger.Error("failed to fetch rankings", zap.String("mode", string(mode)), zap.Error(err))
		return models.Collection{}, fmt.Errorf("fetch %s: %w", mode, err)
	}
	if rows == nil {
		rows = models.Collection{}
	}
	return rows, nil
}

// Sync installs the cached snapshot when its version is newer than the one
// held in memory. It reports whether a new snapshot was installed.
func (s *RankingService) Sync(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.cache.LoadSnapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("load cached snapshot: %w", err)
	}
	if prev := s.current.Load(); prev != nil && snap.Version <= prev.Version {
		return false, nil
	}

	s.install(snap)
	s.logger.Info("rankings synced from cache", zap.Int64("version", snap.Version))
	return true, nil
}

func (s *RankingService) install(snap models.Snapshot) {
	s.current.Store(&snap)
	s.loaded.Store(true)
}

// Snapshot returns the snapshot currently held in memory
func (s *RankingService) Snapshot() models.Snapshot {
	if snap := s.current.Load(); snap != nil {
		return *snap
	}
	return models.Snapshot{Singles: models.Collection{}, Doubles: models.Collection{}}
}

// Loading reports whether no snapshot has been installed yet
func (s *RankingService) Loading() bool {
	return !s.loaded.Load()
}

// Standings returns the filtered and sorted view of one mode
func (s *RankingService) Standings(mode models.Mode, search string, spec ranking.SortSpec) models.StandingsResponse {
	rows := ranking.View(s.Snapshot().Collection(mode), search, spec)
	return models.StandingsResponse{
		Mode:      mode,
		Search:    search,
		SortKey:   string(spec.Key),
		Direction: string(spec.Direction),
		Data:      rows,
		Total:     len(rows),
		Loading:   s.Loading(),
	}
}

// TourneyCheck resolves pasted names against both modes. Names without a
// match in either mode get fuzzy near-miss hints.
func (s *RankingService) TourneyCheck(raw string) models.TourneyReport {
	snap := s.Snapshot()
	results := tourney.Check(raw, snap.Singles, snap.Doubles)

	var pool []string
	report := models.TourneyReport{
		Results: make([]models.TourneyRow, 0, len(results)),
		Total:   len(results),
	}
	for _, r := range results {
		row := models.TourneyRow{TourneyMatchResult: r}
		if r.Matched() {
			report.Matched++
		} else {
			if pool == nil {
				pool = ranking.DistinctNames(snap)
			}
			row.DidYouMean = tourney.Closest(r.Name, pool, maxHints)
		}
		report.Results = append(report.Results, row)
	}
	return report
}

// HealthCheck checks the ranking source and the cache
func (s *RankingService) HealthCheck(ctx context.Context) error {
	if err := s.source.Ping(ctx); err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// GetVersion returns the cached snapshot version, used by the hub
func (s *RankingService) GetVersion(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return s.Snapshot().Version, nil
	}
	return s.cache.GetVersion(ctx)
}
