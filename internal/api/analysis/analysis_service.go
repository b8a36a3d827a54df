package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"geostrat/internal/api"
)

var _ Service = (*ServiceImpl)(nil)

// Service serves the analysis time series with a time-range and metric filter.
type Service interface {
	Series(ctx context.Context, timeRange, metric string) ([]MetricPoint, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *gocache.Cache
	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

func NewService(repo Repository, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		now:    time.Now,
	}
}

func (s *ServiceImpl) Series(ctx context.Context, timeRange, metric string) ([]MetricPoint, error) {
	if timeRange == "" {
		timeRange = "decade"
	}
	if metric == "" {
		metric = MetricTrade
	}
	if _, ok := (Record{}).MetricValue(metric); !ok {
		return nil, fmt.Errorf("unknown metric %q: %w", metric, api.ErrBadRequest)
	}

	cacheKey := timeRange + ":" + metric
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]MetricPoint), nil
	}

	yearsToLookBack := 5
	if timeRange == "decade" {
		yearsToLookBack = 10
	}
	startYear := s.now().Year() - yearsToLookBack

	records, err := s.repo.ListSince(ctx, startYear)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no analysis data since %d: %w", startYear, api.ErrNotFound)
	}

	points := make([]MetricPoint, 0, len(records))
	for _, rec := range records {
		value, _ := rec.MetricValue(metric)
		points = append(points, MetricPoint{Year: rec.Year, Metric: metric, Value: value})
	}

	s.cache.Set(cacheKey, points, gocache.DefaultExpiration)
	s.logger.DebugContext(ctx, "Analysis series computed",
		slog.String("time_range", timeRange),
		slog.String("metric", metric),
		slog.Int("points", len(points)),
	)
	return points, nil
}
