package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/cache"
	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/observability"
	"github.com/spec-kit/safety-suggestions/internal/repository"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// AnalyticsService aggregates suggestion counts for the admin dashboard.
type AnalyticsService struct {
	repo   repository.AnalyticsRepository
	cache  cache.AnalyticsCache
	logger *zap.Logger
}

// NewAnalyticsService constructs the service. A nil cache disables caching.
func NewAnalyticsService(repo repository.AnalyticsRepository, c cache.AnalyticsCache, logger *zap.Logger) *AnalyticsService {
	if c == nil {
		c = cache.NoopAnalyticsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: c, logger: logger}
}

// Get returns the cached snapshot when present, otherwise computes and caches it.
// Cache failures fall back to the database.
func (s *AnalyticsService) Get(ctx context.Context) (*domain.SuggestionAnalytics, error) {
	cached, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		observability.AnalyticsCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("analytics cache read failed", zap.Error(err))
	case cached != nil:
		observability.AnalyticsCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		observability.AnalyticsCacheTotal.WithLabelValues("miss").Inc()
	}

	// The generation is read before the queries run so an invalidation that lands
	// while they execute discards this snapshot.
	generation, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("analytics cache generation read failed", zap.Error(genErr))
	}

	analytics, err := s.compute(ctx)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	if genErr != nil {
		return analytics, nil
	}
	err = s.cache.Set(ctx, generation, analytics)
	switch {
	case errors.Is(err, cache.ErrGenerationChanged):
		s.logger.Debug("analytics snapshot superseded by invalidation")
	case err != nil:
		s.logger.Warn("analytics cache write failed", zap.Error(err))
	}
	return analytics, nil
}

func (s *AnalyticsService) compute(ctx context.Context) (*domain.SuggestionAnalytics, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDepartment, err := s.repo.CountByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	trend, err := s.repo.DailySubmissions(ctx, repository.TrendWindowDays)
	if err != nil {
		return nil, err
	}
	return &domain.SuggestionAnalytics{
		StatusCounts:     byStatus,
		DepartmentCounts: byDepartment,
		SubmissionsTrend: trend,
	}, nil
}
