package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/constants"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/observability"
	"github.com/riverkeep/river-ops/internal/repository"
)

// Dashboard is the site-wide overview.
type Dashboard struct {
	Totals            aggregate.Totals
	WeedingSummary    []string
	StageDistribution []aggregate.StageCount
	RecentVisits      []models.VisitLog
	GeneratedAt       time.Time
}

// DashboardService computes the overview and caches it until the next write
// or until the TTL expires. A TTL of zero or less disables caching.
type DashboardService struct {
	sectionRepo repository.SectionRepository
	visitRepo   repository.VisitRepository
	metricRepo  repository.MetricRepository
	cache       *cache.Cache
	metrics     *observability.FieldMetrics
	now         Clock
}

func NewDashboardService(
	sectionRepo repository.SectionRepository,
	visitRepo repository.VisitRepository,
	metricRepo repository.MetricRepository,
	ttl time.Duration,
	metrics *observability.FieldMetrics,
) *DashboardService {
	s := &DashboardService{
		sectionRepo: sectionRepo,
		visitRepo:   visitRepo,
		metricRepo:  metricRepo,
		metrics:     metrics,
		now:         time.Now,
	}
	// go-cache treats a zero default expiration as "never expire".
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Invalidate drops the cached dashboard.
func (s *DashboardService) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(constants.DashboardCacheKey)
	}
}

func (s *DashboardService) Get() (*Dashboard, error) {
	if s.cache == nil {
		return s.compute()
	}
	if cached, ok := s.cache.Get(constants.DashboardCacheKey); ok {
		if d, ok := cached.(*Dashboard); ok {
			s.metrics.RecordDashboardCache(true)
			return d, nil
		}
	}
	s.metrics.RecordDashboardCache(false)

	d, err := s.compute()
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(constants.DashboardCacheKey, d)
	return d, nil
}

func (s *DashboardService) compute() (*Dashboard, error) {
	sums, err := s.metricRepo.SumByType(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum metrics: %w", err)
	}
	totals := aggregate.TotalsFromSums(sums)

	weeds, err := s.metricRepo.SumWeedsByLabel(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weeds: %w", err)
	}

	counts, err := s.sectionRepo.CountByStage()
	if err != nil {
		return nil, fmt.Errorf("failed to count sections by stage: %w", err)
	}

	recent, err := s.visitRepo.Recent(constants.RecentVisitLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent visits: %w", err)
	}

	return &Dashboard{
		Totals:            totals,
		WeedingSummary:    aggregate.WeedingSummary(weeds, totals.Weeds),
		StageDistribution: aggregate.StageDistribution(counts),
		RecentVisits:      recent,
		GeneratedAt:       s.now(),
	}, nil
}
