package services

import (
	"context"
	"fmt"
	"sync"

	"rateio/internal/cache"
	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/metrics"
	"rateio/internal/storage"
)

const summaryKey = "summary"

// DashboardService aggregates every stored expense into totals and a
// settlement plan. Results are cached until the next write.
type DashboardService struct {
	repo    storage.Ledger
	cache   cache.Cache[core.Summary]
	metrics *metrics.Metrics
	logger  *log.Logger

	// generation counts invalidations. A summary computed across one is
	// returned but never cached.
	mu         sync.Mutex
	generation uint64
}

func NewDashboardService(repo storage.Ledger, c cache.Cache[core.Summary], m *metrics.Metrics, logger *log.Logger) *DashboardService {
	return &DashboardService{
		repo:    repo,
		cache:   c,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentDashboard),
	}
}

// Summary returns the cached summary or recomputes it. Callers must not
// mutate the returned maps.
func (s *DashboardService) Summary(ctx context.Context) (core.Summary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.Get(summaryKey); ok {
			s.metrics.DashboardCache(true)
			return summary, nil
		}
		s.metrics.DashboardCache(false)
	}

	gen := s.currentGeneration()
	summary, err := s.Compute(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	if s.cache != nil {
		s.mu.Lock()
		if s.generation == gen {
			s.cache.Set(summaryKey, summary)
		}
		s.mu.Unlock()
	}
	return summary, nil
}

// Compute aggregates straight from storage, bypassing the cache.
func (s *DashboardService) Compute(ctx context.Context) (core.Summary, error) {
	expenses, err := s.repo.ListExpenses(ctx, storage.ExpenseFilter{})
	if err != nil {
		return core.Summary{}, fmt.Errorf("load expenses for summary: %w", err)
	}
	summary := core.Summarize(expenses)
	s.metrics.SettlementTransfers(len(summary.Settlements))
	s.logger.DebugContext(ctx, "Dashboard summary computed",
		"expenses", len(expenses),
		log.FieldTransfers, len(summary.Settlements))
	return summary, nil
}

func (s *DashboardService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Invalidate drops the cached summary and discards any computation still
// in flight.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cache != nil {
		s.cache.Purge()
	}
}
