// Package cachetest provides an in-process AnalyticsCache for tests.
package cachetest

import (
	"context"
	"sync"

	"github.com/spec-kit/safety-suggestions/internal/cache"
	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// MemoryAnalyticsCache mirrors the Redis cache's generation check and counts calls.
type MemoryAnalyticsCache struct {
	mu         sync.Mutex
	value      *domain.SuggestionAnalytics
	generation int64

	Sets    int
	Stale   int
	Deletes int
}

var _ cache.AnalyticsCache = (*MemoryAnalyticsCache)(nil)

func (m *MemoryAnalyticsCache) Get(context.Context) (*domain.SuggestionAnalytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return nil, nil
	}
	clone := *m.value
	return &clone, nil
}

func (m *MemoryAnalyticsCache) Generation(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation, nil
}

func (m *MemoryAnalyticsCache) Set(_ context.Context, generation int64, analytics *domain.SuggestionAnalytics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		m.Stale++
		return cache.ErrGenerationChanged
	}
	clone := *analytics
	m.value = &clone
	m.Sets++
	return nil
}

func (m *MemoryAnalyticsCache) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = nil
	m.generation++
	m.Deletes++
	return nil
}
