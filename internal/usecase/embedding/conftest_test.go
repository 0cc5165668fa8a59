package embedding

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	calls     int
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// mockBudgetStore is an in-memory BudgetStore.
type mockBudgetStore struct {
	mu      sync.Mutex
	values  map[string]int64
	incrErr error
	getErr  error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{values: map[string]int64{}}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.values[key] += val
	return m.values[key], nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.values[key], nil
}

func (m *mockBudgetStore) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// fixedClock returns a controllable clock for BudgetTracker.now.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func newTrackerAt(cfg BudgetConfig, t time.Time) (*BudgetTracker, *fixedClock) {
	clock := &fixedClock{t: t}
	b := NewBudgetTracker(cfg, nil)
	b.now = clock.now
	b.dayStart, b.monthStart = truncateToDay(t), truncateToMonth(t)
	return b, clock
}
