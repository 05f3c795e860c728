package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator is an in-memory Generator for unit tests.
type MockGenerator struct {
	NextFunc func(ctx context.Context, prefix string, at time.Time) (string, error)

	mu       sync.Mutex
	counters map[string]int
}

// Next implements Generator. Without NextFunc it counts per prefix and year.
func (m *MockGenerator) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, prefix, at)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int)
	}
	key := fmt.Sprintf("%s-%d", prefix, at.Year())
	m.counters[key]++
	return fmt.Sprintf("%s-%05d", key, m.counters[key]), nil
}

var _ Generator = (*MockGenerator)(nil)
