package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextFunc func(ctx context.Context, prefix string, period time.Time) (string, error)

	mu      sync.Mutex
	counter int64
}

// Next implements Generator. Without NextFunc it returns sequential
// predictable numbers (PREFIX-YEAR-00001, ...).
func (m *MockGenerator) Next(ctx context.Context, prefix string, period time.Time) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, prefix, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s-%s-%05d", prefix, period.Format("2006"), m.counter), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
