package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert: every call bumps the
// stored value by the increment argument (1 for strict).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TEST")
	now := time.Now()
	year := now.Format("2006")

	num, err := svc.GetNextNumber(ctx, cfg, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("TEST-%s-00001", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("TEST-%s-00002", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("ORD")
	now := time.Now()
	year := now.Format("2006")

	opts := &Options{
		Strategy:  StrategyCached,
		RangeSize: 10,
	}

	// First call allocates the range 1..10 from the DB.
	num, err := svc.GetNextNumber(ctx, cfg, opts, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("ORD-%s-00001", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to be 10, got %d", q.currentValue)
	}

	// Second call comes from memory, DB untouched.
	num, err = svc.GetNextNumber(ctx, cfg, opts, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("ORD-%s-00002", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to stay 10, got %d", q.currentValue)
	}

	// Exhaust the range; the next call reserves 11..20.
	for i := 0; i < 8; i++ {
		_, _ = svc.GetNextNumber(ctx, cfg, opts, now)
	}

	num, err = svc.GetNextNumber(ctx, cfg, opts, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("ORD-%s-00011", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.currentValue != 20 {
		t.Errorf("expected DB value to be 20, got %d", q.currentValue)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"SAL-2026-00042", 42},
		{"MOV-00007", 7},
		{"garbage", -1},
	}
	for _, tc := range cases {
		if got := ParseNumber(tc.in); got != tc.want {
			t.Errorf("ParseNumber(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMockGenerator_Sequential(t *testing.T) {
	m := &MockGenerator{}
	ctx := context.Background()
	now := time.Now()

	first, err := m.Next(ctx, "SAL", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.Next(ctx, "SAL", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Errorf("expected distinct numbers, got %s twice", first)
	}
}
