package numerator

import (
	"context"
	"errors"
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

// mockQuerier keeps one counter per sequence key, like sys_sequences.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}
	if m.values == nil {
		m.values = make(map[string]int64)
	}

	key := args[0].(string)
	if len(args) == 2 {
		m.values[key] = args[1].(int64)
	} else {
		m.values[key]++
	}
	return &mockRow{val: m.values[key]}
}

func TestGetNextNumber_Sequential(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	num, err := svc.Next(ctx, "SL", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SL-2024-00001" {
		t.Errorf("expected SL-2024-00001, got %s", num)
	}

	num, _ = svc.Next(ctx, "SL", at)
	if num != "SL-2024-00002" {
		t.Errorf("expected SL-2024-00002, got %s", num)
	}

	// A different journal has its own counter.
	num, _ = svc.Next(ctx, "PU", at)
	if num != "PU-2024-00001" {
		t.Errorf("expected PU-2024-00001, got %s", num)
	}
}

func TestGetNextNumber_ResetsPerYear(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()

	_, _ = svc.Next(ctx, "RT", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	num, _ := svc.Next(ctx, "RT", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if num != "RT-2025-00001" {
		t.Errorf("expected RT-2025-00001, got %s", num)
	}
}

func TestSetNextNumber(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := svc.SetNextNumber(ctx, DefaultConfig("SL"), at, int64(41)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, _ := svc.Next(ctx, "SL", at)
	if num != "SL-2024-00042" {
		t.Errorf("expected SL-2024-00042, got %s", num)
	}
}

func TestGetNextNumber_Errors(t *testing.T) {
	ctx := context.Background()

	var nilSvc *Service
	if _, err := nilSvc.Next(ctx, "SL", time.Now()); err == nil {
		t.Error("expected error from nil service")
	}

	svc := New(&mockQuerier{err: errors.New("connection reset")})
	if _, err := svc.Next(ctx, "SL", time.Now()); err == nil {
		t.Error("expected database error to propagate")
	}

	if _, err := New(&mockQuerier{}).Next(ctx, "  ", time.Now()); err == nil {
		t.Error("expected error for empty prefix")
	}
}

func TestFormatAndParseNumber(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Prefix: "SL", PadWidth: 3}

	if got := formatNumber(cfg, at, 7); got != "SL-007" {
		t.Errorf("expected SL-007, got %s", got)
	}

	tests := map[string]int64{
		"SL-2024-00042": 42,
		"SL-007":        7,
		"SL-":           -1,
		"garbage":       -1,
	}
	for in, want := range tests {
		if got := ParseNumber(in); got != want {
			t.Errorf("ParseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
