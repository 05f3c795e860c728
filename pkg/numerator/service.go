// Package numerator issues gapless document numbers from the sys_sequences table.
package numerator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgx used by the service.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier per call, so numbers can be taken
// inside the caller's transaction.
type QuerierFunc func(ctx context.Context) Querier

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "SL", "PU")
	Prefix string

	// IncludeYear adds year to the number and resets the counter yearly
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int
}

// DefaultConfig returns PREFIX-YEAR-00001 numbering.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
	}
}

const nextSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
	RETURNING current_val
`

const setSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET current_val = $2
	RETURNING current_val
`

// Service provides document numbering.
// Every number is one UPSERT, so a rolled back transaction releases it.
type Service struct {
	querier QuerierFunc
}

// New creates a service bound to a fixed querier.
func New(q Querier) *Service {
	return &Service{querier: func(context.Context) Querier { return q }}
}

// NewWithResolver creates a service that asks resolve for a querier on each call.
func NewWithResolver(resolve QuerierFunc) *Service {
	return &Service{querier: resolve}
}

// GetNextNumber generates the next number for cfg in the period of at.
func (s *Service) GetNextNumber(ctx context.Context, cfg Config, at time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		return "", fmt.Errorf("numerator prefix is required")
	}

	var num int64
	if err := s.querier(ctx).QueryRow(ctx, nextSQL, buildKey(cfg, at)).Scan(&num); err != nil {
		return "", fmt.Errorf("next number %s: %w", cfg.Prefix, err)
	}

	return formatNumber(cfg, at, num), nil
}

// Next implements core numerator.Generator with the default layout.
func (s *Service) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	return s.GetNextNumber(ctx, DefaultConfig(prefix), at)
}

// SetNextNumber moves the counter so the next issued number is value+1.
// Used when importing an existing journal.
func (s *Service) SetNextNumber(ctx context.Context, cfg Config, at time.Time, value int64) error {
	var result int64
	if err := s.querier(ctx).QueryRow(ctx, setSQL, buildKey(cfg, at), value).Scan(&result); err != nil {
		return fmt.Errorf("set number %s: %w", cfg.Prefix, err)
	}
	return nil
}

func buildKey(cfg Config, at time.Time) string {
	if cfg.IncludeYear {
		return fmt.Sprintf("%s_%s", cfg.Prefix, at.Format("2006"))
	}
	return cfg.Prefix
}

func formatNumber(cfg Config, at time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, at.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the counter from a formatted number, or -1.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndex(formatted, "-")
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	var num int64
	if _, err := fmt.Sscanf(formatted[idx+1:], "%d", &num); err != nil {
		return -1
	}
	return num
}
