// Package identifier implements the two-tier product identifier scheme.
//
// A common id groups every physical unit of one catalog product (CAM-1001).
// A unique id tags a single unit and is the common id plus a suffix
// (CAM-1001-7QX2). Unique ids must not repeat within the set of ids the
// session currently knows about; that set is injected as *UsedIDs.
package identifier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// MaxCommonIDLength bounds a formatted common id.
	MaxCommonIDLength = 32
	// MaxUniqueIDLength bounds a formatted unique id.
	MaxUniqueIDLength = 48
	// SuffixLength is the size of generated unit suffixes.
	SuffixLength = 4
	// MaxGenerateAttempts is how many suffixes GenerateUniqueID tries.
	MaxGenerateAttempts = 8
)

var (
	// ErrGenerationExhausted is returned when every attempted suffix was taken.
	ErrGenerationExhausted = errors.New("no free unique id found")
	// ErrInvalidCommonID is returned when generating from a malformed common id.
	ErrInvalidCommonID = errors.New("invalid common id")
)

// Result is the outcome of a validation. Failures are values, not errors.
type Result struct {
	Valid   bool   `json:"isValid"`
	Message string `json:"message"`
}

func ok(msg string) Result   { return Result{Valid: true, Message: msg} }
func fail(msg string) Result { return Result{Valid: false, Message: msg} }

// SuffixFunc produces a candidate unit suffix.
type SuffixFunc func() (string, error)

// Manager generates and validates unique ids against a UsedIDs set.
type Manager struct {
	used        *UsedIDs
	suffix      SuffixFunc
	maxAttempts int
}

// Option configures a Manager.
type Option func(*Manager)

// WithSuffixFunc replaces the random suffix source.
func WithSuffixFunc(fn SuffixFunc) Option {
	return func(m *Manager) { m.suffix = fn }
}

// WithMaxAttempts overrides MaxGenerateAttempts.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// NewManager creates a Manager over used. A nil set starts empty.
func NewManager(used *UsedIDs, opts ...Option) *Manager {
	if used == nil {
		used = NewUsedIDs()
	}
	m := &Manager{
		used:        used,
		suffix:      RandomSuffix,
		maxAttempts: MaxGenerateAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Used exposes the underlying set.
func (m *Manager) Used() *UsedIDs {
	return m.used
}

// MaxAttempts returns the retry bound used by GenerateUniqueID.
func (m *Manager) MaxAttempts() int {
	return m.maxAttempts
}

// ValidateCommonID checks that value formats to SEG(-SEG)* with SEG in [A-Z0-9]+.
func ValidateCommonID(value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("Common ID is required")
	}

	formatted := FormatCommonID(value)
	if len(formatted) > MaxCommonIDLength {
		return fail(fmt.Sprintf("Common ID must be at most %d characters", MaxCommonIDLength))
	}
	if !segmentedPattern.MatchString(formatted) {
		return fail("Common ID may only contain letters, digits and '-' separators")
	}
	return ok("Common ID is valid")
}

// GenerateUniqueID returns COMMON-SUFFIX not present in the used set.
// It tries at most MaxAttempts suffixes and then returns ErrGenerationExhausted.
// The returned id is not added to the set; call AddUsedUniqueID on save.
func (m *Manager) GenerateUniqueID(commonID string) (string, error) {
	if r := ValidateCommonID(commonID); !r.Valid {
		return "", fmt.Errorf("%w: %s", ErrInvalidCommonID, r.Message)
	}
	prefix := FormatCommonID(commonID) + Separator

	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		suffix, err := m.suffix()
		if err != nil {
			return "", fmt.Errorf("generate suffix: %w", err)
		}
		suffix = FormatUniqueID(suffix)
		if suffix == "" {
			continue
		}

		candidate := prefix + suffix
		if !m.used.Has(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w for %s after %d attempts", ErrGenerationExhausted, strings.TrimSuffix(prefix, Separator), m.maxAttempts)
}

// ValidateUniqueID checks shape and uniqueness of value.
// When value equals previous (after formatting) the duplicate check is
// skipped: the product is being edited without changing its id.
func (m *Manager) ValidateUniqueID(value, previous string) Result {
	return m.validateUnique("", value, previous)
}

// ValidateUniqueIDFor also requires value to start with commonID.
func (m *Manager) ValidateUniqueIDFor(commonID, value, previous string) Result {
	return m.validateUnique(FormatCommonID(commonID), value, previous)
}

func (m *Manager) validateUnique(commonID, value, previous string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("Unique ID is required")
	}

	formatted := FormatUniqueID(value)
	if len(formatted) > MaxUniqueIDLength {
		return fail(fmt.Sprintf("Unique ID must be at most %d characters", MaxUniqueIDLength))
	}
	if !segmentedPattern.MatchString(formatted) || len(segments(formatted)) < 2 {
		return fail("Unique ID must look like <COMMON-ID>-<SUFFIX>")
	}
	if commonID != "" && !strings.HasPrefix(formatted, commonID+Separator) {
		return fail(fmt.Sprintf("Unique ID must start with %s%s", commonID, Separator))
	}

	if previous != "" && formatted == FormatUniqueID(previous) {
		return ok("Unique ID is unchanged")
	}
	if m.used.Has(formatted) {
		return fail("Unique ID is already in use")
	}
	return ok("Unique ID is available")
}

// AddUsedUniqueID marks id as taken.
func (m *Manager) AddUsedUniqueID(id string) {
	m.used.Add(id)
}

// RemoveUsedUniqueID frees id, e.g. after a delete.
func (m *Manager) RemoveUsedUniqueID(id string) {
	m.used.Remove(id)
}

// ReplaceUsedUniqueID moves an edited product from previous to next.
func (m *Manager) ReplaceUsedUniqueID(previous, next string) {
	if FormatUniqueID(previous) == FormatUniqueID(next) {
		return
	}
	m.used.Remove(previous)
	m.used.Add(next)
}

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomSuffix returns SuffixLength characters from [A-Z0-9] using crypto/rand.
func RandomSuffix() (string, error) {
	max := big.NewInt(int64(len(suffixAlphabet)))
	buf := make([]byte, SuffixLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = suffixAlphabet[n.Int64()]
	}
	return string(buf), nil
}
