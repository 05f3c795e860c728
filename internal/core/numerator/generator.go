// Package numerator defines the contract for ledger document numbering.
// The Postgres-backed implementation lives in pkg/numerator.
package numerator

import (
	"context"
	"time"
)

// Prefixes of the ledger journals.
const (
	PrefixSale     = "SL"
	PrefixPurchase = "PU"
	PrefixReturn   = "RT"
)

// Generator hands out gapless per-year numbers like SL-2024-00001.
type Generator interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}
