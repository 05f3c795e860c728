package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"retailpos/internal/core/tx"
	"retailpos/pkg/logger"
)

var tracer = otel.Tracer("retailpos/tx")

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// Codes after which a whole transaction may be replayed.
const (
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// TxOptions configures one unit of work.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode

	// StatementTimeout and LockTimeout are applied with SET LOCAL.
	// Zero leaves the server setting.
	StatementTimeout time.Duration
	LockTimeout      time.Duration

	// MaxRetries replays a top-level transaction that failed with a
	// serialization failure or a deadlock. Nested calls never retry.
	MaxRetries int

	// Savepoint makes a nested call roll back on its own.
	Savepoint bool
}

// DefaultTxOptions is used by RunInTransaction. Sales and receipts lock
// product rows, so a short lock timeout and a few retries keep two
// checkouts of the same item from stalling each other.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
		LockTimeout:      5 * time.Second,
		MaxRetries:       3,
	}
}

// ReportTxOptions gives report queries one consistent snapshot.
func ReportTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.RepeatableRead,
		AccessMode:       pgx.ReadOnly,
		StatementTimeout: time.Minute,
	}
}

// TxManager keeps the active transaction in the context, so repositories
// join the caller's unit of work through GetQuerier.
type TxManager struct {
	pool       *pgxpool.Pool
	savepoints atomic.Uint64
	backoff    time.Duration
}

// NewTxManager creates a transaction manager over pool.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool, backoff: 20 * time.Millisecond}
}

type txKey struct{}

// Tx is the transaction stored in the context.
type Tx struct {
	pgx.Tx
}

// RunInTransaction runs fn with DefaultTxOptions.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultTxOptions(), fn)
}

// ReadOnly runs fn with ReportTxOptions.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, ReportTxOptions(), fn)
}

// RunInTransactionWithOptions runs fn inside a transaction. When ctx
// already carries one, fn joins it, optionally behind a savepoint, and the
// outer isolation and timeouts stay in force.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
			attribute.String("tx.access", string(opts.AccessMode)),
		))
	defer span.End()

	var err error
	if existing := m.GetTx(ctx); existing != nil {
		span.SetAttributes(attribute.Bool("tx.nested", true))
		err = m.runNested(ctx, existing, opts, fn)
	} else {
		err = m.runWithRetry(ctx, span, opts, fn)
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (m *TxManager) runWithRetry(ctx context.Context, span trace.Span, opts TxOptions, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := m.runTopLevel(ctx, opts, fn)
		if err == nil || attempt >= opts.MaxRetries || !isRetryable(err) {
			return err
		}

		span.SetAttributes(attribute.Int("tx.retries", attempt+1))
		logger.Warn(ctx, "transaction conflict, retrying", "attempt", attempt+1, "error", err)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(m.backoff * time.Duration(attempt+1)):
		}
	}
}

func (m *TxManager) runTopLevel(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	pgTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := applyTimeouts(ctx, pgTx, opts); err != nil {
		_ = pgTx.Rollback(context.Background())
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, &Tx{Tx: pgTx})
	if err := fn(txCtx); err != nil {
		// ctx may already be cancelled; the rollback still has to reach the server.
		if rbErr := pgTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func applyTimeouts(ctx context.Context, pgTx pgx.Tx, opts TxOptions) error {
	for _, s := range timeoutStatements(opts) {
		if _, err := pgTx.Exec(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
	}
	return nil
}

func timeoutStatements(opts TxOptions) []string {
	var stmts []string
	if opts.StatementTimeout > 0 {
		stmts = append(stmts, "SET LOCAL statement_timeout = "+strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10))
	}
	if opts.LockTimeout > 0 {
		stmts = append(stmts, "SET LOCAL lock_timeout = "+strconv.FormatInt(opts.LockTimeout.Milliseconds(), 10))
	}
	return stmts
}

func (m *TxManager) runNested(ctx context.Context, existing *Tx, opts TxOptions, fn func(ctx context.Context) error) error {
	if !opts.Savepoint {
		return fn(ctx)
	}

	name := "sp_" + strconv.FormatUint(m.savepoints.Add(1), 10)
	if _, err := existing.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := existing.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			logger.Error(ctx, "rollback to savepoint failed", "savepoint", name, "error", rbErr)
		}
		return err
	}

	if _, err := existing.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// isRetryable reports whether err is worth replaying the transaction for.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == CodeSerializationFailure || pgErr.Code == CodeDeadlockDetected
}

// GetTx returns the transaction carried by ctx, or nil.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	if t, ok := ctx.Value(txKey{}).(*Tx); ok {
		return t
	}
	return nil
}

// Querier is satisfied by both pgx.Tx and *pgxpool.Pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the transaction in ctx, or the pool outside one.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t.Tx
	}
	return m.pool
}
