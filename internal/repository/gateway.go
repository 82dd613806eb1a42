package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is what a pool and an open transaction have in common.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the part of *pgxpool.Pool used by the repositories.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

const pgUniqueViolation = "23505"

// Gateway runs multi-statement work as one unit. Each call takes its own
// connection from the pool and gives it back when the unit ends.
type Gateway struct {
	db DB
}

func NewGateway(db DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) DB() DB {
	return g.db
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
func (g *Gateway) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "rollback failed", "error", rbErr, "cause", err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports a unique constraint failure, optionally for one
// named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
