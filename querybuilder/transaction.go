package querybuilder

import (
	"context"
	"log/slog"

	"github.com/go-extras/errx"
	errxtrace "github.com/go-extras/errx/stacktrace"
	"github.com/jmoiron/sqlx"

	"github.com/denisvmedia/sqlbuilder/executor"
)

// Factory returns a fresh Builder bound to a transaction's pinned
// connection for the given table.
type Factory func(table string) (*Builder, error)

// Transaction begins a transaction on db, invokes cb with a Factory bound
// to it, and commits if cb returns nil; otherwise (or on panic) it rolls
// back and re-raises. The connection is always released before Transaction
// returns.
func Transaction(ctx context.Context, db *sqlx.DB, cb func(Factory) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errxtrace.Wrap("failed to begin transaction", err)
	}

	txExec := executor.NewTx(tx)
	factory := func(table string) (*Builder, error) {
		return New(table, txExec)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			slog.WarnContext(ctx, "rolling back transaction", "error", err)
			if rerr := tx.Rollback(); rerr != nil {
				err = errxtrace.Wrap("failed to roll back transaction", err, errx.Attrs("rollback_error", rerr.Error()))
			}
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = errxtrace.Wrap("failed to commit transaction", cerr)
		}
	}()

	err = cb(factory)
	return err
}
