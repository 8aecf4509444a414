package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	if r.pool == nil {
		// already inside a transaction
		return fn(ctx, r)
	}

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, r.tx.MaxWait)
	conn, err := r.pool.Acquire(acquireCtx)
	cancelAcquire()
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Release()

	txCtx, cancel := context.WithTimeout(ctx, r.tx.Timeout)
	defer cancel()

	tx, err := conn.BeginTx(txCtx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err = fn(txCtx, &repository{db: tx, tx: r.tx, log: r.log}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Error("rollback", zap.Error(rbErr))
		}
		return err
	}
	if err = tx.Commit(txCtx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err = r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}

func (r *repository) exists(ctx context.Context, b sq.SelectBuilder) (bool, error) {
	query, args, err := b.Prefix("select exists (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var ok bool
	if err = r.db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, errors.Wrap(err, "exists")
	}
	return ok, nil
}

// execAffected runs b and reports whether at least one row changed.
func (r *repository) execAffected(ctx context.Context, b sq.Sqlizer) (bool, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func returning(cols []string) string {
	return "returning " + strings.Join(cols, ", ")
}
