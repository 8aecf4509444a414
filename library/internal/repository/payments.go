package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

var paymentColumns = []string{
	"id", "order_id", "user_id", "kind", "amount", "status", "book_id", "booking_id", "token",
	"redirect_url", "created_at", "updated_at",
}

func (r *repository) collectPayment(ctx context.Context, b sq.Sqlizer) (model.Payment, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return model.Payment{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Payment{}, err
	}
	defer rows.Close()

	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Payment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Payment{}, errs.ErrPaymentNotFound
		}
		return model.Payment{}, err
	}
	return p, nil
}

func (r *repository) CreatePayment(ctx context.Context, p model.Payment) (model.Payment, error) {
	status := p.Status
	if status == "" {
		status = model.PaymentStatePending
	}
	return r.collectPayment(ctx, qb.Insert(paymentsTableName).
		Columns("order_id", "user_id", "kind", "amount", "status", "book_id", "booking_id", "token", "redirect_url").
		Values(p.OrderID, p.UserID, p.Kind, p.Amount, status, p.BookID, p.BookingID, p.Token, p.RedirectURL).
		Suffix(returning(paymentColumns)))
}

func (r *repository) GetPayment(ctx context.Context, orderID string) (model.Payment, error) {
	return r.collectPayment(ctx, qb.Select(paymentColumns...).
		From(paymentsTableName).
		Where(sq.Eq{"order_id": orderID}))
}

// LockPayment must run inside InTx; the row stays locked until commit.
func (r *repository) LockPayment(ctx context.Context, orderID string) (model.Payment, error) {
	return r.collectPayment(ctx, qb.Select(paymentColumns...).
		From(paymentsTableName).
		Where(sq.Eq{"order_id": orderID}).
		Suffix("for update"))
}

func (r *repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentState) (model.Payment, error) {
	return r.collectPayment(ctx, qb.Update(paymentsTableName).
		Set("status", status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix(returning(paymentColumns)))
}
