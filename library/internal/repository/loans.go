package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

var loanColumns = []string{
	"l.id", "l.user_id", "l.book_id", "l.loan_date", "l.due_date", "l.return_date", "l.status",
	"l.renewal_count", "l.max_renewals", "l.fine", "l.late_fees_per_day", "l.notes", "l.created_at",
	"l.updated_at", "u.name", "u.phone_number", "b.title", "b.author", "b.isbn",
}

func selectLoans() sq.SelectBuilder {
	return qb.Select(loanColumns...).
		From(loansTableName + " l").
		Join(usersTableName + " u on u.id = l.user_id").
		Join(booksTableName + " b on b.id = l.book_id")
}

func scanLoan(row pgx.CollectableRow) (model.Loan, error) {
	l := model.Loan{User: &model.UserSummary{}, Book: &model.BookSummary{}}
	err := row.Scan(
		&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate, &l.Status,
		&l.RenewalCount, &l.MaxRenewals, &l.Fine, &l.LateFeesPerDay, &l.Notes, &l.CreatedAt,
		&l.UpdatedAt, &l.User.Name, &l.User.PhoneNumber, &l.Book.Title, &l.Book.Author, &l.Book.ISBN,
	)
	return l, err
}

func loanWhere(filter model.LoanFilter) sq.And {
	where := sq.And{}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"l.user_id": *filter.UserID})
	}
	if filter.BookID != nil {
		where = append(where, sq.Eq{"l.book_id": *filter.BookID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"l.status": filter.Status})
	}
	return where
}

func (r *repository) collectLoans(ctx context.Context, b sq.SelectBuilder) ([]model.Loan, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans, err := pgx.CollectRows(rows, scanLoan)
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return loans, nil
}

func (r *repository) ListLoans(ctx context.Context, filter model.LoanFilter) ([]model.Loan, error) {
	return r.collectLoans(ctx, selectLoans().
		Where(loanWhere(filter)).
		OrderBy("l.created_at desc").
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset()))
}

func (r *repository) CountLoans(ctx context.Context, filter model.LoanFilter) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(loansTableName+" l").Where(loanWhere(filter)))
}

func (r *repository) ListOverdueLoans(ctx context.Context, now time.Time) ([]model.Loan, error) {
	return r.collectLoans(ctx, selectLoans().
		Where(sq.Eq{"l.status": model.LoanActive}).
		Where(sq.Lt{"l.due_date": now}).
		OrderBy("l.due_date asc"))
}

func (r *repository) GetLoan(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	query, args, err := selectLoans().Where(sq.Eq{"l.id": id}).Limit(1).ToSql()
	if err != nil {
		return model.Loan{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Loan{}, err
	}
	defer rows.Close()

	loan, err := pgx.CollectOneRow(rows, scanLoan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, errs.ErrLoanNotFound
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) HasActiveLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	return r.exists(ctx, qb.Select("1").
		From(loansTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID, "status": model.LoanActive}))
}

func (r *repository) CountActiveLoans(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, qb.Select("count(*)").
		From(loansTableName).
		Where(sq.Eq{"user_id": userID, "status": model.LoanActive}))
}

func (r *repository) CreateLoan(ctx context.Context, loan model.Loan) (model.Loan, error) {
	q := `
insert into book_loans (user_id, book_id, loan_date, due_date, status, max_renewals, late_fees_per_day, notes)
values (@user_id, @book_id, @loan_date, @due_date, @status, @max_renewals, @late_fees_per_day, @notes)
returning id`
	args := pgx.NamedArgs{
		"user_id":           loan.UserID,
		"book_id":           loan.BookID,
		"loan_date":         loan.LoanDate,
		"due_date":          loan.DueDate,
		"status":            model.LoanActive,
		"max_renewals":      loan.MaxRenewals,
		"late_fees_per_day": loan.LateFeesPerDay,
		"notes":             loan.Notes,
	}
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Loan{}, errs.ErrActiveLoanExists
		}
		return model.Loan{}, errors.Wrap(err, "insert loan")
	}
	return r.GetLoan(ctx, id)
}

// CloseLoan marks an ACTIVE loan returned; errs.ErrLoanNotActive when it was already closed.
func (r *repository) CloseLoan(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine int64) (model.Loan, error) {
	q := `
update book_loans
    set status = @returned, return_date = @return_date, fine = @fine, updated_at = now()
where id = @id and status = @active`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":          id,
		"returned":    model.LoanReturned,
		"active":      model.LoanActive,
		"return_date": returnedAt,
		"fine":        fine,
	})
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "close loan")
	}
	if tag.RowsAffected() == 0 {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	return r.GetLoan(ctx, id)
}

func (r *repository) ExtendLoan(ctx context.Context, id uuid.UUID, dueDate time.Time) (model.Loan, error) {
	q := `
update book_loans
    set due_date = @due_date, renewal_count = renewal_count + 1, updated_at = now()
where id = @id and status = @active and renewal_count < max_renewals`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":       id,
		"due_date": dueDate,
		"active":   model.LoanActive,
	})
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "extend loan")
	}
	if tag.RowsAffected() == 0 {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	return r.GetLoan(ctx, id)
}
