package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/repository"
	"github.com/naratama/library-service/pkg/metrics"
)

func (s *Service) GetLoan(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return model.Loan{}, err
	}
	loan.IsOverdue = loan.OverdueAt(s.now())
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context, filter model.LoanFilter) (model.List[model.Loan], error) {
	res, err := list(ctx, filter, filter.Paging, s.repo.ListLoans, s.repo.CountLoans)
	if err != nil {
		return model.List[model.Loan]{}, err
	}
	s.markOverdue(res.Items)
	return res, nil
}

func (s *Service) ListOverdueLoans(ctx context.Context) ([]model.Loan, error) {
	loans, err := s.repo.ListOverdueLoans(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	s.markOverdue(loans)
	return loans, nil
}

// markOverdue flags active loans past their due date. Overdue is never stored.
func (s *Service) markOverdue(loans []model.Loan) {
	now := s.now()
	for i := range loans {
		loans[i].IsOverdue = loans[i].OverdueAt(now)
	}
}

// checkLoan verifies, in order, everything a new loan needs except membership.
func (s *Service) checkLoan(ctx context.Context, repo repository.Repository, userID, bookID uuid.UUID) (model.User, model.Book, error) {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, model.Book{}, err
	}
	if !user.IsActive {
		return model.User{}, model.Book{}, errs.ErrUserInactive
	}
	book, err := repo.GetBook(ctx, bookID)
	if err != nil {
		return model.User{}, model.Book{}, err
	}
	if !book.IsActive {
		return model.User{}, model.Book{}, errs.ErrBookNotFound
	}
	if book.AvailableQuantity <= 0 {
		return model.User{}, model.Book{}, errs.ErrBookUnavailable
	}
	active, err := repo.HasActiveLoan(ctx, userID, bookID)
	if err != nil {
		return model.User{}, model.Book{}, err
	}
	if active {
		return model.User{}, model.Book{}, errs.ErrActiveLoanExists
	}
	n, err := repo.CountActiveLoans(ctx, userID)
	if err != nil {
		return model.User{}, model.Book{}, err
	}
	if n >= s.limits.MaxActiveLoans {
		return model.User{}, model.Book{}, errs.Business("Maximum active book loans reached (%d)", s.limits.MaxActiveLoans)
	}
	return user, book, nil
}

// issueLoan takes a copy off the shelf and records the loan; tx must be transactional.
func (s *Service) issueLoan(ctx context.Context, tx repository.Repository, userID, bookID uuid.UUID, notes string, now time.Time) (model.Loan, error) {
	ok, err := tx.TakeBookCopy(ctx, bookID)
	if err != nil {
		return model.Loan{}, err
	}
	if !ok {
		return model.Loan{}, errs.ErrBookUnavailable
	}
	return tx.CreateLoan(ctx, model.Loan{
		UserID:         userID,
		BookID:         bookID,
		LoanDate:       now,
		DueDate:        model.DaysFrom(now, s.limits.LoanDays),
		Status:         model.LoanActive,
		MaxRenewals:    s.limits.MaxRenewals,
		LateFeesPerDay: s.limits.LateFeePerDay,
		Notes:          notes,
	})
}

// CreateLoan issues the loan right away for members. Everyone else gets a
// commitment fee transaction and the loan is issued once it settles.
func (s *Service) CreateLoan(ctx context.Context, req model.CreateLoanRequest) (model.LoanResult, error) {
	now := s.now()
	user, book, err := s.checkLoan(ctx, s.repo, req.UserID, req.BookID)
	if err != nil {
		metrics.RecordLoan("rejected")
		return model.LoanResult{}, err
	}

	if !user.HasActiveMembership(now) {
		p, err := s.startPayment(ctx, user, model.PaymentLoanCommitment, s.limits.BookLoanFee, paymentRef{bookID: &book.ID},
			model.TransactionItem{ID: book.ID.String(), Name: "Commitment fee: " + book.Title, Price: s.limits.BookLoanFee, Quantity: 1})
		if err != nil {
			return model.LoanResult{}, err
		}
		metrics.RecordLoan("payment_required")
		return model.LoanResult{Payment: p.Info()}, nil
	}

	var loan model.Loan
	err = s.repo.InTx(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		loan, err = s.issueLoan(ctx, tx, user.ID, req.BookID, req.Notes, now)
		return err
	})
	if err != nil {
		metrics.RecordLoan("rejected")
		return model.LoanResult{}, err
	}
	metrics.RecordLoan("created")
	s.publish(ctx, model.EventLoanCreated, loan)
	return model.LoanResult{Loan: &loan}, nil
}

// ReturnLoan closes the loan with its late fee and puts the copy back on the shelf.
func (s *Service) ReturnLoan(ctx context.Context, id uuid.UUID, req model.ReturnLoanRequest) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return model.Loan{}, err
	}
	if loan.Status != model.LoanActive {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	returnedAt := s.now()
	if req.ReturnDate != nil {
		returnedAt = *req.ReturnDate
	}
	fine := loan.LateFee(returnedAt)

	var closed model.Loan
	err = s.repo.InTx(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if closed, err = tx.CloseLoan(ctx, id, returnedAt, fine); err != nil {
			return err
		}
		return tx.ReturnBookCopy(ctx, loan.BookID)
	})
	if err != nil {
		return model.Loan{}, err
	}
	metrics.RecordLoan("returned")
	s.publish(ctx, model.EventLoanReturned, closed)
	return closed, nil
}

// ExtendLoan pushes the due date by days, or by the configured extension when days is 0.
func (s *Service) ExtendLoan(ctx context.Context, id uuid.UUID, days int) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return model.Loan{}, err
	}
	if loan.Status != model.LoanActive {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	if !loan.CanExtend() {
		return model.Loan{}, errs.Business("Maximum extensions reached (%d times)", loan.MaxRenewals)
	}
	if days <= 0 {
		days = s.limits.ExtensionDays
	}
	extended, err := s.repo.ExtendLoan(ctx, id, model.DaysFrom(loan.DueDate, days))
	if err != nil {
		return model.Loan{}, err
	}
	metrics.RecordLoan("extended")
	s.publish(ctx, model.EventLoanExtended, extended)
	return extended, nil
}
