package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanReturned LoanStatus = "RETURNED"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanLost     LoanStatus = "LOST"
)

const day = 24 * time.Hour

type Loan struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"userId"`
	BookID         uuid.UUID    `json:"bookId"`
	LoanDate       time.Time    `json:"loanDate"`
	DueDate        time.Time    `json:"dueDate"`
	ReturnDate     *time.Time   `json:"returnDate"`
	Status         LoanStatus   `json:"status"`
	RenewalCount   int          `json:"renewalCount"`
	MaxRenewals    int          `json:"maxRenewals"`
	Fine           int64        `json:"fine"`
	LateFeesPerDay int64        `json:"lateFeesPerDay"`
	Notes          string       `json:"notes"`
	IsOverdue      bool         `json:"isOverdue"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	User           *UserSummary `json:"user,omitempty"`
	Book           *BookSummary `json:"book,omitempty"`
}

// LateFee charges every started day past the due date.
func (l Loan) LateFee(returnedAt time.Time) int64 {
	if !returnedAt.After(l.DueDate) {
		return 0
	}
	days := math.Ceil(float64(returnedAt.Sub(l.DueDate)) / float64(day))
	return int64(days) * l.LateFeesPerDay
}

func (l Loan) OverdueAt(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(now)
}

func (l Loan) CanExtend() bool {
	return l.RenewalCount < l.MaxRenewals
}

func DaysFrom(t time.Time, days int) time.Time {
	return t.Add(time.Duration(days) * day)
}

type CreateLoanRequest struct {
	UserID uuid.UUID `json:"userId"`
	BookID uuid.UUID `json:"bookId" validate:"required"`
	Notes  string    `json:"notes" validate:"max=300"`
}

type ReturnLoanRequest struct {
	ReturnDate *time.Time `json:"returnDate"`
}

type ExtendLoanRequest struct {
	ExtensionDays int `json:"extensionDays" validate:"omitempty,min=1,max=30"`
}

type LoanFilter struct {
	UserID *uuid.UUID
	BookID *uuid.UUID
	Status LoanStatus
	Paging
}

// LoanResult holds either the created loan or the commitment fee to pay first.
type LoanResult struct {
	Loan    *Loan
	Payment *PaymentInfo
}
