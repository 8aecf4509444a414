package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentKind string

const (
	PaymentLoanCommitment PaymentKind = "LOAN_COMMITMENT"
	PaymentRoomBooking    PaymentKind = "ROOM_BOOKING"
	PaymentMembership     PaymentKind = "MEMBERSHIP"
)

type PaymentState string

const (
	PaymentStatePending PaymentState = "PENDING"
	PaymentStatePaid    PaymentState = "PAID"
	PaymentStateFailed  PaymentState = "FAILED"
)

type Payment struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	OrderID     string       `json:"orderId" db:"order_id"`
	UserID      uuid.UUID    `json:"userId" db:"user_id"`
	Kind        PaymentKind  `json:"kind" db:"kind"`
	Amount      int64        `json:"amount" db:"amount"`
	Status      PaymentState `json:"status" db:"status"`
	BookID      *uuid.UUID   `json:"bookId" db:"book_id"`
	BookingID   *uuid.UUID   `json:"bookingId" db:"booking_id"`
	Token       string       `json:"token" db:"token"`
	RedirectURL string       `json:"redirectUrl" db:"redirect_url"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

func (p Payment) Info() *PaymentInfo {
	return &PaymentInfo{
		OrderID:     p.OrderID,
		Kind:        p.Kind,
		Amount:      p.Amount,
		Token:       p.Token,
		RedirectURL: p.RedirectURL,
	}
}

type PaymentInfo struct {
	OrderID     string      `json:"orderId"`
	Kind        PaymentKind `json:"kind"`
	Amount      int64       `json:"amount"`
	Token       string      `json:"token"`
	RedirectURL string      `json:"redirectUrl"`
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type TransactionItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
}

type TransactionRequest struct {
	OrderID  string
	Amount   int64
	Customer Customer
	Items    []TransactionItem
}

type Transaction struct {
	Token       string
	RedirectURL string
}

type TransactionStatus struct {
	OrderID           string `json:"orderId"`
	TransactionStatus string `json:"transactionStatus"`
	FraudStatus       string `json:"fraudStatus,omitempty"`
	StatusCode        string `json:"statusCode"`
	GrossAmount       string `json:"grossAmount"`
	PaymentType       string `json:"paymentType,omitempty"`
}

// State maps the gateway transaction status onto the payment record state.
func (s TransactionStatus) State() PaymentState {
	switch s.TransactionStatus {
	case "settlement":
		return PaymentStatePaid
	case "capture":
		if s.FraudStatus == "" || s.FraudStatus == "accept" {
			return PaymentStatePaid
		}
		return PaymentStatePending
	case "deny", "cancel", "expire", "failure":
		return PaymentStateFailed
	}
	return PaymentStatePending
}

type FinishPaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type PaymentNotification struct {
	OrderID string `json:"order_id" validate:"required"`
}

type PaymentResult struct {
	Payment    Payment     `json:"payment"`
	Loan       *Loan       `json:"loan,omitempty"`
	Booking    *Booking    `json:"booking,omitempty"`
	Membership *Membership `json:"membership,omitempty"`
}
