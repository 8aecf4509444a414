package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/repository"
	"github.com/naratama/library-service/pkg/metrics"
)

var orderPrefix = map[model.PaymentKind]string{
	model.PaymentLoanCommitment: "LOAN",
	model.PaymentRoomBooking:    "ROOM",
	model.PaymentMembership:     "MBR",
}

type paymentRef struct {
	bookID    *uuid.UUID
	bookingID *uuid.UUID
}

func newOrderID(kind model.PaymentKind) string {
	return orderPrefix[kind] + "-" + uuid.NewString()
}

func customer(u model.User) model.Customer {
	c := model.Customer{Name: u.Name}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.PhoneNumber != nil {
		c.Phone = *u.PhoneNumber
	}
	return c
}

// startPayment opens a gateway transaction and records it as PENDING.
func (s *Service) startPayment(
	ctx context.Context,
	user model.User,
	kind model.PaymentKind,
	amount int64,
	ref paymentRef,
	items ...model.TransactionItem,
) (model.Payment, error) {
	orderID := newOrderID(kind)
	tx, err := s.gateway.CreateTransaction(ctx, model.TransactionRequest{
		OrderID:  orderID,
		Amount:   amount,
		Customer: customer(user),
		Items:    items,
	})
	if err != nil {
		metrics.RecordPayment(string(kind), "gateway_error")
		s.log.Error("create transaction", zap.String("orderId", orderID), zap.Error(err))
		return model.Payment{}, errors.Wrap(err, "create transaction")
	}
	p, err := s.repo.CreatePayment(ctx, model.Payment{
		OrderID:     orderID,
		UserID:      user.ID,
		Kind:        kind,
		Amount:      amount,
		Status:      model.PaymentStatePending,
		BookID:      ref.bookID,
		BookingID:   ref.bookingID,
		Token:       tx.Token,
		RedirectURL: tx.RedirectURL,
	})
	if err != nil {
		return model.Payment{}, err
	}
	metrics.RecordPayment(string(kind), "started")
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, orderID string) (model.Payment, error) {
	return s.repo.GetPayment(ctx, orderID)
}

func (s *Service) CreateMembershipPayment(ctx context.Context, userID uuid.UUID) (model.PaymentInfo, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.PaymentInfo{}, err
	}
	if !user.IsActive {
		return model.PaymentInfo{}, errs.ErrUserInactive
	}
	fee := s.limits.MembershipFee
	p, err := s.startPayment(ctx, user, model.PaymentMembership, fee, paymentRef{},
		model.TransactionItem{ID: "membership", Name: "Library membership", Price: fee, Quantity: 1})
	if err != nil {
		return model.PaymentInfo{}, err
	}
	return *p.Info(), nil
}

// CreateBookingPayment opens a new transaction for a booking still waiting for its payment.
func (s *Service) CreateBookingPayment(ctx context.Context, bookingID uuid.UUID) (model.PaymentInfo, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return model.PaymentInfo{}, err
	}
	if booking.Status != model.BookingPending || booking.PaymentStatus != model.PaymentUnpaid {
		return model.PaymentInfo{}, errs.ErrBookingNotPayable
	}
	user, err := s.repo.GetUser(ctx, booking.UserID)
	if err != nil {
		return model.PaymentInfo{}, err
	}
	p, err := s.startPayment(ctx, user, model.PaymentRoomBooking, booking.TotalCost+s.limits.RoomBookingFee,
		paymentRef{bookingID: &booking.ID}, bookingItems(booking, s.limits.RoomBookingFee)...)
	if err != nil {
		return model.PaymentInfo{}, err
	}
	return *p.Info(), nil
}

func (s *Service) PaymentStatus(ctx context.Context, orderID string) (model.TransactionStatus, error) {
	st, err := s.gateway.TransactionStatus(ctx, orderID)
	if err != nil {
		return model.TransactionStatus{}, errors.Wrap(err, "transaction status")
	}
	return st, nil
}

// FinishPayment reconciles a payment with the gateway. A settled transaction
// applies its effect and marks the payment PAID in one transaction.
func (s *Service) FinishPayment(ctx context.Context, orderID string) (model.PaymentResult, error) {
	p, err := s.repo.GetPayment(ctx, orderID)
	if err != nil {
		return model.PaymentResult{}, err
	}
	if p.Status != model.PaymentStatePending {
		return model.PaymentResult{Payment: p}, nil
	}
	st, err := s.gateway.TransactionStatus(ctx, orderID)
	if err != nil {
		return model.PaymentResult{}, errors.Wrap(err, "transaction status")
	}

	switch st.State() {
	case model.PaymentStatePending:
		return model.PaymentResult{Payment: p}, errs.ErrPaymentPending
	case model.PaymentStateFailed:
		return s.failPayment(ctx, orderID)
	}

	var res model.PaymentResult
	err = s.repo.InTx(ctx, func(ctx context.Context, tx repository.Repository) error {
		locked, err := tx.LockPayment(ctx, orderID)
		if err != nil {
			return err
		}
		if locked.Status != model.PaymentStatePending {
			res.Payment = locked
			return nil
		}
		if err = s.settle(ctx, tx, locked, &res); err != nil {
			return err
		}
		res.Payment, err = tx.SetPaymentStatus(ctx, locked.ID, model.PaymentStatePaid)
		return err
	})
	if err != nil {
		metrics.RecordPayment(string(p.Kind), "settle_failed")
		return model.PaymentResult{}, err
	}
	metrics.RecordPayment(string(p.Kind), "paid")
	s.publish(ctx, model.EventPaymentSettled, res.Payment)
	return res, nil
}

func (s *Service) settle(ctx context.Context, tx repository.Repository, p model.Payment, res *model.PaymentResult) error {
	switch p.Kind {
	case model.PaymentLoanCommitment:
		if p.BookID == nil {
			return errors.Errorf("payment %s has no book", p.OrderID)
		}
		if _, _, err := s.checkLoan(ctx, tx, p.UserID, *p.BookID); err != nil {
			return err
		}
		loan, err := s.issueLoan(ctx, tx, p.UserID, *p.BookID, "", s.now())
		if err != nil {
			return err
		}
		res.Loan = &loan
	case model.PaymentRoomBooking:
		if p.BookingID == nil {
			return errors.Errorf("payment %s has no booking", p.OrderID)
		}
		booking, err := tx.LockBooking(ctx, *p.BookingID)
		if err != nil {
			return err
		}
		// A cancelled or already paid booking stays as it is; the payment is left for refund.
		if booking.Status != model.BookingPending || booking.PaymentStatus != model.PaymentUnpaid {
			return errs.ErrBookingNotAwaitingPayment
		}
		confirmed, paid := model.BookingConfirmed, model.PaymentPaid
		if booking, err = tx.UpdateBookingStatus(ctx, booking.ID, &confirmed, &paid); err != nil {
			return err
		}
		res.Booking = &booking
	case model.PaymentMembership:
		m, err := s.activateMembership(ctx, tx, p.UserID, s.now())
		if err != nil {
			return err
		}
		res.Membership = &m.Membership
	default:
		return errors.Errorf("unknown payment kind %q", p.Kind)
	}
	return nil
}

// failPayment marks the payment FAILED and releases the slot of a pending booking.
func (s *Service) failPayment(ctx context.Context, orderID string) (model.PaymentResult, error) {
	var res model.PaymentResult
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Repository) error {
		locked, err := tx.LockPayment(ctx, orderID)
		if err != nil {
			return err
		}
		if locked.Status != model.PaymentStatePending {
			res.Payment = locked
			return nil
		}
		if locked.Kind == model.PaymentRoomBooking && locked.BookingID != nil {
			booking, err := tx.LockBooking(ctx, *locked.BookingID)
			if err != nil {
				return err
			}
			if booking.Status == model.BookingPending {
				cancelled := model.BookingCancelled
				if booking, err = tx.UpdateBookingStatus(ctx, booking.ID, &cancelled, nil); err != nil {
					return err
				}
			}
			res.Booking = &booking
		}
		res.Payment, err = tx.SetPaymentStatus(ctx, locked.ID, model.PaymentStateFailed)
		return err
	})
	if err != nil {
		return model.PaymentResult{}, err
	}
	metrics.RecordPayment(string(res.Payment.Kind), "failed")
	return res, nil
}
