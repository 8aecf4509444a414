package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func pendingPayment(kind model.PaymentKind, userID uuid.UUID) model.Payment {
	return model.Payment{
		ID:      uuid.New(),
		OrderID: "ORD-1",
		UserID:  userID,
		Kind:    kind,
		Amount:  25000,
		Status:  model.PaymentStatePending,
	}
}

func TestService_FinishPayment(t *testing.T) {
	t.Parallel()
	type mockBehavior func(f *fixture, p model.Payment)

	settled := model.TransactionStatus{OrderID: "ORD-1", TransactionStatus: "settlement", StatusCode: "200"}
	paid := func(f *fixture, p model.Payment) {
		f.repo.EXPECT().SetPaymentStatus(gomock.Any(), p.ID, model.PaymentStatePaid).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, st model.PaymentState) (model.Payment, error) {
				p.Status = st
				return p, nil
			})
	}

	tests := []struct {
		name         string
		kind         model.PaymentKind
		mockBehavior mockBehavior
		wantStatus   model.PaymentState
		wantLoan     bool
		wantBooking  bool
		wantMember   bool
		wantErr      error
	}{
		{
			name: "ok. loan commitment issues the loan",
			kind: model.PaymentLoanCommitment,
			mockBehavior: func(f *fixture, p model.Payment) {
				user, book := newUser(false), newBook(2)
				user.ID, book.ID = p.UserID, *p.BookID
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).Return(settled, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)
				f.repo.EXPECT().GetBook(gomock.Any(), book.ID).Return(book, nil)
				f.repo.EXPECT().HasActiveLoan(gomock.Any(), user.ID, book.ID).Return(false, nil)
				f.repo.EXPECT().CountActiveLoans(gomock.Any(), user.ID).Return(0, nil)
				f.repo.EXPECT().TakeBookCopy(gomock.Any(), book.ID).Return(true, nil)
				f.repo.EXPECT().CreateLoan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l model.Loan) (model.Loan, error) { return l, nil })
				paid(f, p)
			},
			wantStatus: model.PaymentStatePaid,
			wantLoan:   true,
		},
		{
			name: "ok. room booking is confirmed",
			kind: model.PaymentRoomBooking,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).
					Return(model.TransactionStatus{TransactionStatus: "capture", FraudStatus: "accept"}, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().LockBooking(gomock.Any(), *p.BookingID).
					Return(model.Booking{ID: *p.BookingID, Status: model.BookingPending, PaymentStatus: model.PaymentUnpaid}, nil)
				confirmed, paidStatus := model.BookingConfirmed, model.PaymentPaid
				f.repo.EXPECT().UpdateBookingStatus(gomock.Any(), *p.BookingID, &confirmed, &paidStatus).
					Return(model.Booking{ID: *p.BookingID, Status: confirmed, PaymentStatus: paidStatus}, nil)
				paid(f, p)
			},
			wantStatus:  model.PaymentStatePaid,
			wantBooking: true,
		},
		{
			name: "ok. membership is activated",
			kind: model.PaymentMembership,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).Return(settled, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().LockMembership(gomock.Any(), p.UserID).Return(model.Membership{}, errs.ErrNotFound)
				f.repo.EXPECT().NextMembershipSeq(gomock.Any()).Return(1, nil)
				f.repo.EXPECT().CreateMembership(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m model.Membership) (model.Membership, error) { return m, nil })
				paid(f, p)
			},
			wantStatus: model.PaymentStatePaid,
			wantMember: true,
		},
		{
			name: "ok. settled concurrently",
			kind: model.PaymentMembership,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).Return(settled, nil)
				f.expectTx()
				done := p
				done.Status = model.PaymentStatePaid
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(done, nil)
			},
			wantStatus: model.PaymentStatePaid,
		},
		{
			name: "ok. expired releases the booking",
			kind: model.PaymentRoomBooking,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).
					Return(model.TransactionStatus{TransactionStatus: "expire"}, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().LockBooking(gomock.Any(), *p.BookingID).
					Return(model.Booking{ID: *p.BookingID, Status: model.BookingPending}, nil)
				cancelled := model.BookingCancelled
				f.repo.EXPECT().UpdateBookingStatus(gomock.Any(), *p.BookingID, &cancelled, nil).
					Return(model.Booking{ID: *p.BookingID, Status: cancelled}, nil)
				f.repo.EXPECT().SetPaymentStatus(gomock.Any(), p.ID, model.PaymentStateFailed).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, st model.PaymentState) (model.Payment, error) {
						p.Status = st
						return p, nil
					})
			},
			wantStatus:  model.PaymentStateFailed,
			wantBooking: true,
		},
		{
			name: "err. booking cancelled before settlement",
			kind: model.PaymentRoomBooking,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).Return(settled, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().LockBooking(gomock.Any(), *p.BookingID).
					Return(model.Booking{ID: *p.BookingID, Status: model.BookingCancelled, PaymentStatus: model.PaymentUnpaid}, nil)
			},
			wantErr: errs.ErrBookingNotAwaitingPayment,
		},
		{
			name: "err. booking already paid",
			kind: model.PaymentRoomBooking,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).Return(settled, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().LockBooking(gomock.Any(), *p.BookingID).
					Return(model.Booking{ID: *p.BookingID, Status: model.BookingConfirmed, PaymentStatus: model.PaymentPaid}, nil)
			},
			wantErr: errs.ErrBookingNotAwaitingPayment,
		},
		{
			name: "err. still pending",
			kind: model.PaymentMembership,
			mockBehavior: func(f *fixture, p model.Payment) {
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).
					Return(model.TransactionStatus{TransactionStatus: "pending"}, nil)
			},
			wantErr: errs.ErrPaymentPending,
		},
		{
			name: "err. book gone before settlement",
			kind: model.PaymentLoanCommitment,
			mockBehavior: func(f *fixture, p model.Payment) {
				user, book := newUser(false), newBook(0)
				user.ID, book.ID = p.UserID, *p.BookID
				f.gateway.EXPECT().TransactionStatus(gomock.Any(), p.OrderID).Return(settled, nil)
				f.expectTx()
				f.repo.EXPECT().LockPayment(gomock.Any(), p.OrderID).Return(p, nil)
				f.repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)
				f.repo.EXPECT().GetBook(gomock.Any(), book.ID).Return(book, nil)
			},
			wantErr: errs.ErrBookUnavailable,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			p := pendingPayment(tt.kind, uuid.New())
			ref := uuid.New()
			switch tt.kind {
			case model.PaymentLoanCommitment:
				p.BookID = &ref
			case model.PaymentRoomBooking:
				p.BookingID = &ref
			}
			f.repo.EXPECT().GetPayment(gomock.Any(), p.OrderID).Return(p, nil)
			tt.mockBehavior(f, p)

			res, err := f.svc.FinishPayment(context.Background(), p.OrderID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, res.Payment.Status)
			require.Equal(t, tt.wantLoan, res.Loan != nil)
			require.Equal(t, tt.wantBooking, res.Booking != nil)
			require.Equal(t, tt.wantMember, res.Membership != nil)
		})
	}
}

func TestService_FinishPayment_AlreadyDone(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	p := pendingPayment(model.PaymentMembership, uuid.New())
	p.Status = model.PaymentStatePaid
	f.repo.EXPECT().GetPayment(gomock.Any(), p.OrderID).Return(p, nil)

	res, err := f.svc.FinishPayment(context.Background(), p.OrderID)
	require.NoError(t, err)
	require.Equal(t, p, res.Payment)
}

func TestService_CreateMembershipPayment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := newUser(false)
	f.repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)
	f.gateway.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req model.TransactionRequest) (model.Transaction, error) {
			require.Equal(t, int64(50000), req.Amount)
			require.Equal(t, "rina@example.com", req.Customer.Email)
			require.Regexp(t, `^MBR-`, req.OrderID)
			return model.Transaction{Token: "snap", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap"}, nil
		})
	f.repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p model.Payment) (model.Payment, error) {
			require.Equal(t, model.PaymentStatePending, p.Status)
			return p, nil
		})

	info, err := f.svc.CreateMembershipPayment(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentMembership, info.Kind)
	require.Equal(t, "snap", info.Token)
}

func TestService_CreateBookingPayment_NotPayable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := uuid.New()
	f.repo.EXPECT().GetBooking(gomock.Any(), id).
		Return(model.Booking{ID: id, Status: model.BookingConfirmed, PaymentStatus: model.PaymentPaid}, nil)

	_, err := f.svc.CreateBookingPayment(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrBookingNotPayable)
}
