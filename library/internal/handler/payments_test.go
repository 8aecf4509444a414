package handler_test

import (
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func TestHandler_FinishPayment(t *testing.T) {
	t.Parallel()
	const orderID = "LOAN-8f1d"
	pending := model.Payment{OrderID: orderID, UserID: reader.ID, Kind: model.PaymentLoanCommitment, Status: model.PaymentStatePending}

	tests := []struct {
		name         string
		caller       model.User
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name:   "ok. settled",
			caller: reader,
			mockBehavior: func(m *mocks) {
				paid := pending
				paid.Status = model.PaymentStatePaid
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(pending, nil)
				m.payments.EXPECT().FinishPayment(gomock.Any(), orderID).
					Return(model.PaymentResult{Payment: paid, Loan: &model.Loan{Status: model.LoanActive}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "Payment completed successfully",
		},
		{
			name:   "err. expired",
			caller: reader,
			mockBehavior: func(m *mocks) {
				failed := pending
				failed.Status = model.PaymentStateFailed
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(pending, nil)
				m.payments.EXPECT().FinishPayment(gomock.Any(), orderID).Return(model.PaymentResult{Payment: failed}, nil)
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Payment failed or expired",
		},
		{
			name:   "err. still pending",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(pending, nil)
				m.payments.EXPECT().FinishPayment(gomock.Any(), orderID).Return(model.PaymentResult{Payment: pending}, errs.ErrPaymentPending)
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Payment is still pending",
		},
		{
			name:   "err. someone else's order",
			caller: reader,
			mockBehavior: func(m *mocks) {
				other := pending
				other.UserID = admin.ID
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(other, nil)
			},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Access denied",
		},
		{
			name:   "err. unknown order",
			caller: staff,
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(model.Payment{}, errs.ErrPaymentNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedMsg:  "Payment not found",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodPost, target: "/api/payments/finish", body: `{"orderId":"` + orderID + `"}`, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
		})
	}
}

func TestHandler_PaymentNotification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok. pending is acknowledged",
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().FinishPayment(gomock.Any(), "MBR-1").Return(model.PaymentResult{}, errs.ErrPaymentPending)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"message":"Payment is still pending"}`,
		},
		{
			name: "err. unknown order",
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().FinishPayment(gomock.Any(), "MBR-1").Return(model.PaymentResult{}, errs.ErrPaymentNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"message":"Payment not found"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodPost, target: "/api/payments/notification", body: `{"order_id":"MBR-1","transaction_status":"pending"}`})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, trimmed(w))
		})
	}
}

func TestHandler_PaymentStatus(t *testing.T) {
	t.Parallel()
	const orderID = "ROOM-2c9e"
	payment := model.Payment{OrderID: orderID, UserID: reader.ID, Kind: model.PaymentRoomBooking, Status: model.PaymentStatePending}
	status := model.TransactionStatus{OrderID: orderID, TransactionStatus: "pending", StatusCode: "201", GrossAmount: "120000.00"}

	tests := []struct {
		name         string
		caller       model.User
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "ok. owner",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(payment, nil)
				m.payments.EXPECT().PaymentStatus(gomock.Any(), orderID).Return(status, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"data":{"orderId":"ROOM-2c9e","transactionStatus":"pending","statusCode":"201","grossAmount":"120000.00"}}`,
		},
		{
			name:   "ok. staff reads any order",
			caller: staff,
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(payment, nil)
				m.payments.EXPECT().PaymentStatus(gomock.Any(), orderID).Return(status, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"data":{"orderId":"ROOM-2c9e","transactionStatus":"pending","statusCode":"201","grossAmount":"120000.00"}}`,
		},
		{
			name:   "err. someone else's order",
			caller: model.User{ID: staff.ID, Name: "Budi", Role: reader.Role, IsActive: true},
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(payment, nil)
			},
			expectedCode: http.StatusForbidden,
			expectedBody: `{"success":false,"message":"Access denied"}`,
		},
		{
			name:   "err. unknown order",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.payments.EXPECT().GetPayment(gomock.Any(), orderID).Return(model.Payment{}, errs.ErrPaymentNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"message":"Payment not found"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodGet, target: "/api/payments/" + orderID + "/status", signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, trimmed(w))
		})
	}
}
