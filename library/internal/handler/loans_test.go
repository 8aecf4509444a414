package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func TestHandler_CreateLoan(t *testing.T) {
	t.Parallel()
	bookID := uuid.MustParse("5b0d2c4e-1a3f-4e6b-9c8d-7f1e2a3b4c55")
	loanDate := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	loan := model.Loan{
		ID:             uuid.MustParse("8e7d6c5b-4a39-4281-9f0e-d1c2b3a49566"),
		UserID:         reader.ID,
		BookID:         bookID,
		LoanDate:       loanDate,
		DueDate:        loanDate.AddDate(0, 0, 7),
		Status:         model.LoanActive,
		MaxRenewals:    2,
		LateFeesPerDay: 5000,
	}

	tests := []struct {
		name         string
		caller       model.User
		body         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "ok. member",
			caller: reader,
			body:   `{"bookId":"` + bookID.String() + `"}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().CreateLoan(gomock.Any(), model.CreateLoanRequest{UserID: reader.ID, BookID: bookID}).
					Return(model.LoanResult{Loan: &loan}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:   "ok. non member pays commitment fee",
			caller: reader,
			body:   `{"bookId":"` + bookID.String() + `"}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().CreateLoan(gomock.Any(), model.CreateLoanRequest{UserID: reader.ID, BookID: bookID}).
					Return(model.LoanResult{Payment: &model.PaymentInfo{
						OrderID:     "LOAN-1",
						Kind:        model.PaymentLoanCommitment,
						Amount:      25000,
						Token:       "tok",
						RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok",
					}}, nil)
			},
			expectedCode: http.StatusPaymentRequired,
			expectedBody: `{"success":false,"message":"Commitment fee payment required","data":{"orderId":"LOAN-1","kind":"LOAN_COMMITMENT","amount":25000,"token":"tok","redirectUrl":"https://app.sandbox.midtrans.com/snap/v2/vtweb/tok"}}`,
		},
		{
			name:   "ok. staff for another user",
			caller: staff,
			body:   `{"userId":"` + reader.ID.String() + `","bookId":"` + bookID.String() + `"}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().CreateLoan(gomock.Any(), model.CreateLoanRequest{UserID: reader.ID, BookID: bookID}).
					Return(model.LoanResult{Loan: &loan}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "err. user borrows for someone else",
			caller:       reader,
			body:         `{"userId":"` + staff.ID.String() + `","bookId":"` + bookID.String() + `"}`,
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusForbidden,
			expectedBody: `{"success":false,"message":"You can only borrow books for yourself"}`,
		},
		{
			name:   "err. book unavailable",
			caller: reader,
			body:   `{"bookId":"` + bookID.String() + `"}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().CreateLoan(gomock.Any(), gomock.Any()).Return(model.LoanResult{}, errs.ErrBookUnavailable)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"Book not available for loan"}`,
		},
		{
			name:   "err. active loan exists",
			caller: reader,
			body:   `{"bookId":"` + bookID.String() + `"}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().CreateLoan(gomock.Any(), gomock.Any()).Return(model.LoanResult{}, errs.ErrActiveLoanExists)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"User already has an active loan for this book"}`,
		},
		{
			name:         "err. book required",
			caller:       reader,
			body:         `{}`,
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"Validation failed","errors":[{"code":"required","field":"bookId","message":"bookId is required"}]}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodPost, target: "/api/book-loans", body: tt.body, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Equal(t, tt.expectedBody, trimmed(w))
				return
			}
			res := gjson.GetMany(w.Body.String(), "message", "data.status", "data.dueDate")
			require.Equal(t, "Book loan created successfully", res[0].String())
			require.Equal(t, "ACTIVE", res[1].String())
			require.Equal(t, "2024-03-11T10:00:00Z", res[2].String())
		})
	}
}

func TestHandler_ListLoans_OwnOnly(t *testing.T) {
	t.Parallel()
	e, m := newRouter(t)
	m.signIn(reader)
	m.loans.EXPECT().
		ListLoans(gomock.Any(), model.LoanFilter{UserID: &reader.ID, Status: model.LoanActive, Paging: model.Paging{Page: 2, Limit: 5}}).
		Return(model.List[model.Loan]{Total: 6, Paging: model.Paging{Page: 2, Limit: 5}}, nil)

	w := serve(e, request{
		method:   http.MethodGet,
		target:   "/api/book-loans?userId=" + staff.ID.String() + "&status=ACTIVE&page=2&limit=5",
		signedIn: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"success":true,"count":0,"total":6,"page":2,"totalPages":2,"data":[]}`, trimmed(w))
}

func TestHandler_ExtendLoan(t *testing.T) {
	t.Parallel()
	loanID := uuid.MustParse("8e7d6c5b-4a39-4281-9f0e-d1c2b3a49566")

	tests := []struct {
		name         string
		caller       model.User
		body         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name:   "ok. default extension",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().GetLoan(gomock.Any(), loanID).Return(model.Loan{ID: loanID, UserID: reader.ID}, nil)
				m.loans.EXPECT().ExtendLoan(gomock.Any(), loanID, 0).Return(model.Loan{ID: loanID, RenewalCount: 1}, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "Book loan extended successfully",
		},
		{
			name:   "err. cap reached",
			caller: staff,
			body:   `{"extensionDays":3}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().GetLoan(gomock.Any(), loanID).Return(model.Loan{ID: loanID, UserID: reader.ID}, nil)
				m.loans.EXPECT().ExtendLoan(gomock.Any(), loanID, 3).Return(model.Loan{}, errs.Business("Maximum extensions reached (%d times)", 2))
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Maximum extensions reached (2 times)",
		},
		{
			name:   "err. not the owner",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().GetLoan(gomock.Any(), loanID).Return(model.Loan{ID: loanID, UserID: staff.ID}, nil)
			},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Access denied",
		},
		{
			name:   "err. days out of range",
			caller: reader,
			body:   `{"extensionDays":45}`,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().GetLoan(gomock.Any(), loanID).Return(model.Loan{ID: loanID, UserID: reader.ID}, nil)
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Validation failed",
		},
		{
			name:   "err. unknown loan",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.loans.EXPECT().GetLoan(gomock.Any(), loanID).Return(model.Loan{}, errs.ErrLoanNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedMsg:  "Book loan not found",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodPut, target: "/api/book-loans/" + loanID.String() + "/extend", body: tt.body, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
		})
	}
}

func TestHandler_ReturnLoan_StaffOnly(t *testing.T) {
	t.Parallel()
	e, m := newRouter(t)
	m.signIn(reader)

	w := serve(e, request{method: http.MethodPut, target: "/api/book-loans/" + uuid.NewString() + "/return", signedIn: true})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, `{"success":false,"message":"Staff access required"}`, trimmed(w))
}

func TestHandler_ReturnLoan_EmptyBody(t *testing.T) {
	t.Parallel()
	loanID := uuid.MustParse("0b1c2d3e-4f50-4617-8283-94a5b6c7d8e9")

	tests := []struct {
		name string
		body io.Reader
	}{
		{name: "ok. no body", body: http.NoBody},
		{name: "ok. chunked empty body", body: io.MultiReader()},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(staff)
			m.loans.EXPECT().ReturnLoan(gomock.Any(), loanID, model.ReturnLoanRequest{}).
				Return(model.Loan{ID: loanID, Status: model.LoanReturned}, nil)

			req := httptest.NewRequest(http.MethodPut, "/api/book-loans/"+loanID.String()+"/return", tt.body)
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.AddCookie(&http.Cookie{Name: "naratama.sid", Value: sid})
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Contains(t, w.Body.String(), `"message":"Book returned successfully"`)
		})
	}
}
