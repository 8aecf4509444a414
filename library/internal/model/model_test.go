package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/library/internal/model"
)

func TestLoan_LateFee(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	loan := model.Loan{DueDate: due, LateFeesPerDay: 5000}

	tests := []struct {
		name       string
		returnedAt time.Time
		want       int64
	}{
		{name: "early", returnedAt: due.Add(-48 * time.Hour), want: 0},
		{name: "on due date", returnedAt: due, want: 0},
		{name: "one minute late", returnedAt: due.Add(time.Minute), want: 5000},
		{name: "three days late", returnedAt: due.Add(72 * time.Hour), want: 15000},
		{name: "three days and an hour", returnedAt: due.Add(73 * time.Hour), want: 20000},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, loan.LateFee(tt.returnedAt))
		})
	}
}

func TestLoan_OverdueAndExtend(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	loan := model.Loan{Status: model.LoanActive, DueDate: now.Add(-time.Hour), MaxRenewals: 2, RenewalCount: 1}
	require.True(t, loan.OverdueAt(now))
	require.True(t, loan.CanExtend())

	loan.Status = model.LoanReturned
	loan.RenewalCount = 2
	require.False(t, loan.OverdueAt(now))
	require.False(t, loan.CanExtend())
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	at := func(h int) time.Time { return time.Date(2024, 3, 11, h, 0, 0, 0, time.UTC) }

	require.True(t, model.Overlaps(at(9), at(11), at(10), at(12)))
	require.True(t, model.Overlaps(at(9), at(12), at(10), at(11)))
	require.False(t, model.Overlaps(at(9), at(10), at(10), at(11)), "back to back")
	require.False(t, model.Overlaps(at(11), at(12), at(10), at(11)), "back to back reversed")
	require.False(t, model.Overlaps(at(8), at(9), at(10), at(11)))
}

func TestBookingCost(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	hours := model.BookingHours(start, start.Add(90*time.Minute))
	require.Equal(t, 1.5, hours)
	require.Equal(t, int64(75000), model.BookingCost(50000, hours))
}

func TestIsWeekend(t *testing.T) {
	t.Parallel()
	require.True(t, model.IsWeekend(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
	require.True(t, model.IsWeekend(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.False(t, model.IsWeekend(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestMembership_ActiveAt(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	var none *model.Membership
	require.False(t, none.ActiveAt(now))
	require.True(t, (&model.Membership{IsActive: true, EndDate: now.Add(time.Hour)}).ActiveAt(now))
	require.False(t, (&model.Membership{IsActive: true, EndDate: now}).ActiveAt(now))
	require.False(t, (&model.Membership{IsActive: false, EndDate: now.Add(time.Hour)}).ActiveAt(now))
	require.Equal(t, "NRT0007", model.MembershipNumber(7))
}

func TestNewPaging(t *testing.T) {
	t.Parallel()
	p := model.NewPaging(0, 0)
	require.Equal(t, model.Paging{Page: 1, Limit: 20}, p)
	require.Equal(t, uint64(0), p.Offset())

	p = model.NewPaging(3, 500)
	require.Equal(t, 100, p.Limit)
	require.Equal(t, uint64(200), p.Offset())

	l := model.List[int]{Total: 41, Paging: model.NewPaging(1, 20)}
	require.Equal(t, 3, l.TotalPages())
}

func TestTransactionStatus_State(t *testing.T) {
	t.Parallel()
	require.Equal(t, model.PaymentStatePaid, model.TransactionStatus{TransactionStatus: "settlement"}.State())
	require.Equal(t, model.PaymentStatePaid, model.TransactionStatus{TransactionStatus: "capture", FraudStatus: "accept"}.State())
	require.Equal(t, model.PaymentStatePending, model.TransactionStatus{TransactionStatus: "capture", FraudStatus: "challenge"}.State())
	require.Equal(t, model.PaymentStatePending, model.TransactionStatus{TransactionStatus: "pending"}.State())
	require.Equal(t, model.PaymentStateFailed, model.TransactionStatus{TransactionStatus: "expire"}.State())
}
