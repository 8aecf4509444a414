package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

const month = 30 * 24 * time.Hour

func TestService_ActivateMembership(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	type mockBehavior func(f *fixture)

	update := func(f *fixture) {
		f.repo.EXPECT().UpdateMembership(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m model.Membership) (model.Membership, error) { return m, nil })
	}

	tests := []struct {
		name         string
		mockBehavior mockBehavior
		wantStart    time.Time
		wantEnd      time.Time
		wantNumber   string
		wantExtended bool
		wantErr      error
	}{
		{
			name: "ok. first membership",
			mockBehavior: func(f *fixture) {
				f.repo.EXPECT().LockMembership(gomock.Any(), userID).Return(model.Membership{}, errs.ErrNotFound)
				f.repo.EXPECT().NextMembershipSeq(gomock.Any()).Return(7, nil)
				f.repo.EXPECT().CreateMembership(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m model.Membership) (model.Membership, error) { return m, nil })
			},
			wantStart:  now,
			wantEnd:    now.Add(month),
			wantNumber: "NRT0007",
		},
		{
			name: "ok. renewal extends from the current end",
			mockBehavior: func(f *fixture) {
				m := *activeMembership()
				m.EndDate = now.Add(10 * 24 * time.Hour)
				f.repo.EXPECT().LockMembership(gomock.Any(), userID).Return(m, nil)
				update(f)
			},
			wantStart:    now.Add(-24 * time.Hour),
			wantEnd:      now.Add(10*24*time.Hour + month),
			wantNumber:   "NRT0001",
			wantExtended: true,
		},
		{
			name: "ok. expired membership restarts now",
			mockBehavior: func(f *fixture) {
				m := *activeMembership()
				m.EndDate = now.Add(-time.Hour)
				f.repo.EXPECT().LockMembership(gomock.Any(), userID).Return(m, nil)
				update(f)
			},
			wantStart:  now,
			wantEnd:    now.Add(month),
			wantNumber: "NRT0001",
		},
		{
			name: "ok. deactivated membership restarts now",
			mockBehavior: func(f *fixture) {
				m := *activeMembership()
				m.IsActive = false
				f.repo.EXPECT().LockMembership(gomock.Any(), userID).Return(m, nil)
				update(f)
			},
			wantStart:  now,
			wantEnd:    now.Add(month),
			wantNumber: "NRT0001",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.expectTx()
			tt.mockBehavior(f)

			res, err := f.svc.ActivateMembership(context.Background(), userID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, res.Membership.IsActive)
			require.Equal(t, tt.wantStart, res.Membership.StartDate)
			require.Equal(t, tt.wantEnd, res.Membership.EndDate)
			require.Equal(t, tt.wantNumber, res.Membership.MembershipNumber)
			require.Equal(t, tt.wantExtended, res.Extended)
			require.Equal(t, 30, res.PeriodDays)
		})
	}
}

func TestService_DeactivateMembership(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name    string
		locked  model.Membership
		lockErr error
		wantErr error
	}{
		{name: "ok", locked: *activeMembership()},
		{name: "err. no membership", lockErr: errs.ErrNotFound, wantErr: errs.ErrNoActiveMembership},
		{name: "ok. already expired", locked: model.Membership{IsActive: true, EndDate: now.Add(-time.Hour)}},
		{name: "ok. already inactive", locked: model.Membership{IsActive: false, EndDate: now.Add(-48 * time.Hour)}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.expectTx()
			f.repo.EXPECT().LockMembership(gomock.Any(), userID).Return(tt.locked, tt.lockErr)
			if tt.wantErr == nil {
				f.repo.EXPECT().UpdateMembership(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m model.Membership) (model.Membership, error) { return m, nil })
			}

			m, err := f.svc.DeactivateMembership(context.Background(), userID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, errs.KindBusiness, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.False(t, m.IsActive)
			require.Equal(t, now, m.EndDate)
		})
	}
}
