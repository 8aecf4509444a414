package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/repository"
)

func (s *Service) ActivateMembership(ctx context.Context, userID uuid.UUID) (model.MembershipResult, error) {
	var res model.MembershipResult
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		res, err = s.activateMembership(ctx, tx, userID, s.now())
		return err
	})
	if err != nil {
		return model.MembershipResult{}, err
	}
	res.PeriodDays = int(s.limits.MembershipPeriod.Hours() / 24)
	s.publish(ctx, model.EventMembershipActivated, res.Membership)
	return res, nil
}

// activateMembership extends an active membership from its end date, restarts
// an expired one from now and creates a numbered one when there is none.
func (s *Service) activateMembership(ctx context.Context, tx repository.Repository, userID uuid.UUID, now time.Time) (model.MembershipResult, error) {
	period := s.limits.MembershipPeriod
	m, err := tx.LockMembership(ctx, userID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		seq, err := tx.NextMembershipSeq(ctx)
		if err != nil {
			return model.MembershipResult{}, err
		}
		created, err := tx.CreateMembership(ctx, model.Membership{
			UserID:           userID,
			MembershipNumber: model.MembershipNumber(seq),
			StartDate:        now,
			EndDate:          now.Add(period),
			IsActive:         true,
		})
		if err != nil {
			return model.MembershipResult{}, err
		}
		return model.MembershipResult{Membership: created}, nil
	case err != nil:
		return model.MembershipResult{}, err
	}

	extended := m.ActiveAt(now)
	if extended {
		m.EndDate = m.EndDate.Add(period)
	} else {
		m.StartDate, m.EndDate, m.IsActive = now, now.Add(period), true
	}
	updated, err := tx.UpdateMembership(ctx, m)
	if err != nil {
		return model.MembershipResult{}, err
	}
	return model.MembershipResult{Membership: updated, Extended: extended}, nil
}

// DeactivateMembership ends any existing membership now, expired ones included.
func (s *Service) DeactivateMembership(ctx context.Context, userID uuid.UUID) (model.Membership, error) {
	var res model.Membership
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Repository) error {
		now := s.now()
		m, err := tx.LockMembership(ctx, userID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrNoActiveMembership
			}
			return err
		}
		m.IsActive, m.EndDate = false, now
		res, err = tx.UpdateMembership(ctx, m)
		return err
	})
	if err != nil {
		return model.Membership{}, err
	}
	s.publish(ctx, model.EventMembershipDeactivate, res)
	return res, nil
}
