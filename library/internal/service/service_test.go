package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/repository"
	"github.com/naratama/library-service/library/internal/service"
	"github.com/naratama/library-service/pkg/auth"

	repo_mocks "github.com/naratama/library-service/library/internal/repository/mocks"
	service_mocks "github.com/naratama/library-service/library/internal/service/mocks"
)

// Monday.
var now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *repo_mocks.MockRepository
	gateway *service_mocks.MockPaymentGateway
	mailer  *service_mocks.MockMailer
	svc     *service.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := gomock.NewController(t)
	f := &fixture{
		repo:    repo_mocks.NewMockRepository(c),
		gateway: service_mocks.NewMockPaymentGateway(c),
		mailer:  service_mocks.NewMockMailer(c),
	}
	f.svc = service.NewService(f.repo, f.gateway, zap.NewNop(),
		service.WithClock(func() time.Time { return now }),
		service.WithPasswordCost(bcrypt.MinCost),
		service.WithMailer(f.mailer),
	)
	return f
}

// expectTx runs the transaction callback against the same mock.
func (f *fixture) expectTx() *gomock.Call {
	return f.repo.EXPECT().
		InTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, repository.Repository) error) error {
			return fn(ctx, f.repo)
		})
}

func activeMembership() *model.Membership {
	return &model.Membership{
		ID:               uuid.New(),
		MembershipNumber: "NRT0001",
		StartDate:        now.Add(-24 * time.Hour),
		EndDate:          now.Add(29 * 24 * time.Hour),
		IsActive:         true,
	}
}

func newUser(member bool) model.User {
	email, phone := "rina@example.com", "081234567890"
	u := model.User{
		ID:          uuid.New(),
		Name:        "Rina",
		Email:       &email,
		PhoneNumber: &phone,
		Role:        auth.RoleUser,
		IsActive:    true,
	}
	if member {
		u.Membership = activeMembership()
		u.Membership.UserID = u.ID
	}
	return u
}

func newBook(available int) model.Book {
	return model.Book{
		ID:                uuid.New(),
		Title:             "Laskar Pelangi",
		Author:            "Andrea Hirata",
		ISBN:              "9789793062792",
		Quantity:          5,
		AvailableQuantity: available,
		IsActive:          true,
	}
}
