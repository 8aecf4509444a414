package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/auth"
)

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) GetUserByPhone(ctx context.Context, phone string) (model.User, error) {
	return s.repo.GetUserByPhone(ctx, phone)
}

func (s *Service) ListUsers(ctx context.Context, filter model.UserFilter) (model.List[model.User], error) {
	filter.Now = s.now()
	return list(ctx, filter, filter.Paging, s.repo.ListUsers, s.repo.CountUsers)
}

// CreateUser registers somebody at the front desk; the password is optional.
func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	user := model.User{
		Name:        req.Name,
		PhoneNumber: &req.PhoneNumber,
		Role:        req.Role,
	}
	if user.Role == "" {
		user.Role = auth.RoleUser
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.Password != "" {
		hash, err := s.hashPassword(req.Password)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = &hash
	}
	return s.repo.CreateUser(ctx, user)
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req model.UpdateUserRequest) (model.User, error) {
	if req.Empty() {
		return model.User{}, errs.ErrMissingRequired
	}
	return s.repo.UpdateUser(ctx, id, req)
}

func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateUser(ctx, id)
}
