package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/auth"
)

const (
	otpDigits = 6
	otpTTL    = 10 * time.Minute
)

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(hash), nil
}

func checkPassword(hash *string, password string) bool {
	return hash != nil && bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		Name:         req.Name,
		PhoneNumber:  &req.PhoneNumber,
		Role:         auth.RoleUser,
		PasswordHash: &hash,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	return s.repo.CreateUser(ctx, user)
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return model.User{}, errs.ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if user.PasswordHash == nil {
		return model.User{}, errs.ErrNoPassword
	}
	if !checkPassword(user.PasswordHash, req.Password) {
		return model.User{}, errs.ErrInvalidCredentials
	}
	if !user.IsActive {
		return model.User{}, errs.ErrAccountInactive
	}
	return s.touchLogin(ctx, user)
}

func (s *Service) touchLogin(ctx context.Context, user model.User) (model.User, error) {
	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return model.User{}, err
	}
	user.LastLogin = &now
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil {
		return errs.ErrPasswordNotSet
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		return errs.ErrWrongPassword
	}
	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, userID, hash)
}

// SetPassword gives a password to an account created through Google login.
func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, req model.SetPasswordRequest) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != nil {
		return errs.ErrPasswordAlreadySet
	}
	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, userID, hash)
}

func newOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errors.Wrap(err, "otp")
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func (s *Service) SendOTP(ctx context.Context, req model.SendOTPRequest) error {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	code, err := newOTP()
	if err != nil {
		return err
	}
	if err = s.repo.SetOTP(ctx, user.ID, code, s.now().Add(otpTTL)); err != nil {
		return err
	}
	if err = s.mailer.SendOTP(ctx, req.Email, code); err != nil {
		s.log.Error("send otp", zap.Stringer("user", user.ID), zap.Error(err))
		return errors.Wrap(err, "send otp")
	}
	return nil
}

func (s *Service) VerifyOTP(ctx context.Context, req model.VerifyOTPRequest) (model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return model.User{}, err
	}
	if user.OTPCode == nil || *user.OTPCode != req.OTP {
		return model.User{}, errs.ErrInvalidOTP
	}
	if user.OTPExpiry == nil || !user.OTPExpiry.After(s.now()) {
		return model.User{}, errs.ErrOTPExpired
	}
	if err = s.repo.VerifyEmail(ctx, user.ID); err != nil {
		return model.User{}, err
	}
	user.EmailVerified = true
	user.OTPCode, user.OTPExpiry = nil, nil
	return user, nil
}

// GoogleLogin finds the account by Google subject, then by email, and creates one otherwise.
func (s *Service) GoogleLogin(ctx context.Context, profile model.OAuthProfile) (model.User, error) {
	user, err := s.repo.GetUserByGoogleID(ctx, profile.Subject)
	switch {
	case err == nil:
	case !errors.Is(err, errs.ErrUserNotFound):
		return model.User{}, err
	case profile.Email != "":
		user, err = s.repo.GetUserByEmail(ctx, profile.Email)
		if err == nil {
			if err = s.repo.LinkGoogleAccount(ctx, user.ID, profile.Subject); err != nil {
				return model.User{}, err
			}
			break
		}
		if !errors.Is(err, errs.ErrUserNotFound) {
			return model.User{}, err
		}
		fallthrough
	default:
		user, err = s.repo.CreateUser(ctx, googleUser(profile))
		if err != nil {
			return model.User{}, err
		}
	}
	if !user.IsActive {
		return model.User{}, errs.ErrAccountInactive
	}
	return s.touchLogin(ctx, user)
}

func googleUser(p model.OAuthProfile) model.User {
	u := model.User{
		Name:          p.Name,
		Role:          auth.RoleUser,
		GoogleID:      &p.Subject,
		EmailVerified: true,
	}
	if u.Name == "" {
		u.Name = p.Email
	}
	if p.Email != "" {
		u.Email = &p.Email
	}
	return u
}
