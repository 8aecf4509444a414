package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/auth"
)

func hashed(t *testing.T, password string) *string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(b)
	return &s
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	const email, password = "rina@example.com", "Rahasia123"
	type mockBehavior func(f *fixture, user model.User)

	tests := []struct {
		name         string
		password     string
		mutate       func(t *testing.T, u *model.User)
		mockBehavior mockBehavior
		wantErr      error
	}{
		{
			name:     "ok",
			password: password,
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(user, nil)
				f.repo.EXPECT().TouchLastLogin(gomock.Any(), user.ID, now).Return(nil)
			},
		},
		{
			name:     "err. unknown email",
			password: password,
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(model.User{}, errs.ErrUserNotFound)
			},
			wantErr: errs.ErrInvalidCredentials,
		},
		{
			name:     "err. wrong password",
			password: "Salah12345",
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(user, nil)
			},
			wantErr: errs.ErrInvalidCredentials,
		},
		{
			name:     "err. google only account",
			password: password,
			mutate:   func(_ *testing.T, u *model.User) { u.PasswordHash = nil },
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(user, nil)
			},
			wantErr: errs.ErrNoPassword,
		},
		{
			name:     "err. deactivated",
			password: password,
			mutate:   func(_ *testing.T, u *model.User) { u.IsActive = false },
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(user, nil)
			},
			wantErr: errs.ErrAccountInactive,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			user := newUser(false)
			user.PasswordHash = hashed(t, password)
			if tt.mutate != nil {
				tt.mutate(t, &user)
			}
			tt.mockBehavior(f, user)

			got, err := f.svc.Login(context.Background(), model.LoginRequest{Email: email, Password: tt.password})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, user.ID, got.ID)
			require.NotNil(t, got.LastLogin)
			require.Equal(t, now, *got.LastLogin)
		})
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
			require.Equal(t, auth.RoleUser, u.Role)
			require.NotNil(t, u.PasswordHash)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("Rahasia123")))
			u.ID, u.IsActive = uuid.New(), true
			return u, nil
		})

	u, err := f.svc.Register(context.Background(), model.RegisterRequest{
		Name: "Rina", PhoneNumber: "081234567890", Email: "rina@example.com", Password: "Rahasia123",
	})
	require.NoError(t, err)
	require.Equal(t, "rina@example.com", *u.Email)
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		hash    bool
		current string
		wantErr error
	}{
		{name: "ok", hash: true, current: "Rahasia123"},
		{name: "err. wrong current password", hash: true, current: "Salah12345", wantErr: errs.ErrWrongPassword},
		{name: "err. no password yet", current: "Rahasia123", wantErr: errs.ErrPasswordNotSet},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			user := newUser(false)
			if tt.hash {
				user.PasswordHash = hashed(t, "Rahasia123")
			}
			f.repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)
			if tt.wantErr == nil {
				f.repo.EXPECT().SetPasswordHash(gomock.Any(), user.ID, gomock.Any()).Return(nil)
			}

			err := f.svc.ChangePassword(context.Background(), user.ID, model.ChangePasswordRequest{
				CurrentPassword: tt.current,
				NewPassword:     "Baru12345",
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestService_SetPassword_AlreadySet(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := newUser(false)
	user.PasswordHash = hashed(t, "Rahasia123")
	f.repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)

	err := f.svc.SetPassword(context.Background(), user.ID, model.SetPasswordRequest{NewPassword: "Baru12345"})
	require.ErrorIs(t, err, errs.ErrPasswordAlreadySet)
}

func TestService_OTP(t *testing.T) {
	t.Parallel()
	const email = "rina@example.com"
	f := newFixture(t)
	user := newUser(false)

	var sent string
	f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(user, nil)
	f.repo.EXPECT().SetOTP(gomock.Any(), user.ID, gomock.Any(), now.Add(10*time.Minute)).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, code string, expiry time.Time) error {
			user.OTPCode, user.OTPExpiry = &code, &expiry
			return nil
		})
	f.mailer.EXPECT().SendOTP(gomock.Any(), email, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, code string) error {
			sent = code
			return nil
		})
	require.NoError(t, f.svc.SendOTP(context.Background(), model.SendOTPRequest{Email: email}))
	require.Regexp(t, `^\d{6}$`, sent)

	f.repo.EXPECT().GetUserByEmail(gomock.Any(), email).DoAndReturn(
		func(context.Context, string) (model.User, error) { return user, nil }).Times(2)
	_, err := f.svc.VerifyOTP(context.Background(), model.VerifyOTPRequest{Email: email, OTP: "abcdef"})
	require.ErrorIs(t, err, errs.ErrInvalidOTP)

	f.repo.EXPECT().VerifyEmail(gomock.Any(), user.ID).Return(nil)
	got, err := f.svc.VerifyOTP(context.Background(), model.VerifyOTPRequest{Email: email, OTP: sent})
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
}

func TestService_VerifyOTP_Expired(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := newUser(false)
	code, expiry := "123456", now.Add(-time.Second)
	user.OTPCode, user.OTPExpiry = &code, &expiry
	f.repo.EXPECT().GetUserByEmail(gomock.Any(), *user.Email).Return(user, nil)

	_, err := f.svc.VerifyOTP(context.Background(), model.VerifyOTPRequest{Email: *user.Email, OTP: code})
	require.ErrorIs(t, err, errs.ErrOTPExpired)
}

func TestService_GoogleLogin(t *testing.T) {
	t.Parallel()
	profile := model.OAuthProfile{Subject: "google-sub", Email: "rina@example.com", Name: "Rina"}
	type mockBehavior func(f *fixture, user model.User)

	tests := []struct {
		name         string
		mockBehavior mockBehavior
		wantErr      error
	}{
		{
			name: "ok. known google account",
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByGoogleID(gomock.Any(), profile.Subject).Return(user, nil)
				f.repo.EXPECT().TouchLastLogin(gomock.Any(), user.ID, now).Return(nil)
			},
		},
		{
			name: "ok. links an existing email",
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByGoogleID(gomock.Any(), profile.Subject).Return(model.User{}, errs.ErrUserNotFound)
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), profile.Email).Return(user, nil)
				f.repo.EXPECT().LinkGoogleAccount(gomock.Any(), user.ID, profile.Subject).Return(nil)
				f.repo.EXPECT().TouchLastLogin(gomock.Any(), user.ID, now).Return(nil)
			},
		},
		{
			name: "ok. creates a new account",
			mockBehavior: func(f *fixture, user model.User) {
				f.repo.EXPECT().GetUserByGoogleID(gomock.Any(), profile.Subject).Return(model.User{}, errs.ErrUserNotFound)
				f.repo.EXPECT().GetUserByEmail(gomock.Any(), profile.Email).Return(model.User{}, errs.ErrUserNotFound)
				f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
						require.Equal(t, profile.Subject, *u.GoogleID)
						require.True(t, u.EmailVerified)
						require.Nil(t, u.PasswordHash)
						u.ID, u.IsActive = user.ID, true
						return u, nil
					})
				f.repo.EXPECT().TouchLastLogin(gomock.Any(), user.ID, now).Return(nil)
			},
		},
		{
			name: "err. deactivated",
			mockBehavior: func(f *fixture, user model.User) {
				user.IsActive = false
				f.repo.EXPECT().GetUserByGoogleID(gomock.Any(), profile.Subject).Return(user, nil)
			},
			wantErr: errs.ErrAccountInactive,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			user := newUser(false)
			tt.mockBehavior(f, user)

			got, err := f.svc.GoogleLogin(context.Background(), profile)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, user.ID, got.ID)
		})
	}
}
