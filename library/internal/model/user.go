package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/naratama/library-service/pkg/auth"
)

type User struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         *string     `json:"email"`
	PhoneNumber   *string     `json:"phoneNumber"`
	Role          auth.Role   `json:"role"`
	IsActive      bool        `json:"isActive"`
	EmailVerified bool        `json:"emailVerified"`
	HasPassword   bool        `json:"hasPassword"`
	LastLogin     *time.Time  `json:"lastLogin"`
	JoinDate      time.Time   `json:"joinDate"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Membership    *Membership `json:"membership"`

	PasswordHash *string    `json:"-"`
	GoogleID     *string    `json:"-"`
	OTPCode      *string    `json:"-"`
	OTPExpiry    *time.Time `json:"-"`
}

func (u User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Name: u.Name, Role: u.Role}
}

func (u User) HasActiveMembership(now time.Time) bool {
	return u.Membership.ActiveAt(now)
}

func (u User) Summary() *UserSummary {
	return &UserSummary{Name: u.Name, PhoneNumber: u.PhoneNumber}
}

type UserSummary struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
}

type Membership struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"userId" db:"user_id"`
	MembershipNumber string    `json:"membershipNumber" db:"membership_number"`
	StartDate        time.Time `json:"startDate" db:"start_date"`
	EndDate          time.Time `json:"endDate" db:"end_date"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// ActiveAt is true when the membership is flagged active and has not ended yet.
func (m *Membership) ActiveAt(now time.Time) bool {
	return m != nil && m.IsActive && m.EndDate.After(now)
}

func MembershipNumber(seq int) string {
	return fmt.Sprintf("NRT%04d", seq)
}

type MembershipResult struct {
	Membership Membership `json:"membership"`
	Extended   bool       `json:"extended"`
	PeriodDays int        `json:"periodDays"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

type SetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,password"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type CreateUserRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string    `json:"phoneNumber" validate:"required,phone"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Role        auth.Role `json:"role" validate:"omitempty,oneof=USER STAFF ADMIN"`
	Password    string    `json:"password" validate:"omitempty,password"`
}

type UpdateUserRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=100"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	PhoneNumber *string    `json:"phoneNumber" validate:"omitempty,phone"`
	Role        *auth.Role `json:"role" validate:"omitempty,oneof=USER STAFF ADMIN"`
	IsActive    *bool      `json:"isActive"`
}

func (r UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.PhoneNumber == nil && r.Role == nil && r.IsActive == nil
}

// TouchesAdminFields reports whether the update changes role or active status.
func (r UpdateUserRequest) TouchesAdminFields() bool {
	return r.Role != nil || r.IsActive != nil
}

type UserFilter struct {
	IsActive *bool
	IsMember *bool
	Now      time.Time
	Paging
}

// OAuthProfile is the identity returned by the social login provider.
type OAuthProfile struct {
	Subject string
	Email   string
	Name    string
}
