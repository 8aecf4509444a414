package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/service"
	"github.com/naratama/library-service/library/internal/session"
	"github.com/naratama/library-service/pkg/openid"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ AuthService         = (*service.Service)(nil)
	_ UserService         = (*service.Service)(nil)
	_ BookService         = (*service.Service)(nil)
	_ LoanService         = (*service.Service)(nil)
	_ RoomService         = (*service.Service)(nil)
	_ AnnouncementService = (*service.Service)(nil)
	_ PaymentService      = (*service.Service)(nil)
	_ SessionStore        = (*session.Store)(nil)
	_ OAuthProvider       = (*openid.Provider)(nil)
)

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error
	SetPassword(ctx context.Context, userID uuid.UUID, req model.SetPasswordRequest) error
	SendOTP(ctx context.Context, req model.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req model.VerifyOTPRequest) (model.User, error)
	GoogleLogin(ctx context.Context, profile model.OAuthProfile) (model.User, error)
}

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (model.User, error)
	ListUsers(ctx context.Context, filter model.UserFilter) (model.List[model.User], error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req model.UpdateUserRequest) (model.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
	ActivateMembership(ctx context.Context, userID uuid.UUID) (model.MembershipResult, error)
	DeactivateMembership(ctx context.Context, userID uuid.UUID) (model.Membership, error)
}

type BookService interface {
	ListBooks(ctx context.Context, filter model.BookFilter) (model.List[model.Book], error)
	ListCategories(ctx context.Context) ([]string, error)
	ListNewBooks(ctx context.Context, limit int) ([]model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	CreateBooks(ctx context.Context, req model.BulkCreateBooksRequest) (model.BulkResult, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (model.Book, error)
	UpdateBookQuantity(ctx context.Context, id uuid.UUID, req model.UpdateBookQuantityRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

type LoanService interface {
	GetLoan(ctx context.Context, id uuid.UUID) (model.Loan, error)
	ListLoans(ctx context.Context, filter model.LoanFilter) (model.List[model.Loan], error)
	ListOverdueLoans(ctx context.Context) ([]model.Loan, error)
	CreateLoan(ctx context.Context, req model.CreateLoanRequest) (model.LoanResult, error)
	ReturnLoan(ctx context.Context, id uuid.UUID, req model.ReturnLoanRequest) (model.Loan, error)
	ExtendLoan(ctx context.Context, id uuid.UUID, days int) (model.Loan, error)
}

type RoomService interface {
	ListRooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (model.Room, error)
	CreateRoom(ctx context.Context, req model.CreateRoomRequest) (model.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, req model.UpdateRoomRequest) (model.Room, error)
	RoomAvailability(ctx context.Context, roomID uuid.UUID, date time.Time) (model.Availability, error)
	GetBooking(ctx context.Context, id uuid.UUID) (model.Booking, error)
	ListBookings(ctx context.Context, filter model.BookingFilter) (model.List[model.Booking], error)
	CreateBooking(ctx context.Context, req model.CreateBookingRequest) (model.BookingResult, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, req model.UpdateBookingStatusRequest) (model.Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (model.Booking, error)
}

type AnnouncementService interface {
	ListAnnouncements(ctx context.Context, filter model.AnnouncementFilter) (model.List[model.Announcement], error)
	GetAnnouncement(ctx context.Context, id uuid.UUID) (model.Announcement, error)
	CreateAnnouncement(ctx context.Context, req model.CreateAnnouncementRequest, createdBy string) (model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id uuid.UUID, req model.UpdateAnnouncementRequest) (model.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
}

type PaymentService interface {
	GetPayment(ctx context.Context, orderID string) (model.Payment, error)
	GetBooking(ctx context.Context, id uuid.UUID) (model.Booking, error)
	CreateMembershipPayment(ctx context.Context, userID uuid.UUID) (model.PaymentInfo, error)
	CreateBookingPayment(ctx context.Context, bookingID uuid.UUID) (model.PaymentInfo, error)
	PaymentStatus(ctx context.Context, orderID string) (model.TransactionStatus, error)
	FinishPayment(ctx context.Context, orderID string) (model.PaymentResult, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Get(ctx context.Context, id string) (session.Data, error)
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (openid.Profile, error)
}
