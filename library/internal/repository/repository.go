package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	// InTx runs fn inside one transaction; every write in fn commits or none does.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error

	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (model.User, error)
	ListUsers(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	CountUsers(ctx context.Context, filter model.UserFilter) (int, error)
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd model.UpdateUserRequest) (model.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	LinkGoogleAccount(ctx context.Context, id uuid.UUID, googleID string) error
	SetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	VerifyEmail(ctx context.Context, id uuid.UUID) error

	LockMembership(ctx context.Context, userID uuid.UUID) (model.Membership, error)
	NextMembershipSeq(ctx context.Context) (int, error)
	CreateMembership(ctx context.Context, m model.Membership) (model.Membership, error)
	UpdateMembership(ctx context.Context, m model.Membership) (model.Membership, error)

	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	CountBooks(ctx context.Context, filter model.BookFilter) (int, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListNewBooks(ctx context.Context, limit int) ([]model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	CreateBooks(ctx context.Context, books []model.Book) (int, error)
	ExistingISBNs(ctx context.Context, isbns []string) ([]string, error)
	UpdateBook(ctx context.Context, id uuid.UUID, upd model.UpdateBookRequest) (model.Book, error)
	UpdateBookQuantity(ctx context.Context, id uuid.UUID, quantity, available int) (model.Book, error)
	DeactivateBook(ctx context.Context, id uuid.UUID) error
	TakeBookCopy(ctx context.Context, id uuid.UUID) (bool, error)
	ReturnBookCopy(ctx context.Context, id uuid.UUID) error

	ListLoans(ctx context.Context, filter model.LoanFilter) ([]model.Loan, error)
	CountLoans(ctx context.Context, filter model.LoanFilter) (int, error)
	ListOverdueLoans(ctx context.Context, now time.Time) ([]model.Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (model.Loan, error)
	HasActiveLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	CountActiveLoans(ctx context.Context, userID uuid.UUID) (int, error)
	CreateLoan(ctx context.Context, loan model.Loan) (model.Loan, error)
	CloseLoan(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine int64) (model.Loan, error)
	ExtendLoan(ctx context.Context, id uuid.UUID, dueDate time.Time) (model.Loan, error)

	ListRooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (model.Room, error)
	CreateRoom(ctx context.Context, room model.Room) (model.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, upd model.UpdateRoomRequest) (model.Room, error)

	ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error)
	CountBookings(ctx context.Context, filter model.BookingFilter) (int, error)
	GetBooking(ctx context.Context, id uuid.UUID) (model.Booking, error)
	LockBooking(ctx context.Context, id uuid.UUID) (model.Booking, error)
	ListRoomSlots(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]model.BookingSlot, error)
	CountActiveBookings(ctx context.Context, userID uuid.UUID) (int, error)
	CreateBooking(ctx context.Context, booking model.Booking) (model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status *model.BookingStatus, paymentStatus *model.PaymentStatus) (model.Booking, error)

	ListAnnouncements(ctx context.Context, filter model.AnnouncementFilter) ([]model.Announcement, error)
	CountAnnouncements(ctx context.Context, filter model.AnnouncementFilter) (int, error)
	GetAnnouncement(ctx context.Context, id uuid.UUID) (model.Announcement, error)
	CreateAnnouncement(ctx context.Context, a model.Announcement) (model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id uuid.UUID, upd model.UpdateAnnouncementRequest) (model.Announcement, error)
	DeactivateAnnouncement(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, p model.Payment) (model.Payment, error)
	GetPayment(ctx context.Context, orderID string) (model.Payment, error)
	LockPayment(ctx context.Context, orderID string) (model.Payment, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentState) (model.Payment, error)
}

type TxConfig struct {
	MaxWait time.Duration `envconfig:"DB_TX_MAX_WAIT" default:"5s"`
	Timeout time.Duration `envconfig:"DB_TX_TIMEOUT" default:"10s"`
}

type repository struct {
	db   querier
	pool *pgxpool.Pool
	tx   TxConfig
	log  *zap.Logger
}

func NewRepository(db *pgxpool.Pool, txCfg TxConfig, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil pool")
	}
	if txCfg.MaxWait <= 0 {
		txCfg.MaxWait = 5 * time.Second
	}
	if txCfg.Timeout <= 0 {
		txCfg.Timeout = 10 * time.Second
	}
	return &repository{
		db:   db,
		pool: db,
		tx:   txCfg,
		log:  log.Named("repo"),
	}, nil
}

const (
	usersTableName         = `users`
	membershipsTableName   = `memberships`
	booksTableName         = `books`
	loansTableName         = `book_loans`
	roomsTableName         = `rooms`
	bookingsTableName      = `room_bookings`
	announcementsTableName = `announcements`
	paymentsTableName      = `payments`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
