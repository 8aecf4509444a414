package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/repository"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

// Limits are the business constants of the library.
type Limits struct {
	BookLoanFee       int64         `envconfig:"COMMITMENT_FEE_BOOK_LOAN" default:"25000"`
	RoomBookingFee    int64         `envconfig:"COMMITMENT_FEE_ROOM_BOOKING" default:"100000"`
	MembershipFee     int64         `envconfig:"MEMBERSHIP_FEE" default:"50000"`
	LoanDays          int           `envconfig:"LOAN_DURATION_DAYS" default:"7"`
	ExtensionDays     int           `envconfig:"EXTENSION_DAYS" default:"7"`
	LateFeePerDay     int64         `envconfig:"LATE_FEES_PER_DAY" default:"5000"`
	MaxRenewals       int           `envconfig:"MAX_RENEWALS" default:"2"`
	MaxActiveLoans    int           `envconfig:"MAX_ACTIVE_BOOK_LOANS" default:"3"`
	MaxActiveBookings int           `envconfig:"MAX_ACTIVE_ROOM_BOOKINGS" default:"1"`
	MembershipPeriod  time.Duration `envconfig:"MEMBERSHIP_PERIOD" default:"720h"`
}

func DefaultLimits() Limits {
	return Limits{
		BookLoanFee:       25000,
		RoomBookingFee:    100000,
		MembershipFee:     50000,
		LoanDays:          7,
		ExtensionDays:     7,
		LateFeePerDay:     5000,
		MaxRenewals:       2,
		MaxActiveLoans:    3,
		MaxActiveBookings: 1,
		MembershipPeriod:  30 * 24 * time.Hour,
	}
}

type PaymentGateway interface {
	CreateTransaction(ctx context.Context, req model.TransactionRequest) (model.Transaction, error)
	TransactionStatus(ctx context.Context, orderID string) (model.TransactionStatus, error)
}

type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

type Service struct {
	repo    repository.Repository
	gateway PaymentGateway
	mailer  Mailer
	events  Publisher
	limits  Limits
	cost    int
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Service)

func WithLimits(l Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

func WithMailer(m Mailer) Option {
	return func(s *Service) {
		if m != nil {
			s.mailer = m
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithPasswordCost overrides the bcrypt cost.
func WithPasswordCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

func NewService(repo repository.Repository, gateway PaymentGateway, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		gateway: gateway,
		mailer:  nopMailer{},
		events:  nopPublisher{},
		limits:  DefaultLimits(),
		cost:    12,
		now:     time.Now,
		log:     log.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cost < bcrypt.MinCost {
		s.cost = bcrypt.DefaultCost
	}
	return s
}

func (s *Service) Limits() Limits {
	return s.limits
}

func (s *Service) publish(ctx context.Context, typ model.EventType, payload any) {
	event := model.Event{Type: typ, OccurredAt: s.now(), Payload: payload}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish event", zap.String("type", string(typ)), zap.Error(err))
	}
}

// list runs the page query and the count query concurrently.
func list[T, F any](
	ctx context.Context,
	filter F,
	paging model.Paging,
	items func(context.Context, F) ([]T, error),
	count func(context.Context, F) (int, error),
) (model.List[T], error) {
	res := model.List[T]{Paging: paging}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res.Items, err = items(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		res.Total, err = count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.List[T]{}, err
	}
	if res.Items == nil {
		res.Items = []T{}
	}
	return res, nil
}

type nopMailer struct{}

func (nopMailer) SendOTP(context.Context, string, string) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.Event) error { return nil }
