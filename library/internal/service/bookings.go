package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/metrics"
)

const msgWeekdaysOnly = "Bookings are only available on weekdays"

func (s *Service) ListRooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error) {
	rooms, err := s.repo.ListRooms(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	return rooms, nil
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (model.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *Service) CreateRoom(ctx context.Context, req model.CreateRoomRequest) (model.Room, error) {
	return s.repo.CreateRoom(ctx, req.Room())
}

func (s *Service) UpdateRoom(ctx context.Context, id uuid.UUID, req model.UpdateRoomRequest) (model.Room, error) {
	return s.repo.UpdateRoom(ctx, id, req)
}

// RoomAvailability lists the bookings holding the room on date. Weekends are never bookable.
func (s *Service) RoomAvailability(ctx context.Context, roomID uuid.UUID, date time.Time) (model.Availability, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return model.Availability{}, err
	}
	res := model.Availability{
		RoomID:           room.ID,
		Date:             date.Format(time.DateOnly),
		ExistingBookings: []model.BookingSlot{},
	}
	if model.IsWeekend(date) {
		res.Message = msgWeekdaysOnly
		return res, nil
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	slots, err := s.repo.ListRoomSlots(ctx, room.ID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return model.Availability{}, err
	}
	if slots != nil {
		res.ExistingBookings = slots
	}
	res.Available = room.IsAvailable
	if !room.IsAvailable {
		res.Message = errs.ErrRoomUnavailable.Msg
	}
	return res, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, filter model.BookingFilter) (model.List[model.Booking], error) {
	return list(ctx, filter, filter.Paging, s.repo.ListBookings, s.repo.CountBookings)
}

func bookingItems(b model.Booking, fee int64) []model.TransactionItem {
	name := "Room booking"
	if b.Room != nil {
		name = "Room booking: " + b.Room.Name
	}
	items := []model.TransactionItem{{ID: b.ID.String(), Name: name, Price: b.TotalCost, Quantity: 1}}
	if fee > 0 {
		items = append(items, model.TransactionItem{ID: "commitment-fee", Name: "Commitment fee", Price: fee, Quantity: 1})
	}
	return items
}

// slotWindow pads the slot lookup around a requested booking.
const slotWindow = 24 * time.Hour

func slotTaken(slots []model.BookingSlot, start, end time.Time) bool {
	for _, slot := range slots {
		if model.Overlaps(slot.StartTime, slot.EndTime, start, end) {
			return true
		}
	}
	return false
}

// CreateBooking confirms the booking at once for members. Non members get a
// PENDING booking that holds the slot until its payment settles.
func (s *Service) CreateBooking(ctx context.Context, req model.CreateBookingRequest) (model.BookingResult, error) {
	if !req.EndTime.After(req.StartTime) {
		return model.BookingResult{}, errs.ErrEndBeforeStart
	}
	room, err := s.repo.GetRoom(ctx, req.RoomID)
	if err != nil {
		return model.BookingResult{}, err
	}
	if !room.IsAvailable {
		return model.BookingResult{}, errs.ErrRoomUnavailable
	}
	hours := model.BookingHours(req.StartTime, req.EndTime)
	if hours < 1 {
		return model.BookingResult{}, errs.ErrBookingTooShort
	}
	slots, err := s.repo.ListRoomSlots(ctx, room.ID, req.StartTime.Add(-slotWindow), req.EndTime.Add(slotWindow))
	if err != nil {
		return model.BookingResult{}, err
	}
	if slotTaken(slots, req.StartTime, req.EndTime) {
		metrics.RecordBooking("conflict")
		return model.BookingResult{}, errs.ErrTimeSlotConflict
	}
	user, err := s.repo.GetUser(ctx, req.UserID)
	if err != nil {
		return model.BookingResult{}, err
	}
	if !user.IsActive {
		return model.BookingResult{}, errs.ErrUserInactive
	}
	n, err := s.repo.CountActiveBookings(ctx, user.ID)
	if err != nil {
		return model.BookingResult{}, err
	}
	if n >= s.limits.MaxActiveBookings {
		return model.BookingResult{}, errs.Business("Maximum active room bookings reached (%d)", s.limits.MaxActiveBookings)
	}

	member := user.HasActiveMembership(s.now())
	booking := model.Booking{
		UserID:          user.ID,
		RoomID:          room.ID,
		BookingDate:     req.BookingDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Duration:        hours,
		TotalCost:       model.BookingCost(room.HourlyRate, hours),
		Status:          model.BookingPending,
		PaymentStatus:   model.PaymentUnpaid,
		Purpose:         req.Purpose,
		SpecialRequests: req.SpecialRequests,
	}
	if member {
		booking.Status, booking.PaymentStatus = model.BookingConfirmed, model.PaymentPaid
	}
	created, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return model.BookingResult{}, err
	}
	s.publish(ctx, model.EventBookingCreated, created)
	if member {
		metrics.RecordBooking("confirmed")
		return model.BookingResult{Booking: created}, nil
	}

	fee := s.limits.RoomBookingFee
	p, err := s.startPayment(ctx, user, model.PaymentRoomBooking, created.TotalCost+fee,
		paymentRef{bookingID: &created.ID}, bookingItems(created, fee)...)
	if err != nil {
		cancelled := model.BookingCancelled
		if _, cErr := s.repo.UpdateBookingStatus(ctx, created.ID, &cancelled, nil); cErr != nil {
			s.log.Error("release booking", zap.Stringer("booking", created.ID), zap.Error(cErr))
		}
		return model.BookingResult{}, err
	}
	metrics.RecordBooking("pending")
	return model.BookingResult{Booking: created, Payment: p.Info()}, nil
}

func (s *Service) UpdateBookingStatus(ctx context.Context, id uuid.UUID, req model.UpdateBookingStatusRequest) (model.Booking, error) {
	if req.Status == nil && req.PaymentStatus == nil {
		return model.Booking{}, errs.ErrMissingRequired
	}
	booking, err := s.repo.UpdateBookingStatus(ctx, id, req.Status, req.PaymentStatus)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(ctx, model.EventBookingStatusChanged, booking)
	return booking, nil
}

func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	cancelled := model.BookingCancelled
	booking, err := s.repo.UpdateBookingStatus(ctx, id, &cancelled, nil)
	if err != nil {
		return model.Booking{}, err
	}
	metrics.RecordBooking("cancelled")
	s.publish(ctx, model.EventBookingCancelled, booking)
	return booking, nil
}
