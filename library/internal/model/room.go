package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomSmallDiscussion RoomType = "SMALL_DISCUSSION"
	RoomLargeMeeting    RoomType = "LARGE_MEETING"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Holds reports whether a booking in this status occupies its time slot.
func (s BookingStatus) Holds() bool {
	return s == BookingPending || s == BookingConfirmed
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Room struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	RoomNumber  string    `json:"roomNumber" db:"room_number"`
	Type        RoomType  `json:"type" db:"type"`
	Capacity    int       `json:"capacity" db:"capacity"`
	HourlyRate  int64     `json:"hourlyRate" db:"hourly_rate"`
	Amenities   []string  `json:"amenities" db:"amenities"`
	Description string    `json:"description" db:"description"`
	IsAvailable bool      `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateRoomRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	RoomNumber  string   `json:"roomNumber" validate:"required,max=20"`
	Type        RoomType `json:"type" validate:"required,oneof=SMALL_DISCUSSION LARGE_MEETING"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=100"`
	HourlyRate  int64    `json:"hourlyRate" validate:"min=0"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,max=50"`
	Description string   `json:"description" validate:"max=500"`
	IsAvailable *bool    `json:"isAvailable"`
}

func (r CreateRoomRequest) Room() Room {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return Room{
		Name:        r.Name,
		RoomNumber:  r.RoomNumber,
		Type:        r.Type,
		Capacity:    r.Capacity,
		HourlyRate:  r.HourlyRate,
		Amenities:   amenities,
		Description: r.Description,
		IsAvailable: available,
	}
}

type UpdateRoomRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	RoomNumber  *string   `json:"roomNumber" validate:"omitempty,min=1,max=20"`
	Type        *RoomType `json:"type" validate:"omitempty,oneof=SMALL_DISCUSSION LARGE_MEETING"`
	Capacity    *int      `json:"capacity" validate:"omitempty,min=1,max=100"`
	HourlyRate  *int64    `json:"hourlyRate" validate:"omitempty,min=0"`
	Amenities   []string  `json:"amenities" validate:"omitempty,dive,max=50"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	IsAvailable *bool     `json:"isAvailable"`
}

type RoomFilter struct {
	Type        RoomType
	IsAvailable *bool
	MinCapacity int
}

type RoomSummary struct {
	Name       string   `json:"name"`
	RoomNumber string   `json:"roomNumber"`
	Type       RoomType `json:"type"`
	HourlyRate int64    `json:"hourlyRate"`
}

type Booking struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"userId"`
	RoomID          uuid.UUID     `json:"roomId"`
	BookingDate     time.Time     `json:"bookingDate"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	Duration        float64       `json:"duration"`
	TotalCost       int64         `json:"totalCost"`
	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	Purpose         string        `json:"purpose"`
	SpecialRequests string        `json:"specialRequests"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Room            *RoomSummary  `json:"room,omitempty"`
	User            *UserSummary  `json:"user,omitempty"`
}

// Overlaps applies the half-open interval test: a.end > b.start and a.start < b.end.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aEnd.After(bStart) && aStart.Before(bEnd)
}

func BookingHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

func BookingCost(hourlyRate int64, hours float64) int64 {
	return int64(math.Round(float64(hourlyRate) * hours))
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

type CreateBookingRequest struct {
	UserID          uuid.UUID `json:"userId"`
	RoomID          uuid.UUID `json:"roomId" validate:"required"`
	BookingDate     time.Time `json:"bookingDate" validate:"required"`
	StartTime       time.Time `json:"startTime" validate:"required"`
	EndTime         time.Time `json:"endTime" validate:"required"`
	Purpose         string    `json:"purpose" validate:"max=200"`
	SpecialRequests string    `json:"specialRequests" validate:"max=500"`
}

type UpdateBookingStatusRequest struct {
	Status        *BookingStatus `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	PaymentStatus *PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=UNPAID PAID REFUNDED"`
}

type BookingFilter struct {
	RoomID *uuid.UUID
	UserID *uuid.UUID
	Status BookingStatus
	Date   *time.Time
	Paging
}

type BookingSlot struct {
	ID        uuid.UUID     `json:"id"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Status    BookingStatus `json:"status"`
}

type Availability struct {
	RoomID           uuid.UUID     `json:"roomId"`
	Date             string        `json:"date"`
	Available        bool          `json:"available"`
	Message          string        `json:"message,omitempty"`
	ExistingBookings []BookingSlot `json:"existingBookings"`
}

type BookingResult struct {
	Booking Booking      `json:"booking"`
	Payment *PaymentInfo `json:"payment,omitempty"`
}
