package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func TestHandler_RoomAvailability(t *testing.T) {
	t.Parallel()
	roomID := uuid.MustParse("1d2c3b4a-5f6e-4d7c-8b9a-0a1b2c3d4e77")
	target := "/api/rooms/" + roomID.String() + "/availability"

	tests := []struct {
		name         string
		query        string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedBody string
	}{
		{
			name:  "ok. weekend",
			query: "?date=2024-03-09",
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().RoomAvailability(gomock.Any(), roomID, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)).
					Return(model.Availability{
						RoomID:           roomID,
						Date:             "2024-03-09",
						Message:          "Bookings are only available on weekdays",
						ExistingBookings: []model.BookingSlot{},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"message":"Bookings are only available on weekdays","data":{"roomId":"` + roomID.String() + `","date":"2024-03-09","available":false,"message":"Bookings are only available on weekdays","existingBookings":[]}}`,
		},
		{
			name:         "err. date required",
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"Date parameter is required"}`,
		},
		{
			name:         "err. bad date",
			query:        "?date=2024-13-45",
			mockBehavior: func(m *mocks) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"Invalid date format, use YYYY-MM-DD","error":"parsing time \"2024-13-45\": month out of range"}`,
		},
		{
			name:  "err. unknown room",
			query: "?date=2024-03-11",
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().RoomAvailability(gomock.Any(), roomID, gomock.Any()).Return(model.Availability{}, errs.ErrRoomNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"message":"Room not found"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodGet, target: target + tt.query})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, trimmed(w))
		})
	}
}

func TestHandler_CreateBooking(t *testing.T) {
	t.Parallel()
	roomID := uuid.MustParse("1d2c3b4a-5f6e-4d7c-8b9a-0a1b2c3d4e77")
	start := time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
	body := `{"roomId":"` + roomID.String() + `","bookingDate":"2024-03-11T00:00:00Z","startTime":"2024-03-11T09:00:00Z","endTime":"2024-03-11T11:00:00Z","purpose":"study group"}`
	req := model.CreateBookingRequest{
		UserID:      reader.ID,
		RoomID:      roomID,
		BookingDate: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Purpose:     "study group",
	}

	tests := []struct {
		name         string
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name: "ok. pending with payment",
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, got model.CreateBookingRequest) (model.BookingResult, error) {
						require.True(t, got.StartTime.Equal(req.StartTime))
						require.True(t, got.EndTime.Equal(req.EndTime))
						require.Equal(t, req.UserID, got.UserID)
						require.Equal(t, req.RoomID, got.RoomID)
						return model.BookingResult{
							Booking: model.Booking{RoomID: roomID, UserID: reader.ID, Status: model.BookingPending, TotalCost: 40000},
							Payment: &model.PaymentInfo{OrderID: "ROOM-1", Amount: 140000},
						}, nil
					})
			},
			expectedCode: http.StatusCreated,
			expectedMsg:  "Room booked successfully",
		},
		{
			name: "err. overlap",
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).Return(model.BookingResult{}, errs.ErrTimeSlotConflict)
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Time slot conflicts with existing booking",
		},
		{
			name: "err. active booking cap",
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
					Return(model.BookingResult{}, errs.Business("Maximum active room bookings reached (%d)", 1))
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Maximum active room bookings reached (1)",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(reader)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodPost, target: "/api/rooms/bookings", body: body, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
			if w.Code == http.StatusCreated {
				require.Equal(t, "PENDING", gjson.Get(w.Body.String(), "data.booking.status").String())
				require.Equal(t, int64(140000), gjson.Get(w.Body.String(), "data.payment.amount").Int())
			}
		})
	}
}

func TestHandler_CancelBooking(t *testing.T) {
	t.Parallel()
	bookingID := uuid.MustParse("4e5f6a7b-8c9d-4e0f-a1b2-c3d4e5f60788")
	target := "/api/rooms/bookings/" + bookingID.String()

	tests := []struct {
		name         string
		caller       model.User
		mockBehavior func(m *mocks)
		expectedCode int
		expectedMsg  string
	}{
		{
			name:   "ok. owner",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().GetBooking(gomock.Any(), bookingID).Return(model.Booking{ID: bookingID, UserID: reader.ID}, nil)
				m.rooms.EXPECT().CancelBooking(gomock.Any(), bookingID).
					Return(model.Booking{ID: bookingID, UserID: reader.ID, Status: model.BookingCancelled}, nil)
			},
			expectedCode: http.StatusOK,
			expectedMsg:  "Booking cancelled successfully",
		},
		{
			name:   "err. someone else's booking",
			caller: reader,
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().GetBooking(gomock.Any(), bookingID).Return(model.Booking{ID: bookingID, UserID: admin.ID}, nil)
			},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Access denied",
		},
		{
			name:   "err. missing",
			caller: staff,
			mockBehavior: func(m *mocks) {
				m.rooms.EXPECT().GetBooking(gomock.Any(), bookingID).Return(model.Booking{}, errs.ErrBookingNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedMsg:  "Booking not found",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, m := newRouter(t)
			m.signIn(tt.caller)
			tt.mockBehavior(m)

			w := serve(e, request{method: http.MethodDelete, target: target, signedIn: true})
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedMsg, gjson.Get(w.Body.String(), "message").String())
		})
	}
}
