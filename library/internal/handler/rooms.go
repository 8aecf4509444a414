package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func (h *Handler) ListRooms(c echo.Context) error {
	q := newQuery(c)
	filter := model.RoomFilter{
		Type:        model.RoomType(q.String("type")),
		IsAvailable: q.Bool("isAvailable"),
		MinCapacity: q.Int("minCapacity"),
	}
	if err := q.Err(); err != nil {
		return err
	}
	rooms, err := h.svc.Rooms.ListRooms(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return items(c, rooms)
}

func (h *Handler) GetRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.svc.Rooms.GetRoom(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "", room)
}

func (h *Handler) CreateRoom(c echo.Context) error {
	var req model.CreateRoomRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	room, err := h.svc.Rooms.CreateRoom(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Room created successfully", room)
}

func (h *Handler) UpdateRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateRoomRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	room, err := h.svc.Rooms.UpdateRoom(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Room updated successfully", room)
}

// RoomAvailability godoc
// @Summary bookings of a room on one weekday
// @Tags rooms
// @Produce json
// @Param id path string true "room id"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Router /api/rooms/{id}/availability [get]
func (h *Handler) RoomAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if c.QueryParam("date") == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Date parameter is required")
	}
	q := newQuery(c)
	date := q.Date("date")
	if err = q.Err(); err != nil {
		return err
	}
	av, err := h.svc.Rooms.RoomAvailability(c.Request().Context(), id, *date)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, av.Message, av)
}

func (h *Handler) ListBookings(c echo.Context) error {
	q := newQuery(c)
	filter := model.BookingFilter{
		RoomID: q.UUID("roomId"),
		UserID: q.UUID("userId"),
		Status: model.BookingStatus(q.String("status")),
		Date:   q.Date("date"),
		Paging: q.Paging(),
	}
	if err := q.Err(); err != nil {
		return err
	}
	if caller := identity(c); !caller.Role.IsStaff() {
		filter.UserID = &caller.UserID
	}
	bookings, err := h.svc.Rooms.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return page(c, bookings)
}

func (h *Handler) GetBooking(c echo.Context) error {
	booking, err := h.ownedBooking(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", booking)
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var req model.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	caller := identity(c)
	if req.UserID == uuid.Nil {
		req.UserID = caller.UserID
	}
	if req.UserID != caller.UserID && !caller.Role.IsStaff() {
		return httpError(errs.ErrOwnBookingsOnly)
	}
	res, err := h.svc.Rooms.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Room booked successfully", res)
}

func (h *Handler) UpdateBookingStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateBookingStatusRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	booking, err := h.svc.Rooms.UpdateBookingStatus(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Booking status updated successfully", booking)
}

func (h *Handler) CancelBooking(c echo.Context) error {
	booking, err := h.ownedBooking(c)
	if err != nil {
		return err
	}
	cancelled, err := h.svc.Rooms.CancelBooking(c.Request().Context(), booking.ID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Booking cancelled successfully", cancelled)
}

func (h *Handler) ownedBooking(c echo.Context) (model.Booking, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return model.Booking{}, err
	}
	booking, err := h.svc.Rooms.GetBooking(c.Request().Context(), id)
	if err != nil {
		return model.Booking{}, httpError(err)
	}
	if !identity(c).CanAccess(booking.UserID) {
		return model.Booking{}, httpError(errs.ErrForbidden)
	}
	return booking, nil
}
