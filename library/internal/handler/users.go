package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func (h *Handler) ListUsers(c echo.Context) error {
	q := newQuery(c)
	filter := model.UserFilter{
		IsActive: q.Bool("isActive"),
		IsMember: q.Bool("isMember"),
		Paging:   q.Paging(),
	}
	if err := q.Err(); err != nil {
		return err
	}
	users, err := h.svc.Users.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return page(c, users)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req model.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "User created successfully", user)
}

func (h *Handler) GetUserByPhone(c echo.Context) error {
	user, err := h.svc.Users.GetUserByPhone(c.Request().Context(), c.Param("phoneNumber"))
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "", user)
}

// GetUser checks ownership before touching the store.
func (h *Handler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if !identity(c).CanAccess(id) {
		return httpError(errs.ErrProfileAccess)
	}
	user, err := h.svc.Users.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "", user)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := identity(c)
	if !caller.CanAccess(id) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own profile or must be staff/admin")
	}
	var req model.UpdateUserRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	if req.TouchesAdminFields() && !caller.Role.IsAdmin() {
		return httpError(errs.ErrAdminOnlyFields)
	}
	user, err := h.svc.Users.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) DeactivateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err = h.svc.Users.DeactivateUser(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "User deactivated successfully", nil)
}

func (h *Handler) ActivateMembership(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.svc.Users.ActivateMembership(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	msg := fmt.Sprintf("Membership activated for %d days", res.PeriodDays)
	if res.Extended {
		msg = fmt.Sprintf("Membership extended by %d days", res.PeriodDays)
	}
	return respond(c, http.StatusOK, msg, res.Membership)
}

func (h *Handler) DeactivateMembership(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.Users.DeactivateMembership(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Membership deactivated successfully", m)
}
