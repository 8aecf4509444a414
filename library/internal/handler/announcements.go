package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naratama/library-service/library/internal/model"
)

// ListAnnouncements returns only active announcements inside their publish window.
func (h *Handler) ListAnnouncements(c echo.Context) error {
	q := newQuery(c)
	filter := model.AnnouncementFilter{
		Type:           model.AnnouncementType(q.String("type")),
		Priority:       model.Priority(q.String("priority")),
		TargetAudience: model.Audience(q.String("targetAudience")),
		Paging:         q.Paging(),
	}
	if err := q.Err(); err != nil {
		return err
	}
	list, err := h.svc.Announcements.ListAnnouncements(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return page(c, list)
}

func (h *Handler) GetAnnouncement(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Announcements.GetAnnouncement(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "", a)
}

func (h *Handler) CreateAnnouncement(c echo.Context) error {
	var req model.CreateAnnouncementRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Announcements.CreateAnnouncement(c.Request().Context(), req, identity(c).Name)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Announcement created successfully", a)
}

func (h *Handler) UpdateAnnouncement(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateAnnouncementRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Announcements.UpdateAnnouncement(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Announcement updated successfully", a)
}

func (h *Handler) DeleteAnnouncement(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err = h.svc.Announcements.DeleteAnnouncement(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Announcement deleted successfully", nil)
}
