package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func (h *Handler) CreateMembershipPayment(c echo.Context) error {
	info, err := h.svc.Payments.CreateMembershipPayment(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Membership payment created", info)
}

func (h *Handler) CreateBookingPayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	booking, err := h.svc.Payments.GetBooking(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if !identity(c).CanAccess(booking.UserID) {
		return httpError(errs.ErrForbidden)
	}
	info, err := h.svc.Payments.CreateBookingPayment(ctx, booking.ID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Booking payment created", info)
}

// FinishPayment godoc
// @Summary reconcile a payment after the gateway redirect
// @Tags payments
// @Accept json
// @Produce json
// @Param input body model.FinishPaymentRequest true "order"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Router /api/payments/finish [post]
func (h *Handler) FinishPayment(c echo.Context) error {
	var req model.FinishPaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.svc.Payments.GetPayment(ctx, req.OrderID)
	if err != nil {
		return httpError(err)
	}
	if !identity(c).CanAccess(p.UserID) {
		return httpError(errs.ErrForbidden)
	}
	res, err := h.svc.Payments.FinishPayment(ctx, req.OrderID)
	if err != nil {
		return httpError(err)
	}
	if res.Payment.Status == model.PaymentStateFailed {
		return c.JSON(http.StatusBadRequest, response{Message: errs.ErrPaymentFailed.Msg, Data: res})
	}
	return respond(c, http.StatusOK, "Payment completed successfully", res)
}

// PaymentNotification is the gateway webhook. Outcomes the gateway cannot act
// on are acknowledged so it stops retrying.
func (h *Handler) PaymentNotification(c echo.Context) error {
	var req model.PaymentNotification
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Payments.FinishPayment(c.Request().Context(), req.OrderID)
	switch {
	case err == nil:
		return respond(c, http.StatusOK, "Notification processed", res.Payment)
	case errs.KindOf(err) == errs.KindBusiness:
		h.log.Info("payment notification", zap.String("order_id", req.OrderID), zap.Error(err))
		return respond(c, http.StatusOK, err.Error(), nil)
	}
	return httpError(err)
}

func (h *Handler) PaymentStatus(c echo.Context) error {
	orderID := c.Param("orderId")
	ctx := c.Request().Context()
	p, err := h.svc.Payments.GetPayment(ctx, orderID)
	if err != nil {
		return httpError(err)
	}
	if !identity(c).CanAccess(p.UserID) {
		return httpError(errs.ErrForbidden)
	}
	st, err := h.svc.Payments.PaymentStatus(ctx, orderID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "", st)
}
