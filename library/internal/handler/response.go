package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/validate"
)

const (
	msgInternal      = "Internal server error"
	msgInvalidBody   = "Invalid request body"
	msgValidation    = "Validation failed"
	msgInvalidID     = "Invalid id"
	msgInvalidParams = "Invalid query parameters"
)

type response struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

type listResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

type pageResponse struct {
	Success    bool `json:"success"`
	Count      int  `json:"count"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	Data       any  `json:"data"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, response{Success: true, Message: message, Data: data})
}

func items[T any](c echo.Context, v []T) error {
	if v == nil {
		v = []T{}
	}
	return c.JSON(http.StatusOK, listResponse{Success: true, Count: len(v), Data: v})
}

func page[T any](c echo.Context, l model.List[T]) error {
	if l.Items == nil {
		l.Items = []T{}
	}
	return c.JSON(http.StatusOK, pageResponse{
		Success:    true,
		Count:      len(l.Items),
		Total:      l.Total,
		Page:       l.Page,
		TotalPages: l.TotalPages(),
		Data:       l.Items,
	})
}

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation, errs.KindBusiness:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnauthenticated:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindPaymentRequired:
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// httpError translates a service failure into the status and message sent to the client.
func httpError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var e *errs.Error
	if errors.As(err, &e) {
		he = echo.NewHTTPError(statusOf(e.Kind), e.Msg)
		if e.Kind == errs.KindInternal {
			he.Internal = err
		}
		return he
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
}

func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he := httpError(err)

	resp := response{Message: fmt.Sprint(he.Message)}
	if m, isStr := he.Message.(string); isStr {
		resp.Message = m
	}
	if he.Internal != nil {
		if fields := validate.FieldErrors(he.Internal); fields != nil {
			resp.Errors = fields
		} else if !h.cfg.Production {
			resp.Error = he.Internal.Error()
		}
	}
	if he.Code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.Path()),
			zap.Int("status", he.Code),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, resp)
	}
	if err != nil {
		h.log.Error("write error response", zap.Error(err))
	}
}

// bind decodes the body into req and runs the validator over it. An empty
// body leaves req at its zero value.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil && !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody).SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgValidation).SetInternal(err)
	}
	return nil
}
