package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/pkg/auth"
)

const dateLayout = "2006-01-02"

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidID).SetInternal(err)
	}
	return id, nil
}

// query collects the first malformed parameter while reading the rest.
type query struct {
	c   echo.Context
	err error
}

func newQuery(c echo.Context) *query {
	return &query{c: c}
}

func (q *query) fail(name string, err error) {
	if q.err == nil {
		q.err = echo.NewHTTPError(http.StatusBadRequest, msgInvalidParams+": "+name).SetInternal(err)
	}
}

func (q *query) String(name string) string {
	return q.c.QueryParam(name)
}

func (q *query) Int(name string) int {
	v := q.c.QueryParam(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(name, err)
	}
	return n
}

func (q *query) Bool(name string) *bool {
	v := q.c.QueryParam(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(name, err)
		return nil
	}
	return &b
}

func (q *query) UUID(name string) *uuid.UUID {
	v := q.c.QueryParam(name)
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		q.fail(name, err)
		return nil
	}
	return &id
}

func (q *query) Date(name string) *time.Time {
	v := q.c.QueryParam(name)
	if v == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		if q.err == nil {
			q.err = echo.NewHTTPError(http.StatusBadRequest, errs.ErrInvalidDate.Msg).SetInternal(err)
		}
		return nil
	}
	return &d
}

func (q *query) Paging() model.Paging {
	return model.NewPaging(q.Int("page"), q.Int("limit"))
}

func (q *query) Err() error {
	return q.err
}

// identity is only called behind RequireAuth.
func identity(c echo.Context) auth.Identity {
	id, _ := auth.FromContext(c.Request().Context())
	return id
}
