package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/pkg/auth"
	md "github.com/naratama/library-service/pkg/middleware"
)

func TestRoleGates(t *testing.T) {
	t.Parallel()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	type gate struct {
		name string
		mw   echo.MiddlewareFunc
	}
	gates := []gate{
		{"auth", md.RequireAuth},
		{"staff", md.RequireStaff},
		{"admin", md.RequireAdmin},
	}
	tests := []struct {
		name     string
		identity *auth.Identity
		want     map[string]int
	}{
		{
			name: "guest",
			want: map[string]int{"auth": http.StatusUnauthorized, "staff": http.StatusUnauthorized, "admin": http.StatusUnauthorized},
		},
		{
			name:     "user",
			identity: &auth.Identity{UserID: uuid.New(), Role: auth.RoleUser},
			want:     map[string]int{"auth": http.StatusNoContent, "staff": http.StatusForbidden, "admin": http.StatusForbidden},
		},
		{
			name:     "staff",
			identity: &auth.Identity{UserID: uuid.New(), Role: auth.RoleStaff},
			want:     map[string]int{"auth": http.StatusNoContent, "staff": http.StatusNoContent, "admin": http.StatusForbidden},
		},
		{
			name:     "admin",
			identity: &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin},
			want:     map[string]int{"auth": http.StatusNoContent, "staff": http.StatusNoContent, "admin": http.StatusNoContent},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, g := range gates {
				e := echo.New()
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				if tt.identity != nil {
					req = req.WithContext(auth.SetAuthContext(req.Context(), *tt.identity))
				}
				w := httptest.NewRecorder()
				c := e.NewContext(req, w)

				err := g.mw(ok)(c)
				if want := tt.want[g.name]; want == http.StatusNoContent {
					require.NoError(t, err)
					require.Equal(t, want, w.Code)
				} else {
					var he *echo.HTTPError
					require.ErrorAs(t, err, &he)
					require.Equal(t, want, he.Code, g.name)
				}
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.Use(md.Metrics)
	e.GET("/books/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Book not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/books/1", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
