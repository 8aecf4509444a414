package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/session"
	"github.com/naratama/library-service/pkg/auth"
)

const (
	userKey         = "user"
	stateCookieName = "oauth_state"
	stateTTL        = 10 * time.Minute
)

// loadSession resolves the session cookie into the caller identity.
// Unknown sessions and inactive accounts continue as anonymous requests.
func (h *Handler) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(h.cfg.CookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}
		ctx := c.Request().Context()
		data, err := h.sessions.Get(ctx, cookie.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				h.log.Warn("session lookup", zap.Error(err))
			}
			return next(c)
		}
		user, err := h.svc.Users.GetUser(ctx, data.UserID)
		if err != nil || !user.IsActive {
			return next(c)
		}
		c.Set(userKey, user)
		c.SetRequest(c.Request().WithContext(auth.SetAuthContext(ctx, user.Identity())))
		return next(c)
	}
}

func currentUser(c echo.Context) (model.User, bool) {
	user, ok := c.Get(userKey).(model.User)
	return user, ok
}

func (h *Handler) startSession(c echo.Context, userID uuid.UUID) error {
	id, err := h.sessions.Create(c.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "create session")
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) endSession(c echo.Context) error {
	if cookie, err := c.Cookie(h.cfg.CookieName); err == nil && cookie.Value != "" {
		if err = h.sessions.Delete(c.Request().Context(), cookie.Value); err != nil {
			return errors.Wrap(err, "delete session")
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
