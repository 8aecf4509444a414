package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

const msgGoogleDisabled = "Google login is not configured"

// Register godoc
// @Summary register an account and sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body model.RegisterRequest true "account"
// @Success 201 {object} response
// @Failure 409 {object} response
// @Router /api/auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Auth.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if err = h.startSession(c, user.ID); err != nil {
		h.log.Warn("auto login after register", zap.Error(err))
		return respond(c, http.StatusCreated, "User registered successfully, but auto-login failed", user)
	}
	return respond(c, http.StatusCreated, "User registered and logged in successfully", user)
}

// Login godoc
// @Summary sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param input body model.LoginRequest true "credentials"
// @Success 200 {object} response
// @Failure 401 {object} response
// @Router /api/auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Auth.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if err = h.startSession(c, user.ID); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.endSession(c); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) Me(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return httpError(errs.ErrUnauthenticated)
	}
	return respond(c, http.StatusOK, "", user)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req model.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.Auth.ChangePassword(c.Request().Context(), identity(c).UserID, req); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *Handler) SetPassword(c echo.Context) error {
	var req model.SetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.Auth.SetPassword(c.Request().Context(), identity(c).UserID, req); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Password set successfully. You can now login.", nil)
}

func (h *Handler) SendOTP(c echo.Context) error {
	var req model.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.Auth.SendOTP(c.Request().Context(), req); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "OTP sent to your email", nil)
}

// VerifyOTP marks the email verified and signs the user in.
func (h *Handler) VerifyOTP(c echo.Context) error {
	var req model.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Auth.VerifyOTP(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if err = h.startSession(c, user.ID); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "OTP verified successfully", user)
}

func (h *Handler) GoogleLogin(c echo.Context) error {
	if h.oauth == nil {
		return echo.NewHTTPError(http.StatusNotFound, msgGoogleDisabled)
	}
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.oauth.AuthURL(state))
}

func (h *Handler) GoogleCallback(c echo.Context) error {
	if h.oauth == nil {
		return echo.NewHTTPError(http.StatusNotFound, msgGoogleDisabled)
	}
	failed := h.cfg.FrontendURL + "/auth/login?error=Authentication%20failed"

	cookie, err := c.Cookie(stateCookieName)
	state := c.QueryParam("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		h.log.Warn("google callback state mismatch")
		return c.Redirect(http.StatusFound, failed)
	}
	c.SetCookie(&http.Cookie{Name: stateCookieName, Path: "/api/auth/google", MaxAge: -1})

	ctx := c.Request().Context()
	profile, err := h.oauth.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		h.log.Warn("google exchange", zap.Error(err))
		return c.Redirect(http.StatusFound, failed)
	}
	user, err := h.svc.Auth.GoogleLogin(ctx, model.OAuthProfile{
		Subject: profile.Subject,
		Email:   profile.Email,
		Name:    profile.Name,
	})
	if err != nil {
		h.log.Warn("google login", zap.Error(err))
		return c.Redirect(http.StatusFound, failed)
	}
	if err = h.startSession(c, user.ID); err != nil {
		h.log.Error("google session", zap.Error(err))
		return c.Redirect(http.StatusFound, failed)
	}
	return c.Redirect(http.StatusFound, h.cfg.FrontendURL+"/auth/success")
}
