package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/empdir/emp-api/internal/hash"
	"github.com/empdir/emp-api/internal/logging"
	"github.com/empdir/emp-api/internal/middleware/authmw"
	"github.com/empdir/emp-api/internal/mykafka"
	"github.com/empdir/emp-api/internal/revocation"
	"github.com/empdir/emp-api/internal/service"
)

type AuthHandler struct {
	Service  *service.AuthService
	Registry *revocation.Registry
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(result.User.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  result.User.ID,
		"username": result.User.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

// Logout records the presented token in the revocation registry so the
// request gate rejects it from now on, even though it would otherwise stay
// valid until expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	claims, err := authmw.CurrentClaims(c)
	if err != nil {
		return err
	}

	raw := authmw.BearerToken(c)
	if raw == "" {
		l.Warn("logout_failed", "status", 401, "reason", "missing_bearer_token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	h.Registry.Add(raw, claims.ExpiresAt.Time)
	l.Info("logout_successful", "subject", claims.Subject)

	return c.JSON(http.StatusOK, echo.Map{
		"username":   claims.Name,
		"logged_out": true,
	})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	claims, err := authmw.CurrentClaims(c)
	if err != nil {
		return err
	}
	id, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	user, err := h.Service.GetUser(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user profile not found")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_profile")

	claims, err := authmw.CurrentClaims(c)
	if err != nil {
		return err
	}
	id, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ok, err := h.Service.UpdateProfile(ctx, id, req.FirstName, req.LastName)
	if err != nil {
		l.Error("update_profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to update profile")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	claims, err := authmw.CurrentClaims(c)
	if err != nil {
		return err
	}
	id, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ok, err := h.Service.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "new password cannot be empty")
		}
		if errors.Is(err, hash.ErrInvalidHash) {
			l.Error("change_password_error", "status", 500, "reason", "corrupt_stored_hash")
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		l.Error("change_password_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to change password, current password might be incorrect")
	}
	return c.NoContent(http.StatusNoContent)
}
