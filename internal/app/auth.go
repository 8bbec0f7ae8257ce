package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage"
)

// Both the unknown-username and wrong-password paths produce this exact
// message, so a caller cannot enumerate usernames.
const msgInvalidCredentials = "Invalid credentials"

const msgSignInFailed = "An error occurred. Please try again."

type signInForm struct {
	Username string `form:"username" json:"username" validate:"required,min=3"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

func (h handler) signInPage(c echo.Context) error {
	return c.Render(http.StatusOK, "signin.html", signInView{})
}

func (h handler) signIn(c echo.Context) error {
	var form signInForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "signin.html", signInView{Error: msgInvalidCredentials})
	}
	if err := c.Validate(&form); err != nil {
		return c.Render(http.StatusBadRequest, "signin.html", signInView{Error: msgInvalidCredentials})
	}

	ctx := c.Request().Context()
	user, err := h.store.GetUserByName(ctx, form.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Render(http.StatusOK, "signin.html", signInView{Error: msgInvalidCredentials})
	} else if err != nil {
		h.logger.ErrorContext(ctx, "sign-in lookup failed", slog.Any("error", err))
		return c.Render(http.StatusOK, "signin.html", signInView{Error: msgSignInFailed})
	}

	if err := sec.ComparePassword(form.Password, user.PasswordHash); err != nil {
		return c.Render(http.StatusOK, "signin.html", signInView{Error: msgInvalidCredentials})
	}

	identity := sec.Identity{ID: user.ID, Username: user.Username, Role: user.Role}
	token, err := sec.SignToken(identity, h.cfg.JWTSecret, sec.SessionTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint session token", slog.Any("error", err))
		return c.Render(http.StatusOK, "signin.html", signInView{Error: msgSignInFailed})
	}

	sec.SetSessionCookie(c, token, h.secureCookies())
	h.logger.InfoContext(ctx, "user signed in", slog.String("username", user.Username))
	return c.Redirect(http.StatusFound, "/dashboard")
}

func (h handler) logout(c echo.Context) error {
	sec.ClearSessionCookie(c, h.secureCookies())
	return c.Redirect(http.StatusFound, sec.SignInPath)
}
