package sec

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CookieName is the cookie carrying the session token.
const CookieName = "authToken"

// SignInPath is where unauthenticated browser requests are sent.
const SignInPath = "/auth/signin"

// Gate failure messages, rendered by the error normalizer.
const (
	MsgAdminOnly = "Access denied. Admin only."
	MsgStaffOnly = "Access denied. Staff only."
)

type identityKey struct{}

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom retrieves the identity from ctx (if any).
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Session returns middleware that resolves the session cookie on every
// request. A missing cookie proceeds anonymously. An invalid token (bad
// signature, expired, malformed) clears the cookie and also proceeds
// anonymously; the route gates decide whether anonymous access is allowed.
func Session(secret string, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			identity, err := ParseToken(cookie.Value, secret)
			if err != nil {
				ClearSessionCookie(c, secure)
				return next(c)
			}

			ctx := WithIdentity(c.Request().Context(), identity)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAuthenticated redirects anonymous requests to the sign-in page.
// It must run after [Session].
func RequireAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := IdentityFrom(c.Request().Context()); !ok {
			return c.Redirect(http.StatusFound, SignInPath)
		}
		return next(c)
	}
}

// RequireAdmin rejects requests whose identity is not an admin. Anonymous
// requests are redirected to the sign-in page like [RequireAuthenticated].
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := IdentityFrom(c.Request().Context())
		if !ok {
			return c.Redirect(http.StatusFound, SignInPath)
		}
		if !identity.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, MsgAdminOnly)
		}
		return next(c)
	}
}

// RequireStaff rejects requests whose identity is neither staff nor admin.
func RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := IdentityFrom(c.Request().Context())
		if !ok {
			return c.Redirect(http.StatusFound, SignInPath)
		}
		if !identity.IsStaff() {
			return echo.NewHTTPError(http.StatusForbidden, MsgStaffOnly)
		}
		return next(c)
	}
}

// SetSessionCookie attaches a freshly minted session token to the response.
func SetSessionCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
