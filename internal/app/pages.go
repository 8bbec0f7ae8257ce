package app

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage/db"
)

// signInView is the view model for the sign-in page.
type signInView struct {
	Error string
}

// pageData is the view model shared by the dashboard pages.
type pageData struct {
	Username string
	IsAdmin  bool
	Error    string
	Users    []db.User
}

func viewerData(c echo.Context) pageData {
	identity, _ := sec.IdentityFrom(c.Request().Context())
	return pageData{
		Username: identity.Username,
		IsAdmin:  identity.IsAdmin(),
	}
}

// errorPage is the view model handed to error.html.
func errorPage(c echo.Context, message string) pageData {
	data := viewerData(c)
	data.Error = message
	return data
}

// dashboardPage serves one of the static dashboard shells. The data on each
// page is loaded client-side through the API, so the handler only needs the
// viewer's identity for the navigation chrome.
func (h handler) dashboardPage(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, name+".html", viewerData(c))
	}
}

// userManagementPage renders the staff listing server-side so the admin sees
// the current accounts without a follow-up API call.
func (h handler) userManagementPage(c echo.Context) error {
	data := viewerData(c)

	users, err := h.store.ListStaffUsers(c.Request().Context())
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "failed to list staff users",
			slog.Any("error", err),
		)
		data.Error = "Failed to load users"
	}
	data.Users = users

	return c.Render(http.StatusOK, "users.html", data)
}
