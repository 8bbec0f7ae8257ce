package app

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// response is the JSON envelope all API routes speak.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// userResponse is the envelope variant the user-management endpoints use;
// the account rides under "user" rather than "data".
type userResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    any    `json:"user,omitempty"`
}

func okData(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, response{Success: true, Data: data})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, response{Success: true, Message: message})
}

func okMessageData(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, response{Success: true, Message: message, Data: data})
}

func created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, response{Success: true, Message: message, Data: data})
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return id, nil
}
