package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage"
	"github.com/lanyardhq/lanyard/internal/storage/db"
)

const msgUserNotFound = "User not found"

type createUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

type updateUserPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (h handler) listUsers(c echo.Context) error {
	users, err := h.store.ListStaffUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return okData(c, users)
}

// createUser provisions a staff account. Admin resets only; there is no
// self-service registration.
func (h handler) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hash, err := sec.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user, err := h.store.CreateUser(c.Request().Context(), req.Username, hash, db.RoleStaff)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
	})
}

// updateUserPassword re-hashes and overwrites; no old-password check for
// admin-initiated resets.
func (h handler) updateUserPassword(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateUserPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hash, err := sec.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user, err := h.store.UpdateUserPassword(c.Request().Context(), id, hash)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgUserNotFound)
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{
		Success: true,
		Message: "User updated successfully",
		User:    user,
	})
}

func (h handler) deleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	err = h.store.DeleteUser(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgUserNotFound)
	} else if err != nil {
		return err
	}
	return okMessage(c, "User deleted successfully")
}
