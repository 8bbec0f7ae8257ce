package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/storage"
	"github.com/lanyardhq/lanyard/internal/storage/db"
)

const msgStartupNotFound = "Startup not found"

type createStartupRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	BoothNumber *string `json:"booth_number"`
}

type updateStartupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	BoothNumber *string `json:"booth_number"`
}

func (h handler) listStartups(c echo.Context) error {
	startups, err := h.store.ListStartups(c.Request().Context())
	if err != nil {
		return err
	}
	return okData(c, startups)
}

func (h handler) getStartup(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	startup, err := h.store.GetStartup(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgStartupNotFound)
	} else if err != nil {
		return err
	}
	return okData(c, startup)
}

func (h handler) createStartup(c echo.Context) error {
	var req createStartupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startup, err := h.store.CreateStartup(c.Request().Context(), db.CreateStartupParams{
		Name:        req.Name,
		Email:       req.Email,
		Description: req.Description,
		Industry:    req.Industry,
		BoothNumber: req.BoothNumber,
	})
	if err != nil {
		return err
	}
	return created(c, "Startup created successfully", startup)
}

func (h handler) updateStartup(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateStartupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startup, err := h.store.UpdateStartup(c.Request().Context(), id, db.UpdateStartupParams{
		Name:        req.Name,
		Email:       req.Email,
		Description: req.Description,
		Industry:    req.Industry,
		BoothNumber: req.BoothNumber,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgStartupNotFound)
	} else if err != nil {
		return err
	}
	return okMessageData(c, "Startup updated successfully", startup)
}

func (h handler) deleteStartup(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	err = h.store.DeleteStartup(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgStartupNotFound)
	} else if err != nil {
		return err
	}
	return okMessage(c, "Startup deleted successfully")
}
