package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/storage"
	"github.com/lanyardhq/lanyard/internal/storage/db"
)

const msgDelegateNotFound = "Delegate not found"

type createDelegateRequest struct {
	BadgeID     string  `json:"badge_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	JobTitle    *string `json:"job_title"`
	CompanyName *string `json:"company_name"`
}

type updateDelegateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	JobTitle    *string `json:"job_title"`
	CompanyName *string `json:"company_name"`
}

func (h handler) listDelegates(c echo.Context) error {
	delegates, err := h.store.ListDelegates(c.Request().Context())
	if err != nil {
		return err
	}
	return okData(c, delegates)
}

func (h handler) getDelegate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	delegate, err := h.store.GetDelegate(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}
	return okData(c, delegate)
}

// getDelegateByBadge resolves a delegate from a scanned badge.
func (h handler) getDelegateByBadge(c echo.Context) error {
	delegate, err := h.store.GetDelegateByBadge(c.Request().Context(), c.Param("badge_id"))
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}
	return okData(c, delegate)
}

func (h handler) createDelegate(c echo.Context) error {
	var req createDelegateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	delegate, err := h.store.CreateDelegate(c.Request().Context(), db.CreateDelegateParams{
		BadgeID:     req.BadgeID,
		Name:        req.Name,
		Email:       req.Email,
		JobTitle:    req.JobTitle,
		CompanyName: req.CompanyName,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusBadRequest, "Badge ID already exists")
	} else if err != nil {
		return err
	}
	return created(c, "Delegate created successfully", delegate)
}

func (h handler) updateDelegate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateDelegateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	delegate, err := h.store.UpdateDelegate(c.Request().Context(), id, db.UpdateDelegateParams{
		Name:        req.Name,
		Email:       req.Email,
		JobTitle:    req.JobTitle,
		CompanyName: req.CompanyName,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}
	return okMessageData(c, "Delegate updated successfully", delegate)
}

func (h handler) deleteDelegate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	err = h.store.DeleteDelegate(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}
	return okMessage(c, "Delegate deleted successfully")
}
