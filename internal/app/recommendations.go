package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/storage"
)

const msgRecommendationNotFound = "Recommendation not found"

type createRecommendationRequest struct {
	DelegateID int64 `json:"delegate_id" validate:"required,gt=0"`
	StartupID  int64 `json:"startup_id" validate:"required,gt=0"`
}

func (h handler) listRecommendations(c echo.Context) error {
	recs, err := h.store.ListRecommendations(c.Request().Context())
	if err != nil {
		return err
	}
	return okData(c, recs)
}

func (h handler) listRecommendationsByDelegate(c echo.Context) error {
	delegateID, err := pathID(c, "delegate_id")
	if err != nil {
		return err
	}
	recs, err := h.store.ListRecommendationsByDelegate(c.Request().Context(), delegateID)
	if err != nil {
		return err
	}
	return okData(c, recs)
}

func (h handler) getRecommendation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rec, err := h.store.GetRecommendation(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgRecommendationNotFound)
	} else if err != nil {
		return err
	}
	return okData(c, rec)
}

func (h handler) createRecommendation(c echo.Context) error {
	var req createRecommendationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Both sides of the pairing must exist before any row is written.
	ctx := c.Request().Context()
	if _, err := h.store.GetDelegate(ctx, req.DelegateID); errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}
	if _, err := h.store.GetStartup(ctx, req.StartupID); errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgStartupNotFound)
	} else if err != nil {
		return err
	}

	rec, err := h.store.CreateRecommendation(ctx, req.DelegateID, req.StartupID)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusBadRequest,
			"Recommendation already exists for this delegate-startup pair")
	} else if err != nil {
		return err
	}
	return created(c, "Recommendation created successfully", rec)
}

// markRecommendationVisited is idempotent in effect; re-invoking re-stamps
// the visited timestamp.
func (h handler) markRecommendationVisited(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rec, err := h.store.MarkRecommendationVisited(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgRecommendationNotFound)
	} else if err != nil {
		return err
	}
	return okMessageData(c, "Recommendation marked as visited", rec)
}

func (h handler) deleteRecommendation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	err = h.store.DeleteRecommendation(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgRecommendationNotFound)
	} else if err != nil {
		return err
	}
	return okMessage(c, "Recommendation deleted successfully")
}
