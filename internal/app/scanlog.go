package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage"
)

type createScanRequest struct {
	DelegateID int64 `json:"delegate_id" validate:"required,gt=0"`
}

func (h handler) listScans(c echo.Context) error {
	scans, err := h.store.ListScans(c.Request().Context())
	if err != nil {
		return err
	}
	return okData(c, scans)
}

func (h handler) listScansByStaff(c echo.Context) error {
	staffID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	scans, err := h.store.ListScansByStaff(c.Request().Context(), staffID)
	if err != nil {
		return err
	}
	return okData(c, scans)
}

func (h handler) listScansByDelegate(c echo.Context) error {
	delegateID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	scans, err := h.store.ListScansByDelegate(c.Request().Context(), delegateID)
	if err != nil {
		return err
	}
	return okData(c, scans)
}

// createScan appends a scan record attributed to the acting staff identity.
func (h handler) createScan(c echo.Context) error {
	var req createScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	identity, ok := sec.IdentityFrom(ctx)
	if !ok {
		// The staff gate guarantees an identity; this is a wiring bug.
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	// The delegate must exist before any row is written.
	if _, err := h.store.GetDelegate(ctx, req.DelegateID); errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}

	scan, err := h.store.CreateScan(ctx, req.DelegateID, identity.ID)
	if err != nil {
		return err
	}
	return created(c, "Scan logged successfully", scan)
}
