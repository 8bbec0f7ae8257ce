package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/lanyardhq/lanyard/internal/storage"
)

type dashboardStatsData struct {
	TotalDelegates         int64  `json:"totalDelegates"`
	TotalStartups          int64  `json:"totalStartups"`
	TotalRecommendations   int64  `json:"totalRecommendations"`
	VisitedRecommendations int64  `json:"visitedRecommendations"`
	VisitationRate         string `json:"visitationRate"`
	TotalScans             int64  `json:"totalScans"`
	TotalStaffMembers      int64  `json:"totalStaffMembers"`
}

// visitationRate formats visited/total as a percentage with two decimals.
// A zero total yields "0" rather than dividing by zero.
func visitationRate(visited, total int64) string {
	if total <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", float64(visited)/float64(total)*100)
}

// dashboardStats fetches the six dashboard counts concurrently; the counts
// are independent, and a failure in any one fails the whole aggregate.
func (h handler) dashboardStats(c echo.Context) error {
	grp, ctx := errgroup.WithContext(c.Request().Context())

	var stats dashboardStatsData
	grp.Go(func() (err error) {
		stats.TotalDelegates, err = h.store.CountDelegates(ctx)
		return err
	})
	grp.Go(func() (err error) {
		stats.TotalStartups, err = h.store.CountStartups(ctx)
		return err
	})
	grp.Go(func() (err error) {
		stats.TotalRecommendations, err = h.store.CountRecommendations(ctx)
		return err
	})
	grp.Go(func() (err error) {
		stats.VisitedRecommendations, err = h.store.CountVisitedRecommendations(ctx)
		return err
	})
	grp.Go(func() (err error) {
		stats.TotalScans, err = h.store.CountScans(ctx)
		return err
	})
	grp.Go(func() (err error) {
		stats.TotalStaffMembers, err = h.store.CountStaffUsers(ctx)
		return err
	})
	if err := grp.Wait(); err != nil {
		return err
	}

	stats.VisitationRate = visitationRate(stats.VisitedRecommendations, stats.TotalRecommendations)
	return okData(c, stats)
}

type delegateAnalyticsStats struct {
	TotalRecommendations int64  `json:"totalRecommendations"`
	VisitedCount         int64  `json:"visitedCount"`
	VisitationRate       string `json:"visitationRate"`
}

type delegateAnalyticsRec struct {
	ID          int64      `json:"id"`
	StartupID   int64      `json:"startup_id"`
	IsVisited   bool       `json:"is_visited"`
	VisitedAt   *time.Time `json:"visited_at"`
	StartupName string     `json:"startup_name"`
}

type delegateAnalyticsData struct {
	DelegateID      int64                  `json:"delegate_id"`
	DelegateName    string                 `json:"delegate_name"`
	Stats           delegateAnalyticsStats `json:"stats"`
	Recommendations []delegateAnalyticsRec `json:"recommendations"`
}

func (h handler) delegateAnalytics(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	delegate, err := h.store.GetDelegate(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgDelegateNotFound)
	} else if err != nil {
		return err
	}

	total, visited, err := h.store.CountDelegateRecommendations(ctx, id)
	if err != nil {
		return err
	}
	recs, err := h.store.ListRecommendationsByDelegate(ctx, id)
	if err != nil {
		return err
	}

	flattened := make([]delegateAnalyticsRec, len(recs))
	for i, rec := range recs {
		flattened[i] = delegateAnalyticsRec{
			ID:          rec.ID,
			StartupID:   rec.StartupID,
			IsVisited:   rec.IsVisited,
			VisitedAt:   rec.VisitedAt,
			StartupName: rec.Startup.Name,
		}
	}

	return okData(c, delegateAnalyticsData{
		DelegateID:   delegate.ID,
		DelegateName: delegate.Name,
		Stats: delegateAnalyticsStats{
			TotalRecommendations: total,
			VisitedCount:         visited,
			VisitationRate:       visitationRate(visited, total),
		},
		Recommendations: flattened,
	})
}

func (h handler) topStartups(c echo.Context) error {
	stats, err := h.store.TopStartups(c.Request().Context())
	if err != nil {
		return err
	}
	return okData(c, stats)
}
