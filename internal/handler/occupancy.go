package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/occupancy"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// SessionAnalytics is the aggregate query surface the read endpoints
// need; *repository.SessionRepo is the production implementation.
type SessionAnalytics interface {
    OverviewSince(ctx context.Context, hallID uint64, since time.Time) (repository.Overview, error)
    DailyUsage(ctx context.Context, hallID uint64, since time.Time) ([]repository.UsageBucket, error)
    HourlyUsage(ctx context.Context, hallID uint64, from, to time.Time) ([]repository.UsageBucket, error)
}

// OccupancyHandler serves the read side: the seat map for displays,
// the compact occupancy feed, open sessions and the analytics
// endpoints. All tracker reads are snapshots; the handler never holds
// the tracker lock across I/O.
type OccupancyHandler struct {
    Tracker  *occupancy.Tracker
    Sessions SessionAnalytics
    HallID   uint64
}

func NewOccupancyHandler(t *occupancy.Tracker, s SessionAnalytics, hallID uint64) *OccupancyHandler {
    return &OccupancyHandler{Tracker: t, Sessions: s, HallID: hallID}
}

// Seats returns the calibrated registry with live status per seat.
func (h *OccupancyHandler) Seats(c echo.Context) error {
    seats := h.Tracker.Seats()
    if seats == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "hall not calibrated"})
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}

// Feed returns the compact label->status map dashboards poll.
func (h *OccupancyHandler) Feed(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Tracker.Snapshot())
}

// ActiveSessions lists the open sessions held by the tracker.
func (h *OccupancyHandler) ActiveSessions(c echo.Context) error {
    sessions := h.Tracker.ActiveSessions()
    out := make([]sessionResp, len(sessions))
    for i := range sessions {
        out[i] = toSessionResp(&sessions[i])
    }
    return c.JSON(http.StatusOK, echo.Map{"sessions": out, "count": len(out)})
}

// Overview aggregates today's numbers: sessions opened since local
// midnight, closures, auto-checkouts, average stay, plus the live
// occupancy statistics from the tracker.
func (h *OccupancyHandler) Overview(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    now := time.Now().UTC()
    midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
    ov, err := h.Sessions.OverviewSince(ctx, h.HallID, midnight)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "analytics query failed"})
    }

    feed := h.Tracker.Snapshot()
    rate := 0.0
    if feed.Stats.Total > 0 {
        rate = float64(feed.Stats.Occupied) / float64(feed.Stats.Total)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":             midnight.Format("2006-01-02"),
        "sessions_today":   ov.TotalSessions,
        "closed_today":     ov.ClosedSessions,
        "auto_checkouts":   ov.AutoCheckouts,
        "avg_duration_min": ov.AvgDurationMin,
        "occupancy_rate":   rate,
        "live":             feed.Stats,
    })
}

// Usage returns the session breakdown dashboards chart: per-day counts
// for the trailing week and per-hour counts for today.
func (h *OccupancyHandler) Usage(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    now := time.Now().UTC()
    midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

    daily, err := h.Sessions.DailyUsage(ctx, h.HallID, midnight.AddDate(0, 0, -6))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "usage query failed"})
    }
    hourly, err := h.Sessions.HourlyUsage(ctx, h.HallID, midnight, midnight.AddDate(0, 0, 1))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "usage query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"daily": daily, "hourly": hourly})
}
