package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hall-occupancy/internal/occupancy"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// fakeAnalytics serves canned aggregates so the analytics endpoints
// can be tested without a database.
type fakeAnalytics struct{}

func (fakeAnalytics) OverviewSince(_ context.Context, _ uint64, _ time.Time) (repository.Overview, error) {
    return repository.Overview{TotalSessions: 12, ClosedSessions: 9, AutoCheckouts: 3, AvgDurationMin: 74.5}, nil
}

func (fakeAnalytics) DailyUsage(_ context.Context, _ uint64, _ time.Time) ([]repository.UsageBucket, error) {
    return []repository.UsageBucket{{Bucket: "2025-03-01", Sessions: 12, AvgDurationMin: 74.5}}, nil
}

func (fakeAnalytics) HourlyUsage(_ context.Context, _ uint64, _, _ time.Time) ([]repository.UsageBucket, error) {
    return []repository.UsageBucket{{Bucket: "09", Sessions: 4}, {Bucket: "14", Sessions: 8}}, nil
}

func newReadServer(t *testing.T, tr *occupancy.Tracker) *echo.Echo {
    t.Helper()
    h := NewOccupancyHandler(tr, fakeAnalytics{}, 1)
    e := echo.New()
    e.GET("/v1/seats", h.Seats)
    e.GET("/v1/occupancy", h.Feed)
    e.GET("/v1/sessions/active", h.ActiveSessions)
    e.GET("/v1/analytics/overview", h.Overview)
    e.GET("/v1/analytics/usage", h.Usage)
    return e
}

func doGET(e *echo.Echo, path string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, path, nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestSeatsUncalibrated(t *testing.T) {
    tr := occupancy.NewTracker(occupancy.Config{HistorySize: 5, SmoothThreshold: 0.6}, 1, nil)
    e := newReadServer(t, tr)
    rec := doGET(e, "/v1/seats")
    assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSeatsAndFeedReflectSessions(t *testing.T) {
    tr := newKioskTracker(t)
    e := newReadServer(t, tr)

    rec := doJSON(newKioskEcho(t, tr), http.MethodPost, "/v1/checkin", `{"credential":"CARD-1","seat_id":"R1S1"}`)
    require.Equal(t, http.StatusCreated, rec.Code)

    rec = doGET(e, "/v1/seats")
    require.Equal(t, http.StatusOK, rec.Code)
    var seatsResp struct {
        Seats []occupancy.SeatView `json:"seats"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seatsResp))
    require.Len(t, seatsResp.Seats, 2)
    assert.Equal(t, "OCCUPIED", seatsResp.Seats[0].Status)
    assert.Equal(t, uint64(7), seatsResp.Seats[0].SessionUser)
    assert.Equal(t, "EMPTY", seatsResp.Seats[1].Status)

    rec = doGET(e, "/v1/occupancy")
    require.Equal(t, http.StatusOK, rec.Code)
    var feed occupancy.Feed
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
    assert.Equal(t, 2, feed.Stats.Total)
    assert.Equal(t, 1, feed.Stats.Occupied)
    assert.Equal(t, 1, feed.Stats.Vacant)

    rec = doGET(e, "/v1/sessions/active")
    require.Equal(t, http.StatusOK, rec.Code)
    var active struct {
        Count int `json:"count"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
    assert.Equal(t, 1, active.Count)
}

func TestOverviewBlendsAggregatesAndLiveFeed(t *testing.T) {
    tr := newKioskTracker(t)
    e := newReadServer(t, tr)

    rec := doJSON(newKioskEcho(t, tr), http.MethodPost, "/v1/checkin", `{"credential":"CARD-1","seat_id":"R1S1"}`)
    require.Equal(t, http.StatusCreated, rec.Code)

    recG := doGET(e, "/v1/analytics/overview")
    require.Equal(t, http.StatusOK, recG.Code)

    var resp struct {
        SessionsToday int     `json:"sessions_today"`
        OccupancyRate float64 `json:"occupancy_rate"`
        AvgDuration   float64 `json:"avg_duration_min"`
    }
    require.NoError(t, json.Unmarshal(recG.Body.Bytes(), &resp))
    assert.Equal(t, 12, resp.SessionsToday)
    assert.Equal(t, 74.5, resp.AvgDuration)
    // One of the two registry seats holds a session.
    assert.Equal(t, 0.5, resp.OccupancyRate)
}

func TestUsageBreakdown(t *testing.T) {
    e := newReadServer(t, newKioskTracker(t))
    rec := doGET(e, "/v1/analytics/usage")
    require.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Daily  []repository.UsageBucket `json:"daily"`
        Hourly []repository.UsageBucket `json:"hourly"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    require.Len(t, resp.Daily, 1)
    assert.Equal(t, "2025-03-01", resp.Daily[0].Bucket)
    require.Len(t, resp.Hourly, 2)
    assert.Equal(t, 8, resp.Hourly[1].Sessions)
}

// newKioskEcho mounts the kiosk routes on a provided tracker so read
// and write surfaces can be tested against the same state.
func newKioskEcho(t *testing.T, tr *occupancy.Tracker) *echo.Echo {
    t.Helper()
    h := NewSessionHandler(&fakeResolver{users: map[string]uint64{"CARD-1": 7, "CARD-2": 8}}, tr)
    e := echo.New()
    e.POST("/v1/checkin", h.CheckIn)
    e.POST("/v1/checkout", h.CheckOut)
    return e
}
