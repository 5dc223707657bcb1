package handler

import (
    "encoding/json"
    "net/http"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hall-occupancy/internal/config"
    "github.com/iliyamo/hall-occupancy/internal/occupancy"
    "github.com/iliyamo/hall-occupancy/internal/vision"
)

func visionCfg() config.VisionConfig {
    return config.VisionConfig{
        FrameWidth: 800, FrameHeight: 600,
        Strategy: "anchor", ExpandScale: 1.25, OverlapFrac: 0.3,
        MinSupportRatio: 0.4, ClusterDistance: 60, DuplicateIoU: 0.5,
    }
}

func newVisionServer(t *testing.T, tr *occupancy.Tracker) *echo.Echo {
    t.Helper()
    h := NewVisionHandler(visionCfg(), 1, nil, nil, nil, tr)
    e := echo.New()
    e.POST("/v1/vision/frame", h.Frame)
    e.POST("/v1/vision/detection", h.Detection)
    return e
}

func TestFrameMarksAnchoredSeat(t *testing.T) {
    tr := newKioskTracker(t)
    e := newVisionServer(t, tr)

    // Person box anchored inside R1S1, nobody near R1S2.
    body := `{"persons":[{"x1":5,"y1":0,"x2":45,"y2":50}],"confidence":0.9}`
    rec := doJSON(e, http.MethodPost, "/v1/vision/frame", body)
    require.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Verdicts []occupancy.SeatVerdict `json:"verdicts"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    require.Len(t, resp.Verdicts, 2)
    assert.Equal(t, "R1S1", resp.Verdicts[0].Label)
    assert.True(t, resp.Verdicts[0].Occupied)
    assert.False(t, resp.Verdicts[1].Occupied)
}

func TestFrameWithoutRegistry(t *testing.T) {
    tr := occupancy.NewTracker(occupancy.Config{HistorySize: 5, SmoothThreshold: 0.6}, 1, nil)
    e := newVisionServer(t, tr)
    rec := doJSON(e, http.MethodPost, "/v1/vision/frame", `{"persons":[],"confidence":0.9}`)
    assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFramePostureShapeMismatch(t *testing.T) {
    tr := newKioskTracker(t)
    // Swap in the posture strategy so the postures slice is required.
    cls, err := vision.NewClassifier(vision.ClassifierConfig{Strategy: "posture", OverlapFrac: 0.3, FrameW: 800, FrameH: 600})
    require.NoError(t, err)
    tr.SetRegistry(tr.Registry(), cls)

    e := newVisionServer(t, tr)
    rec := doJSON(e, http.MethodPost, "/v1/vision/frame",
        `{"persons":[{"x1":0,"y1":0,"x2":10,"y2":10}],"confidence":0.9}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectionOutcomes(t *testing.T) {
    tr := newKioskTracker(t)
    e := newVisionServer(t, tr)

    // High-confidence occupied verdict on a sessionless seat.
    rec := doJSON(e, http.MethodPost, "/v1/vision/detection",
        `{"seat_id":"R1S1","occupied":true,"confidence":0.95}`)
    require.Equal(t, http.StatusOK, rec.Code)
    var resp map[string]string
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, string(occupancy.OutcomeProvisional), resp["outcome"])

    // At the floor exactly: not provisional.
    rec = doJSON(e, http.MethodPost, "/v1/vision/detection",
        `{"seat_id":"R1S2","occupied":true,"confidence":0.8}`)
    require.Equal(t, http.StatusOK, rec.Code)
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, string(occupancy.OutcomeNone), resp["outcome"])
}

func TestDetectionUnknownSeat(t *testing.T) {
    tr := newKioskTracker(t)
    e := newVisionServer(t, tr)
    rec := doJSON(e, http.MethodPost, "/v1/vision/detection",
        `{"seat_id":"R9S9","occupied":true,"confidence":0.9}`)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetectionValidation(t *testing.T) {
    tr := newKioskTracker(t)
    e := newVisionServer(t, tr)

    rec := doJSON(e, http.MethodPost, "/v1/vision/detection", `{"seat_id":"","occupied":true,"confidence":0.9}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = doJSON(e, http.MethodPost, "/v1/vision/detection", `{"seat_id":"R1S1","occupied":true,"confidence":1.5}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}
