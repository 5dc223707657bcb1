package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/config"
    "github.com/iliyamo/hall-occupancy/internal/geometry"
    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/occupancy"
    "github.com/iliyamo/hall-occupancy/internal/repository"
    "github.com/iliyamo/hall-occupancy/internal/vision"
)

// VisionHandler is the ingest surface for the detection client. The
// client runs next to the camera and posts either whole frames of
// person boxes or single per-seat verdicts; calibration runs are
// posted as a batch of chair-box frames.
type VisionHandler struct {
    Cfg        config.VisionConfig
    HallID     uint64
    Halls      *repository.HallRepo
    Seats      *repository.SeatRepo
    Detections *repository.DetectionRepo
    Tracker    *occupancy.Tracker
}

func NewVisionHandler(cfg config.VisionConfig, hallID uint64, halls *repository.HallRepo,
    seats *repository.SeatRepo, det *repository.DetectionRepo, tr *occupancy.Tracker) *VisionHandler {
    return &VisionHandler{Cfg: cfg, HallID: hallID, Halls: halls, Seats: seats, Detections: det, Tracker: tr}
}

// ----- DTOs -----

type calibrateReq struct {
    Frames [][]geometry.Box `json:"frames"`
}

type calibrateResp struct {
    Rows  int             `json:"rows"`
    Cols  int             `json:"cols"`
    Seats []calibrateSeat `json:"seats"`
}

type calibrateSeat struct {
    Label string       `json:"label"`
    Row   int          `json:"row"`
    Col   int          `json:"col"`
    Box   geometry.Box `json:"box"`
}

type frameReq struct {
    Persons    []geometry.Box   `json:"persons"`
    Postures   []vision.Posture `json:"postures,omitempty"`
    Confidence float64          `json:"confidence"`
}

type detectionReq struct {
    SeatID     string  `json:"seat_id"`
    Occupied   bool    `json:"occupied"`
    Confidence float64 `json:"confidence"`
}

// Calibrate builds a fresh seat registry from a batch of chair-box
// frames, persists it, and installs it on the tracker. The whole
// operation is atomic: a calibration failure leaves the previous
// registry live.
func (h *VisionHandler) Calibrate(c echo.Context) error {
    var req calibrateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.Frames) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "frames required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    hall, err := h.Halls.GetByID(ctx, h.HallID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load hall failed"})
    }

    reg, err := vision.Calibrate(req.Frames, vision.CalibratorConfig{
        LayoutRows:      hall.LayoutRows,
        LayoutCols:      hall.LayoutCols,
        MinSupportRatio: h.Cfg.MinSupportRatio,
        ClusterDistance: h.Cfg.ClusterDistance,
        DuplicateIoU:    h.Cfg.DuplicateIoU,
    })
    if err != nil {
        switch {
        case errors.Is(err, vision.ErrNoStableSeats):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no stable seats detected"})
        case errors.Is(err, vision.ErrDuplicateGridAssignment):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    seats := make([]model.Seat, len(reg.Seats))
    for i, s := range reg.Seats {
        seats[i] = model.Seat{
            HallID: h.HallID, Label: s.Label, Row: s.Row, Col: s.Col,
            X1: s.Box.X1, Y1: s.Box.Y1, X2: s.Box.X2, Y2: s.Box.Y2,
        }
    }
    if err := h.Seats.ReplaceForHall(ctx, h.HallID, seats); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "persist registry failed"})
    }

    cls, err := vision.NewClassifier(vision.ClassifierConfig{
        Strategy:    h.Cfg.Strategy,
        ExpandScale: h.Cfg.ExpandScale,
        OverlapFrac: h.Cfg.OverlapFrac,
        FrameW:      h.Cfg.FrameWidth,
        FrameH:      h.Cfg.FrameHeight,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build classifier failed"})
    }
    h.Tracker.SetRegistry(reg, cls)

    resp := calibrateResp{Rows: reg.Rows, Cols: reg.Cols}
    for _, s := range reg.Seats {
        resp.Seats = append(resp.Seats, calibrateSeat{Label: s.Label, Row: s.Row, Col: s.Col, Box: s.Box})
    }
    return c.JSON(http.StatusOK, resp)
}

// Frame ingests one detection frame: person boxes plus optional
// postures, with one confidence for the whole frame. Every resulting
// verdict is appended to the detection audit trail.
func (h *VisionHandler) Frame(c echo.Context) error {
    var req frameReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Confidence < 0 || req.Confidence > 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "confidence must be in [0,1]"})
    }

    now := time.Now().UTC()
    verdicts, err := h.Tracker.ProcessFrame(c.Request().Context(), req.Persons, req.Postures, req.Confidence, now)
    if err != nil {
        switch {
        case errors.Is(err, occupancy.ErrNoRegistry):
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "hall not calibrated"})
        case errors.Is(err, vision.ErrShapeMismatch):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "process frame failed"})
    }

    h.auditVerdicts(c.Request().Context(), verdicts, req.Confidence, now)
    return c.JSON(http.StatusOK, echo.Map{"verdicts": verdicts})
}

// Detection ingests a single per-seat verdict from clients that score
// each seat individually.
func (h *VisionHandler) Detection(c echo.Context) error {
    var req detectionReq
    if err := c.Bind(&req); err != nil || req.SeatID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id required"})
    }
    if req.Confidence < 0 || req.Confidence > 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "confidence must be in [0,1]"})
    }

    now := time.Now().UTC()
    outcome, err := h.Tracker.OnVisionVerdict(c.Request().Context(), req.SeatID, req.Occupied, req.Confidence, now)
    if err != nil {
        if errors.Is(err, occupancy.ErrUnknownSeat) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown seat"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply verdict failed"})
    }

    if h.Detections != nil {
        d := model.VisionDetection{SeatLabel: req.SeatID, IsOccupied: req.Occupied, Confidence: req.Confidence, DetectedAt: now}
        if err := h.Detections.InsertDetection(c.Request().Context(), &d); err != nil {
            c.Logger().Warnf("vision: audit detection for %s failed: %v", req.SeatID, err)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"outcome": outcome})
}

// RecentDetections exposes the audit trail for one seat.
func (h *VisionHandler) RecentDetections(c echo.Context) error {
    label := c.Param("label")
    if label == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat label required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    rows, err := h.Detections.RecentDetections(ctx, label, 50)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"detections": rows})
}

// auditVerdicts appends frame verdicts to vision_detections. Audit
// failures are logged, never surfaced to the detection client.
func (h *VisionHandler) auditVerdicts(ctx context.Context, verdicts []occupancy.SeatVerdict, confidence float64, now time.Time) {
    if h.Detections == nil {
        return
    }
    for _, v := range verdicts {
        d := model.VisionDetection{SeatLabel: v.Label, IsOccupied: v.Occupied, Confidence: confidence, DetectedAt: now}
        if err := h.Detections.InsertDetection(ctx, &d); err != nil {
            log.Printf("vision: audit verdict for %s failed: %v", v.Label, err)
        }
    }
}
