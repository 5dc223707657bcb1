package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// HallStore is the hall persistence the handler needs;
// *repository.HallRepo is the production implementation.
type HallStore interface {
    Create(ctx context.Context, h *model.Hall) error
    GetByID(ctx context.Context, id uint64) (model.Hall, error)
    List(ctx context.Context) ([]model.Hall, error)
    UpdateLayout(ctx context.Context, id uint64, rows, cols int) error
}

// SeatStore is the seat persistence the handler needs;
// *repository.SeatRepo is the production implementation.
type SeatStore interface {
    GetByHall(ctx context.Context, hallID uint64) ([]model.Seat, error)
    SetActive(ctx context.Context, hallID uint64, label string, active bool) error
}

// HallHandler exposes hall browsing and hall administration.
type HallHandler struct {
    Halls HallStore
    Seats SeatStore
}

func NewHallHandler(h HallStore, s SeatStore) *HallHandler {
    return &HallHandler{Halls: h, Seats: s}
}

type hallReq struct {
    Name       string `json:"name"`
    Location   string `json:"location"`
    CameraURL  string `json:"camera_url"`
    LayoutRows int    `json:"layout_rows"`
    LayoutCols int    `json:"layout_cols"`
}

type layoutReq struct {
    LayoutRows int `json:"layout_rows"`
    LayoutCols int `json:"layout_cols"`
}

type seatActiveReq struct {
    Active *bool `json:"active"`
}

// Create registers a new hall.
func (h *HallHandler) Create(c echo.Context) error {
    var req hallReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    if req.LayoutRows < 1 || req.LayoutCols < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout must be at least 1x1"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    hall := model.Hall{
        Name:       req.Name,
        Location:   req.Location,
        CameraURL:  req.CameraURL,
        LayoutRows: req.LayoutRows,
        LayoutCols: req.LayoutCols,
    }
    if err := h.Halls.Create(ctx, &hall); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hall failed"})
    }
    return c.JSON(http.StatusCreated, hall)
}

// List returns all halls.
func (h *HallHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    halls, err := h.Halls.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"halls": halls})
}

// Get returns one hall with its persisted seats.
func (h *HallHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    hall, err := h.Halls.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrHallNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    seats, err := h.Seats.GetByHall(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load seats failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"hall": hall, "seats": seats})
}

// HallSeats returns the persisted seats of one hall.
func (h *HallHandler) HallSeats(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    seats, err := h.Seats.GetByHall(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load seats failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}

// UpdateLayout changes a hall's logical grid. The seat registry is not
// touched; staff recalibrate afterwards to match the new layout.
func (h *HallHandler) UpdateLayout(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req layoutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.LayoutRows < 1 || req.LayoutCols < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout must be at least 1x1"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Halls.UpdateLayout(ctx, id, req.LayoutRows, req.LayoutCols); err != nil {
        if errors.Is(err, repository.ErrHallNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update layout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// SetSeatActive takes a seat out of service or returns it. The change
// affects check-ins after the next calibration or restart; the running
// registry keeps the seats it booted with.
func (h *HallHandler) SetSeatActive(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    label := c.Param("label")
    var req seatActiveReq
    if err := c.Bind(&req); err != nil || req.Active == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "active required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Seats.SetActive(ctx, id, label, *req.Active); err != nil {
        if errors.Is(err, repository.ErrSeatNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update seat failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
