package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/occupancy"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// CredentialResolver maps a scanned kiosk credential to a patron.
// *repository.UserRepo is the production implementation.
type CredentialResolver interface {
    ResolveCredential(ctx context.Context, credential string) (model.User, error)
}

// SessionHandler serves the kiosk flow: a patron scans their card and
// either claims a seat or releases the one they hold. Both operations
// are atomic on the tracker; the durable row is written before the
// in-memory state commits, so a 2xx response means the session is on
// disk.
type SessionHandler struct {
    Users   CredentialResolver
    Tracker *occupancy.Tracker
}

func NewSessionHandler(u CredentialResolver, t *occupancy.Tracker) *SessionHandler {
    return &SessionHandler{Users: u, Tracker: t}
}

type checkInReq struct {
    Credential string `json:"credential"`
    SeatID     string `json:"seat_id"`
}
type checkOutReq struct {
    Credential string `json:"credential"`
}

type sessionResp struct {
    SessionID uint64 `json:"session_id"`
    UserID    uint64 `json:"user_id"`
    SeatID    string `json:"seat_id"`
    CheckIn   string `json:"check_in"`
    CheckOut  string `json:"check_out,omitempty"`
    Reason    string `json:"reason,omitempty"`
    Duration  int    `json:"duration_min,omitempty"`
}

func toSessionResp(s *model.Session) sessionResp {
    r := sessionResp{
        SessionID: s.ID,
        UserID:    s.UserID,
        SeatID:    s.SeatLabel,
        CheckIn:   s.CheckInTime.UTC().Format(time.RFC3339),
    }
    if !s.IsActive {
        r.CheckOut = s.CheckOutTime.UTC().Format(time.RFC3339)
        r.Reason = string(s.CloseReason)
        r.Duration = s.Duration
    }
    return r
}

// CheckIn opens a session for the scanned credential on the given seat.
func (h *SessionHandler) CheckIn(c echo.Context) error {
    var req checkInReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Credential) == "" || strings.TrimSpace(req.SeatID) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "credential/seat_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.ResolveCredential(ctx, req.Credential)
    if err != nil {
        if errors.Is(err, repository.ErrUnknownCredential) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown credential"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential lookup failed"})
    }

    s, err := h.Tracker.CheckIn(ctx, u.ID, strings.TrimSpace(req.SeatID), time.Now().UTC())
    if err != nil {
        switch {
        case errors.Is(err, occupancy.ErrUnknownSeat):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown seat"})
        case errors.Is(err, occupancy.ErrSeatUnavailable):
            return c.JSON(http.StatusConflict, echo.Map{"error": "seat occupied"})
        case errors.Is(err, occupancy.ErrUserAlreadyActive):
            return c.JSON(http.StatusConflict, echo.Map{"error": "user already checked in"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
    }
    return c.JSON(http.StatusCreated, toSessionResp(s))
}

// CheckOut closes the scanned credential's active session.
func (h *SessionHandler) CheckOut(c echo.Context) error {
    var req checkOutReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Credential) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "credential required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.ResolveCredential(ctx, req.Credential)
    if err != nil {
        if errors.Is(err, repository.ErrUnknownCredential) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown credential"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential lookup failed"})
    }

    s, err := h.Tracker.CheckOut(ctx, u.ID, time.Now().UTC())
    if err != nil {
        if errors.Is(err, occupancy.ErrNoActiveSession) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no active session"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-out failed"})
    }
    return c.JSON(http.StatusOK, toSessionResp(s))
}
