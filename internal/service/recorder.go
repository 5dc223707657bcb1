package service

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/iliyamo/hall-occupancy/internal/model"
    q "github.com/iliyamo/hall-occupancy/internal/queue"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// Activity log actions written by the recorder.
const (
    ActionCheckIn        = "CHECK_IN"
    ActionCheckOut       = "CHECK_OUT"
    ActionAutoCheckout   = "AUTO_CHECKOUT"
    ActionSessionExpired = "SESSION_EXPIRED"
)

// StoreRecorder is the durable side of the occupancy tracker. The
// tracker decides what happened; this type writes it down: session
// rows, the seat occupancy flag, the activity trail, and a broker
// event per closed session.
//
// Error contract follows the tracker's: errors returned from
// SessionOpened and SessionClosed abort manual transitions, while the
// activity log and the broker publish are best-effort everywhere
// because neither participates in the occupancy state machine.
type StoreRecorder struct {
    Sessions   *repository.SessionRepo
    Seats      *repository.SeatRepo
    Detections *repository.DetectionRepo
    HallID     uint64
}

func NewStoreRecorder(sessions *repository.SessionRepo, seats *repository.SeatRepo, detections *repository.DetectionRepo, hallID uint64) *StoreRecorder {
    return &StoreRecorder{Sessions: sessions, Seats: seats, Detections: detections, HallID: hallID}
}

// SessionOpened persists a new session row and returns its ID.
func (r *StoreRecorder) SessionOpened(ctx context.Context, s *model.Session) (uint64, error) {
    id, err := r.Sessions.Insert(ctx, s)
    if err != nil {
        return 0, err
    }
    r.logActivity(ctx, s.UserID, ActionCheckIn,
        fmt.Sprintf("seat=%s hall=%d", s.SeatLabel, s.HallID))
    return id, nil
}

// SessionClosed finalizes the session row and announces the closure.
func (r *StoreRecorder) SessionClosed(ctx context.Context, s *model.Session) error {
    if err := r.Sessions.Close(ctx, s); err != nil {
        return err
    }
    var action string
    switch s.CloseReason {
    case model.CloseTimeout:
        action = ActionAutoCheckout
    case model.CloseMaxDuration:
        action = ActionSessionExpired
    default:
        action = ActionCheckOut
    }
    r.logActivity(ctx, s.UserID, action,
        fmt.Sprintf("seat=%s hall=%d reason=%s duration=%dm", s.SeatLabel, s.HallID, s.CloseReason, s.Duration))

    ev := q.SessionClosedEvent{
        SessionID:   s.ID,
        UserID:      s.UserID,
        HallID:      s.HallID,
        SeatLabel:   s.SeatLabel,
        CloseReason: string(s.CloseReason),
        CheckInAt:   s.CheckInTime.UTC().Format(time.RFC3339),
        CheckOutAt:  s.CheckOutTime.UTC().Format(time.RFC3339),
        DurationMin: s.Duration,
    }
    if err := PublishSessionClosed(ctx, ev); err != nil {
        log.Printf("recorder: publish session %d closed failed: %v", s.ID, err)
    }
    return nil
}

// SessionTouched advances last_activity on the session row so the
// idle clock survives a restart.
func (r *StoreRecorder) SessionTouched(ctx context.Context, id uint64, at time.Time) error {
    return r.Sessions.TouchActivity(ctx, id, at)
}

// SeatOccupancyChanged writes the reconciled flag to the seats table.
func (r *StoreRecorder) SeatOccupancyChanged(ctx context.Context, seatLabel string, occupied bool) error {
    if r.Seats == nil {
        return nil
    }
    // The tracker keys seats by label within its own hall.
    return r.Seats.SetOccupied(ctx, r.HallID, seatLabel, occupied)
}

func (r *StoreRecorder) logActivity(ctx context.Context, userID uint64, action, details string) {
    if r.Detections == nil {
        return
    }
    if err := r.Detections.LogActivity(ctx, userID, action, details); err != nil {
        log.Printf("recorder: activity log %s for user %d failed: %v", action, userID, err)
    }
}
