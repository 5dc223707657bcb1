// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionClosedEvent is published whenever a seat session ends, whether
// by kiosk check-out, idle timeout or the max-duration cap. It carries
// enough for downstream consumers to log or feed analytics without
// querying the primary database.
type SessionClosedEvent struct {
    SessionID   uint64 `json:"session_id"`
    UserID      uint64 `json:"user_id"`
    HallID      uint64 `json:"hall_id"`
    SeatLabel   string `json:"seat_label"`
    CloseReason string `json:"close_reason"`
    CheckInAt   string `json:"check_in_at"`
    CheckOutAt  string `json:"check_out_at"`
    DurationMin int    `json:"duration_min"`
}
