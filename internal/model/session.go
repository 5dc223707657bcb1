package model

import "time"

// CloseReason records why a session ended.
type CloseReason string

const (
    CloseManual      CloseReason = "manual"      // authoritative check-out at the kiosk
    CloseTimeout     CloseReason = "timeout"     // idle sweep or vacant vision verdict past the idle limit
    CloseMaxDuration CloseReason = "maxDuration" // session exceeded the configured maximum length
)

// Session is an authoritative occupancy claim on one seat by one user.
// At most one active session exists per seat and per user at any time;
// the occupancy tracker enforces both invariants under its lock.
//
// LastActivity advances whenever vision confirms continued presence,
// so a patron never has to re-scan just to keep their seat.
//
// Fields:
//  ID           – primary key identifier (assigned by the store).
//  UserID       – patron holding the seat.
//  SeatLabel    – logical seat identifier (seats.label).
//  HallID       – hall of the seat.
//  CheckInTime  – when the session opened.
//  LastActivity – last confirmed presence, vision or manual.
//  CheckOutTime – when the session closed (zero while active).
//  CloseReason  – why the session closed (empty while active).
//  Duration     – closed-session length, reported in whole minutes.
//  IsActive     – whether the session is still open.
type Session struct {
    ID           uint64      // sessions.id
    UserID       uint64      // sessions.user_id
    SeatLabel    string      // sessions.seat_label
    HallID       uint64      // sessions.hall_id
    CheckInTime  time.Time   // sessions.check_in_time
    LastActivity time.Time   // sessions.last_activity
    CheckOutTime time.Time   // sessions.check_out_time (zero while active)
    CloseReason  CloseReason // sessions.close_reason
    Duration     int         // sessions.duration_minutes
    IsActive     bool        // sessions.is_active
}
