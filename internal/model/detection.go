package model

import "time"

// VisionDetection is one row of the append-only detection audit log.
// Every verdict the reconciler consumes is recorded here regardless of
// whether it changed any state.
//
// Fields:
//  ID         – primary key identifier.
//  SeatLabel  – seat the verdict refers to.
//  IsOccupied – the verdict itself.
//  Confidence – normalized detector confidence in [0,1].
//  DetectedAt – when the verdict was produced.
type VisionDetection struct {
    ID         uint64    // vision_detections.id
    SeatLabel  string    // vision_detections.seat_label
    IsOccupied bool      // vision_detections.is_occupied
    Confidence float64   // vision_detections.confidence
    DetectedAt time.Time // vision_detections.detected_at
}

// ActivityLog mirrors the activity_logs table: a human-readable trail
// of check-ins, check-outs and automatic closures.
type ActivityLog struct {
    ID        uint64    // activity_logs.id
    UserID    uint64    // activity_logs.user_id
    Action    string    // activity_logs.action (CHECK_IN, CHECK_OUT, AUTO_CHECKOUT, SESSION_EXPIRED, ...)
    Details   string    // activity_logs.details
    CreatedAt time.Time // activity_logs.created_at
}
