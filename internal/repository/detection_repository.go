package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/hall-occupancy/internal/model"
)

// DetectionRepo writes the append-only audit trails: every vision
// verdict into vision_detections and every notable user action into
// activity_logs. Neither table is read on the hot path.
type DetectionRepo struct{ DB *sql.DB }

func NewDetectionRepo(db *sql.DB) *DetectionRepo { return &DetectionRepo{DB: db} }

// InsertDetection records one vision verdict.
func (r *DetectionRepo) InsertDetection(ctx context.Context, d *model.VisionDetection) error {
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO vision_detections (seat_label, is_occupied, confidence, detected_at)
         VALUES (?,?,?,?)`,
        d.SeatLabel, d.IsOccupied, d.Confidence, d.DetectedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    d.ID = uint64(id)
    return nil
}

// RecentDetections returns the newest rows for a seat, newest first.
func (r *DetectionRepo) RecentDetections(ctx context.Context, seatLabel string, limit int) ([]model.VisionDetection, error) {
    if limit <= 0 {
        limit = 50
    }
    rows, err := r.DB.QueryContext(ctx,
        `SELECT id, seat_label, is_occupied, confidence, detected_at
         FROM vision_detections
         WHERE seat_label=?
         ORDER BY detected_at DESC
         LIMIT ?`,
        seatLabel, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.VisionDetection
    for rows.Next() {
        var d model.VisionDetection
        if err := rows.Scan(&d.ID, &d.SeatLabel, &d.IsOccupied, &d.Confidence, &d.DetectedAt); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// LogActivity appends one activity_logs row.
func (r *DetectionRepo) LogActivity(ctx context.Context, userID uint64, action, details string) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO activity_logs (user_id, action, details) VALUES (?,?,?)",
        userID, action, details)
    return err
}
