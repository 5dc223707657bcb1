package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/hall-occupancy/internal/model"
)

// SessionRepo persists seat occupancy sessions. The in-memory tracker
// is authoritative while the process runs; this table is the durable
// record and the source for analytics.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Insert stores a newly opened session and returns its ID.
func (r *SessionRepo) Insert(ctx context.Context, s *model.Session) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO sessions (user_id, seat_label, hall_id, check_in_time, last_activity, is_active)
         VALUES (?,?,?,?,?,1)`,
        s.UserID, s.SeatLabel, s.HallID, s.CheckInTime, s.LastActivity)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// Close finalizes a session row. Idempotent: a second close of the
// same session affects zero rows and is not an error.
func (r *SessionRepo) Close(ctx context.Context, s *model.Session) error {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE sessions
         SET check_out_time=?, close_reason=?, duration_minutes=?, is_active=0
         WHERE id=? AND is_active=1`,
        s.CheckOutTime, string(s.CloseReason), s.Duration, s.ID)
    return err
}

// TouchActivity advances last_activity for an open session.
func (r *SessionRepo) TouchActivity(ctx context.Context, id uint64, at time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE sessions SET last_activity=? WHERE id=? AND is_active=1",
        at, id)
    return err
}

// ListActive returns open sessions for a hall ordered by check-in.
func (r *SessionRepo) ListActive(ctx context.Context, hallID uint64) ([]model.Session, error) {
    rows, err := r.DB.QueryContext(ctx,
        `SELECT id, user_id, seat_label, hall_id, check_in_time, last_activity
         FROM sessions
         WHERE hall_id=? AND is_active=1
         ORDER BY check_in_time`,
        hallID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Session
    for rows.Next() {
        var s model.Session
        if err := rows.Scan(&s.ID, &s.UserID, &s.SeatLabel, &s.HallID,
            &s.CheckInTime, &s.LastActivity); err != nil {
            return nil, err
        }
        s.IsActive = true
        out = append(out, s)
    }
    return out, rows.Err()
}

// Overview aggregates closed-session statistics for one hall since the
// given instant (typically midnight for a daily overview).
type Overview struct {
    TotalSessions  int     // sessions opened since the cutoff
    ClosedSessions int     // of those, how many have closed
    AutoCheckouts  int     // closed by timeout or max-duration
    AvgDurationMin float64 // mean closed-session length in minutes
}

// UsageBucket is one row of a usage breakdown: sessions grouped by
// day or by hour of check-in.
type UsageBucket struct {
    Bucket         string  `json:"bucket"`           // "2025-03-01" or "14"
    Sessions       int     `json:"sessions"`         // sessions opened in the bucket
    AvgDurationMin float64 `json:"avg_duration_min"` // mean closed-session length
}

// DailyUsage groups sessions per calendar day since the cutoff.
func (r *SessionRepo) DailyUsage(ctx context.Context, hallID uint64, since time.Time) ([]UsageBucket, error) {
    return r.usage(ctx,
        `SELECT DATE_FORMAT(check_in_time, '%Y-%m-%d'),
                COUNT(*),
                AVG(CASE WHEN is_active=0 THEN duration_minutes END)
         FROM sessions
         WHERE hall_id=? AND check_in_time>=?
         GROUP BY 1 ORDER BY 1`,
        hallID, since)
}

// HourlyUsage groups sessions per check-in hour within [from, to).
func (r *SessionRepo) HourlyUsage(ctx context.Context, hallID uint64, from, to time.Time) ([]UsageBucket, error) {
    return r.usage(ctx,
        `SELECT DATE_FORMAT(check_in_time, '%H'),
                COUNT(*),
                AVG(CASE WHEN is_active=0 THEN duration_minutes END)
         FROM sessions
         WHERE hall_id=? AND check_in_time>=? AND check_in_time<?
         GROUP BY 1 ORDER BY 1`,
        hallID, from, to)
}

func (r *SessionRepo) usage(ctx context.Context, query string, args ...interface{}) ([]UsageBucket, error) {
    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []UsageBucket
    for rows.Next() {
        var (
            b   UsageBucket
            avg sql.NullFloat64
        )
        if err := rows.Scan(&b.Bucket, &b.Sessions, &avg); err != nil {
            return nil, err
        }
        if avg.Valid {
            b.AvgDurationMin = avg.Float64
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// OverviewSince computes the analytics overview in one query.
func (r *SessionRepo) OverviewSince(ctx context.Context, hallID uint64, since time.Time) (Overview, error) {
    var (
        o   Overview
        avg sql.NullFloat64
    )
    err := r.DB.QueryRowContext(ctx,
        `SELECT COUNT(*),
                COALESCE(SUM(is_active=0),0),
                COALESCE(SUM(is_active=0 AND close_reason IN ('timeout','maxDuration')),0),
                AVG(CASE WHEN is_active=0 THEN duration_minutes END)
         FROM sessions
         WHERE hall_id=? AND check_in_time>=?`,
        hallID, since).
        Scan(&o.TotalSessions, &o.ClosedSessions, &o.AutoCheckouts, &avg)
    if err != nil {
        return Overview{}, err
    }
    if avg.Valid {
        o.AvgDurationMin = avg.Float64
    }
    return o, nil
}
