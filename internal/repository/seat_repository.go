package repository // repository defines data access for calibrated seats

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives
    "errors"       // errors for sentinel definitions

    "github.com/iliyamo/hall-occupancy/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with calibrated seats.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

// ReplaceForHall swaps the hall's seat set for a freshly calibrated
// one inside a single transaction. Calibration is all-or-nothing: a
// failed insert leaves the previous registry in place.
func (r *SeatRepo) ReplaceForHall(ctx context.Context, hallID uint64, seats []model.Seat) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer tx.Rollback()

    if _, err := tx.ExecContext(ctx, "DELETE FROM seats WHERE hall_id=?", hallID); err != nil {
        return err
    }
    if len(seats) > 0 {
        query := `INSERT INTO seats (hall_id, label, grid_row, grid_col, x1, y1, x2, y2) VALUES `
        args := make([]interface{}, 0, len(seats)*8)
        for i, s := range seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?, ?, ?, ?)"
            args = append(args, hallID, s.Label, s.Row, s.Col, s.X1, s.Y1, s.X2, s.Y2)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    return tx.Commit()
}

// GetByHall retrieves all seats of a hall in grid order.
func (r *SeatRepo) GetByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
    const q = `SELECT id, hall_id, label, grid_row, grid_col, x1, y1, x2, y2, is_occupied, is_active, created_at
               FROM seats
               WHERE hall_id = ?
               ORDER BY grid_row, grid_col`
    rows, err := r.db.QueryContext(ctx, q, hallID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.HallID, &s.Label, &s.Row, &s.Col,
            &s.X1, &s.Y1, &s.X2, &s.Y2, &s.IsOccupied, &s.IsActive, &s.CreatedAt); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}

// SetOccupied writes the reconciled occupancy flag for one seat.
func (r *SeatRepo) SetOccupied(ctx context.Context, hallID uint64, label string, occupied bool) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE seats SET is_occupied=? WHERE hall_id=? AND label=?",
        occupied, hallID, label)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Also zero when the flag already holds the target value, so
        // probe for existence before reporting a missing seat.
        var id uint64
        err := r.db.QueryRowContext(ctx,
            "SELECT id FROM seats WHERE hall_id=? AND label=? LIMIT 1",
            hallID, label).Scan(&id)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrSeatNotFound
        }
        return err
    }
    return nil
}

// SetActive toggles whether a seat may be checked into. Inactive
// seats are skipped when the registry is rebuilt at startup.
func (r *SeatRepo) SetActive(ctx context.Context, hallID uint64, label string, active bool) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE seats SET is_active=? WHERE hall_id=? AND label=?",
        active, hallID, label)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var id uint64
        err := r.db.QueryRowContext(ctx,
            "SELECT id FROM seats WHERE hall_id=? AND label=? LIMIT 1",
            hallID, label).Scan(&id)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrSeatNotFound
        }
        return err
    }
    return nil
}
