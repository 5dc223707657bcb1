package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/hall-occupancy/internal/model"
)

// ErrHallNotFound is returned when a hall lookup yields no rows.
var ErrHallNotFound = errors.New("hall not found")

// HallRepo provides access to the reading_halls table.
type HallRepo struct{ DB *sql.DB }

func NewHallRepo(db *sql.DB) *HallRepo { return &HallRepo{DB: db} }

// Create inserts a hall and populates its ID.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO reading_halls (name, location, camera_url, layout_rows, layout_cols)
         VALUES (?,?,?,?,?)`,
        h.Name, h.Location, h.CameraURL, h.LayoutRows, h.LayoutCols)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    h.ID = uint64(id)
    return nil
}

// GetByID fetches a hall by id.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (model.Hall, error) {
    var h model.Hall
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, name, location, camera_url, layout_rows, layout_cols, is_active, created_at
         FROM reading_halls WHERE id=? LIMIT 1`,
        id).
        Scan(&h.ID, &h.Name, &h.Location, &h.CameraURL, &h.LayoutRows, &h.LayoutCols, &h.IsActive, &h.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Hall{}, ErrHallNotFound
    }
    return h, err
}

// List returns all halls ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]model.Hall, error) {
    rows, err := r.DB.QueryContext(ctx,
        `SELECT id, name, location, camera_url, layout_rows, layout_cols, is_active, created_at
         FROM reading_halls ORDER BY id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var halls []model.Hall
    for rows.Next() {
        var h model.Hall
        if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.CameraURL,
            &h.LayoutRows, &h.LayoutCols, &h.IsActive, &h.CreatedAt); err != nil {
            return nil, err
        }
        halls = append(halls, h)
    }
    return halls, rows.Err()
}

// UpdateLayout changes the logical seat grid of a hall. Existing seats
// stay untouched; the caller recalibrates afterwards.
func (r *HallRepo) UpdateLayout(ctx context.Context, id uint64, rows, cols int) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE reading_halls SET layout_rows=?, layout_cols=? WHERE id=?",
        rows, cols, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrHallNotFound
    }
    return nil
}
