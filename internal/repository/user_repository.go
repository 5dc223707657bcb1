package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/utils"
)

// UserRepo persists patrons and staff in the 'users' table. Patrons
// carry a barcode and no password; staff authenticate with email and
// password and never appear in the kiosk flow.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreatePatron inserts a patron identified by student ID and barcode.
// Duplicate barcode or student ID maps to ErrConflict.
func (r *UserRepo) CreatePatron(ctx context.Context, u *model.User) error {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (student_id, name, email, barcode_data, role) VALUES (?,?,?,?,'PATRON')",
        strings.TrimSpace(u.StudentID), strings.TrimSpace(u.Name),
        strings.ToLower(strings.TrimSpace(u.Email)), strings.TrimSpace(u.Barcode))
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return fmt.Errorf("%w: barcode or student id taken", ErrConflict)
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    u.ID = uint64(id)
    u.Role = model.RolePatron
    return nil
}

// CreateStaff inserts a staff account with a bcrypt-hashed password.
func (r *UserRepo) CreateStaff(ctx context.Context, email, password string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,'STAFF')",
        email, email, hash)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, fmt.Errorf("%w: email taken", ErrConflict)
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ResolveCredential maps a scanned credential to an active patron. It
// matches the barcode column first and falls back to student_id, so
// both a card swipe and a typed ID work at the kiosk.
func (r *UserRepo) ResolveCredential(ctx context.Context, credential string) (model.User, error) {
    credential = strings.TrimSpace(credential)
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, student_id, name, email, barcode_data, role, is_active, created_at
         FROM users
         WHERE (barcode_data=? OR student_id=?) AND role='PATRON' AND is_active=1
         LIMIT 1`,
        credential, credential).
        Scan(&u.ID, &u.StudentID, &u.Name, &u.Email, &u.Barcode, &u.Role, &u.IsActive, &u.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.User{}, ErrUnknownCredential
    }
    return u, err
}

// GetByEmail fetches a staff user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, student_id, name, email, barcode_data, password_hash, role, is_active, created_at
         FROM users WHERE email=? LIMIT 1`,
        email).
        Scan(&u.ID, &u.StudentID, &u.Name, &u.Email, &u.Barcode, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
    return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, student_id, name, email, barcode_data, role, is_active, created_at
         FROM users WHERE id=? LIMIT 1`,
        id).
        Scan(&u.ID, &u.StudentID, &u.Name, &u.Email, &u.Barcode, &u.Role, &u.IsActive, &u.CreatedAt)
    return u, err
}
