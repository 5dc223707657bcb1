package model

import "time"

// User represents a patron or staff member. Patrons check in and out
// with the barcode on their identity card; staff additionally hold a
// password hash and authenticate with JWTs to reach the admin
// endpoints (calibration, configuration, user management).
//
// Fields:
//  ID           – primary key identifier.
//  StudentID    – institutional identifier printed on the card.
//  Name         – display name.
//  Email        – contact address, optional for patrons.
//  Barcode      – unique opaque credential read from the card.
//  Role         – PATRON or STAFF.
//  PasswordHash – bcrypt hash; empty for patrons.
//  IsActive     – whether the account may check in.
//  CreatedAt    – timestamp of creation.
// Roles stored in users.role.
const (
    RolePatron = "PATRON"
    RoleStaff  = "STAFF"
)

type User struct {
    ID           uint64    // users.id
    StudentID    string    // users.student_id
    Name         string    // users.name
    Email        string    // users.email
    Barcode      string    // users.barcode_data
    Role         string    // users.role
    PasswordHash string    // users.password_hash
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table used by
// staff authentication. Only the SHA-256 hash of the token value is
// stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
