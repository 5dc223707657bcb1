package repository

import (
    "context"
    "database/sql"
    "errors"
)

// ErrConfigNotFound is returned when a configuration key is absent.
var ErrConfigNotFound = errors.New("config key not found")

// ConfigRepo stores operator-editable settings in the configurations
// table. Values are plain strings; callers parse them. These override
// environment defaults only after a restart, matching how calibration
// thresholds were tuned in the field.
type ConfigRepo struct{ DB *sql.DB }

func NewConfigRepo(db *sql.DB) *ConfigRepo { return &ConfigRepo{DB: db} }

// Get returns the value for one key.
func (r *ConfigRepo) Get(ctx context.Context, key string) (string, error) {
    var v string
    err := r.DB.QueryRowContext(ctx,
        "SELECT config_value FROM configurations WHERE config_key=? LIMIT 1",
        key).Scan(&v)
    if errors.Is(err, sql.ErrNoRows) {
        return "", ErrConfigNotFound
    }
    return v, err
}

// Put inserts or updates one key.
func (r *ConfigRepo) Put(ctx context.Context, key, value string) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO configurations (config_key, config_value)
         VALUES (?,?)
         ON DUPLICATE KEY UPDATE config_value=VALUES(config_value)`,
        key, value)
    return err
}

// All returns every configuration pair.
func (r *ConfigRepo) All(ctx context.Context) (map[string]string, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT config_key, config_value FROM configurations ORDER BY config_key")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := map[string]string{}
    for rows.Next() {
        var k, v string
        if err := rows.Scan(&k, &v); err != nil {
            return nil, err
        }
        out[k] = v
    }
    return out, rows.Err()
}
