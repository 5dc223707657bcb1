package handler

import (
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hall-occupancy/internal/config"
    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/repository"
    "github.com/iliyamo/hall-occupancy/internal/utils"
)

type fakeStaffStore struct {
    users map[string]model.User // keyed by email
}

func (f *fakeStaffStore) CreateStaff(_ context.Context, email, password string, cost int) (uint64, error) {
    if _, ok := f.users[email]; ok {
        return 0, repository.ErrConflict
    }
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    id := uint64(len(f.users) + 1)
    f.users[email] = model.User{ID: id, Email: email, PasswordHash: hash, Role: model.RoleStaff}
    return id, nil
}

func (f *fakeStaffStore) GetByEmail(_ context.Context, email string) (model.User, error) {
    u, ok := f.users[email]
    if !ok {
        return model.User{}, sql.ErrNoRows
    }
    return u, nil
}

func (f *fakeStaffStore) GetByID(_ context.Context, id uint64) (model.User, error) {
    for _, u := range f.users {
        if u.ID == id {
            return u, nil
        }
    }
    return model.User{}, sql.ErrNoRows
}

type fakeTokenStore struct {
    owner   map[string]uint64 // token hash -> user
    revoked map[string]bool
}

func newFakeTokenStore() *fakeTokenStore {
    return &fakeTokenStore{owner: map[string]uint64{}, revoked: map[string]bool{}}
}

func (f *fakeTokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, _ time.Time) error {
    f.owner[tokenHash] = userID
    return nil
}

func (f *fakeTokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
    uid, ok := f.owner[tokenHash]
    if !ok || f.revoked[tokenHash] {
        return 0, sql.ErrNoRows
    }
    return uid, nil
}

func (f *fakeTokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
    f.revoked[tokenHash] = true
    return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
    for hash, uid := range f.owner {
        if uid == userID {
            f.revoked[hash] = true
        }
    }
    return nil
}

func newAuthServer(t *testing.T) (*echo.Echo, *fakeTokenStore) {
    t.Helper()
    cfg := config.Config{JWTSecret: "secret", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}
    tokens := newFakeTokenStore()
    h := NewAuthHandler(cfg, &fakeStaffStore{users: map[string]model.User{}}, tokens)
    e := echo.New()
    e.POST("/v1/auth/register", h.Register)
    e.POST("/v1/auth/login", h.Login)
    e.POST("/v1/auth/refresh", h.Refresh)
    e.POST("/v1/auth/logout", h.Logout)
    return e, tokens
}

func refreshToken(t *testing.T, body []byte) string {
    t.Helper()
    var resp struct {
        Refresh struct {
            Token string `json:"token"`
        } `json:"refresh"`
    }
    require.NoError(t, json.Unmarshal(body, &resp))
    require.NotEmpty(t, resp.Refresh.Token)
    return resp.Refresh.Token
}

func TestRegisterAndLogin(t *testing.T) {
    e, _ := newAuthServer(t)

    rec := doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"ops@library.test","password":"hunter2"}`)
    require.Equal(t, http.StatusCreated, rec.Code)

    rec = doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"ops@library.test","password":"hunter2"}`)
    assert.Equal(t, http.StatusConflict, rec.Code)

    rec = doJSON(e, http.MethodPost, "/v1/auth/login", `{"email":"ops@library.test","password":"hunter2"}`)
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = doJSON(e, http.MethodPost, "/v1/auth/login", `{"email":"ops@library.test","password":"wrong"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
    e, _ := newAuthServer(t)

    rec := doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"ops@library.test","password":"hunter2"}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    raw := refreshToken(t, rec.Body.Bytes())

    rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
    require.Equal(t, http.StatusOK, rec.Code)

    // The used token is revoked; replaying it fails.
    rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
    e, _ := newAuthServer(t)

    rec := doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"ops@library.test","password":"hunter2"}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    raw := refreshToken(t, rec.Body.Bytes())

    rec = doJSON(e, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"`+raw+`"}`)
    require.Equal(t, http.StatusNoContent, rec.Code)

    rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAllRevokesEveryDevice(t *testing.T) {
    e, _ := newAuthServer(t)

    rec := doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"ops@library.test","password":"hunter2"}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    first := refreshToken(t, rec.Body.Bytes())

    // A second login simulates another device holding its own token.
    rec = doJSON(e, http.MethodPost, "/v1/auth/login", `{"email":"ops@library.test","password":"hunter2"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    second := refreshToken(t, rec.Body.Bytes())

    rec = doJSON(e, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"`+first+`","all":true}`)
    require.Equal(t, http.StatusNoContent, rec.Code)

    for _, raw := range []string{first, second} {
        rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    }
}

func TestLogoutAllNeedsValidToken(t *testing.T) {
    e, _ := newAuthServer(t)
    rec := doJSON(e, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"bogus","all":true}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
