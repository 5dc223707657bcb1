package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hall-occupancy/internal/utils"
)

const testSecret = "test-secret"

func protectedServer(roles ...string) *echo.Echo {
    e := echo.New()
    g := e.Group("/v1")
    g.Use(JWTAuth(testSecret))
    if len(roles) > 0 {
        g.Use(RequireRole(roles...))
    }
    g.GET("/ping", func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"role": c.Get("role")})
    })
    return e
}

func request(e *echo.Echo, token string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
    rec := request(protectedServer(), "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthBadToken(t *testing.T) {
    rec := request(protectedServer(), "not.a.jwt")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
    tok, err := utils.NewAccessToken("other-secret", 1, "STAFF", 5)
    require.NoError(t, err)
    rec := request(protectedServer(), tok.Token)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 1, "STAFF", 5)
    require.NoError(t, err)
    rec := request(protectedServer(), tok.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "STAFF")
}

func TestRequireRoleAllows(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 1, "STAFF", 5)
    require.NoError(t, err)
    rec := request(protectedServer("STAFF"), tok.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejects(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 1, "PATRON", 5)
    require.NoError(t, err)
    rec := request(protectedServer("STAFF"), tok.Token)
    assert.Equal(t, http.StatusForbidden, rec.Code)
}
