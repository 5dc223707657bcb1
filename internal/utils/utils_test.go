package utils

import (
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
    hash, err := HashPassword("hunter2", 4) // min cost keeps the test fast
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "hunter2"))
    assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestAccessTokenClaims(t *testing.T) {
    at, err := NewAccessToken("secret", 42, "STAFF", 5)
    require.NoError(t, err)

    tok, err := jwt.Parse(at.Token, func(t *jwt.Token) (interface{}, error) {
        return []byte("secret"), nil
    })
    require.NoError(t, err)
    require.True(t, tok.Valid)

    claims := tok.Claims.(jwt.MapClaims)
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "STAFF", claims["role"])
}

func TestRefreshTokenHashIsStable(t *testing.T) {
    rt, err := NewRefreshToken(30)
    require.NoError(t, err)
    assert.Len(t, rt.Raw, 96) // 48 random bytes hex encoded

    h1 := HashRefreshRaw(rt.Raw)
    h2 := HashRefreshRaw(rt.Raw)
    assert.Equal(t, h1, h2)
    assert.Len(t, h1, 64) // sha256 hex
    assert.NotEqual(t, h1, HashRefreshRaw(rt.Raw+"x"))
}
