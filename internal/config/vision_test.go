package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestVisionDefaults(t *testing.T) {
    cfg := LoadVisionConfig()
    assert.Equal(t, 800.0, cfg.FrameWidth)
    assert.Equal(t, 600.0, cfg.FrameHeight)
    assert.Equal(t, "anchor", cfg.Strategy)
    assert.Equal(t, 1.25, cfg.ExpandScale)
    assert.Equal(t, 0.3, cfg.OverlapFrac)
    assert.Equal(t, 0.4, cfg.MinSupportRatio)
    assert.Equal(t, 0.5, cfg.DuplicateIoU)
}

func TestVisionOverrides(t *testing.T) {
    t.Setenv("OCCUPANCY_STRATEGY", "posture")
    t.Setenv("SEAT_EXPAND_SCALE", "1.5")
    t.Setenv("FRAME_WIDTH", "1920")

    cfg := LoadVisionConfig()
    assert.Equal(t, "posture", cfg.Strategy)
    assert.Equal(t, 1.5, cfg.ExpandScale)
    assert.Equal(t, 1920.0, cfg.FrameWidth)
}

func TestVisionBadValueFallsBack(t *testing.T) {
    t.Setenv("SEAT_EXPAND_SCALE", "wide")
    cfg := LoadVisionConfig()
    assert.Equal(t, 1.25, cfg.ExpandScale)
}

func TestReconcilerDefaults(t *testing.T) {
    cfg := LoadReconcilerConfig()
    assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
    assert.Equal(t, 8*time.Hour, cfg.MaxDuration)
    assert.Equal(t, 0.8, cfg.ConfidenceFloor)
    assert.Equal(t, 5, cfg.HistorySize)
    assert.Equal(t, 0.6, cfg.SmoothThreshold)
    assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestReconcilerOverrides(t *testing.T) {
    t.Setenv("IDLE_TIMEOUT", "45m")
    t.Setenv("MAX_SESSION_DURATION", "10h")
    t.Setenv("SMOOTH_WINDOW", "9")

    cfg := LoadReconcilerConfig()
    assert.Equal(t, 45*time.Minute, cfg.IdleTimeout)
    assert.Equal(t, 10*time.Hour, cfg.MaxDuration)
    assert.Equal(t, 9, cfg.HistorySize)
}

func TestApplyStoredSettings(t *testing.T) {
    // Operator edits in the configurations table win over the env
    // defaults at the next boot.
    cfg := LoadReconcilerConfig().ApplyStoredSettings(map[string]string{
        SettingIdleTimeoutMinutes: "45",
        SettingMaxSessionHours:    "10",
        SettingConfidenceFloor:    "0.9",
    })
    assert.Equal(t, 45*time.Minute, cfg.IdleTimeout)
    assert.Equal(t, 10*time.Hour, cfg.MaxDuration)
    assert.Equal(t, 0.9, cfg.ConfidenceFloor)
}

func TestApplyStoredSettingsIgnoresBadValues(t *testing.T) {
    cfg := LoadReconcilerConfig().ApplyStoredSettings(map[string]string{
        SettingIdleTimeoutMinutes: "soon",
        SettingMaxSessionHours:    "-2",
        SettingConfidenceFloor:    "1.7",
        "unrelated_key":           "whatever",
    })
    assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
    assert.Equal(t, 8*time.Hour, cfg.MaxDuration)
    assert.Equal(t, 0.8, cfg.ConfidenceFloor)
}

func TestApplyStoredSettingsEmpty(t *testing.T) {
    cfg := LoadReconcilerConfig()
    assert.Equal(t, cfg, cfg.ApplyStoredSettings(nil))
}

func TestRateLimitNormalization(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    // TTL is raised to five refill intervals so buckets outlive bursts.
    assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestRateLimitBurstOverridesCapacity(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "30")
    t.Setenv("RATE_LIMIT_BURST", "50")
    cfg := LoadRateLimitConfig()
    assert.Equal(t, 50, cfg.Capacity)
}

func TestCacheMethodsParsing(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Methods["GET"])
    assert.True(t, cfg.Methods["HEAD"])
    assert.False(t, cfg.Methods["POST"])
}
