package config

// This file loads the optional tunables of the vision pipeline and the
// session reconciler. All values have working defaults so a fresh
// deployment only has to provide the required variables in config.go.

import (
    "os"
    "strconv"
    "time"
)

// VisionConfig collects the calibration and classification tunables.
//
// DUPLICATE_IOU and CLUSTER_DISTANCE_PX are coupled: loosening the
// duplicate threshold admits more boxes per calibration frame, which
// changes cluster population and support counts. Tune them together.
type VisionConfig struct {
    FrameWidth      float64 // detection frame width in pixels
    FrameHeight     float64 // detection frame height in pixels
    Strategy        string  // occupancy strategy: "anchor" or "posture"
    ExpandScale     float64 // seat expansion factor (anchor strategy)
    OverlapFrac     float64 // min overlap fraction of seat area (posture strategy)
    MinSupportRatio float64 // calibration support filter
    ClusterDistance float64 // calibration cluster join distance in pixels
    DuplicateIoU    float64 // same-frame duplicate suppression threshold
}

// LoadVisionConfig reads vision tunables with defaults matching the
// reference deployment: an 800x600 frame, the anchor strategy with
// x1.25 expansion, and the calibration thresholds proven in the field.
func LoadVisionConfig() VisionConfig {
    return VisionConfig{
        FrameWidth:      envFloat("FRAME_WIDTH", 800),
        FrameHeight:     envFloat("FRAME_HEIGHT", 600),
        Strategy:        envStr("OCCUPANCY_STRATEGY", "anchor"),
        ExpandScale:     envFloat("SEAT_EXPAND_SCALE", 1.25),
        OverlapFrac:     envFloat("SEAT_OVERLAP_FRACTION", 0.3),
        MinSupportRatio: envFloat("MIN_SUPPORT_RATIO", 0.4),
        ClusterDistance: envFloat("CLUSTER_DISTANCE_PX", 60),
        DuplicateIoU:    envFloat("DUPLICATE_IOU", 0.5),
    }
}

// ReconcilerConfig collects the session reconciliation tunables.
type ReconcilerConfig struct {
    IdleTimeout     time.Duration // vacant-seat grace before auto-checkout
    MaxDuration     time.Duration // absolute session length limit
    ConfidenceFloor float64       // provisional-occupancy confidence floor
    HistorySize     int           // smoother window capacity
    SmoothThreshold float64       // smoother occupancy threshold
    SweepInterval   time.Duration // background sweep cadence
}

// LoadReconcilerConfig reads reconciler tunables. The defaults mirror
// the original deployment: 30 minute idle timeout, 8 hour session cap,
// a 5-frame smoothing window at 0.6, sweep every 5 minutes.
func LoadReconcilerConfig() ReconcilerConfig {
    return ReconcilerConfig{
        IdleTimeout:     envDur("IDLE_TIMEOUT", 30*time.Minute),
        MaxDuration:     envDur("MAX_SESSION_DURATION", 8*time.Hour),
        ConfidenceFloor: envFloat("CONFIDENCE_FLOOR", 0.8),
        HistorySize:     envInt("SMOOTH_WINDOW", 5),
        SmoothThreshold: envFloat("SMOOTH_THRESHOLD", 0.6),
        SweepInterval:   envDur("SWEEP_INTERVAL", 5*time.Minute),
    }
}

// Keys read back from the configurations table at boot. Staff edit
// them through the config endpoints; the values override the
// environment on the next restart.
const (
    SettingIdleTimeoutMinutes = "idle_timeout_minutes"
    SettingMaxSessionHours    = "max_session_hours"
    SettingConfidenceFloor    = "confidence_floor"
)

// ApplyStoredSettings overlays operator-edited values onto the
// env-loaded tunables. Values that fail to parse or fall outside their
// valid range are ignored, leaving the environment default in force.
func (rc ReconcilerConfig) ApplyStoredSettings(values map[string]string) ReconcilerConfig {
    if n, ok := settingInt(values, SettingIdleTimeoutMinutes); ok {
        rc.IdleTimeout = time.Duration(n) * time.Minute
    }
    if n, ok := settingInt(values, SettingMaxSessionHours); ok {
        rc.MaxDuration = time.Duration(n) * time.Hour
    }
    if v, ok := values[SettingConfidenceFloor]; ok {
        if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
            rc.ConfidenceFloor = f
        }
    }
    return rc
}

func settingInt(values map[string]string, key string) (int, bool) {
    v, ok := values[key]
    if !ok {
        return 0, false
    }
    n, err := strconv.Atoi(v)
    if err != nil || n <= 0 {
        return 0, false
    }
    return n, true
}

func envFloat(k string, d float64) float64 {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if f, err := strconv.ParseFloat(v, 64); err == nil {
        return f
    }
    return d
}
