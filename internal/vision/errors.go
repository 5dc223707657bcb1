package vision

import "errors"

// ErrNoStableSeats is returned by Calibrate when no cluster survives
// the support filter. The caller decides the fallback policy, e.g.
// retrying with relaxed thresholds or running without a fixed registry.
var ErrNoStableSeats = errors.New("calibration: no stable seats detected")

// ErrDuplicateGridAssignment is returned by Calibrate when two distinct
// clusters snap to the same layout cell. Silently overwriting one seat
// with another would corrupt the registry, so the attempt fails instead.
var ErrDuplicateGridAssignment = errors.New("calibration: two seats snapped to the same grid cell")

// ErrShapeMismatch is returned by the posture-gated classifier when the
// posture list does not match the person list. This is a programming
// contract violation on the caller's side, never an expected runtime
// condition.
var ErrShapeMismatch = errors.New("classify: posture list does not match person list")
