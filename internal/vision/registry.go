// Package vision implements the seat-registry calibration and the
// per-frame occupancy pipeline: clustering raw chair detections into a
// stable set of logical seats, deciding per-frame occupancy from person
// detections, and smoothing the noisy verdicts into a stable status.
package vision

import (
    "fmt"

    "github.com/iliyamo/hall-occupancy/internal/geometry"
)

// Seat is one calibrated seat in a registry. The label and grid
// position are assigned once during calibration and never change for
// the lifetime of the registry.
type Seat struct {
    Label string       // logical identifier from the layout table, e.g. "R2S5"
    Box   geometry.Box // canonical bounding box (mean box of the supporting cluster)
    Row   int          // grid row, 0-based
    Col   int          // grid column, 0-based
}

// Registry is the immutable output of a calibration run. Seats are
// ordered by row then column; the slice order is the canonical
// evaluation order for classification and smoothing.
type Registry struct {
    Rows  int
    Cols  int
    Seats []Seat
}

// Find returns the seat with the given label, or false when the label
// is unknown to this registry.
func (r *Registry) Find(label string) (Seat, bool) {
    for _, s := range r.Seats {
        if s.Label == label {
            return s, true
        }
    }
    return Seat{}, false
}

// SeatLabel builds the layout-table identifier for a grid cell. Rows
// and columns are 1-based in the label to match the physical signage
// in the hall.
func SeatLabel(row, col int) string {
    return fmt.Sprintf("R%dS%d", row+1, col+1)
}
