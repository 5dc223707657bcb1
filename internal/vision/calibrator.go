package vision

import (
    "fmt"
    "math"
    "sort"

    "github.com/iliyamo/hall-occupancy/internal/geometry"
)

// CalibratorConfig holds the tunables of a calibration run.
//
// DuplicateIoU and ClusterDistance interact: loosening the duplicate
// threshold admits more boxes per frame, which changes which clusters
// form and how much support each receives. Tune them together, not
// independently.
type CalibratorConfig struct {
    LayoutRows      int     // rows in the known physical layout
    LayoutCols      int     // columns in the known physical layout
    MinSupportRatio float64 // minimum fraction of frames a cluster must appear in
    ClusterDistance float64 // max centroid distance (px) to join an existing cluster
    DuplicateIoU    float64 // same-frame boxes with IoU >= this are one detection
}

// cluster accumulates chair boxes believed to be the same physical
// seat across calibration frames. The running centroid shifts as
// members join, so clustering is order-dependent; frames must be
// submitted in capture order for reproducible registries.
type cluster struct {
    boxes    []geometry.Box
    centroid geometry.Point
}

func (c *cluster) add(b geometry.Box) {
    c.boxes = append(c.boxes, b)
    n := float64(len(c.boxes))
    p := b.Center()
    c.centroid.X += (p.X - c.centroid.X) / n
    c.centroid.Y += (p.Y - c.centroid.Y) / n
}

// meanBox averages each edge over the cluster members to produce the
// seat's canonical box.
func (c *cluster) meanBox() geometry.Box {
    var out geometry.Box
    for _, b := range c.boxes {
        out.X1 += b.X1
        out.Y1 += b.Y1
        out.X2 += b.X2
        out.Y2 += b.Y2
    }
    n := float64(len(c.boxes))
    out.X1 /= n
    out.Y1 /= n
    out.X2 /= n
    out.Y2 /= n
    return out
}

// Calibrate consumes a bounded stream of chair-like detection boxes,
// one slice per frame in capture order, and produces the seat registry
// for the hall.
//
// Same-frame duplicates are suppressed first (IoU against boxes already
// kept for that frame, first box wins). Retained boxes are then
// clustered greedily by centroid distance: a box joins the nearest
// existing cluster within ClusterDistance or starts a new one. This is
// a single pass in O(n·k); ties go to the first cluster found in
// evaluation order. Clusters seen in fewer than MinSupportRatio of the
// frames are dropped as transient false positives. Surviving clusters
// are snapped onto the layout grid by dividing the centroid range into
// equal steps per axis and rounding to the nearest cell.
//
// Given the same ordered frames and config, Calibrate always yields the
// same registry.
func Calibrate(frames [][]geometry.Box, cfg CalibratorConfig) (*Registry, error) {
    if cfg.LayoutRows < 1 || cfg.LayoutCols < 1 {
        return nil, fmt.Errorf("calibration: invalid layout %dx%d", cfg.LayoutRows, cfg.LayoutCols)
    }

    var clusters []*cluster
    for _, frame := range frames {
        kept := dedupeFrame(frame, cfg.DuplicateIoU)
        for _, b := range kept {
            if !b.Valid() {
                continue
            }
            assignToCluster(&clusters, b, cfg.ClusterDistance)
        }
    }

    minSupport := cfg.MinSupportRatio * float64(len(frames))
    var survivors []*cluster
    for _, c := range clusters {
        if float64(len(c.boxes)) >= minSupport {
            survivors = append(survivors, c)
        }
    }
    if len(survivors) == 0 {
        return nil, ErrNoStableSeats
    }

    seats, err := snapToGrid(survivors, cfg.LayoutRows, cfg.LayoutCols)
    if err != nil {
        return nil, err
    }

    // Canonical order: row-major, matching the physical layout.
    sort.Slice(seats, func(i, j int) bool {
        if seats[i].Row != seats[j].Row {
            return seats[i].Row < seats[j].Row
        }
        return seats[i].Col < seats[j].Col
    })
    return &Registry{Rows: cfg.LayoutRows, Cols: cfg.LayoutCols, Seats: seats}, nil
}

// dedupeFrame keeps the first of any same-frame pair of boxes whose IoU
// meets the duplicate threshold.
func dedupeFrame(frame []geometry.Box, iouThresh float64) []geometry.Box {
    var uniques []geometry.Box
    for _, b := range frame {
        dupe := false
        for _, u := range uniques {
            if geometry.IoU(b, u) >= iouThresh {
                dupe = true
                break
            }
        }
        if !dupe {
            uniques = append(uniques, b)
        }
    }
    return uniques
}

// assignToCluster joins b to the nearest cluster within maxDist, or
// starts a new cluster. Nearest wins; on an exact distance tie the
// earlier cluster in evaluation order keeps the box.
func assignToCluster(clusters *[]*cluster, b geometry.Box, maxDist float64) {
    p := b.Center()
    var best *cluster
    bestDist := math.Inf(1)
    for _, c := range *clusters {
        d := geometry.Dist(p, c.centroid)
        if d <= maxDist && d < bestDist {
            best = c
            bestDist = d
        }
    }
    if best != nil {
        best.add(b)
        return
    }
    nc := &cluster{}
    nc.add(b)
    *clusters = append(*clusters, nc)
}

// snapToGrid maps each cluster centroid onto the layout grid. The
// centroid bounding range per axis is divided into layoutCols-1 and
// layoutRows-1 steps; a zero range (single row or column of seats)
// degrades to a unit step to avoid dividing by zero. Rounding is
// math.Round, so jitter at exactly half a step rounds away from zero.
func snapToGrid(survivors []*cluster, layoutRows, layoutCols int) ([]Seat, error) {
    minX, maxX := math.Inf(1), math.Inf(-1)
    minY, maxY := math.Inf(1), math.Inf(-1)
    for _, c := range survivors {
        minX = math.Min(minX, c.centroid.X)
        maxX = math.Max(maxX, c.centroid.X)
        minY = math.Min(minY, c.centroid.Y)
        maxY = math.Max(maxY, c.centroid.Y)
    }

    stepX := 1.0
    if layoutCols > 1 && maxX > minX {
        stepX = (maxX - minX) / float64(layoutCols-1)
    }
    stepY := 1.0
    if layoutRows > 1 && maxY > minY {
        stepY = (maxY - minY) / float64(layoutRows-1)
    }

    taken := make(map[[2]int]bool, len(survivors))
    seats := make([]Seat, 0, len(survivors))
    for _, c := range survivors {
        col := clamp(int(math.Round((c.centroid.X-minX)/stepX)), 0, layoutCols-1)
        row := clamp(int(math.Round((c.centroid.Y-minY)/stepY)), 0, layoutRows-1)
        cell := [2]int{row, col}
        if taken[cell] {
            return nil, fmt.Errorf("%w: cell %s", ErrDuplicateGridAssignment, SeatLabel(row, col))
        }
        taken[cell] = true
        seats = append(seats, Seat{
            Label: SeatLabel(row, col),
            Box:   c.meanBox(),
            Row:   row,
            Col:   col,
        })
    }
    return seats, nil
}

func clamp(v, lo, hi int) int {
    if v < lo {
        return lo
    }
    if v > hi {
        return hi
    }
    return v
}
