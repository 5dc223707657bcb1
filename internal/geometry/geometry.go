// Package geometry provides the rectangle math used by the vision
// pipeline: overlap ratios, box expansion, containment tests and
// anchor-point extraction. All functions are pure and operate on
// frame-pixel coordinates.
package geometry

import "math"

// Box is an axis-aligned rectangle in frame-pixel coordinates.
// Invariant: X2 > X1 and Y2 > Y1 for any box produced by a detector.
type Box struct {
    X1 float64 `json:"x1"`
    Y1 float64 `json:"y1"`
    X2 float64 `json:"x2"`
    Y2 float64 `json:"y2"`
}

// Point is a location in frame-pixel coordinates.
type Point struct {
    X float64 `json:"x"`
    Y float64 `json:"y"`
}

// Valid reports whether the box has positive width and height.
func (b Box) Valid() bool { return b.X2 > b.X1 && b.Y2 > b.Y1 }

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area. Invalid boxes yield zero.
func (b Box) Area() float64 {
    if !b.Valid() {
        return 0
    }
    return b.Width() * b.Height()
}

// Center returns the centroid of the box.
func (b Box) Center() Point {
    return Point{X: b.X1 + b.Width()/2, Y: b.Y1 + b.Height()/2}
}

// Contains reports whether the point lies inside the box, edges
// included on both sides.
func (b Box) Contains(p Point) bool {
    return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// IntersectionArea returns the area of the rectangular overlap between
// a and b, or zero when they do not overlap.
func IntersectionArea(a, b Box) float64 {
    x1 := math.Max(a.X1, b.X1)
    y1 := math.Max(a.Y1, b.Y1)
    x2 := math.Min(a.X2, b.X2)
    y2 := math.Min(a.Y2, b.Y2)
    w := x2 - x1
    h := y2 - y1
    if w <= 0 || h <= 0 {
        return 0
    }
    return w * h
}

// IoU returns the intersection-over-union ratio of two boxes in [0,1].
// It is the duplicate-suppression metric used during calibration: two
// detections of the same chair on one frame score close to 1.
func IoU(a, b Box) float64 {
    inter := IntersectionArea(a, b)
    if inter <= 0 {
        return 0
    }
    union := a.Area() + b.Area() - inter
    if union <= 0 {
        return 0
    }
    return inter / union
}

// Expand scales the box by the given factor about its own center and
// clamps the result to the frame bounds [0, frameW-1]×[0, frameH-1].
// A scale of 1.25 grows each side by 12.5% in both directions.
func Expand(b Box, scale, frameW, frameH float64) Box {
    c := b.Center()
    nw := b.Width() * scale
    nh := b.Height() * scale
    return Box{
        X1: math.Max(0, c.X-nw/2),
        Y1: math.Max(0, c.Y-nh/2),
        X2: math.Min(frameW-1, c.X+nw/2),
        Y2: math.Min(frameH-1, c.Y+nh/2),
    }
}

// Anchor returns the synthetic body-position point of a person box:
// the horizontal midpoint at 70% of the box height from the top. This
// approximates the hip without running a pose model.
func Anchor(person Box) Point {
    return Point{
        X: (person.X1 + person.X2) / 2,
        Y: person.Y1 + 0.70*person.Height(),
    }
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
    dx := a.X - b.X
    dy := a.Y - b.Y
    return math.Sqrt(dx*dx + dy*dy)
}
