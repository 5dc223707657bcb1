package vision

import (
    "fmt"

    "github.com/iliyamo/hall-occupancy/internal/geometry"
)

// Posture is the output of the optional pose model for one person box.
type Posture string

const (
    PostureSitting  Posture = "SITTING"
    PostureStanding Posture = "STANDING"
    PostureUnknown  Posture = "UNKNOWN"
)

// ClassifierConfig selects and tunes the occupancy decision strategy.
type ClassifierConfig struct {
    Strategy    string  // "anchor" or "posture"
    ExpandScale float64 // seat box expansion factor for the anchor strategy
    OverlapFrac float64 // min intersection/seat-area fraction for the posture strategy
    FrameW      float64 // frame width in pixels, for expansion clamping
    FrameH      float64 // frame height in pixels
}

// Classifier decides, for a single frame, which seats of a registry are
// occupied. Implementations are pure per-frame functions and carry no
// state between calls.
type Classifier interface {
    // Classify returns one verdict per registry seat, indexed the same
    // as registry.Seats.
    Classify(registry *Registry, persons []geometry.Box, postures []Posture) ([]bool, error)
}

// NewClassifier builds the classifier named by cfg.Strategy.
func NewClassifier(cfg ClassifierConfig) (Classifier, error) {
    switch cfg.Strategy {
    case "anchor", "":
        return &anchorClassifier{cfg: cfg}, nil
    case "posture":
        return &postureClassifier{cfg: cfg}, nil
    default:
        return nil, fmt.Errorf("classify: unknown strategy %q", cfg.Strategy)
    }
}

// anchorClassifier marks a seat occupied when any person's hip anchor
// falls inside the seat box expanded about its center. One person may
// claim several seats and several people may claim one seat; any match
// wins, no deduplication.
type anchorClassifier struct {
    cfg ClassifierConfig
}

func (a *anchorClassifier) Classify(registry *Registry, persons []geometry.Box, _ []Posture) ([]bool, error) {
    anchors := make([]geometry.Point, len(persons))
    for i, p := range persons {
        anchors[i] = geometry.Anchor(p)
    }
    out := make([]bool, len(registry.Seats))
    for i, seat := range registry.Seats {
        ex := geometry.Expand(seat.Box, a.cfg.ExpandScale, a.cfg.FrameW, a.cfg.FrameH)
        for _, pt := range anchors {
            if ex.Contains(pt) {
                out[i] = true
                break
            }
        }
    }
    return out, nil
}

// postureClassifier only considers persons classified as sitting, and
// marks a seat occupied when a sitting person's box overlaps the raw
// seat box by more than OverlapFrac of the seat area. The first
// qualifying person short-circuits further checks for that seat.
//
// The posture slice must be indexed the same as persons; a length
// mismatch is a contract violation and fails the whole frame.
type postureClassifier struct {
    cfg ClassifierConfig
}

func (p *postureClassifier) Classify(registry *Registry, persons []geometry.Box, postures []Posture) ([]bool, error) {
    if len(postures) != len(persons) {
        return nil, fmt.Errorf("%w: %d postures for %d persons", ErrShapeMismatch, len(postures), len(persons))
    }
    out := make([]bool, len(registry.Seats))
    for i, seat := range registry.Seats {
        minInter := p.cfg.OverlapFrac * seat.Box.Area()
        for j, person := range persons {
            if postures[j] != PostureSitting {
                continue
            }
            if geometry.IntersectionArea(person, seat.Box) > minInter {
                out[i] = true
                break
            }
        }
    }
    return out, nil
}

// ClassifyPosture converts the pose model's hip-to-shoulder vertical
// ratio into a sitting/standing label. Ratios below the threshold read
// as an upright torso, i.e. standing.
func ClassifyPosture(hipShoulderRatio, sittingThreshold float64) Posture {
    if hipShoulderRatio >= sittingThreshold {
        return PostureSitting
    }
    return PostureStanding
}
