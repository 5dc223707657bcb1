package vision

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hall-occupancy/internal/geometry"
)

func singleSeatRegistry(b geometry.Box) *Registry {
    return &Registry{Rows: 1, Cols: 1, Seats: []Seat{{Label: "R1S1", Box: b, Row: 0, Col: 0}}}
}

func TestAnchorContainment(t *testing.T) {
    // Seat (100,100,140,140) expanded x1.25 becomes (95,95,145,145).
    reg := singleSeatRegistry(geometry.Box{X1: 100, Y1: 100, X2: 140, Y2: 140})
    c, err := NewClassifier(ClassifierConfig{Strategy: "anchor", ExpandScale: 1.25, FrameW: 800, FrameH: 600})
    require.NoError(t, err)

    // Person (90,150,130,230): anchor (110,206) lies below the
    // expanded box, so the seat reads vacant.
    out, err := c.Classify(reg, []geometry.Box{{X1: 90, Y1: 150, X2: 130, Y2: 230}}, nil)
    require.NoError(t, err)
    assert.Equal(t, []bool{false}, out)

    // The same person shifted 40px up has anchor (110,166) inside.
    out, err = c.Classify(reg, []geometry.Box{{X1: 90, Y1: 110, X2: 130, Y2: 190}}, nil)
    require.NoError(t, err)
    assert.Equal(t, []bool{true}, out)
}

func TestAnchorAnyMatchWins(t *testing.T) {
    // Two seats close enough that one person's anchor lands in both
    // expanded boxes; both read occupied, no deduplication.
    reg := &Registry{Rows: 1, Cols: 2, Seats: []Seat{
        {Label: "R1S1", Box: geometry.Box{X1: 100, Y1: 100, X2: 160, Y2: 160}, Row: 0, Col: 0},
        {Label: "R1S2", Box: geometry.Box{X1: 150, Y1: 100, X2: 210, Y2: 160}, Row: 0, Col: 1},
    }}
    c, err := NewClassifier(ClassifierConfig{Strategy: "anchor", ExpandScale: 1.25, FrameW: 800, FrameH: 600})
    require.NoError(t, err)

    person := geometry.Box{X1: 135, Y1: 60, X2: 175, Y2: 160} // anchor (155,130)
    out, err := c.Classify(reg, []geometry.Box{person}, nil)
    require.NoError(t, err)
    assert.Equal(t, []bool{true, true}, out)
}

func TestAnchorNoPersons(t *testing.T) {
    reg := singleSeatRegistry(geometry.Box{X1: 100, Y1: 100, X2: 140, Y2: 140})
    c, _ := NewClassifier(ClassifierConfig{Strategy: "anchor", ExpandScale: 1.25, FrameW: 800, FrameH: 600})
    out, err := c.Classify(reg, nil, nil)
    require.NoError(t, err)
    assert.Equal(t, []bool{false}, out)
}

func TestPostureGatedOverlap(t *testing.T) {
    seat := geometry.Box{X1: 100, Y1: 100, X2: 200, Y2: 200} // area 10000
    reg := singleSeatRegistry(seat)
    c, err := NewClassifier(ClassifierConfig{Strategy: "posture", OverlapFrac: 0.3, FrameW: 800, FrameH: 600})
    require.NoError(t, err)

    // Sitting person covering 60x100 = 6000 of the seat area: occupied.
    sitting := geometry.Box{X1: 140, Y1: 100, X2: 260, Y2: 200}
    out, err := c.Classify(reg, []geometry.Box{sitting}, []Posture{PostureSitting})
    require.NoError(t, err)
    assert.Equal(t, []bool{true}, out)

    // The same overlap from a standing person is gated out.
    out, err = c.Classify(reg, []geometry.Box{sitting}, []Posture{PostureStanding})
    require.NoError(t, err)
    assert.Equal(t, []bool{false}, out)

    // A sitting person grazing only 20x100 = 2000 (< 3000) stays vacant.
    grazing := geometry.Box{X1: 180, Y1: 100, X2: 300, Y2: 200}
    out, err = c.Classify(reg, []geometry.Box{grazing}, []Posture{PostureSitting})
    require.NoError(t, err)
    assert.Equal(t, []bool{false}, out)
}

func TestPostureShapeMismatch(t *testing.T) {
    reg := singleSeatRegistry(geometry.Box{X1: 100, Y1: 100, X2: 200, Y2: 200})
    c, _ := NewClassifier(ClassifierConfig{Strategy: "posture", OverlapFrac: 0.3, FrameW: 800, FrameH: 600})
    _, err := c.Classify(reg, []geometry.Box{{X1: 0, Y1: 0, X2: 10, Y2: 10}}, nil)
    assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewClassifierUnknownStrategy(t *testing.T) {
    _, err := NewClassifier(ClassifierConfig{Strategy: "magic"})
    assert.Error(t, err)
}

func TestClassifyPosture(t *testing.T) {
    assert.Equal(t, PostureSitting, ClassifyPosture(0.15, 0.15))
    assert.Equal(t, PostureSitting, ClassifyPosture(0.30, 0.15))
    assert.Equal(t, PostureStanding, ClassifyPosture(0.10, 0.15))
}
