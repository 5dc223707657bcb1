package geometry

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestIoU(t *testing.T) {
    a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
    // Identical boxes overlap fully.
    assert.InDelta(t, 1.0, IoU(a, a), 1e-9)
    // Disjoint boxes do not overlap at all.
    assert.Equal(t, 0.0, IoU(a, Box{X1: 20, Y1: 20, X2: 30, Y2: 30}))
    // Half overlap: inter=50, union=150.
    b := Box{X1: 5, Y1: 0, X2: 15, Y2: 10}
    assert.InDelta(t, 50.0/150.0, IoU(a, b), 1e-9)
    // Boxes sharing only an edge have zero intersection area.
    assert.Equal(t, 0.0, IoU(a, Box{X1: 10, Y1: 0, X2: 20, Y2: 10}))
}

func TestExpandClampsToFrame(t *testing.T) {
    b := Box{X1: 100, Y1: 100, X2: 140, Y2: 140}
    ex := Expand(b, 1.25, 800, 600)
    // 40px sides grow to 50px about the center (120,120).
    assert.InDelta(t, 95, ex.X1, 1e-9)
    assert.InDelta(t, 95, ex.Y1, 1e-9)
    assert.InDelta(t, 145, ex.X2, 1e-9)
    assert.InDelta(t, 145, ex.Y2, 1e-9)

    // A box hugging the origin cannot expand past the frame edge.
    edge := Expand(Box{X1: 0, Y1: 0, X2: 40, Y2: 40}, 2.0, 800, 600)
    assert.Equal(t, 0.0, edge.X1)
    assert.Equal(t, 0.0, edge.Y1)

    // A box hugging the far corner is clamped to frame-1.
    far := Expand(Box{X1: 760, Y1: 560, X2: 799, Y2: 599}, 2.0, 800, 600)
    assert.Equal(t, 799.0, far.X2)
    assert.Equal(t, 599.0, far.Y2)
}

func TestAnchor(t *testing.T) {
    // Person of height 80 at x∈[90,130]: anchor sits at midX and 70% down.
    p := Anchor(Box{X1: 90, Y1: 150, X2: 130, Y2: 230})
    assert.InDelta(t, 110, p.X, 1e-9)
    assert.InDelta(t, 206, p.Y, 1e-9)
}

func TestContainsIsEdgeInclusive(t *testing.T) {
    b := Box{X1: 10, Y1: 10, X2: 20, Y2: 20}
    assert.True(t, b.Contains(Point{X: 10, Y: 10}))
    assert.True(t, b.Contains(Point{X: 20, Y: 20}))
    assert.True(t, b.Contains(Point{X: 15, Y: 15}))
    assert.False(t, b.Contains(Point{X: 9.99, Y: 15}))
    assert.False(t, b.Contains(Point{X: 15, Y: 20.01}))
}

func TestAreaOfInvalidBoxIsZero(t *testing.T) {
    assert.Equal(t, 0.0, Box{X1: 10, Y1: 10, X2: 10, Y2: 20}.Area())
    assert.Equal(t, 0.0, Box{X1: 10, Y1: 10, X2: 5, Y2: 5}.Area())
}
