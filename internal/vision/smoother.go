package vision

// Status is the hysteresis-stable occupancy label of a seat.
type Status string

const (
    StatusOccupied Status = "OCCUPIED"
    StatusEmpty    Status = "EMPTY"
)

// Smoother converts noisy per-frame verdicts into a stable status by
// keeping a bounded history of recent verdicts per seat and requiring
// the moving average to reach a threshold before reporting occupied.
// Single-frame detection flicker is suppressed without unbounded lag.
//
// Update must be called exactly once per seat per detection cycle, in
// the same seat order every cycle: the history is ordered by insertion,
// not by timestamp.
//
// Smoother is not safe for concurrent use; the occupancy tracker
// serializes access behind its own lock.
type Smoother struct {
    capacity  int
    threshold float64
    hist      map[string][]uint8
}

// NewSmoother returns a smoother with the given window capacity and
// occupancy threshold. The defaults from configuration are a window of
// 5 and a threshold of 0.6, i.e. three of the last five frames.
func NewSmoother(capacity int, threshold float64) *Smoother {
    if capacity < 1 {
        capacity = 1
    }
    return &Smoother{
        capacity:  capacity,
        threshold: threshold,
        hist:      make(map[string][]uint8),
    }
}

// Update appends the verdict for one seat and returns the new stable
// status. The oldest verdict is evicted once the window is full. The
// threshold comparison is >=, so at the exact boundary the seat reads
// occupied.
func (s *Smoother) Update(seatLabel string, occupied bool) Status {
    h := s.hist[seatLabel]
    v := uint8(0)
    if occupied {
        v = 1
    }
    h = append(h, v)
    if len(h) > s.capacity {
        h = h[1:]
    }
    s.hist[seatLabel] = h

    sum := 0
    for _, b := range h {
        sum += int(b)
    }
    if float64(sum)/float64(len(h)) >= s.threshold {
        return StatusOccupied
    }
    return StatusEmpty
}

// History returns a copy of the current verdict window for a seat.
func (s *Smoother) History(seatLabel string) []uint8 {
    h := s.hist[seatLabel]
    out := make([]uint8, len(h))
    copy(out, h)
    return out
}

// Reset drops all per-seat history. Called when the registry is
// rebuilt, since seat labels may map to different physical chairs
// afterwards.
func (s *Smoother) Reset() {
    s.hist = make(map[string][]uint8)
}
