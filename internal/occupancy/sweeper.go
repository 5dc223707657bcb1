package occupancy

import (
    "context"
    "log"
    "time"
)

// RunSweeper periodically closes expired sessions, independent of any
// vision update. It runs until the process exits and is intended to be
// started from main as a goroutine. The detection cycle is sub-second
// while the sweep is on the order of minutes; both serialize on the
// tracker lock, so no ordering between them is needed.
func RunSweeper(t *Tracker, interval time.Duration) {
    if interval <= 0 {
        interval = 5 * time.Minute
    }
    for {
        time.Sleep(interval)
        now := time.Now().UTC()
        for _, s := range t.SweepExpired(context.Background(), now) {
            log.Printf("sweeper: closed session %d seat=%s user=%d reason=%s duration=%dm",
                s.ID, s.SeatLabel, s.UserID, s.CloseReason, s.Duration)
        }
    }
}
