package occupancy

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/iliyamo/hall-occupancy/internal/geometry"
    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/vision"
)

// Config holds the reconciliation tunables.
type Config struct {
    IdleTimeout     time.Duration // vacant-seat grace before auto-checkout
    MaxDuration     time.Duration // absolute session length limit
    ConfidenceFloor float64       // min confidence to mark a sessionless seat provisionally occupied
    HistorySize     int           // smoother window capacity
    SmoothThreshold float64       // smoother occupancy threshold
}

// Recorder receives the durable side effects of tracker transitions:
// session rows, seat flags and audit entries. Manual transitions
// (check-in, check-out) fail if the recorder fails, so the caller sees
// an atomic operation; automatic closures are best-effort and only
// logged, one session's persistence failure never blocks another.
type Recorder interface {
    SessionOpened(ctx context.Context, s *model.Session) (uint64, error)
    SessionClosed(ctx context.Context, s *model.Session) error
    SessionTouched(ctx context.Context, id uint64, at time.Time) error
    SeatOccupancyChanged(ctx context.Context, seatLabel string, occupied bool) error
}

// VerdictOutcome describes what a vision verdict did to tracker state.
type VerdictOutcome string

const (
    OutcomeNone         VerdictOutcome = "none"          // verdict consumed, no state change
    OutcomeRefreshed    VerdictOutcome = "refreshed"     // active session's idle clock reset
    OutcomeAutoCheckout VerdictOutcome = "auto_checkout" // idle limit exceeded, session closed
    OutcomeProvisional  VerdictOutcome = "provisional"   // sessionless seat marked occupied for display
)

// seatState is the mutable per-seat record behind the tracker lock.
type seatState struct {
    seat        vision.Seat
    status      vision.Status
    provisional bool
}

// Feed is the poll snapshot served to dashboards.
type Feed struct {
    Seats map[string]string `json:"seats"`
    Stats FeedStats         `json:"stats"`
}

// FeedStats summarizes the snapshot.
type FeedStats struct {
    Total    int `json:"total"`
    Occupied int `json:"occupied"`
    Vacant   int `json:"vacant"`
}

// SeatView is the per-seat projection returned by the registry listing.
type SeatView struct {
    Label       string       `json:"label"`
    Row         int          `json:"row"`
    Col         int          `json:"col"`
    Box         geometry.Box `json:"box"`
    Status      string       `json:"status"`
    SessionUser uint64       `json:"session_user,omitempty"`
}

// SeatVerdict is the per-seat outcome of one processed frame.
type SeatVerdict struct {
    Label    string        `json:"label"`
    Occupied bool          `json:"occupied"`
    Status   vision.Status `json:"status"`
}

// Tracker reconciles the vision signal with authoritative sessions.
// It is safe for concurrent use: the detection cycle, the kiosk
// request path and the periodic sweep all serialize on one mutex, so
// no caller ever observes a half-updated seat or session.
type Tracker struct {
    mu sync.Mutex

    cfg      Config
    hallID   uint64
    registry *vision.Registry
    cls      vision.Classifier
    smoother *vision.Smoother

    seats          map[string]*seatState
    sessionsBySeat map[string]*model.Session
    sessionsByUser map[uint64]*model.Session

    rec Recorder // may be nil (e.g. in tests); side effects are skipped
}

// NewTracker builds an empty tracker. No verdicts or check-ins are
// accepted until a registry is installed with SetRegistry.
func NewTracker(cfg Config, hallID uint64, rec Recorder) *Tracker {
    return &Tracker{
        cfg:            cfg,
        hallID:         hallID,
        seats:          make(map[string]*seatState),
        sessionsBySeat: make(map[string]*model.Session),
        sessionsByUser: make(map[uint64]*model.Session),
        rec:            rec,
    }
}

// SetRegistry atomically swaps in a freshly calibrated registry. Seat
// statuses and smoothing history start clean because seat labels may
// map to different physical chairs after recalibration. Active
// sessions are authoritative and survive the swap; a session whose
// seat label vanished from the layout is left to the sweep.
func (t *Tracker) SetRegistry(reg *vision.Registry, cls vision.Classifier) {
    t.mu.Lock()
    defer t.mu.Unlock()
    t.registry = reg
    t.cls = cls
    t.smoother = vision.NewSmoother(t.cfg.HistorySize, t.cfg.SmoothThreshold)
    t.seats = make(map[string]*seatState, len(reg.Seats))
    for _, s := range reg.Seats {
        t.seats[s.Label] = &seatState{seat: s, status: vision.StatusEmpty}
    }
}

// AdoptSessions loads still-open session rows into the tracker,
// typically at boot so sessions survive a restart. Adopted sessions
// are authoritative like any check-in: the patron checks out at the
// kiosk and the sweep applies the usual idle and duration limits. A
// row that conflicts with an already tracked seat or user is skipped
// and returned for the caller to log; a row whose seat label is
// missing from the registry is adopted anyway and left to the sweep.
func (t *Tracker) AdoptSessions(sessions []model.Session) []model.Session {
    t.mu.Lock()
    defer t.mu.Unlock()

    var skipped []model.Session
    for _, s := range sessions {
        if !s.IsActive {
            skipped = append(skipped, s)
            continue
        }
        if cur, ok := t.sessionsBySeat[s.SeatLabel]; ok && cur.IsActive {
            skipped = append(skipped, s)
            continue
        }
        if cur, ok := t.sessionsByUser[s.UserID]; ok && cur.IsActive {
            skipped = append(skipped, s)
            continue
        }
        adopted := s
        t.sessionsBySeat[adopted.SeatLabel] = &adopted
        t.sessionsByUser[adopted.UserID] = &adopted
        if st, ok := t.seats[adopted.SeatLabel]; ok {
            st.provisional = false
        }
    }
    return skipped
}

// Registry returns the currently installed registry, or nil.
func (t *Tracker) Registry() *vision.Registry {
    t.mu.Lock()
    defer t.mu.Unlock()
    return t.registry
}

// CheckIn opens a session for the user on the given seat. The check
// and the act are atomic under the tracker lock: on any error no state
// changes. The recorder assigns the session ID.
func (t *Tracker) CheckIn(ctx context.Context, userID uint64, seatLabel string, now time.Time) (*model.Session, error) {
    t.mu.Lock()
    defer t.mu.Unlock()

    if _, ok := t.seats[seatLabel]; !ok {
        return nil, ErrUnknownSeat
    }
    if cur, ok := t.sessionsBySeat[seatLabel]; ok && cur.IsActive {
        return nil, ErrSeatUnavailable
    }
    if cur, ok := t.sessionsByUser[userID]; ok && cur.IsActive {
        return nil, ErrUserAlreadyActive
    }

    s := &model.Session{
        UserID:       userID,
        SeatLabel:    seatLabel,
        HallID:       t.hallID,
        CheckInTime:  now,
        LastActivity: now,
        IsActive:     true,
    }
    if t.rec != nil {
        id, err := t.rec.SessionOpened(ctx, s)
        if err != nil {
            return nil, err
        }
        s.ID = id
    }
    t.sessionsBySeat[seatLabel] = s
    t.sessionsByUser[userID] = s
    t.seats[seatLabel].provisional = false // session supersedes the vision-only flag
    return s, nil
}

// CheckOut closes the user's active session with reason manual and
// returns the closed session, including its duration in whole minutes.
func (t *Tracker) CheckOut(ctx context.Context, userID uint64, now time.Time) (*model.Session, error) {
    t.mu.Lock()
    defer t.mu.Unlock()

    s, ok := t.sessionsByUser[userID]
    if !ok || !s.IsActive {
        return nil, ErrNoActiveSession
    }
    closed := *s
    finishSession(&closed, model.CloseManual, now)
    if t.rec != nil {
        if err := t.rec.SessionClosed(ctx, &closed); err != nil {
            return nil, err
        }
    }
    *s = closed
    t.removeSessionLocked(s)
    return s, nil
}

// OnVisionVerdict feeds one per-seat vision verdict into the state
// machine:
//
//   - vacant + active session: auto-checkout once idle time exceeds
//     the configured limit, otherwise a grace-period no-op;
//   - occupied + active session: refresh the idle clock;
//   - occupied + no session + confidence above the floor: mark the
//     seat provisionally occupied for display only — no session, no
//     user, nothing billable;
//   - vacant + no session: no-op.
func (t *Tracker) OnVisionVerdict(ctx context.Context, seatLabel string, occupied bool, confidence float64, now time.Time) (VerdictOutcome, error) {
    t.mu.Lock()
    defer t.mu.Unlock()
    return t.reconcileLocked(ctx, seatLabel, occupied, confidence, now)
}

func (t *Tracker) reconcileLocked(ctx context.Context, seatLabel string, occupied bool, confidence float64, now time.Time) (VerdictOutcome, error) {
    st, ok := t.seats[seatLabel]
    if !ok {
        return OutcomeNone, ErrUnknownSeat
    }
    s, hasSession := t.sessionsBySeat[seatLabel]

    switch {
    case !occupied && hasSession:
        idle := now.Sub(s.LastActivity)
        if idle <= t.cfg.IdleTimeout {
            return OutcomeNone, nil // grace period
        }
        t.closeAutomaticLocked(ctx, s, model.CloseTimeout, now)
        return OutcomeAutoCheckout, nil

    case occupied && hasSession:
        // Vision confirms continued presence; the patron keeps the
        // seat without re-scanning.
        s.LastActivity = now
        t.recordTouch(ctx, s.ID, now)
        return OutcomeRefreshed, nil

    case occupied && !hasSession:
        if confidence > t.cfg.ConfidenceFloor && !st.provisional {
            st.provisional = true
            t.recordSeatFlag(ctx, seatLabel, true)
            return OutcomeProvisional, nil
        }
        return OutcomeNone, nil

    default: // vacant, no session
        return OutcomeNone, nil
    }
}

// ProcessFrame runs one full detection cycle: classify every registry
// seat against the frame's person boxes, smooth each verdict, then
// reconcile each seat. Seats are always visited in registry order so
// the smoothing history stays aligned. Reconciliation failures on one
// seat are logged and do not halt the cycle for the rest.
//
// The confidence applies to every verdict of the frame; detection
// clients that score per seat use OnVisionVerdict instead.
func (t *Tracker) ProcessFrame(ctx context.Context, persons []geometry.Box, postures []vision.Posture, confidence float64, now time.Time) ([]SeatVerdict, error) {
    t.mu.Lock()
    defer t.mu.Unlock()

    if t.registry == nil {
        return nil, ErrNoRegistry
    }
    verdicts, err := t.cls.Classify(t.registry, persons, postures)
    if err != nil {
        return nil, err
    }

    out := make([]SeatVerdict, len(verdicts))
    for i, occupied := range verdicts {
        label := t.registry.Seats[i].Label
        status := t.smoother.Update(label, occupied)
        t.seats[label].status = status
        if _, err := t.reconcileLocked(ctx, label, occupied, confidence, now); err != nil {
            log.Printf("tracker: reconcile seat %s failed: %v", label, err)
        }
        out[i] = SeatVerdict{Label: label, Occupied: occupied, Status: status}
    }
    return out, nil
}

// SweepExpired closes sessions that exceeded the maximum duration or
// the idle limit. It is idempotent: a second run with no intervening
// events finds nothing left to close. Returns the sessions it closed.
func (t *Tracker) SweepExpired(ctx context.Context, now time.Time) []model.Session {
    t.mu.Lock()
    defer t.mu.Unlock()

    var closed []model.Session
    for _, s := range t.sessionsBySeat {
        if !s.IsActive {
            continue
        }
        switch {
        case t.cfg.MaxDuration > 0 && now.Sub(s.CheckInTime) > t.cfg.MaxDuration:
            t.closeAutomaticLocked(ctx, s, model.CloseMaxDuration, now)
            closed = append(closed, *s)
        case t.cfg.IdleTimeout > 0 && now.Sub(s.LastActivity) > t.cfg.IdleTimeout:
            t.closeAutomaticLocked(ctx, s, model.CloseTimeout, now)
            closed = append(closed, *s)
        }
    }
    return closed
}

// closeAutomaticLocked finishes a session for a lifecycle reason.
// Timeouts are expected events, not failures: recorder errors are
// logged and the in-memory transition proceeds regardless.
func (t *Tracker) closeAutomaticLocked(ctx context.Context, s *model.Session, reason model.CloseReason, now time.Time) {
    finishSession(s, reason, now)
    if t.rec != nil {
        if err := t.rec.SessionClosed(ctx, s); err != nil {
            log.Printf("tracker: persist close of session %d (%s) failed: %v", s.ID, reason, err)
        }
    }
    t.removeSessionLocked(s)
}

func (t *Tracker) removeSessionLocked(s *model.Session) {
    delete(t.sessionsBySeat, s.SeatLabel)
    delete(t.sessionsByUser, s.UserID)
    if st, ok := t.seats[s.SeatLabel]; ok {
        st.provisional = false
    }
    t.recordSeatFlag(context.Background(), s.SeatLabel, false)
}

func (t *Tracker) recordTouch(ctx context.Context, id uint64, at time.Time) {
    if t.rec == nil || id == 0 {
        return
    }
    if err := t.rec.SessionTouched(ctx, id, at); err != nil {
        log.Printf("tracker: persist activity for session %d failed: %v", id, err)
    }
}

func (t *Tracker) recordSeatFlag(ctx context.Context, seatLabel string, occupied bool) {
    if t.rec == nil {
        return
    }
    if err := t.rec.SeatOccupancyChanged(ctx, seatLabel, occupied); err != nil {
        log.Printf("tracker: persist seat flag %s=%v failed: %v", seatLabel, occupied, err)
    }
}

func finishSession(s *model.Session, reason model.CloseReason, now time.Time) {
    s.CheckOutTime = now
    s.CloseReason = reason
    s.Duration = int(now.Sub(s.CheckInTime).Minutes())
    s.IsActive = false
}

// Snapshot assembles the dashboard feed. A seat displays occupied when
// it has an active session, a provisional vision claim, or a smoothed
// occupied status.
func (t *Tracker) Snapshot() Feed {
    t.mu.Lock()
    defer t.mu.Unlock()

    feed := Feed{Seats: make(map[string]string, len(t.seats))}
    for label, st := range t.seats {
        status := t.displayStatusLocked(label, st)
        feed.Seats[label] = status
        feed.Stats.Total++
        if status == string(vision.StatusOccupied) {
            feed.Stats.Occupied++
        } else {
            feed.Stats.Vacant++
        }
    }
    return feed
}

// Seats lists the registry in row-major order with display status and
// the holding user, if any.
func (t *Tracker) Seats() []SeatView {
    t.mu.Lock()
    defer t.mu.Unlock()

    if t.registry == nil {
        return nil
    }
    out := make([]SeatView, 0, len(t.registry.Seats))
    for _, s := range t.registry.Seats {
        st := t.seats[s.Label]
        view := SeatView{
            Label:  s.Label,
            Row:    s.Row,
            Col:    s.Col,
            Box:    s.Box,
            Status: t.displayStatusLocked(s.Label, st),
        }
        if sess, ok := t.sessionsBySeat[s.Label]; ok && sess.IsActive {
            view.SessionUser = sess.UserID
        }
        out = append(out, view)
    }
    return out
}

// ActiveSessions returns copies of all open sessions.
func (t *Tracker) ActiveSessions() []model.Session {
    t.mu.Lock()
    defer t.mu.Unlock()

    out := make([]model.Session, 0, len(t.sessionsBySeat))
    for _, s := range t.sessionsBySeat {
        if s.IsActive {
            out = append(out, *s)
        }
    }
    return out
}

func (t *Tracker) displayStatusLocked(label string, st *seatState) string {
    if sess, ok := t.sessionsBySeat[label]; ok && sess.IsActive {
        return string(vision.StatusOccupied)
    }
    if st.provisional || st.status == vision.StatusOccupied {
        return string(vision.StatusOccupied)
    }
    return string(vision.StatusEmpty)
}
