// Package occupancy owns the reconciliation state machine that merges
// authoritative check-in/check-out events with the probabilistic vision
// signal. All seat and session state lives in a single Tracker guarded
// by one mutex; seat counts are tens, not thousands, so one lock is
// simpler and fast enough.
package occupancy

import "errors"

// ErrSeatUnavailable is returned by CheckIn when the seat already has
// an active session. Handlers translate it into HTTP 409.
var ErrSeatUnavailable = errors.New("seat already has an active session")

// ErrUserAlreadyActive is returned by CheckIn when the user holds an
// active session on another seat. Handlers translate it into HTTP 409.
var ErrUserAlreadyActive = errors.New("user already has an active session")

// ErrNoActiveSession is returned by CheckOut when the user has no
// session to close. Handlers translate it into HTTP 404.
var ErrNoActiveSession = errors.New("no active session for user")

// ErrUnknownSeat is returned when a seat label does not exist in the
// current registry.
var ErrUnknownSeat = errors.New("unknown seat")

// ErrNoRegistry is returned when an operation requires a calibrated
// seat registry and none has been installed yet.
var ErrNoRegistry = errors.New("no seat registry calibrated")
