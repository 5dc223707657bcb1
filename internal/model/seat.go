package model

import "time"

// Seat is the persisted form of a calibrated seat. The label and grid
// position come from the vision calibrator and never change while the
// registry that produced them is live; the occupancy flag is the
// reconciled, externally visible state written on every transition.
//
// Fields:
//  ID         – primary key identifier.
//  HallID     – hall this seat belongs to.
//  Label      – logical identifier from the layout table (e.g. "R2S5"),
//               unique within a hall.
//  Row        – grid row assigned at calibration, 0-based.
//  Col        – grid column assigned at calibration, 0-based.
//  X1,Y1,X2,Y2 – canonical bounding box in frame pixels.
//  IsOccupied – reconciled occupancy as last written.
//  IsActive   – whether the seat is available for check-in.
//  CreatedAt  – when this seat was calibrated.
type Seat struct {
    ID         uint64    // seats.id
    HallID     uint64    // seats.hall_id
    Label      string    // seats.label
    Row        int       // seats.grid_row
    Col        int       // seats.grid_col
    X1         float64   // seats.x1
    Y1         float64   // seats.y1
    X2         float64   // seats.x2
    Y2         float64   // seats.y2
    IsOccupied bool      // seats.is_occupied
    IsActive   bool      // seats.is_active
    CreatedAt  time.Time // seats.created_at
}
