package model

import "time"

// Hall describes a monitored reading hall. Each hall has one camera
// whose detections feed the occupancy pipeline, and a fixed logical
// seat layout of LayoutRows x LayoutCols.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the hall.
//  Location   – free-form location string.
//  CameraURL  – stream URL of the hall camera (informational; the
//               service never opens it, the detection client does).
//  LayoutRows – rows in the logical seat layout.
//  LayoutCols – columns in the logical seat layout.
//  IsActive   – whether the hall is monitored.
//  CreatedAt  – creation timestamp.
type Hall struct {
    ID         uint64    // reading_halls.id
    Name       string    // reading_halls.name
    Location   string    // reading_halls.location
    CameraURL  string    // reading_halls.camera_url
    LayoutRows int       // reading_halls.layout_rows
    LayoutCols int       // reading_halls.layout_cols
    IsActive   bool      // reading_halls.is_active
    CreatedAt  time.Time // reading_halls.created_at
}
