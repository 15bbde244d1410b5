package domain

import "time"

// CloseReason records what ended a shift.
type CloseReason string

const (
	// ClosedManual means the worker ended the shift themselves.
	ClosedManual CloseReason = "manual"

	// ClosedGeofence means the shift was ended automatically because the
	// worker left the allowed area.
	ClosedGeofence CloseReason = "geofence"
)

// PunchRecord is one bounded work interval. EndAt is nil while the shift
// is open; ClosedBy is set when it ends. Records are never deleted by the
// core.
type PunchRecord struct {
	ID       string      `json:"id"`
	UserID   string      `json:"userId"`
	StartAt  time.Time   `json:"startAt"`
	EndAt    *time.Time  `json:"endAt,omitempty"`
	ClosedBy CloseReason `json:"closedBy,omitempty"`
}

// Open reports whether the record is still running.
func (r PunchRecord) Open() bool { return r.EndAt == nil }

// Duration returns the worked interval, using now for open records.
func (r PunchRecord) Duration(now time.Time) time.Duration {
	end := now
	if r.EndAt != nil {
		end = *r.EndAt
	}
	return end.Sub(r.StartAt)
}
