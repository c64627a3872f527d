package model

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End) in UTC.
type Interval struct {
	Start time.Time `json:"start_time" bson:"start_time"`
	End   time.Time `json:"end_time" bson:"end_time"`
}

// NewInterval builds an interval from two instants, normalizing both to UTC.
// Conversion from client-supplied offsets happens here, at the boundary.
func NewInterval(start, end time.Time) (Interval, error) {
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("invalid interval: start (%s) must be before end (%s)",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap: [10:00,11:00) and [11:00,12:00) are disjoint.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) IsZero() bool {
	return i.Start.IsZero() && i.End.IsZero()
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}
