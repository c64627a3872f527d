package model

import (
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type ResourceKind string

const (
	ResourceAircraft   ResourceKind = "aircraft"
	ResourceInstructor ResourceKind = "instructor"
)

// ResourceRef identifies a single schedulable resource occupied by a booking.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id"`
}

func (r ResourceRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID       string    `json:"user_id" bson:"user_id" validate:"required"`
	AircraftID   string    `json:"aircraft_id,omitempty" bson:"aircraft_id,omitempty" validate:"omitempty,mongodb"`
	InstructorID string    `json:"instructor_id,omitempty" bson:"instructor_id,omitempty" validate:"omitempty,mongodb"`
	StartTime    time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at" validate:"omitempty"`
}

// Interval returns the booking's occupied time range.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// ResourceRefs lists the resources this booking occupies. At least one of
// aircraft/instructor is always set for a valid booking.
func (b *Booking) ResourceRefs() []ResourceRef {
	refs := make([]ResourceRef, 0, 2)
	if b.AircraftID != "" {
		refs = append(refs, ResourceRef{Kind: ResourceAircraft, ID: b.AircraftID})
	}
	if b.InstructorID != "" {
		refs = append(refs, ResourceRef{Kind: ResourceInstructor, ID: b.InstructorID})
	}
	return refs
}

// IsTerminal reports whether no further status transition is allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// CanTransition validates the booking state machine:
// scheduled -> confirmed -> completed (confirmed may be skipped),
// cancelled reachable from scheduled or confirmed only.
func CanTransition(from, to string) bool {
	switch from {
	case StatusScheduled:
		return to == StatusConfirmed || to == StatusCompleted || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// BookingUpdate carries a partial reschedule request. Nil fields keep the
// existing value.
type BookingUpdate struct {
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	AircraftID   *string    `json:"aircraft_id,omitempty" validate:"omitempty,mongodb"`
	InstructorID *string    `json:"instructor_id,omitempty" validate:"omitempty,mongodb"`
}
