package notifier

import (
	"time"

	"github.com/google/uuid"

	"flightline/pkg/model"
)

const (
	EventBookingCreated     = "booking.created"
	EventBookingRescheduled = "booking.rescheduled"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCompleted   = "booking.completed"
	EventBookingCancelled   = "booking.cancelled"
)

// BookingEvent is the payload published to the booking events topic whenever a
// scheduler operation succeeds.
type BookingEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	UserID       string    `json:"user_id"`
	AircraftID   string    `json:"aircraft_id,omitempty"`
	InstructorID string    `json:"instructor_id,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking) BookingEvent {
	return BookingEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		BookingID:    b.ID,
		UserID:       b.UserID,
		AircraftID:   b.AircraftID,
		InstructorID: b.InstructorID,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Status:       b.Status,
		OccurredAt:   time.Now().UTC(),
	}
}
