package notifier

import (
	"context"

	"flightline/pkg/kafka"
	"flightline/pkg/logger"
)

// ConsumerHandler turns booking events into user notifications. Delivery
// channels (email, push) are out of scope, so a structured log line stands in
// for the actual send.
type ConsumerHandler struct {
	log *logger.Logger
}

func NewConsumerHandler(log *logger.Logger) *ConsumerHandler {
	return &ConsumerHandler{log: log}
}

func (h *ConsumerHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err)
	}

	h.log.Info("Booking notification",
		"event_id", event.ID,
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"user_id", event.UserID,
		"aircraft_id", event.AircraftID,
		"instructor_id", event.InstructorID,
		"start_time", event.StartTime,
		"end_time", event.EndTime,
		"status", event.Status,
	)
	return nil
}
