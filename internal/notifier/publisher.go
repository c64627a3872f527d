package notifier

import (
	"context"

	"flightline/pkg/kafka"
	"flightline/pkg/logger"
	"flightline/pkg/model"
)

// Publisher emits booking events after a successful scheduler call. Publishing
// is fire-and-forget: a delivery failure is logged and never propagated, so a
// committed booking is never rolled back over a notification problem.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
	event := NewBookingEvent(eventType, booking)

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(eventType).
		WithSource("bookings").
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "event_type", eventType, "booking_id", booking.ID)
}

// NoopPublisher discards events. Used when the events topic is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
}
