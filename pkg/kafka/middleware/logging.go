package kafka_middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"flightline/pkg/kafka"
)

func producerTags(msg kafka.Message) string {
	return fmt.Sprintf("topic=%s key=%s event_id=%s correlation_id=%s",
		msg.Topic, msg.Key, msg.GetEventID(), msg.GetCorrelationID())
}

func consumerTags(msg kafka.Message) string {
	return fmt.Sprintf("topic=%s partition=%d offset=%d key=%s event_id=%s correlation_id=%s",
		msg.Topic, msg.Partition, msg.Offset, msg.Key, msg.GetEventID(), msg.GetCorrelationID())
}

// LoggingProducerMiddleware logs each publish with its outcome and duration.
func LoggingProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		log.Printf("[KAFKA PRODUCER] Publishing message | %s", producerTags(msg))

		err := next(ctx, msg)
		duration := time.Since(start)

		if err != nil {
			log.Printf("[KAFKA PRODUCER] Failed to publish message | %s duration=%s error=%v",
				producerTags(msg), duration, err)
		} else {
			log.Printf("[KAFKA PRODUCER] Successfully published message | %s duration=%s",
				producerTags(msg), duration)
		}

		return err
	}
}

// LoggingConsumerMiddleware logs each delivery with its outcome and duration.
func LoggingConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		log.Printf("[KAFKA CONSUMER] Processing message | %s", consumerTags(msg))

		err := next(ctx, msg)
		duration := time.Since(start)

		if err != nil {
			log.Printf("[KAFKA CONSUMER] Failed to process message | %s duration=%s error=%v",
				consumerTags(msg), duration, err)
		} else {
			log.Printf("[KAFKA CONSUMER] Successfully processed message | %s duration=%s",
				consumerTags(msg), duration)
		}

		return err
	}
}
