package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "flightline"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultFleetBaseURL = "http://localhost:8081"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxBookingDuration  = 8 * time.Hour
	DefaultAutoConfirm         = false
	DefaultSlotLockTTL         = 10 * time.Second
	DefaultCalendarWindowDays  = 30
	DefaultPaginationLimit     = 100
	DefaultBookingEventsTopic  = "flightline.booking-events"
	DefaultBookingEventsDLQ    = "flightline.booking-events.dlq"
	DefaultNotifierGroupID     = "flightline-notifier"
	DefaultNotifierFromAddress = "dispatch@flightline.local"
)
