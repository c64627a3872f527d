package validator

import (
	"strings"
	"testing"
	"time"

	"flightline/pkg/logger"
	"flightline/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.FormatJSON,
		AddSource: false,
		Service:   "test",
	})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &model.Booking{
		UserID:     "student-1",
		AircraftID: "64a000000000000000000a01",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		Status:     model.StatusScheduled,
	}
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		mutate    func(b *model.Booking)
		wantError string
	}{
		{
			name:   "valid booking",
			mutate: func(b *model.Booking) {},
		},
		{
			name: "instructor only",
			mutate: func(b *model.Booking) {
				b.AircraftID = ""
				b.InstructorID = "64a000000000000000000b01"
			},
		},
		{
			name: "no resources",
			mutate: func(b *model.Booking) {
				b.AircraftID = ""
				b.InstructorID = ""
			},
			wantError: "at least one of aircraft_id or instructor_id",
		},
		{
			name:      "missing user",
			mutate:    func(b *model.Booking) { b.UserID = "" },
			wantError: "UserID is required",
		},
		{
			name: "end before start",
			mutate: func(b *model.Booking) {
				b.EndTime = b.StartTime.Add(-time.Hour)
			},
			wantError: "EndTime must be after StartTime",
		},
		{
			name:      "malformed aircraft id",
			mutate:    func(b *model.Booking) { b.AircraftID = "not-an-object-id" },
			wantError: "AircraftID must be a valid object ID",
		},
		{
			name:      "unknown status",
			mutate:    func(b *model.Booking) { b.Status = "pending" },
			wantError: "Status must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)

			err := v.Validate(b)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantError)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	aircraftID := "64a000000000000000000a01"
	badID := "nope"

	tests := []struct {
		name      string
		update    *model.BookingUpdate
		wantError string
	}{
		{
			name:      "nil update",
			update:    nil,
			wantError: "update payload is required",
		},
		{
			name:      "empty update",
			update:    &model.BookingUpdate{},
			wantError: "at least one field must be provided",
		},
		{
			name:   "new start time",
			update: &model.BookingUpdate{StartTime: &start},
		},
		{
			name:   "new aircraft",
			update: &model.BookingUpdate{AircraftID: &aircraftID},
		},
		{
			name:      "malformed aircraft id",
			update:    &model.BookingUpdate{AircraftID: &badID},
			wantError: "must be a valid object ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("ValidateUpdate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateUpdate() expected error containing %q, got nil", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("ValidateUpdate() error = %q, want it to contain %q", err.Error(), tt.wantError)
			}
		})
	}
}
