package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{"unknown", StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestBooking_IsTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		StatusScheduled: false,
		StatusConfirmed: false,
		StatusCompleted: true,
		StatusCancelled: true,
	} {
		b := Booking{Status: status}
		if got := b.IsTerminal(); got != want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", status, got, want)
		}
	}
}

func TestBooking_ResourceRefs(t *testing.T) {
	tests := []struct {
		name         string
		aircraftID   string
		instructorID string
		want         []ResourceRef
	}{
		{
			name:       "aircraft only",
			aircraftID: "64a000000000000000000a01",
			want:       []ResourceRef{{Kind: ResourceAircraft, ID: "64a000000000000000000a01"}},
		},
		{
			name:         "instructor only",
			instructorID: "64a000000000000000000b01",
			want:         []ResourceRef{{Kind: ResourceInstructor, ID: "64a000000000000000000b01"}},
		},
		{
			name:         "both",
			aircraftID:   "64a000000000000000000a01",
			instructorID: "64a000000000000000000b01",
			want: []ResourceRef{
				{Kind: ResourceAircraft, ID: "64a000000000000000000a01"},
				{Kind: ResourceInstructor, ID: "64a000000000000000000b01"},
			},
		},
		{
			name: "neither",
			want: []ResourceRef{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{AircraftID: tt.aircraftID, InstructorID: tt.instructorID}
			got := b.ResourceRefs()
			if len(got) != len(tt.want) {
				t.Fatalf("ResourceRefs() returned %d refs, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ResourceRefs()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBooking_Interval(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	b := Booking{StartTime: start, EndTime: end}

	iv := b.Interval()
	if !iv.Start.Equal(start) || !iv.End.Equal(end) {
		t.Errorf("Interval() = %s, want [%s, %s)", iv, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
}

func TestResourceRef_String(t *testing.T) {
	ref := ResourceRef{Kind: ResourceAircraft, ID: "64a000000000000000000a01"}
	if got := ref.String(); got != "aircraft:64a000000000000000000a01" {
		t.Errorf("String() = %q", got)
	}
}
