package client

import (
	"context"
	"fmt"
	"net/http"

	"flightline/pkg/model"
)

// FleetClient resolves aircraft and instructor identifiers against the fleet
// registry service. It is the bookings service's view of the registry.
type FleetClient struct {
	http *HttpClient
}

func NewFleetClient(baseURL string) *FleetClient {
	return &FleetClient{
		http: NewHttpClient(baseURL),
	}
}

// Exists reports whether the referenced resource is registered. A 404 from the
// registry means "no"; any other non-200 status is a registry failure.
func (c *FleetClient) Exists(ctx context.Context, ref model.ResourceRef) (bool, error) {
	var path string
	switch ref.Kind {
	case model.ResourceAircraft:
		path = "/api/v1/aircraft/id/" + ref.ID
	case model.ResourceInstructor:
		path = "/api/v1/instructors/id/" + ref.ID
	default:
		return false, fmt.Errorf("unknown resource kind: %s", ref.Kind)
	}

	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return false, fmt.Errorf("fleet registry lookup failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusBadRequest:
		return false, nil
	default:
		return false, fmt.Errorf("fleet registry returned status %d for %s", resp.StatusCode, ref)
	}
}
