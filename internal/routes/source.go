package routes

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

// Source is an authoritative routing provider. Implementations are
// network-bound and may fail; callers are expected to fall back to
// Estimate.
type Source interface {
	Route(ctx context.Context, origin, destination string) (Leg, error)
}

// GoogleSource resolves routes through the Google Maps Directions API.
type GoogleSource struct {
	client  *maps.Client
	timeout time.Duration
}

// NewGoogleSource creates a GoogleSource with the given API key. The
// timeout bounds each Directions call so a slow or unreachable API can
// never stall the quoting flow.
func NewGoogleSource(apiKey string, timeout time.Duration) (*GoogleSource, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GoogleSource{client: client, timeout: timeout}, nil
}

func (g *GoogleSource) Route(ctx context.Context, origin, destination string) (Leg, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}
	rts, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return Leg{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(rts) == 0 || len(rts[0].Legs) == 0 {
		return Leg{}, fmt.Errorf("no route found for %q -> %q", origin, destination)
	}
	leg := rts[0].Legs[0]
	return Leg{
		Miles:   float64(leg.Distance.Meters) / metersPerMile,
		Minutes: leg.Duration.Minutes(),
	}, nil
}
