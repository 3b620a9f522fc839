package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meteo/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleGeocoder resolves addresses with the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the part of *maps.Client used for geocoding.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrGoogleEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrGoogleEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleGeocoder wraps an existing Google Maps client.
func NewGoogleGeocoder(client GoogleAPIClient, log *slog.Logger) *GoogleGeocoder {
	return &GoogleGeocoder{client: client, log: log}
}

// Geocode returns the position of address. Exact matches win over partial ones;
// a partial match is used only when nothing else was found.
//
// Failures wrap ErrLocationUnavailable and name the address.
func (gg *GoogleGeocoder) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gg.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	results, err := gg.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to geocode address %q: %w", ErrLocationUnavailable, address, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %w for address %q", ErrLocationUnavailable, ErrGoogleEmptyResponse, address)
	}

	best := results[0]
	for _, result := range results {
		if !result.PartialMatch {
			best = result
			break
		}
	}
	if best.PartialMatch {
		gg.log.WarnContext(ctx, "Only a partial match was found", "address", address, "match", best.FormattedAddress)
	}
	loc := best.Geometry.Location

	return &models.Coordinates{Longitude: loc.Lng, Latitude: loc.Lat}, nil
}
