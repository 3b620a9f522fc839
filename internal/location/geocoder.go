package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meteo/internal/coordinates"
	"github.com/UnknownOlympus/meteo/internal/models"
)

// ErrEmptyAddress is returned when a geocoding source has no address configured.
var ErrEmptyAddress = errors.New("address for geocoding is empty")

// Geocoder converts an address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// GeocoderSource reports the position of a fixed address resolved by a Geocoder.
type GeocoderSource struct {
	geocoder Geocoder
	address  string
	rounded  bool
	log      *slog.Logger
}

// NewGeocoderSource creates a Source backed by the given geocoder.
func NewGeocoderSource(geocoder Geocoder, address string, rounded bool, log *slog.Logger) *GeocoderSource {
	return &GeocoderSource{geocoder: geocoder, address: address, rounded: rounded, log: log}
}

// Locate geocodes the configured address.
func (gs *GeocoderSource) Locate(ctx context.Context) (models.Coordinates, error) {
	if gs.address == "" {
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, ErrEmptyAddress)
	}

	coords, err := gs.geocoder.Geocode(ctx, gs.address)
	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to geocode address", "address", gs.address, "error", err)
		if !errors.Is(err, ErrLocationUnavailable) {
			err = fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
		}
		return models.Coordinates{}, err
	}

	if gs.rounded {
		return coordinates.Round(*coords), nil
	}

	return *coords, nil
}
