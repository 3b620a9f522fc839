package location

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meteo/internal/models"
	"googlemaps.github.io/maps"
)

// SourceType represents the kind of location source.
type SourceType string

const (
	// SourceTypeCommand runs an external positioning tool.
	SourceTypeCommand SourceType = "command"
	// SourceTypeStatic uses coordinates from configuration.
	SourceTypeStatic SourceType = "static"
	// SourceTypeGoogle geocodes an address with Google Maps.
	SourceTypeGoogle SourceType = "google"
	// SourceTypeNominatim geocodes an address with OpenStreetMap Nominatim.
	SourceTypeNominatim SourceType = "nominatim"
)

// SourceConfig holds configuration for creating a location source.
type SourceConfig struct {
	Type    SourceType         // Type of source to create
	Rounded bool               // Round coordinates to one decimal place
	Command []string           // Command line for SourceTypeCommand; DefaultCommand when empty
	Static  models.Coordinates // Position for SourceTypeStatic
	Address string             // Address for geocoding sources
	APIKey  string             // API key (used by Google geocoder)
	Timeout time.Duration      // HTTP timeout (used by Nominatim geocoder)
	Logger  *slog.Logger       // Logger for the source
}

// NewSource creates a location source based on the provided configuration.
//
// Returns an error if the source type is unsupported or if its dependencies cannot be built.
func NewSource(config SourceConfig) (Source, error) {
	switch config.Type {
	case SourceTypeCommand:
		command := config.Command
		if len(command) == 0 {
			command = DefaultCommand
		}
		return NewCommandSource(command, config.Rounded, config.Logger), nil
	case SourceTypeStatic:
		return NewStaticSource(config.Static, config.Rounded), nil
	case SourceTypeGoogle:
		return newGoogleSource(config)
	case SourceTypeNominatim:
		geocoder := NewNominatimGeocoder(config.Timeout, config.Logger)
		return NewGeocoderSource(geocoder, config.Address, config.Rounded, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported location source type: %s", config.Type)
	}
}

func newGoogleSource(config SourceConfig) (Source, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google geocoder")
	}

	client, err := maps.NewClient(maps.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGeocoderSource(NewGoogleGeocoder(client, config.Logger), config.Address, config.Rounded, config.Logger), nil
}
