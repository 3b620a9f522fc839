// Package location obtains the current geographic position from an external source.
package location

import (
	"context"

	"github.com/UnknownOlympus/meteo/internal/coordinates"
	"github.com/UnknownOlympus/meteo/internal/models"
)

// ErrLocationUnavailable is returned by every Source when the position cannot be determined.
var ErrLocationUnavailable = coordinates.ErrLocationUnavailable

// Source is an interface that defines a method for obtaining the current position.
// All failures wrap ErrLocationUnavailable.
type Source interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// StaticSource always reports the configured position.
type StaticSource struct {
	raw     []byte
	rounded bool
}

// NewStaticSource creates a source for fixed coordinates. The coordinates go through
// the same parsing and rounding as positioning tool output.
func NewStaticSource(coords models.Coordinates, rounded bool) *StaticSource {
	return &StaticSource{raw: coordinates.Format(coords), rounded: rounded}
}

// Locate returns the configured coordinates.
func (s *StaticSource) Locate(_ context.Context) (models.Coordinates, error) {
	return coordinates.Parse(s.raw, s.rounded)
}
