// Package coordinates turns the raw output of a positioning tool into validated coordinates.
package coordinates

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/meteo/internal/models"
)

// ErrLocationUnavailable is returned when the current position cannot be obtained or parsed.
var ErrLocationUnavailable = errors.New("can't get current GPS coordinates")

// fieldSeparator splits longitude and latitude in the positioning tool output.
const fieldSeparator = "\r"

// Parse converts raw positioning tool output of the form "<longitude>\r<latitude>"
// into coordinates. When rounded is true both values are rounded to one decimal place.
//
// Any decoding or numeric parsing problem is reported as ErrLocationUnavailable.
func Parse(raw []byte, rounded bool) (models.Coordinates, error) {
	if !utf8.Valid(raw) {
		return models.Coordinates{}, fmt.Errorf("%w: output is not valid UTF-8", ErrLocationUnavailable)
	}

	fields := strings.Split(strings.TrimSpace(string(raw)), fieldSeparator)
	const fieldsCount = 2
	if len(fields) < fieldsCount {
		return models.Coordinates{}, fmt.Errorf(
			"%w: expected %d fields, got %d", ErrLocationUnavailable, fieldsCount, len(fields),
		)
	}

	lon, err := parseField(fields[0])
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: invalid longitude: %w", ErrLocationUnavailable, err)
	}
	lat, err := parseField(fields[1])
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: invalid latitude: %w", ErrLocationUnavailable, err)
	}

	coords := models.Coordinates{Longitude: lon, Latitude: lat}
	if rounded {
		coords = Round(coords)
	}

	return coords, nil
}

// Round reduces both coordinates to one decimal place, rounding half away from zero.
func Round(coords models.Coordinates) models.Coordinates {
	return models.Coordinates{
		Longitude: roundOneDecimal(coords.Longitude),
		Latitude:  roundOneDecimal(coords.Latitude),
	}
}

// Format renders coordinates in the positioning tool output layout, so that Parse(Format(c)) == c.
func Format(coords models.Coordinates) []byte {
	return []byte(strconv.FormatFloat(coords.Longitude, 'f', -1, 64) +
		fieldSeparator +
		strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
}

// parseField accepts decimal notation only; hexadecimal float literals are rejected.
func parseField(field string) (float64, error) {
	field = strings.TrimSpace(field)
	digits := strings.TrimLeft(field, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, fmt.Errorf("hexadecimal value %q", field)
	}
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("non-finite value %q", field)
	}

	return value, nil
}

func roundOneDecimal(v float64) float64 {
	const scale = 10
	return math.Round(v*scale) / scale
}
