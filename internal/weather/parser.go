// Package weather fetches current conditions from the OpenWeather API and
// normalizes its response into models.Weather.
package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/meteo/internal/models"
)

// ErrWeatherService is returned when the weather cannot be fetched from the API or its response is unusable.
var ErrWeatherService = errors.New("can't get current weather from API")

// DefaultCity is used when the response does not name the place.
const DefaultCity = "Moscow"

// ParseOptions controls the parts of parsing that do not come from the payload.
type ParseOptions struct {
	City     string         // City is the fallback city name. Empty means DefaultCity.
	Location *time.Location // Location is the zone sunrise and sunset are shown in. Nil means time.Local.
}

// response mirrors the subset of the OpenWeather current weather payload we rely on.
// Pointers distinguish absent fields from zero values.
type response struct {
	Name string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		ID *int `json:"id"`
	} `json:"weather"`
	Sys *struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
}

// kindPrefixes is tried in order and the first match wins.
// "800" must precede "80" since clear sky shares the clouds prefix.
var kindPrefixes = []struct {
	prefix string
	exact  bool
	kind   models.WeatherKind
}{
	{prefix: "1", kind: models.Thunderstorm},
	{prefix: "3", kind: models.Drizzle},
	{prefix: "5", kind: models.Rain},
	{prefix: "6", kind: models.Snow},
	{prefix: "7", kind: models.Fog},
	{prefix: "800", exact: true, kind: models.Clear},
	{prefix: "80", kind: models.Clouds},
}

// Parse converts a raw OpenWeather JSON payload into a Weather record.
// Every failure wraps ErrWeatherService.
func Parse(raw []byte, opts ParseOptions) (models.Weather, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.Weather{}, fmt.Errorf("%w: failed to decode response: %w", ErrWeatherService, err)
	}

	temp, err := parseTemperature(resp)
	if err != nil {
		return models.Weather{}, err
	}

	kind, err := parseKind(resp)
	if err != nil {
		return models.Weather{}, err
	}

	sunrise, sunset, err := parseSunTimes(resp, opts.Location)
	if err != nil {
		return models.Weather{}, err
	}

	return models.Weather{
		Temperature: temp,
		Kind:        kind,
		Sunrise:     sunrise,
		Sunset:      sunset,
		City:        parseCity(resp, opts.City),
	}, nil
}

// Classify maps an OpenWeather condition code onto a WeatherKind by ordered prefix matching.
func Classify(code int) (models.WeatherKind, error) {
	id := strconv.Itoa(code)
	for _, p := range kindPrefixes {
		if (p.exact && id == p.prefix) || (!p.exact && strings.HasPrefix(id, p.prefix)) {
			return p.kind, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown weather condition code %d", ErrWeatherService, code)
}

// maxAbsTemperature bounds main.temp so that rounding always fits an int.
const maxAbsTemperature = 1e6

// parseTemperature rounds half away from zero.
func parseTemperature(resp response) (int, error) {
	if resp.Main == nil || resp.Main.Temp == nil {
		return 0, fmt.Errorf("%w: missing main.temp", ErrWeatherService)
	}
	temp := *resp.Main.Temp
	if math.Abs(temp) > maxAbsTemperature {
		return 0, fmt.Errorf("%w: temperature out of range", ErrWeatherService)
	}

	return int(math.Round(temp)), nil
}

func parseKind(resp response) (models.WeatherKind, error) {
	if len(resp.Weather) == 0 {
		return 0, fmt.Errorf("%w: missing weather conditions", ErrWeatherService)
	}
	if resp.Weather[0].ID == nil {
		return 0, fmt.Errorf("%w: missing weather[0].id", ErrWeatherService)
	}

	return Classify(*resp.Weather[0].ID)
}

func parseSunTimes(resp response, loc *time.Location) (time.Time, time.Time, error) {
	if resp.Sys == nil || resp.Sys.Sunrise == nil || resp.Sys.Sunset == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: missing sys.sunrise or sys.sunset", ErrWeatherService)
	}
	if loc == nil {
		loc = time.Local
	}

	return time.Unix(*resp.Sys.Sunrise, 0).In(loc), time.Unix(*resp.Sys.Sunset, 0).In(loc), nil
}

func parseCity(resp response, fallback string) string {
	if name := strings.TrimSpace(resp.Name); name != "" {
		return name
	}
	if fallback != "" {
		return fallback
	}

	return DefaultCity
}
