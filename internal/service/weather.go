// Package service runs a single locate, fetch, format and save cycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meteo/internal/formatter"
	"github.com/UnknownOlympus/meteo/internal/history"
	"github.com/UnknownOlympus/meteo/internal/location"
	"github.com/UnknownOlympus/meteo/internal/metrics"
	"github.com/UnknownOlympus/meteo/internal/models"
	"github.com/UnknownOlympus/meteo/internal/weather"
)

// ErrHistoryUnavailable is returned when the observation could not be recorded.
var ErrHistoryUnavailable = errors.New("can't save weather history")

// Result holds whatever the run produced before it finished or failed.
type Result struct {
	Coordinates models.Coordinates    // Coordinates is set once the position is known.
	Weather     models.Weather        // Weather is set once the payload is parsed.
	Formatted   string                // Formatted is set once the weather is rendered.
	Previous    *models.HistoryRecord // Previous is the last stored observation, if the storage can list it.
}

// WeatherService sequences the location source, weather client and history storage.
type WeatherService struct {
	log       *slog.Logger         // Logger for logging service activities
	source    location.Source      // Source of the current position
	fetcher   weather.Fetcher      // Client returning raw weather payloads
	storage   history.Storage      // Sink for formatted observations
	metrics   *metrics.Metrics     // Metrics for tracking runs
	parseOpts weather.ParseOptions // Options for parsing weather payloads
	now       func() time.Time     // Clock used to stamp history records
}

// NewWeatherService creates a new instance of WeatherService.
func NewWeatherService(
	log *slog.Logger,
	source location.Source,
	fetcher weather.Fetcher,
	storage history.Storage,
	metrics *metrics.Metrics,
	parseOpts weather.ParseOptions,
) *WeatherService {
	return &WeatherService{
		log:       log,
		source:    source,
		fetcher:   fetcher,
		storage:   storage,
		metrics:   metrics,
		parseOpts: parseOpts,
		now:       time.Now,
	}
}

// Run performs one cycle and stops at the first failure.
//
// Errors wrap location.ErrLocationUnavailable, weather.ErrWeatherService or
// ErrHistoryUnavailable so the caller can tell the stages apart. A weather failure
// is fatal: nothing is formatted or saved without a parsed observation.
func (ws *WeatherService) Run(ctx context.Context) (Result, error) {
	var result Result

	coords, err := ws.locate(ctx)
	if err != nil {
		ws.fail(ctx, metrics.StageLocation, err)
		return result, err
	}
	result.Coordinates = coords

	current, err := ws.fetchWeather(ctx, coords)
	if err != nil {
		ws.fail(ctx, metrics.StageWeather, err, "lat", coords.Latitude, "lon", coords.Longitude)
		return result, err
	}
	result.Weather = current
	result.Formatted = formatter.Format(current)

	result.Previous = ws.previous(ctx)

	record := history.NewRecord(ws.now(), result.Formatted)
	startTime := time.Now()
	err = ws.storage.Save(ctx, record)
	ws.observe("storage", startTime)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
		ws.fail(ctx, metrics.StageStorage, err)
		return result, err
	}

	ws.metrics.RunsTotal.WithLabelValues(metrics.StageSuccess).Inc()
	ws.metrics.LastTemperature.Set(float64(current.Temperature))
	ws.metrics.LastSuccess.Set(float64(ws.now().Unix()))
	ws.log.InfoContext(ctx, "Weather saved",
		"city", current.City, "temperature", current.Temperature, "kind", current.Kind.String())

	return result, nil
}

func (ws *WeatherService) locate(ctx context.Context) (models.Coordinates, error) {
	startTime := time.Now()
	coords, err := ws.source.Locate(ctx)
	ws.observe("location", startTime)
	if err != nil {
		if !errors.Is(err, location.ErrLocationUnavailable) {
			err = fmt.Errorf("%w: %w", location.ErrLocationUnavailable, err)
		}
		return models.Coordinates{}, err
	}

	ws.log.DebugContext(ctx, "Position obtained", "lat", coords.Latitude, "lon", coords.Longitude)

	return coords, nil
}

func (ws *WeatherService) fetchWeather(ctx context.Context, coords models.Coordinates) (models.Weather, error) {
	startTime := time.Now()
	raw, err := ws.fetcher.Fetch(ctx, coords)
	ws.observe("weather", startTime)
	if err != nil {
		if !errors.Is(err, weather.ErrWeatherService) {
			err = fmt.Errorf("%w: %w", weather.ErrWeatherService, err)
		}
		return models.Weather{}, err
	}

	return weather.Parse(raw, ws.parseOpts)
}

// previous looks up the last stored observation. Lookup failures do not fail the run.
func (ws *WeatherService) previous(ctx context.Context) *models.HistoryRecord {
	lister, ok := ws.storage.(history.Lister)
	if !ok {
		return nil
	}

	records, err := lister.List(ctx, 1)
	if err != nil {
		ws.log.WarnContext(ctx, "Failed to read previous observation", "error", err)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	ws.log.DebugContext(ctx, "Previous observation", "date", records[0].Date, "weather", records[0].Weather)

	return &records[0]
}

func (ws *WeatherService) observe(collaborator string, startTime time.Time) {
	ws.metrics.RequestSeconds.WithLabelValues(collaborator).Observe(time.Since(startTime).Seconds())
}

func (ws *WeatherService) fail(ctx context.Context, stage string, err error, args ...any) {
	ws.metrics.RunsTotal.WithLabelValues(stage).Inc()
	ws.log.ErrorContext(ctx, "Run failed", append([]any{"stage", stage, "error", err}, args...)...)
}
