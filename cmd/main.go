package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/meteo/internal/config"
	"github.com/UnknownOlympus/meteo/internal/history"
	"github.com/UnknownOlympus/meteo/internal/location"
	"github.com/UnknownOlympus/meteo/internal/metrics"
	"github.com/UnknownOlympus/meteo/internal/models"
	"github.com/UnknownOlympus/meteo/internal/service"
	"github.com/UnknownOlympus/meteo/internal/weather"
	"github.com/prometheus/client_golang/prometheus"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// Constants for history storage types.
const (
	historyJSON     = "json"
	historyPlain    = "plain"
	historyPostgres = "postgres"
)

// main is the entry point of the application.
func main() {
	os.Exit(run())
}

// run performs one fetch-format-save cycle and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)
	defer func() {
		if err := metrics.WriteTextfile(cfg.MetricsFile, reg); err != nil {
			logger.ErrorContext(ctx, "Failed to export metrics", "error", err)
		}
	}()

	source, err := location.NewSource(location.SourceConfig{
		Type:    location.SourceType(cfg.Location.Source),
		Rounded: cfg.RoundCoords,
		Command: cfg.Location.Command,
		Static:  models.Coordinates{Longitude: cfg.Location.Longitude, Latitude: cfg.Location.Latitude},
		Address: cfg.Location.Address,
		APIKey:  cfg.Location.APIKey,
		Timeout: cfg.Weather.Timeout,
		Logger:  logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create location source", "error", err)
		return 1
	}

	storage, closeStorage, err := newStorage(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create history storage", "type", cfg.History.Type, "error", err)
		return 1
	}
	defer closeStorage()

	client := weather.NewClient(cfg.Weather.URL, cfg.Weather.APIKey, cfg.Weather.Timeout, logger)

	weatherService := service.NewWeatherService(logger, source, client, storage, appMetrics, weather.ParseOptions{
		City:     cfg.Weather.City,
		Location: cfg.Weather.Timezone,
	})

	result, err := weatherService.Run(ctx)
	return report(os.Stdout, result, err)
}

// report prints the outcome for the user and maps it to an exit code.
func report(out io.Writer, result service.Result, err error) int {
	switch {
	case err == nil:
		fmt.Fprint(out, result.Formatted)
		return 0
	case errors.Is(err, location.ErrLocationUnavailable):
		fmt.Fprintln(out, "Не удалось получить GPS координаты!")
	case errors.Is(err, weather.ErrWeatherService):
		fmt.Fprintf(out, "Не удалось получить погоду по координатам %.4f, %.4f\n",
			result.Coordinates.Longitude, result.Coordinates.Latitude)
	case errors.Is(err, service.ErrHistoryUnavailable):
		fmt.Fprint(out, result.Formatted)
		fmt.Fprintln(out, "Не удалось сохранить погоду в историю")
	default:
		fmt.Fprintln(out, "Не удалось получить погоду")
	}

	return 1
}

// newStorage builds the configured history storage and a function releasing its resources.
func newStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (history.Storage, func(), error) {
	switch cfg.History.Type {
	case historyJSON:
		storage, err := history.NewJSONFileStorage(cfg.History.Path, log)
		return storage, func() {}, err
	case historyPlain:
		return history.NewPlainFileStorage(cfg.History.Path, log), func() {}, nil
	case historyPostgres:
		dtb, err := history.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, nil, err
		}
		storage := history.NewPostgresStorage(dtb, log)
		if err = storage.Init(ctx); err != nil {
			dtb.Close()
			return nil, nil, err
		}
		return storage, dtb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported history storage type: %s", cfg.History.Type)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
// Logs go to stderr so that stdout only carries the weather report.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	dropTime := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
