package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/meteo/internal/history"
	"github.com/UnknownOlympus/meteo/internal/location"
	"github.com/UnknownOlympus/meteo/internal/metrics"
	"github.com/UnknownOlympus/meteo/internal/models"
	"github.com/UnknownOlympus/meteo/internal/weather"
	"github.com/UnknownOlympus/meteo/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const payload = `{"name":"Moscow","main":{"temp":17.6},"weather":[{"id":800}],"sys":{"sunrise":1700000000,"sunset":1700040000}}`

type fixture struct {
	source  *mocks.Source
	fetcher *mocks.Fetcher
	storage *mocks.Storage
	metrics *metrics.Metrics
	service *WeatherService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		source:  mocks.NewSource(t),
		fetcher: mocks.NewFetcher(t),
		storage: mocks.NewStorage(t),
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	f.service = NewWeatherService(logger, f.source, f.fetcher, f.storage, f.metrics,
		weather.ParseOptions{Location: time.UTC})
	f.service.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	return f
}

func (f *fixture) runs(stage string) float64 {
	return testutil.ToFloat64(f.metrics.RunsTotal.WithLabelValues(stage))
}

func TestRun(t *testing.T) {
	ctx := t.Context()
	coords := models.Coordinates{Longitude: 37.6, Latitude: 55.7}
	formatted := "Moscow, температура 18C, Ясно\nВосход: 22:13\nЗакат: 09:20\n"

	t.Run("successful run", func(t *testing.T) {
		f := newFixture(t)
		f.source.On("Locate", ctx).Return(coords, nil).Once()
		f.fetcher.On("Fetch", ctx, coords).Return([]byte(payload), nil).Once()
		f.storage.On("Save", ctx, models.HistoryRecord{
			Date:    "2024-06-01 12:00:00.000000",
			Weather: formatted,
		}).Return(nil).Once()

		result, err := f.service.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, coords, result.Coordinates)
		assert.Equal(t, 18, result.Weather.Temperature)
		assert.Equal(t, models.Clear, result.Weather.Kind)
		assert.Equal(t, formatted, result.Formatted)
		assert.InDelta(t, 1, f.runs(metrics.StageSuccess), 0)
		assert.InDelta(t, 18, testutil.ToFloat64(f.metrics.LastTemperature), 0)
	})

	t.Run("location unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.source.On("Locate", ctx).
			Return(models.Coordinates{}, errors.Join(location.ErrLocationUnavailable, assert.AnError)).Once()

		result, err := f.service.Run(ctx)

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		assert.Equal(t, Result{}, result)
		assert.InDelta(t, 1, f.runs(metrics.StageLocation), 0)
		f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("unclassified location error is wrapped", func(t *testing.T) {
		f := newFixture(t)
		f.source.On("Locate", ctx).Return(models.Coordinates{}, assert.AnError).Once()

		_, err := f.service.Run(ctx)

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("weather transport failure is fatal", func(t *testing.T) {
		f := newFixture(t)
		f.source.On("Locate", ctx).Return(coords, nil).Once()
		f.fetcher.On("Fetch", ctx, coords).Return(nil, assert.AnError).Once()

		result, err := f.service.Run(ctx)

		require.ErrorIs(t, err, weather.ErrWeatherService)
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, coords, result.Coordinates)
		assert.Empty(t, result.Formatted)
		assert.InDelta(t, 1, f.runs(metrics.StageWeather), 0)
		f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unparsable weather is fatal", func(t *testing.T) {
		f := newFixture(t)
		f.source.On("Locate", ctx).Return(coords, nil).Once()
		f.fetcher.On("Fetch", ctx, coords).
			Return([]byte(`{"main":{"temp":1},"weather":[],"sys":{"sunrise":1,"sunset":2}}`), nil).Once()

		result, err := f.service.Run(ctx)

		require.ErrorIs(t, err, weather.ErrWeatherService)
		assert.Equal(t, coords, result.Coordinates)
		assert.Equal(t, models.Weather{}, result.Weather)
		f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("history storage failure", func(t *testing.T) {
		f := newFixture(t)
		f.source.On("Locate", ctx).Return(coords, nil).Once()
		f.fetcher.On("Fetch", ctx, coords).Return([]byte(payload), nil).Once()
		f.storage.On("Save", ctx, mock.AnythingOfType("models.HistoryRecord")).Return(assert.AnError).Once()

		result, err := f.service.Run(ctx)

		require.ErrorIs(t, err, ErrHistoryUnavailable)
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, formatted, result.Formatted)
		assert.InDelta(t, 1, f.runs(metrics.StageStorage), 0)
		assert.InDelta(t, 0, f.runs(metrics.StageSuccess), 0)
	})
}

func TestRun_WithFileHistory(t *testing.T) {
	ctx := t.Context()
	coords := models.Coordinates{Longitude: 37.6, Latitude: 55.7}
	path := t.TempDir() + "/history.json"

	storage, err := history.NewJSONFileStorage(path, slog.Default())
	require.NoError(t, err)

	source := location.NewStaticSource(coords, true)
	fetcher := mocks.NewFetcher(t)
	fetcher.On("Fetch", ctx, coords).Return([]byte(payload), nil).Twice()

	svc := NewWeatherService(slog.Default(), source, fetcher, storage, metrics.NewMetrics(prometheus.NewRegistry()),
		weather.ParseOptions{Location: time.UTC})

	first, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Nil(t, first.Previous)
	second, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Formatted, second.Formatted)
	require.NotNil(t, second.Previous)
	assert.Equal(t, first.Formatted, second.Previous.Weather)

	records, err := storage.Read()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.Formatted, records[0].Weather)
}

type listingStorage struct {
	*mocks.Storage
	records []models.HistoryRecord
	err     error
}

func (s *listingStorage) List(_ context.Context, _ int) ([]models.HistoryRecord, error) {
	return s.records, s.err
}

func TestRun_PreviousObservation(t *testing.T) {
	ctx := t.Context()
	coords := models.Coordinates{Longitude: 37.6, Latitude: 55.7}
	last := models.HistoryRecord{Date: "2024-05-31 12:00:00.000000", Weather: "Moscow, температура 12C, Дождь\n"}

	newService := func(t *testing.T, storage *listingStorage) *WeatherService {
		t.Helper()
		source := location.NewStaticSource(coords, true)
		fetcher := mocks.NewFetcher(t)
		fetcher.On("Fetch", ctx, coords).Return([]byte(payload), nil).Once()
		storage.On("Save", ctx, mock.AnythingOfType("models.HistoryRecord")).Return(nil).Once()

		return NewWeatherService(slog.Default(), source, fetcher, storage,
			metrics.NewMetrics(prometheus.NewRegistry()), weather.ParseOptions{Location: time.UTC})
	}

	t.Run("last record reported", func(t *testing.T) {
		storage := &listingStorage{Storage: mocks.NewStorage(t), records: []models.HistoryRecord{last}}

		result, err := newService(t, storage).Run(ctx)

		require.NoError(t, err)
		require.NotNil(t, result.Previous)
		assert.Equal(t, last, *result.Previous)
	})

	t.Run("list failure does not fail the run", func(t *testing.T) {
		storage := &listingStorage{Storage: mocks.NewStorage(t), err: assert.AnError}

		result, err := newService(t, storage).Run(ctx)

		require.NoError(t, err)
		assert.Nil(t, result.Previous)
		assert.NotEmpty(t, result.Formatted)
	})
}
