package location_test

import (
	"log/slog"
	"os/exec"
	"testing"

	"github.com/UnknownOlympus/meteo/internal/location"
	"github.com/UnknownOlympus/meteo/internal/models"
	"github.com/UnknownOlympus/meteo/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

func TestCommandSource_Locate(t *testing.T) {
	requireShell(t)
	logger := slog.Default()

	t.Run("parses command output", func(t *testing.T) {
		source := location.NewCommandSource([]string{"sh", "-c", `printf '37.61729\r55.75582\r\n'`}, true, logger)

		coords, err := source.Locate(t.Context())

		require.NoError(t, err)
		assert.InDelta(t, 37.6, coords.Longitude, 1e-9)
		assert.InDelta(t, 55.8, coords.Latitude, 1e-9)
	})

	t.Run("non-zero exit status", func(t *testing.T) {
		source := location.NewCommandSource([]string{"sh", "-c", `printf '37.6\r55.7'; exit 3`}, false, logger)

		_, err := source.Locate(t.Context())

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		assert.ErrorContains(t, err, "location command failed")
	})

	t.Run("stderr output", func(t *testing.T) {
		source := location.NewCommandSource(
			[]string{"sh", "-c", `printf '37.6\r55.7'; echo 'access denied' >&2`}, false, logger,
		)

		_, err := source.Locate(t.Context())

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		assert.ErrorContains(t, err, "location command wrote to stderr")
	})

	t.Run("malformed output", func(t *testing.T) {
		source := location.NewCommandSource([]string{"sh", "-c", `echo unknown`}, false, logger)

		_, err := source.Locate(t.Context())

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
	})

	t.Run("missing executable", func(t *testing.T) {
		source := location.NewCommandSource([]string{"meteo-no-such-binary"}, false, logger)

		_, err := source.Locate(t.Context())

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
	})

	t.Run("empty command", func(t *testing.T) {
		source := location.NewCommandSource(nil, false, logger)

		_, err := source.Locate(t.Context())

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		assert.ErrorContains(t, err, "location command is empty")
	})
}

func TestGeocoderSource_Locate(t *testing.T) {
	logger := slog.Default()
	ctx := t.Context()

	t.Run("rounded geocoded position", func(t *testing.T) {
		geocoder := mocks.NewGeocoder(t)
		geocoder.On("Geocode", ctx, "Moscow").
			Return(&models.Coordinates{Longitude: 37.6173, Latitude: 55.7558}, nil).Once()

		coords, err := location.NewGeocoderSource(geocoder, "Moscow", true, logger).Locate(ctx)

		require.NoError(t, err)
		assert.InDelta(t, 37.6, coords.Longitude, 1e-9)
		assert.InDelta(t, 55.8, coords.Latitude, 1e-9)
	})

	t.Run("full precision position", func(t *testing.T) {
		geocoder := mocks.NewGeocoder(t)
		geocoder.On("Geocode", ctx, "Moscow").
			Return(&models.Coordinates{Longitude: 37.6173, Latitude: 55.7558}, nil).Once()

		coords, err := location.NewGeocoderSource(geocoder, "Moscow", false, logger).Locate(ctx)

		require.NoError(t, err)
		assert.Equal(t, models.Coordinates{Longitude: 37.6173, Latitude: 55.7558}, coords)
	})

	t.Run("geocoder error", func(t *testing.T) {
		geocoder := mocks.NewGeocoder(t)
		geocoder.On("Geocode", ctx, "Atlantis").Return(nil, assert.AnError).Once()

		_, err := location.NewGeocoderSource(geocoder, "Atlantis", true, logger).Locate(ctx)

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty address", func(t *testing.T) {
		geocoder := mocks.NewGeocoder(t)

		_, err := location.NewGeocoderSource(geocoder, "", true, logger).Locate(ctx)

		require.ErrorIs(t, err, location.ErrLocationUnavailable)
		require.ErrorIs(t, err, location.ErrEmptyAddress)
	})
}
