//go:build integration

package history_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/meteo/internal/history"
	"github.com/UnknownOlympus/meteo/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStorage_Integration(t *testing.T) {
	ctx := t.Context()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("meteo"),
		postgres.WithUsername("meteo"),
		postgres.WithPassword("meteo"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	storage := history.NewPostgresStorage(pool, slog.Default())
	require.NoError(t, storage.Init(ctx))
	require.NoError(t, storage.Init(ctx), "schema creation must be repeatable")

	first := history.NewRecord(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), "first")
	second := history.NewRecord(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), "second")
	require.NoError(t, storage.Save(ctx, first))
	require.NoError(t, storage.Save(ctx, second))

	records, err := storage.List(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryRecord{second, first}, records)
}
