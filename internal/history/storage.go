// Package history durably records formatted weather observations.
package history

import (
	"context"
	"time"

	"github.com/UnknownOlympus/meteo/internal/models"
)

// DateLayout is the layout of HistoryRecord.Date.
const DateLayout = "2006-01-02 15:04:05.000000"

// Storage is an append-only sink for weather observations.
type Storage interface {
	Save(ctx context.Context, record models.HistoryRecord) error
}

// Lister is implemented by storages that can return earlier observations.
type Lister interface {
	List(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

// NewRecord stamps formatted weather text with the given moment.
func NewRecord(at time.Time, formatted string) models.HistoryRecord {
	return models.HistoryRecord{Date: at.Format(DateLayout), Weather: formatted}
}
