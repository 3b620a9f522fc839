package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/meteo/internal/models"
)

const filePerm = 0o644

// PlainFileStorage appends records to a text file, one block per observation.
type PlainFileStorage struct {
	path string
	log  *slog.Logger
}

// NewPlainFileStorage creates a storage writing to path. The file is created on first save.
func NewPlainFileStorage(path string, log *slog.Logger) *PlainFileStorage {
	return &PlainFileStorage{path: path, log: log}
}

// Save appends "<date>\n<weather>\n\n" to the file.
func (s *PlainFileStorage) Save(ctx context.Context, record models.HistoryRecord) error {
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	if _, err = fmt.Fprintf(file, "%s\n%s\n\n", record.Date, record.Weather); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}

	s.log.DebugContext(ctx, "Weather saved to plain history", "path", s.path)

	return nil
}

// JSONFileStorage keeps the history as a single JSON array that is rewritten on every save.
type JSONFileStorage struct {
	path string
	log  *slog.Logger
}

// NewJSONFileStorage creates a storage backed by path, initializing it with an empty array if it does not exist.
func NewJSONFileStorage(path string, log *slog.Logger) (*JSONFileStorage, error) {
	s := &JSONFileStorage{path: path, log: log}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = os.WriteFile(path, []byte("[]"), filePerm); err != nil {
			return nil, fmt.Errorf("failed to initialize history file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat history file: %w", err)
	}

	return s, nil
}

// Save reads the whole history, appends the record and writes the history back.
func (s *JSONFileStorage) Save(ctx context.Context, record models.HistoryRecord) error {
	history, err := s.Read()
	if err != nil {
		return err
	}

	history = append(history, record)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err = enc.Encode(history); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err = os.WriteFile(s.path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	s.log.DebugContext(ctx, "Weather saved to JSON history", "path", s.path, "records", len(history))

	return nil
}

// List returns up to limit of the most recent records, newest first.
func (s *JSONFileStorage) List(_ context.Context, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		return []models.HistoryRecord{}, nil
	}
	history, err := s.Read()
	if err != nil {
		return nil, err
	}

	records := make([]models.HistoryRecord, 0, min(limit, len(history)))
	for i := len(history) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, history[i])
	}

	return records, nil
}

// Read returns every stored record in insertion order.
func (s *JSONFileStorage) Read() ([]models.HistoryRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	history := []models.HistoryRecord{}
	if err = json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode history file: %w", err)
	}

	return history, nil
}
