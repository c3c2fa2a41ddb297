package repository

import (
	"context"
	"fmt"
	"os"

	"radmon.influxDB/internal/models"
)

// FileRepository appends readings to a flat CSV file, one line per reading.
// Every write opens, appends and closes the file; nothing is held between requests.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Name() string { return "file" }

// Path returns the file the repository appends to.
func (r *FileRepository) Path() string { return r.path }

// Record writes "timestamp,cpm,acpm,usv\n" with a single write call so that
// concurrent appenders on a local filesystem do not interleave within a line.
func (r *FileRepository) Record(ctx context.Context, reading models.Reading) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("error appending to %s: %w", r.path, err)
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", r.path, err)
	}
	line := []byte(reading.CSV() + "\n")
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("error appending to %s: %w", r.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", r.path, err)
	}
	return nil
}

func (r *FileRepository) Close() error { return nil }
