// internal/repository/influxDB_repository.go

package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"radmon.influxDB/internal/config"
	"radmon.influxDB/internal/models"
)

// ErrWriteTimeout is returned when a sink write does not finish before its deadline.
var ErrWriteTimeout = errors.New("sink write timed out")

// Sink durably records one reading.
type Sink interface {
	Record(ctx context.Context, reading models.Reading) error
	Name() string
	Close() error
}

// InfluxDBRepository writes readings to an InfluxDB v2 bucket.
type InfluxDBRepository struct {
	client      influxdb2.Client
	org         string
	bucket      string
	measurement string
	location    string
}

// NewInfluxDBRepository creates a new InfluxDBRepository. Points are written with second precision.
func NewInfluxDBRepository(url, token, org, bucket, measurement, location string) *InfluxDBRepository {
	opts := influxdb2.DefaultOptions().SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(url, token, opts)
	return &InfluxDBRepository{
		client:      client,
		org:         org,
		bucket:      bucket,
		measurement: measurement,
		location:    location,
	}
}

// Name identifies the sink in logs and metrics.
func (r *InfluxDBRepository) Name() string { return "influxdb" }

// Points builds one point per field, all sharing the measurement and location tag.
func (r *InfluxDBRepository) Points(reading models.Reading) []*write.Point {
	tags := map[string]string{"location": r.location}
	points := make([]*write.Point, 0, 3)
	for _, dp := range reading.Fields() {
		points = append(points, influxdb2.NewPoint(
			r.measurement,
			tags,
			map[string]interface{}{dp.Field: dp.Value},
			reading.Time(),
		))
	}
	return points
}

// Record submits the three field points as a single blocking write.
// Whether the server applies them all-or-nothing is up to InfluxDB.
func (r *InfluxDBRepository) Record(ctx context.Context, reading models.Reading) error {
	writeAPI := r.client.WriteAPIBlocking(r.org, r.bucket)
	err := writeAPI.WritePoint(ctx, r.Points(reading)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("error writing to InfluxDB bucket %s: %w: %v", r.bucket, ErrWriteTimeout, err)
		}
		return fmt.Errorf("error writing to InfluxDB bucket %s: %w", r.bucket, err)
	}
	return nil
}

// CheckHealth pings the server. The service starts regardless of the outcome.
func (r *InfluxDBRepository) CheckHealth(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	return nil
}

// Close releases the client's idle connections.
func (r *InfluxDBRepository) Close() error {
	r.client.Close()
	return nil
}

// NewSink picks the sink variant once at startup.
func NewSink(ctx context.Context, cfg *config.Config, logger *log.Logger) (Sink, error) {
	switch cfg.Sink {
	case config.SinkInfluxDB:
		repo := NewInfluxDBRepository(cfg.InfluxDBHost, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, cfg.Measurement, cfg.Location)
		logger.Printf("Using influx: %s with bucket: %s", cfg.InfluxDBHost, cfg.InfluxDBBucket)
		hctx, cancel := context.WithTimeout(ctx, cfg.WriteTimeout)
		defer cancel()
		if err := repo.CheckHealth(hctx); err != nil {
			logger.Printf("WARNING: %v", err)
		} else {
			logger.Println("Successfully connected to InfluxDB!")
		}
		return repo, nil
	case config.SinkFile:
		logger.Printf("Using file: %s", cfg.FilePath)
		return NewFileRepository(cfg.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}
