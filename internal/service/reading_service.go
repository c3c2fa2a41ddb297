package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"time"

	"radmon.influxDB/internal/config"
	"radmon.influxDB/internal/metrics"
	"radmon.influxDB/internal/models"
	"radmon.influxDB/internal/repository"
)

// Query parameter names sent by the GMC firmware. Matching is case-sensitive.
const (
	ParamCPM  = "CPM"
	ParamACPM = "ACPM"
	ParamUSV  = "uSV"
)

// ReadingService validates incoming readings and hands them to the sink.
type ReadingService struct {
	sink    repository.Sink
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewReadingService creates a new ReadingService. m may be nil.
func NewReadingService(cfg *config.Config, sink repository.Sink, logger *log.Logger, m *metrics.Metrics) *ReadingService {
	return &ReadingService{
		sink:    sink,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// ParseReading extracts CPM, ACPM and uSV from the query. When a key repeats the
// last value wins. The returned error is always a models.APIError.
func ParseReading(query url.Values, now time.Time) (models.Reading, error) {
	cpm, err := parseParam(query, ParamCPM)
	if err != nil {
		return models.Reading{}, err
	}
	acpm, err := parseParam(query, ParamACPM)
	if err != nil {
		return models.Reading{}, err
	}
	usv, err := parseParam(query, ParamUSV)
	if err != nil {
		return models.Reading{}, err
	}
	return models.NewReading(now, cpm, acpm, usv), nil
}

func parseParam(query url.Values, key string) (float64, error) {
	values := query[key]
	if len(values) == 0 {
		return 0, models.NewParameterError(models.ErrorCodeMissingParameter, key, fmt.Sprintf("%s is required", key))
	}
	raw := values[len(values)-1]
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, models.NewParameterError(models.ErrorCodeInvalidFormat, key, fmt.Sprintf("%s must be a finite number, got %q", key, raw))
	}
	return v, nil
}

// Ingest parses the query and records the reading. Validation failures are
// returned as models.APIError; anything else comes from the sink.
func (s *ReadingService) Ingest(ctx context.Context, query url.Values) (models.Reading, error) {
	reading, err := ParseReading(query, s.now())
	if err != nil {
		s.metrics.ObserveRequest(metrics.ResultInvalid)
		s.logger.Printf("ERROR: %v", err)
		return models.Reading{}, err
	}

	if err := s.Record(ctx, reading); err != nil {
		return reading, err
	}
	return reading, nil
}

// Record writes one reading under the configured write timeout and logs the outcome.
func (s *ReadingService) Record(ctx context.Context, reading models.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := s.sink.Record(ctx, reading)
	s.metrics.ObserveSinkWrite(s.sink.Name(), err, time.Since(start))
	if err != nil {
		s.metrics.ObserveRequest(metrics.ResultSinkError)
		s.logger.Printf("ERROR: %v", err)
		return err
	}

	s.metrics.ObserveRequest(metrics.ResultOK)
	for _, dp := range reading.Fields() {
		s.metrics.SetLastReading(dp.Field, dp.Value)
	}
	s.logger.Printf("REQUEST: %s", reading.CSV())
	return nil
}
