package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Field names used for the three values a sensor reports.
const (
	FieldCPM  = "cpm"
	FieldACPM = "acpm"
	FieldUSV  = "usv"
)

// Reading is one telemetry push from the radiation monitor.
type Reading struct {
	Timestamp int64   `json:"timestamp"` // unix seconds, assigned at receipt
	CPM       float64 `json:"cpm"`
	ACPM      float64 `json:"acpm"`
	USV       float64 `json:"usv"`
}

// NewReading stamps the values with t truncated to whole seconds.
func NewReading(t time.Time, cpm, acpm, usv float64) Reading {
	return Reading{Timestamp: t.Unix(), CPM: cpm, ACPM: acpm, USV: usv}
}

// Time returns the receipt time of the reading.
func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// Fields fans the reading out into one data point per field, in cpm, acpm, usv order.
func (r Reading) Fields() []DataPoint {
	return []DataPoint{
		{Field: FieldCPM, Value: r.CPM},
		{Field: FieldACPM, Value: r.ACPM},
		{Field: FieldUSV, Value: r.USV},
	}
}

// CSV renders the reading as "timestamp,cpm,acpm,usv" without a trailing newline.
// Values use the shortest representation that parses back to the same float64.
func (r Reading) CSV() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.Timestamp, 10))
	for _, p := range r.Fields() {
		b.WriteByte(',')
		b.WriteString(FormatValue(p.Value))
	}
	return b.String()
}

// FormatValue formats v in plain decimal notation without losing precision.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseCSV is the inverse of CSV.
func ParseCSV(line string) (Reading, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(parts) != 4 {
		return Reading{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid timestamp %q: %w", parts[0], err)
	}
	var vals [3]float64
	for i, raw := range parts[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Reading{}, fmt.Errorf("invalid value %q: %w", raw, err)
		}
		vals[i] = v
	}
	return Reading{Timestamp: ts, CPM: vals[0], ACPM: vals[1], USV: vals[2]}, nil
}
