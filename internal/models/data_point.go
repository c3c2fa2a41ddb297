package models

// DataPoint is a single named field of a reading, as written to the time-series store.
type DataPoint struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
}
