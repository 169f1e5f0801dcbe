package entity

import "time"

// SensorReading is one sample from the field sensor array.
type SensorReading struct {
	ID          int64     `json:"id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Moisture    float64   `json:"moisture"`
	RecordedAt  time.Time `json:"recordedAt"`
}
