// FilePath: internal/models/models.sensor.go
package models

import (
	"sort"
	"time"
)

type SensorType string

const (
	DoorSensor   SensorType = "PINTU"
	MotionSensor SensorType = "GERAK"
)

// SensorValue is the raw value the backend reports for a reading
type SensorValue string

const (
	DoorOpen       SensorValue = "TERBUKA"
	DoorClosed     SensorValue = "TERTUTUP"
	MotionDetected SensorValue = "GERAK"
	MotionStill    SensorValue = "DIAM"
)

// Numeric maps a motion value onto the chart's y axis: 1 for motion, 0 for anything else.
func (v SensorValue) Numeric() int {
	if v == MotionDetected {
		return 1
	}
	return 0
}

// Reading is a single timestamped sensor observation
type Reading struct {
	Type      SensorType  `json:"type"`
	Value     SensorValue `json:"value"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SensorReadings groups the reading sequences of one snapshot by sensor type
type SensorReadings struct {
	Door   []Reading `json:"pintu"`
	Motion []Reading `json:"gerak"`
}

// SortReadings returns a copy of readings ordered ascending by CreatedAt.
// The backend does not guarantee ordering; equal timestamps keep their input order.
func SortReadings(readings []Reading) []Reading {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// LatestReading returns the chronologically last reading, or nil for an empty sequence.
func LatestReading(readings []Reading) *Reading {
	if len(readings) == 0 {
		return nil
	}
	sorted := SortReadings(readings)
	latest := sorted[len(sorted)-1]
	return &latest
}

// ChartPoint is one motion sample on the history chart
type ChartPoint struct {
	CreatedAt time.Time `json:"createdAt"`
	Value     int       `json:"value"`
}

// MotionSeries maps a motion sequence to chart points in ascending time order.
// Every reading becomes exactly one point.
func MotionSeries(readings []Reading) []ChartPoint {
	sorted := SortReadings(readings)
	points := make([]ChartPoint, 0, len(sorted))
	for _, r := range sorted {
		points = append(points, ChartPoint{CreatedAt: r.CreatedAt, Value: r.Value.Numeric()})
	}
	return points
}
