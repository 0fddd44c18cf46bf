// FilePath: internal/models/models.snapshot.go
package models

import "time"

// SensorSnapshot is one full sensor-state record as served by the backend
type SensorSnapshot struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Sensors   SensorReadings `json:"sensors"`
}

// SnapshotEnvelope is the body of GET /sensor
type SnapshotEnvelope struct {
	Data []SensorSnapshot `json:"data"`
}

// LatestReadings holds the derived summary values of the current snapshot
type LatestReadings struct {
	Door   *Reading `json:"door"`
	Motion *Reading `json:"motion"`
}

// For returns the latest reading of the given sensor, nil when unknown
func (l LatestReadings) For(t SensorType) *Reading {
	switch t {
	case DoorSensor:
		return l.Door
	case MotionSensor:
		return l.Motion
	}
	return nil
}

// Current returns the first snapshot of a list, which is always the current state.
func Current(snapshots []SensorSnapshot) (SensorSnapshot, bool) {
	if len(snapshots) == 0 {
		return SensorSnapshot{}, false
	}
	return snapshots[0], true
}

// DeriveLatest computes both LatestReadings from the current snapshot of the list.
func DeriveLatest(snapshots []SensorSnapshot) LatestReadings {
	current, ok := Current(snapshots)
	if !ok {
		return LatestReadings{}
	}
	return LatestReadings{
		Door:   LatestReading(current.Sensors.Door),
		Motion: LatestReading(current.Sensors.Motion),
	}
}

// DeriveMotionSeries returns the chart series of the current snapshot.
func DeriveMotionSeries(snapshots []SensorSnapshot) []ChartPoint {
	current, ok := Current(snapshots)
	if !ok {
		return []ChartPoint{}
	}
	return MotionSeries(current.Sensors.Motion)
}
