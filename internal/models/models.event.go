// FilePath: internal/models/models.event.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSON is a wrapper around map[string]string for database storage
type JSON map[string]string

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// DashboardEvent is an audit record of something a dashboard user or view did
type DashboardEvent struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Labels    JSON      `json:"labels" db:"labels"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
