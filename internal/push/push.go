// Package push opens the live update channel a dashboard view listens on.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/models"
)

// Handler receives every snapshot list delivered on the subscribed event
type Handler func(snapshots []models.SensorSnapshot)

// Subscription is one open channel. Close is idempotent and waits for the reader to stop.
type Subscription interface {
	Close() error
	// Done is closed once the channel stops delivering, for whatever reason
	Done() <-chan struct{}
}

// Channel opens subscriptions. There is no reconnection: once Done fires the subscription is over.
type Channel interface {
	Subscribe(ctx context.Context, event string, handler Handler) (Subscription, error)
}

// New builds the configured transport
func New(cfg config.PushConfig, backendURL string) (Channel, error) {
	switch cfg.Transport {
	case "socketio", "":
		return NewSocketIO(cfg.SocketIO, backendURL)
	case "mqtt":
		return NewMQTT(cfg.MQTT), nil
	}
	return nil, fmt.Errorf("unknown push transport %q", cfg.Transport)
}

// DecodeSnapshots parses an event payload carrying SensorSnapshot[]
func DecodeSnapshots(payload []byte) ([]models.SensorSnapshot, error) {
	var snapshots []models.SensorSnapshot
	if err := json.Unmarshal(payload, &snapshots); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return snapshots, nil
}
