// FilePath: internal/push/push.socketio.go
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/itsatony/roomwatch/internal/config"
	nuts "github.com/vaudience/go-nuts"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIO subscribes to Socket.IO events on the backend
type SocketIO struct {
	url              string
	path             string
	handshakeTimeout time.Duration
}

// NewSocketIO resolves the namespace URL from the configured or backend URL
func NewSocketIO(cfg config.SocketIOConfig, backendURL string) (*SocketIO, error) {
	base := cfg.URL
	if base == "" {
		base = backendURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid push url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported push url scheme %q", u.Scheme)
	}

	// the client reads the namespace from the URL path
	ns := strings.Trim(cfg.Namespace, "/")
	u.Path = "/" + ns
	u.RawQuery = ""

	p := cfg.Path
	if p == "" {
		p = "/socket.io/"
	}
	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SocketIO{
		url:              u.String(),
		path:             "/" + strings.Trim(p, "/"),
		handshakeTimeout: timeout,
	}, nil
}

// URL returns the namespace URL the client connects to
func (s *SocketIO) URL() string {
	return s.url
}

func (s *SocketIO) options() *socket.Options {
	opts := socket.DefaultOptions()
	opts.SetPath(s.path)
	opts.SetForceNew(true)
	opts.SetReconnection(false)
	opts.SetAutoConnect(false)
	opts.SetTimeout(s.handshakeTimeout)
	return opts
}

// Subscribe connects to the namespace and delivers every matching event to handler.
// Cancelling ctx closes the subscription.
func (s *SocketIO) Subscribe(ctx context.Context, event string, handler Handler) (Subscription, error) {
	sock, err := socket.Connect(s.url, s.options())
	if err != nil {
		return nil, fmt.Errorf("create push client: %w", err)
	}

	sub := &socketSubscription{sock: sock, done: make(chan struct{})}
	connected := make(chan error, 1)

	sock.On("connect", func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	sock.On("connect_error", func(args ...any) {
		select {
		case connected <- connectError(args):
		default:
		}
		sub.finish()
	})
	sock.On("disconnect", func(args ...any) {
		nuts.L.Infof("[Push] Socket.IO channel ended: %v", args)
		sub.finish()
	})
	sock.On(types.EventName(event), eventListener(event, handler))
	sock.Connect()

	timer := time.NewTimer(s.handshakeTimeout)
	defer timer.Stop()
	select {
	case err := <-connected:
		if err != nil {
			sub.Close()
			return nil, fmt.Errorf("connect push channel %s: %w", s.url, err)
		}
	case <-timer.C:
		sub.Close()
		return nil, fmt.Errorf("connect push channel %s: timed out after %s", s.url, s.handshakeTimeout)
	case <-ctx.Done():
		sub.Close()
		return nil, ctx.Err()
	}
	nuts.L.Infof("[Push] Socket.IO connected id=%s url=%s event=%s", sock.Id(), s.url, event)

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func connectError(args []any) error {
	if len(args) == 0 {
		return fmt.Errorf("connect error")
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return fmt.Errorf("%v", args[0])
}

// eventListener decodes the first event argument as a snapshot list
func eventListener(event string, handler Handler) types.Listener {
	return func(args ...any) {
		if len(args) == 0 {
			nuts.L.Warnf("[Push] Dropping %s event without payload", event)
			return
		}
		raw, err := json.Marshal(args[0])
		if err != nil {
			nuts.L.Warnf("[Push] Dropping %s event: %v", event, err)
			return
		}
		snapshots, err := DecodeSnapshots(raw)
		if err != nil {
			nuts.L.Warnf("[Push] Dropping %s event: %v", event, err)
			return
		}
		handler(snapshots)
	}
}

type socketSubscription struct {
	sock *socket.Socket

	closeOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
}

func (s *socketSubscription) Done() <-chan struct{} {
	return s.done
}

func (s *socketSubscription) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Close leaves the namespace and releases the connection
func (s *socketSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.sock.Disconnect()
		s.finish()
	})
	return nil
}
