package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/itsatony/roomwatch/api/resources"
	"github.com/itsatony/roomwatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Backend: config.BackendConfig{URL: "http://backend.local", SensorPath: "/sensor", LoginPath: "/auth/login", Timeout: time.Second},
		Push: config.PushConfig{
			Transport: "socketio",
			Event:     "get",
			SocketIO:  config.SocketIOConfig{Path: "/socket.io/", Namespace: "/", HandshakeTimeout: time.Second},
		},
		Session:   config.SessionConfig{CookieName: "token"},
		Dashboard: config.DashboardConfig{Title: "Monitoring IOT Kamar Mandi", Timezone: "Asia/Jakarta", Placeholder: "Loading...", HeartbeatInterval: time.Second},
	}
}

func TestSetupWithoutStorage(t *testing.T) {
	s := New(testConfig())
	require.NoError(t, s.setup(t.Context()))
	defer s.close()

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupWithRedisCounters(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: port, Prefix: "roomwatch"}

	s := New(cfg)
	require.NoError(t, s.setup(t.Context()))
	defer s.close()

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "1", mr.HGet("roomwatch:events", "logout"))

	rec = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health resources.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "ok", health.Checks["redis"])

	mr.Close()
	rec = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSetupFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

	err := New(cfg).setup(t.Context())
	assert.ErrorContains(t, err, "connect to redis")
}

func TestSetupRejectsUnknownTransport(t *testing.T) {
	cfg := testConfig()
	cfg.Push.Transport = "carrier-pigeon"

	err := New(cfg).setup(t.Context())
	assert.ErrorContains(t, err, "push channel")
}
