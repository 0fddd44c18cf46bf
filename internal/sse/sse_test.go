package sse

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  string
		data   string
		wanted string
	}{
		{"empty", "", "", "data: \n\n"},
		{"one line", "", "test on only one line", "data: test on only one line\n\n"},
		{"one line with event", "cards", "<div>x</div>", "event: cards\ndata: <div>x</div>\n\n"},
		{"multiple lines", "", "a\nb\nc", "data: a\ndata: b\ndata: c\n\n"},
		{"multiple lines with event", "chart", "<svg>\n</svg>", "event: chart\ndata: <svg>\ndata: </svg>\n\n"},
		{"heartbeat", "heartbeat", "", "event: heartbeat\ndata: \n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &bytes.Buffer{}
			require.NoError(t, AddEvent(w, tt.event, tt.data))
			assert.Equal(t, tt.wanted, w.String())
		})
	}
}

func TestAddRetry(t *testing.T) {
	w := &bytes.Buffer{}
	require.NoError(t, AddRetry(w, 3*time.Second))
	assert.Equal(t, "retry: 3000\n\n", w.String())
}

func TestPrepareAndSend(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Prepare(rec))
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, rec.Flushed)

	require.NoError(t, SendEvent(rec, "redirect", "/login"))
	assert.Equal(t, "event: redirect\ndata: /login\n\n", rec.Body.String())
}
