// Package sse writes Server-Sent Events frames.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Prepare writes the event-stream headers and the 200 status
func Prepare(w http.ResponseWriter) error {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return Send(w)
}

// AddEvent writes an event to w without flushing it.
// Multi-line data is split into one data field per line.
func AddEvent(w io.Writer, event string, data string) error {
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if len(data) == 0 {
		_, err := w.Write([]byte("data: \n\n"))
		return err
	}

	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintf(w, "data: %s\n", scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n"))
	return err
}

// AddRetry tells the browser how long to wait before reconnecting
func AddRetry(w io.Writer, d time.Duration) error {
	_, err := fmt.Fprintf(w, "retry: %d\n\n", d.Milliseconds())
	return err
}

// Send flushes queued events
func Send(w http.ResponseWriter) error {
	return http.NewResponseController(w).Flush()
}

// SendEvent adds an event and flushes it together with anything queued before
func SendEvent(w http.ResponseWriter, event string, data string) error {
	if err := AddEvent(w, event, data); err != nil {
		return err
	}
	return Send(w)
}
