package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(config.DashboardConfig{
		Title:       "Monitoring IOT Kamar Mandi",
		Timezone:    "Asia/Jakarta",
		Placeholder: "Loading...",
	})
	require.NoError(t, err)
	return r
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 6, 2, 8, 2, 5, 0, time.UTC)
	assert.Equal(t, "Senin, 2 Juni 2025 15.02.05 WIB", FormatTimestamp(ts, jakarta(t)))
	assert.Equal(t, "Senin, 2 Juni 2025 08.02.05 UTC", FormatTimestamp(ts, time.UTC))
}

func TestBuildCardsPlaceholders(t *testing.T) {
	cards := BuildCards(models.LatestReadings{}, time.UTC, "Loading...")
	require.Len(t, cards, 2)
	assert.Equal(t, "Sensor Pintu", cards[0].Label)
	assert.Equal(t, "Sensor Gerak", cards[1].Label)
	for _, c := range cards {
		assert.Equal(t, "Loading...", c.Value)
		assert.Equal(t, "Loading...", c.Timestamp)
	}
}

func TestBuildCardsWithReadings(t *testing.T) {
	ts := time.Date(2025, 6, 2, 8, 2, 0, 0, time.UTC)
	cards := BuildCards(models.LatestReadings{
		Door: &models.Reading{Type: models.DoorSensor, Value: models.DoorOpen, CreatedAt: ts},
	}, jakarta(t), "Loading...")

	assert.Equal(t, "TERBUKA", cards[0].Value)
	assert.Equal(t, "Senin, 2 Juni 2025 15.02.00 WIB", cards[0].Timestamp)
	assert.Equal(t, "Loading...", cards[1].Value)
}

func TestBuildChartEmpty(t *testing.T) {
	c := BuildChart(nil, time.UTC)
	assert.Empty(t, c.Points)
	assert.Empty(t, c.LinePath)
	assert.Empty(t, c.Ticks)
}

func TestBuildChartSinglePoint(t *testing.T) {
	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	c := BuildChart([]models.ChartPoint{{CreatedAt: ts, Value: 1}}, time.UTC)

	require.Len(t, c.Points, 1)
	assert.Equal(t, (c.Left+c.Right)/2, c.Points[0].X)
	assert.Equal(t, chartPadTop, c.Points[0].Y)
	assert.Equal(t, "M500,16", c.LinePath)
	assert.Equal(t, "M500,16 L500,268 L500,268 Z", c.AreaPath)
	require.Len(t, c.Ticks, 1)
	assert.Equal(t, "Jun 2", c.Ticks[0].Label)
	assert.Equal(t, "Jun 2\nGerak: 1", c.Points[0].Title)
}

func TestBuildChartGeometry(t *testing.T) {
	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	series := []models.ChartPoint{
		{CreatedAt: ts, Value: 0},
		{CreatedAt: ts.Add(time.Hour), Value: 1},
		{CreatedAt: ts.Add(4 * time.Hour), Value: 0},
	}
	c := BuildChart(series, time.UTC)

	require.Len(t, c.Points, 3)
	assert.Equal(t, c.Left, c.Points[0].X)
	assert.Equal(t, c.Right, c.Points[2].X)
	assert.Equal(t, 262.0, c.Points[1].X)
	assert.Equal(t, c.Height-chartPadBase, c.Points[0].Y)
	assert.Equal(t, chartPadTop, c.Points[1].Y)
	assert.True(t, strings.HasPrefix(c.LinePath, "M24,268 L262,16 L976,268"))
	assert.True(t, strings.HasSuffix(c.AreaPath, "Z"))
}

func TestBuildChartKeepsEveryPointAndTickGap(t *testing.T) {
	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	var series []models.ChartPoint
	for i := 0; i < 200; i++ {
		series = append(series, models.ChartPoint{CreatedAt: ts.Add(time.Duration(i) * time.Minute), Value: i % 2})
	}
	c := BuildChart(series, time.UTC)

	assert.Len(t, c.Points, 200)
	require.NotEmpty(t, c.Ticks)
	assert.Less(t, len(c.Ticks), 200)
	for i := 1; i < len(c.Ticks); i++ {
		assert.GreaterOrEqual(t, c.Ticks[i].X-c.Ticks[i-1].X, MinTickGap)
	}
}

func TestTickLabelUsesLocation(t *testing.T) {
	late := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "Jun 2", TickLabel(late, time.UTC))
	assert.Equal(t, "Jun 3", TickLabel(late, jakarta(t)))
}

func TestRendererFragments(t *testing.T) {
	r := newRenderer(t)

	cards, err := r.Cards(models.LatestReadings{})
	require.NoError(t, err)
	assert.Contains(t, cards, "Sensor Pintu")
	assert.Contains(t, cards, "Sensor Gerak")
	assert.Equal(t, 4, strings.Count(cards, "Loading..."))

	chart, err := r.Chart([]models.ChartPoint{{CreatedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), Value: 1}})
	require.NoError(t, err)
	assert.Contains(t, chart, "<svg")
	assert.Contains(t, chart, `d="M500,16"`)
	assert.Contains(t, chart, "<title>Jun 2")
}

func TestRendererPages(t *testing.T) {
	r := newRenderer(t)

	var login bytes.Buffer
	require.NoError(t, r.Login(&login, LoginPage{Flash: "Terjadi kesalahan", Username: "<budi>"}))
	assert.Contains(t, login.String(), "Terjadi kesalahan")
	assert.Contains(t, login.String(), `action="/login"`)
	assert.Contains(t, login.String(), "&lt;budi&gt;")
	assert.Contains(t, login.String(), "<title>Monitoring IOT Kamar Mandi</title>")

	var dash bytes.Buffer
	require.NoError(t, r.Dashboard(&dash, DashboardPage{DashboardURL: "/dashboard", StreamURL: "/dashboard/stream", LogoutURL: "/logout"}))
	assert.Contains(t, dash.String(), `<p id="loading">Loading...</p>`)
	assert.Contains(t, dash.String(), `action="/logout"`)
	assert.Contains(t, dash.String(), "EventSource")
	assert.Contains(t, dash.String(), "Keluar")
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New(config.DashboardConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)
}
