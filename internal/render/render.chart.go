package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/itsatony/roomwatch/internal/models"
)

const (
	chartWidth   = 1000.0
	chartHeight  = 300.0
	chartPadX    = 24.0
	chartPadTop  = 16.0
	chartPadBase = 32.0

	// MinTickGap is the smallest horizontal distance between two x-axis labels
	MinTickGap = 50.0
)

// PlotPoint is a chart point in SVG coordinates
type PlotPoint struct {
	X, Y  float64
	Value int
	Title string
}

// Tick is an x-axis label
type Tick struct {
	X     float64
	Label string
}

// Chart is the geometry of the motion area chart
type Chart struct {
	Width, Height float64
	Left, Right   float64
	TickY         float64
	GridLines     []float64
	Points        []PlotPoint
	LinePath      string
	AreaPath      string
	Ticks         []Tick
	Legend        string
}

// TickLabel formats t the way axis ticks and tooltips show it, e.g. "Jun 2"
func TickLabel(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("Jan 2")
}

// BuildChart lays out every point of series as a linear area and line.
// x is proportional to time; GERAK sits on the top line, everything else on the baseline.
func BuildChart(series []models.ChartPoint, loc *time.Location) Chart {
	top := chartPadTop
	base := chartHeight - chartPadBase
	c := Chart{
		Width:     chartWidth,
		Height:    chartHeight,
		Left:      chartPadX,
		Right:     chartWidth - chartPadX,
		TickY:     chartHeight - 8,
		GridLines: []float64{top, round((top + base) / 2), base},
		Legend:    "[1] Gerak, [0] Diam",
	}
	if len(series) == 0 {
		return c
	}

	first, last := series[0].CreatedAt, series[len(series)-1].CreatedAt
	span := last.Sub(first)
	width := c.Right - c.Left

	line := make([]string, 0, len(series))
	lastTick := math.Inf(-1)
	for i, p := range series {
		x := c.Left + width/2
		if span > 0 {
			x = c.Left + width*float64(p.CreatedAt.Sub(first))/float64(span)
		}
		y := base
		if p.Value > 0 {
			y = top
		}
		x, y = round(x), round(y)

		label := TickLabel(p.CreatedAt, loc)
		c.Points = append(c.Points, PlotPoint{X: x, Y: y, Value: p.Value, Title: pointTitle(label, p.Value)})

		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		line = append(line, fmt.Sprintf("%s%s,%s", cmd, num(x), num(y)))

		if x-lastTick >= MinTickGap {
			c.Ticks = append(c.Ticks, Tick{X: x, Label: label})
			lastTick = x
		}
	}

	c.LinePath = strings.Join(line, " ")
	firstX, lastX := c.Points[0].X, c.Points[len(c.Points)-1].X
	c.AreaPath = fmt.Sprintf("%s L%s,%s L%s,%s Z", c.LinePath, num(lastX), num(base), num(firstX), num(base))
	return c
}

func pointTitle(label string, value int) string {
	state := "Diam"
	if value > 0 {
		state = "Gerak"
	}
	return fmt.Sprintf("%s\n%s: %d", label, state, value)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
