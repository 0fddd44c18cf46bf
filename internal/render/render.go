// Package render turns dashboard state into HTML pages and stream fragments.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds the parsed templates and display settings
type Renderer struct {
	tmpl        *template.Template
	loc         *time.Location
	title       string
	placeholder string
}

// LoginPage is the data for the login screen
type LoginPage struct {
	Title    string
	Action   string
	Flash    string
	Error    string
	Username string
}

// DashboardPage is the data for the dashboard shell
type DashboardPage struct {
	Title        string
	Placeholder  string
	DashboardURL string
	StreamURL    string
	LogoutURL    string
}

func New(cfg config.DashboardConfig) (*Renderer, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = "Loading..."
	}
	return &Renderer{tmpl: tmpl, loc: loc, title: cfg.Title, placeholder: placeholder}, nil
}

func (r *Renderer) Placeholder() string { return r.placeholder }

func (r *Renderer) Login(w io.Writer, page LoginPage) error {
	if page.Title == "" {
		page.Title = r.title
	}
	if page.Action == "" {
		page.Action = "/login"
	}
	return r.tmpl.ExecuteTemplate(w, "login", page)
}

func (r *Renderer) Dashboard(w io.Writer, page DashboardPage) error {
	if page.Title == "" {
		page.Title = r.title
	}
	if page.Placeholder == "" {
		page.Placeholder = r.placeholder
	}
	return r.tmpl.ExecuteTemplate(w, "dashboard", page)
}

// Cards renders the summary cards fragment
func (r *Renderer) Cards(latest models.LatestReadings) (string, error) {
	return r.fragment("cards", BuildCards(latest, r.loc, r.placeholder))
}

// Chart renders the motion chart fragment
func (r *Renderer) Chart(series []models.ChartPoint) (string, error) {
	return r.fragment("chart", BuildChart(series, r.loc))
}

func (r *Renderer) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
