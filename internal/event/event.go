package event

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultDuration = 2 * time.Hour
)

var (
	shortMonths = [...]string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}
	longMonths  = [...]string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho", "Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}
)

// Event describes the one ceremony this service takes confirmations for.
type Event struct {
	Title     string        `json:"title"`
	BookTitle string        `json:"bookTitle"`
	Author    string        `json:"author"`
	Location  string        `json:"location"`
	Start     time.Time     `json:"start"`
	Duration  time.Duration `json:"-"`
	PageURL   string        `json:"pageUrl,omitempty"`
}

// Config is the raw form of Event as it appears in config.yaml.
type Config struct {
	Title     string
	BookTitle string
	Author    string
	Location  string
	Date      string
	Time      string
	Timezone  string
	Duration  time.Duration
	PageURL   string
}

// New resolves the date, time and timezone strings of cfg.
func New(cfg Config) (Event, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Event{}, fmt.Errorf("load event timezone %q: %w", tz, err)
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, cfg.Date+" "+cfg.Time, loc)
	if err != nil {
		return Event{}, fmt.Errorf("parse event start: %w", err)
	}
	d := cfg.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	return Event{
		Title:     cfg.Title,
		BookTitle: cfg.BookTitle,
		Author:    cfg.Author,
		Location:  cfg.Location,
		Start:     start,
		Duration:  d,
		PageURL:   cfg.PageURL,
	}, nil
}

// Default is the launch ceremony of the Santos Egas Moniz manual.
func Default() Event {
	e, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return e
}

func DefaultConfig() Config {
	return Config{
		Title:     "Cerimónia de Lançamento Oficial da Obra",
		BookTitle: "Manual de Gestão e Redacção de Documentos Oficiais e Pareceres Técnicos",
		Author:    "Santos Egas Moniz",
		Location:  "ENAPP – Escola Nacional de Administração e Políticas Públicas",
		Date:      "2026-03-05",
		Time:      "15:00",
		Timezone:  "Africa/Luanda",
		Duration:  DefaultDuration,
	}
}

func (e Event) End() time.Time {
	return e.Start.Add(e.Duration)
}

// Footer is the date line printed on invitations, e.g. "05 MAR 2026 | 15:00".
func (e Event) Footer() string {
	return fmt.Sprintf("%02d %s %d | %s", e.Start.Day(), shortMonths[e.Start.Month()-1], e.Start.Year(), e.Start.Format(TimeLayout))
}

// LongDate is the date as written in emails, e.g. "05 de Março de 2026".
func (e Event) LongDate() string {
	return fmt.Sprintf("%02d de %s de %d", e.Start.Day(), longMonths[e.Start.Month()-1], e.Start.Year())
}

func (e Event) Clock() string {
	return e.Start.Format(TimeLayout)
}

// Countdown is the time left until the start, never negative.
type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (e Event) CountdownAt(now time.Time) Countdown {
	diff := e.Start.Sub(now)
	if diff <= 0 {
		return Countdown{}
	}
	secs := int(diff / time.Second)
	return Countdown{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

// ShareLinks are the prefilled links offered in the share dialog.
type ShareLinks struct {
	Page     string `json:"page"`
	Text     string `json:"text"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
}

func (e Event) ShareText() string {
	return fmt.Sprintf("%s - %s por %s. %s às %s", e.Title, e.BookTitle, e.Author, e.Start.Format(DateLayout), e.Clock())
}

// Share builds the share links for pageURL, falling back to the configured page.
func (e Event) Share(pageURL string) ShareLinks {
	if pageURL == "" {
		pageURL = e.PageURL
	}
	text := e.ShareText()
	return ShareLinks{
		Page:     pageURL,
		Text:     text,
		WhatsApp: "https://wa.me/?text=" + url.QueryEscape(text+" "+pageURL),
		Email:    "mailto:?subject=" + escapeComponent(e.Title) + "&body=" + escapeComponent(text),
	}
}

// escapeComponent escapes like encodeURIComponent; mail clients do not decode "+".
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
