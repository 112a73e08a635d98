package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"egasrsvp/internal/event"
)

// unfold joins folded content lines back together.
func unfold(ics string) string {
	return strings.ReplaceAll(ics, "\r\n ", "")
}

func TestICS(t *testing.T) {
	e := event.Default()
	now := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)

	ics := unfold(ICS(e, now))

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Fatalf("ICS not wrapped in VCALENDAR:\n%s", ics)
	}
	for _, want := range []string{
		"DTSTART:20260305T140000Z",
		"DTEND:20260305T160000Z",
		"DTSTAMP:20260110T093000Z",
		"SUMMARY:Cerimónia de Lançamento Oficial da Obra",
	} {
		if !strings.Contains(ics, want+"\r\n") {
			t.Errorf("ICS missing %q", want)
		}
	}
}

func TestICSEscapesText(t *testing.T) {
	e := event.Default()
	e.Location = "Sala 1, Piso 2; Luanda"

	ics := unfold(ICS(e, time.Now()))
	if !strings.Contains(ics, `LOCATION:Sala 1\, Piso 2\; Luanda`) {
		t.Errorf("location not escaped:\n%s", ics)
	}
}

func TestICSFoldsLongLines(t *testing.T) {
	e := event.Default()
	ics := ICS(e, time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC))

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Errorf("%d-octet content line %q", len(line), line)
		}
		if !utf8.ValidString(line) {
			t.Errorf("line split inside a character: %q", line)
		}
	}

	full := unfold(ics)
	for _, want := range []string{
		"LOCATION:" + e.Location + "\r\n",
		"DESCRIPTION:" + e.BookTitle + " - " + e.Author + "\r\n",
	} {
		if !strings.Contains(full, want) {
			t.Errorf("unfolded ICS missing %q", want)
		}
	}
}

func TestGoogleLink(t *testing.T) {
	e := event.Default()

	u, err := url.Parse(GoogleLink(e))
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if u.Host != "calendar.google.com" || u.Path != "/calendar/render" {
		t.Errorf("unexpected link %s", u)
	}
	q := u.Query()
	if q.Get("action") != "TEMPLATE" {
		t.Errorf("action = %q", q.Get("action"))
	}
	if q.Get("dates") != "20260305T140000Z/20260305T160000Z" {
		t.Errorf("dates = %q", q.Get("dates"))
	}
	if q.Get("text") != e.Title || q.Get("location") != e.Location {
		t.Errorf("text/location not round-tripped: %v", q)
	}
}
