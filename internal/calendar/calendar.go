package calendar

import (
	"fmt"
	"net/url"
	"time"

	ics "github.com/arran4/golang-ical"

	"egasrsvp/internal/event"
)

const (
	stampLayout = "20060102T150405Z"
	googleURL   = "https://calendar.google.com/calendar/render"

	FileName    = "evento.ics"
	ContentType = "text/calendar; charset=utf-8"
)

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// ICS renders e as a single-event iCalendar file. now is written as DTSTAMP.
// Text values are escaped and long lines folded by the ics package.
func ICS(e event.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId("-//Event//EN")
	cal.SetMethod(ics.MethodPublish)

	ev := cal.AddEvent(stamp(e.Start) + "-convite@egasrsvp")
	ev.SetDtStampTime(now)
	ev.SetStartAt(e.Start)
	ev.SetEndAt(e.End())
	ev.SetSummary(e.Title)
	ev.SetLocation(e.Location)
	if e.BookTitle != "" {
		ev.SetDescription(fmt.Sprintf("%s - %s", e.BookTitle, e.Author))
	}
	return cal.Serialize()
}

// GoogleLink is the "add to Google Calendar" template link for e.
func GoogleLink(e event.Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", e.Title)
	q.Set("dates", stamp(e.Start)+"/"+stamp(e.End()))
	q.Set("location", e.Location)
	return googleURL + "?" + q.Encode()
}
