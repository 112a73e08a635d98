package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wb-go/wbf/ginext"
)

// fakeService answers every route with the name of the handler that ran.
type fakeService struct{}

func reply(name string) func(*ginext.Context) {
	return func(c *ginext.Context) { c.String(http.StatusOK, name) }
}

func (fakeService) SubmitRSVP(c *ginext.Context)     { reply("SubmitRSVP")(c) }
func (fakeService) ListRSVPs(c *ginext.Context)      { reply("ListRSVPs")(c) }
func (fakeService) ResetRSVPs(c *ginext.Context)     { reply("ResetRSVPs")(c) }
func (fakeService) ExportCSV(c *ginext.Context)      { reply("ExportCSV")(c) }
func (fakeService) Stats(c *ginext.Context)          { reply("Stats")(c) }
func (fakeService) EventInfo(c *ginext.Context)      { reply("EventInfo")(c) }
func (fakeService) CalendarICS(c *ginext.Context)    { reply("CalendarICS")(c) }
func (fakeService) GoogleCalendar(c *ginext.Context) { reply("GoogleCalendar")(c) }
func (fakeService) Share(c *ginext.Context)          { reply("Share")(c) }
func (fakeService) Invite(c *ginext.Context)         { reply("Invite")(c) }
func (fakeService) QRCode(c *ginext.Context)         { reply("QRCode")(c) }

func TestRoutes(t *testing.T) {
	app := NewRouters(&Routers{Service: fakeService{}})

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/api/rsvp", "SubmitRSVP"},
		{http.MethodGet, "/api/admin/rsvps?secret=x", "ListRSVPs"},
		{http.MethodPost, "/api/admin/reset?secret=x", "ResetRSVPs"},
		{http.MethodGet, "/api/admin/rsvps.csv", "ExportCSV"},
		{http.MethodGet, "/api/admin/stats", "Stats"},
		{http.MethodGet, "/api/event", "EventInfo"},
		{http.MethodGet, "/api/calendar.ics", "CalendarICS"},
		{http.MethodGet, "/api/calendar/google", "GoogleCalendar"},
		{http.MethodGet, "/api/share", "Share"},
		{http.MethodPost, "/api/invite", "Invite"},
		{http.MethodGet, "/api/qr?data=x", "QRCode"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != http.StatusOK || w.Body.String() != tt.want {
				t.Errorf("got %d %q, want %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	app := NewRouters(&Routers{Service: fakeService{}})
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/rsvps/1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
