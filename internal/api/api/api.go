package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"egasrsvp/cmd/middleware"
	"egasrsvp/internal/service"
)

type Routers struct {
	Service service.Service
	// StaticDir, when set, serves the landing page build at /.
	StaticDir string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/api")

	apiGroup.POST("/rsvp", r.Service.SubmitRSVP)
	apiGroup.GET("/event", r.Service.EventInfo)
	apiGroup.GET("/calendar.ics", r.Service.CalendarICS)
	apiGroup.GET("/calendar/google", r.Service.GoogleCalendar)
	apiGroup.GET("/share", r.Service.Share)
	apiGroup.POST("/invite", r.Service.Invite)
	apiGroup.GET("/qr", r.Service.QRCode)

	adminGroup := apiGroup.Group("/admin")
	adminGroup.GET("/rsvps", r.Service.ListRSVPs)
	adminGroup.POST("/reset", r.Service.ResetRSVPs)
	adminGroup.GET("/rsvps.csv", r.Service.ExportCSV)
	adminGroup.GET("/stats", r.Service.Stats)

	if r.StaticDir != "" {
		app.GET("/", func(c *ginext.Context) {
			c.File(r.StaticDir + "/index.html")
		})
		app.GET("/admin", func(c *ginext.Context) {
			c.File(r.StaticDir + "/admin.html")
		})
		app.Static("/static", r.StaticDir)
	}

	return app
}
