// Package web is the Gin server: routes, middleware and the HTML views for
// the login screen and the events manager.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Maheen-M02/Event-Management/internal/config"
	"github.com/Maheen-M02/Event-Management/internal/events"
	"github.com/Maheen-M02/Event-Management/internal/models"
	"github.com/Maheen-M02/Event-Management/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "sid"

type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *session.Registry
	probe    *events.Probe
	router   *gin.Engine
}

func NewServer(cfg *config.Config, registry *session.Registry, probe *events.Probe, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		registry: registry,
		probe:    probe,
	}

	r := gin.Default()
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"formdate": func(e *models.Event) string {
			if e == nil {
				return ""
			}
			return e.Date.Format(models.FormDateTime)
		},
	}).ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)
	r.Use(RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.POST("/register", s.register)

	api := r.Group("/api")
	{
		api.GET("/status", s.status)
		api.POST("/status/retry", s.statusRetry)
	}

	authed := r.Group("/")
	authed.Use(s.requireSession())
	{
		authed.GET("/", s.eventsPage)
		authed.POST("/logout", s.logout)

		authed.POST("/events", s.createEvent)
		authed.POST("/events/refresh", s.refreshEvents)
		authed.GET("/events/new", s.openCreateForm)
		authed.GET("/events/cancel", s.cancelForm)
		authed.GET("/events/:id/edit", s.openEditForm)
		authed.POST("/events/:id", s.updateEvent)
		authed.POST("/events/:id/delete", s.deleteEvent)

		authed.POST("/errors/dismiss", s.dismissError)
	}

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.log.Info("listening", "addr", s.cfg.Listen)
	return s.router.Run(s.cfg.Listen)
}

// requireSession resolves the session cookie to a live, authenticated entry
// and stashes it in the request context; everything else bounces to /login.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		entry, ok := s.registry.Get(sid)
		if !ok {
			c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		user, state := entry.Controller.User()
		if state != session.StateAuthenticated || user == nil {
			s.registry.Remove(sid)
			c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set("sid", sid)
		c.Set("entry", entry)
		c.Set("user", user)
		c.Next()
	}
}

func currentEntry(c *gin.Context) *session.Entry {
	return c.MustGet("entry").(*session.Entry)
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}
