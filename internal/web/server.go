// Package web serves the browser landing page and the rain stream that
// paints its background canvas.
package web

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jallerangel/portfolio/internal/content"
	"github.com/jallerangel/portfolio/internal/rain"
	"github.com/jallerangel/portfolio/internal/session"
	"github.com/jallerangel/portfolio/internal/visits"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"accent": func(t content.Technology) string { return t.Accent().Hex() },
}).Parse(indexHTML))

// Options configures a Server.
type Options struct {
	SSHHost  string // Host shown in the "ssh ..." command
	SSHPort  string
	Registry session.Registry
	Visits   *visits.Store // Optional; nil disables visit counting
	Logger   *log.Logger
	Ticker   rain.TickerFunc // Rain timer factory; rain.DefaultTicker if nil
}

// Server is the landing page HTTP handler.
type Server struct {
	sshHost  string
	sshPort  string
	registry session.Registry
	visits   *visits.Store
	logger   *log.Logger
	ticker   rain.TickerFunc
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

// New builds a server and its routes.
func New(opts Options) *Server {
	srv := &Server{
		sshHost:  opts.SSHHost,
		sshPort:  opts.SSHPort,
		registry: opts.Registry,
		visits:   opts.Visits,
		logger:   opts.Logger,
		ticker:   opts.Ticker,
		upgrader: newUpgrader(),
	}
	if srv.logger == nil {
		srv.logger = log.Default()
	}
	if srv.registry == nil {
		srv.registry = session.NewHub()
	}

	r := gin.New()
	r.Use(gin.Recovery(), srv.requestLogger())
	r.SetHTMLTemplate(indexTemplate)

	r.GET("/", srv.trackVisit(), srv.handleIndex)
	r.GET("/healthz", srv.handleHealth)
	r.GET("/ws/rain", srv.handleRain)

	srv.engine = r
	return srv
}

// Handler returns the server's HTTP handler.
func (srv *Server) Handler() http.Handler {
	return srv.engine
}

// SSHCommand is the command visitors copy to open the terminal version.
func (srv *Server) SSHCommand() string {
	if srv.sshPort == "" || srv.sshPort == "22" {
		return "ssh " + srv.sshHost
	}
	return "ssh " + srv.sshHost + " -p " + srv.sshPort
}

func (srv *Server) handleIndex(c *gin.Context) {
	visitCount, uniqueCount, lastVisit := "", "", ""
	if srv.visits != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if n, err := srv.visits.Count(ctx); err == nil {
			visitCount = humanize.Comma(n)
		} else {
			srv.logger.Warn("count visits", "err", err)
		}
		if n, err := srv.visits.Unique(ctx); err == nil {
			uniqueCount = humanize.Comma(n)
		} else {
			srv.logger.Warn("count unique visitors", "err", err)
		}
		if v, err := srv.visits.Last(ctx); err == nil {
			lastVisit = humanize.Time(v.At)
		} else if !errors.Is(err, visits.ErrNoVisits) {
			srv.logger.Warn("last visit", "err", err)
		}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Name":         content.Profile.Name,
		"Title":        content.TitleAt(0),
		"Titles":       content.Profile.Titles,
		"Summary":      content.Profile.Summary,
		"Links":        content.Profile.Links,
		"Technologies": content.Technologies,
		"Timeline":     content.Timeline,
		"SSHCommand":   srv.SSHCommand(),
		"Visits":       visitCount,
		"Unique":       uniqueCount,
		"LastVisit":    lastVisit,
		"Online":       srv.registry.Active(),
	})
}

func (srv *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"sessions":              srv.registry.Active(),
		"sessions_by_transport": srv.registry.ActiveByTransport(),
	})
}

// trackVisit records a page view before the page renders, so the count it
// shows includes the current visitor. Do Not Track is honoured.
func (srv *Server) trackVisit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if srv.visits == nil || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}
		_, err := srv.visits.Record(c.Request.Context(), visits.Visit{
			Transport: "web",
			Addr:      c.ClientIP(),
		})
		if err != nil {
			srv.logger.Warn("record visit", "err", err)
		}
		c.Next()
	}
}

// requestLogger logs each request through the structured logger in place
// of gin's default text logger.
func (srv *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/healthz" {
			return
		}
		srv.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", strconv.Itoa(c.Writer.Status()),
			"duration", time.Since(start),
			"remote", c.ClientIP(),
		)
	}
}
