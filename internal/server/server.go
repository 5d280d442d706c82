package server

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/teemow/teamsbrief/internal/app"
	"github.com/teemow/teamsbrief/internal/instrumentation"
	"github.com/teemow/teamsbrief/internal/logging"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Pipeline is the summarize-and-email surface the web UI drives.
// *app.App satisfies it; tests substitute fakes.
type Pipeline interface {
	Run(ctx context.Context, opts app.Options) (*app.Result, error)
}

// Config holds settings for the web server.
type Config struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string

	// AllowedOrigins configures CORS. Defaults to all origins.
	AllowedOrigins []string

	// DefaultSubject pre-fills the subject field in the form.
	DefaultSubject string
}

// Server is the web-form frontend for the pipeline.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	pipeline   Pipeline
	config     Config
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// New creates the web server and registers all routes.
func New(pipeline Pipeline, config Config) (*Server, error) {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}
	if config.DefaultSubject == "" {
		config.DefaultSubject = app.DefaultSubject
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(tmpl)
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"OPTIONS", "GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		engine:   engine,
		pipeline: pipeline,
		config:   config,
		logger:   logging.WithService(slog.Default(), "server"),
	}

	engine.Use(s.recordRequest())
	engine.GET("/", s.handleIndex)
	engine.POST("/summarize", s.handleSummarize)
	engine.GET("/healthz", s.handleHealthz)

	return s, nil
}

// SetMetrics attaches an HTTP metrics recorder.
func (s *Server) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting web server", slog.String("addr", s.config.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down web server")
	return s.httpServer.Shutdown(ctx)
}

// recordRequest reports request outcomes to the metrics recorder.
func (s *Server) recordRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		s.metrics.RecordHTTPRequest(c.Request.Context(), c.Request.Method, path,
			c.Writer.Status(), time.Since(start))
	}
}

// formView is the data passed to the index template.
type formView struct {
	DefaultSubject string
	Error          string

	// Re-filled field values after a failed submission.
	MeetingLink string
	Transcript  string
	Recipients  string
	Subject     string
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html.tmpl", formView{
		DefaultSubject: s.config.DefaultSubject,
		Subject:        s.config.DefaultSubject,
	})
}

func (s *Server) handleSummarize(c *gin.Context) {
	opts := app.Options{
		MeetingLink:    strings.TrimSpace(c.PostForm("meeting_link")),
		TranscriptText: strings.TrimSpace(c.PostForm("transcript")),
		Recipients:     app.ParseRecipients(c.PostForm("recipients")),
		Subject:        strings.TrimSpace(c.PostForm("subject")),
	}

	renderError := func(status int, msg string) {
		c.HTML(status, "index.html.tmpl", formView{
			DefaultSubject: s.config.DefaultSubject,
			Error:          msg,
			MeetingLink:    opts.MeetingLink,
			Transcript:     opts.TranscriptText,
			Recipients:     c.PostForm("recipients"),
			Subject:        opts.Subject,
		})
	}

	if err := opts.Validate(); err != nil {
		renderError(http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), opts)
	if err != nil {
		s.logger.Error("pipeline run failed", logging.Err(err))
		renderError(http.StatusBadGateway, err.Error())
		return
	}

	c.HTML(http.StatusOK, "result.html.tmpl", gin.H{
		"MeetingID":  result.MeetingID,
		"Summary":    result.Summary,
		"Recipients": strings.Join(result.Recipients, ", "),
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
