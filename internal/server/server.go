// Package server exposes the query engine and the preset store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/config"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
	"github.com/rebeliceyang/lazyfacet/internal/query"
	"github.com/rebeliceyang/lazyfacet/internal/source"
)

// Server serves queries over a loaded record set and manages presets
type Server struct {
	cfg          *config.Config
	engine       *query.Engine
	store        *presets.Store
	records      []source.Record
	fields       []models.FieldDescriptor
	searchFields []string
	logger       *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithRecords sets the records queried when a request carries none
func WithRecords(records []source.Record) Option {
	return func(s *Server) {
		s.records = records
		s.fields = source.DescribeFields(records)
	}
}

// WithPresets enables the preset endpoints
func WithPresets(store *presets.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server running queries on engine
func New(cfg *config.Config, engine *query.Engine, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	if engine == nil {
		engine = query.NewEngine()
	}
	s := &Server{
		cfg:          cfg,
		engine:       engine,
		searchFields: cfg.General.SearchFields,
		logger:       engine.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(Recovery(s.logger))
	r.Use(RequestLogger(s.logger))
	r.Use(BodyLimit(s.cfg.Server.MaxBody))

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.POST("/query", s.runQuery)
	api.GET("/fields", s.listFields)
	api.GET("/fields/operators", s.listOperators)

	presetRoutes := api.Group("/presets")
	presetRoutes.Use(s.requireStore())
	{
		presetRoutes.GET("", s.listPresets)
		presetRoutes.GET("/:id", s.getPreset)
		presetRoutes.POST("", s.savePreset)
		presetRoutes.DELETE("/:id", s.deletePreset)
	}

	if s.cfg.Metrics.Enabled && s.engine.Metrics() != nil {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(s.engine.Metrics().Handler()))
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requireStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.store == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse(c, "Preset storage is not configured"))
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse(c, "ok", gin.H{"records": len(s.records)}))
}
