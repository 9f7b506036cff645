package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"toolshelf/internal/catalog"
	"toolshelf/internal/ingest"
)

const defaultMaxUploadBytes = 10 << 20

type Server struct {
	ingester       *ingest.Ingester
	catalog        *catalog.Service
	logger         *zap.Logger
	metrics        prometheus.Gatherer
	maxUploadBytes int64
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes gatherer on /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = gatherer
	}
}

func WithMaxUploadBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxUploadBytes = limit
		}
	}
}

func New(ingester *ingest.Ingester, catalog *catalog.Service, opts ...Option) *Server {
	s := &Server{
		ingester:       ingester,
		catalog:        catalog,
		logger:         zap.NewNop(),
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), allowAnyOrigin())

	router.GET("/health", handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{})))
	}

	upload := cors{methods: "POST, OPTIONS", headers: "Content-Type, X-Admin-Secret"}
	query := cors{methods: "GET, OPTIONS", headers: "Content-Type"}
	for _, path := range []string{"/api/tools/upload", "/.netlify/functions/add_tools"} {
		router.OPTIONS(path, upload.preflight)
		router.POST(path, upload.apply, s.handleUploadTools)
	}
	for _, path := range []string{"/api/tools", "/.netlify/functions/get_tools"} {
		router.OPTIONS(path, query.preflight)
		router.GET(path, query.apply, s.handleListTools)
	}
	for _, path := range []string{"/api/categories", "/.netlify/functions/get_categories"} {
		router.OPTIONS(path, query.preflight)
		router.GET(path, query.apply, s.handleCategories)
	}
	return router
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
