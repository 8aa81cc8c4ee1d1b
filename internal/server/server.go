// Package server exposes the pipeline over HTTP as a JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/evelooter/looter/pkg/logging"
	"github.com/evelooter/looter/pkg/pipeline"
)

// KillFetcher is the pipeline surface the server depends on.
type KillFetcher interface {
	Fetch(ctx context.Context, userLink string, cutoff time.Time) ([]pipeline.Killmail, error)
}

// Server holds the fetcher and the last successful kill set. The cached
// set keeps the UI usable when an upstream fetch fails.
type Server struct {
	fetcher KillFetcher
	logger  zerolog.Logger
	state   *resultState
}

// New creates a server around a fetcher.
func New(fetcher KillFetcher) *Server {
	return &Server{
		fetcher: fetcher,
		logger:  logging.NewLogger("http-server"),
		state:   newResultState(),
	}
}

// Router wires public endpoints.
// Public: /health, /metrics
// API: POST /process
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/process", s.handleProcess)

	return r
}

// requestLogger attaches a request ID and logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}
