package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsbrief/internal/domain"
	"newsbrief/internal/metrics"
)

type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) ([]string, error)
}

// NewRouter constructs a gin engine with the summary, health and metrics
// routes. A nil gatherer leaves /metrics unregistered.
func NewRouter(
	summarizer Summarizer,
	gatherer prometheus.Gatherer,
	m *metrics.Metrics,
	log *slog.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(m, log))

	RegisterSummaryRoutes(r, summarizer, log)
	RegisterHealthRoutes(r)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/healthz", handleHealth)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(m *metrics.Metrics, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		duration := time.Since(start)
		status := c.Writer.Status()

		m.ObserveRequest(c.Request.Method, route, status, duration)

		log.DebugContext(c.Request.Context(), "HTTP request is served",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", duration,
			"clientIP", c.ClientIP())
	}
}
