package http

import (
	"net/http"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/observability"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the REST API, the event stream, health and metrics.
// metrics may be nil.
func NewRouter(service *app.AssessmentService, auth *Authenticator, metrics *observability.Metrics, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if metrics != nil {
		r.Use(metrics.Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	h := NewHandler(service, logger)
	ws := NewWSHandler(service, logger)

	test := r.Group("/test", auth.Middleware())
	test.POST("/create", h.CreateTest)
	test.POST("/submit", h.SubmitTest)
	test.GET("/session/:sessionId", h.GetSession)
	test.GET("/history", h.History)
	test.GET("/analytics", h.Analytics)
	test.PUT("/abandon/:sessionId", h.AbandonTest)
	test.GET("/domain-stats/:domain", h.DomainStats)
	test.GET("/domains", h.Domains)
	test.GET("/events", ws.ServeEvents)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_id", userID(c)),
		)
	}
}
