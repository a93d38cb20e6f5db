package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/market-sim/internal/metrics"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/muhammadchandra19/market-sim/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the market routes, the request-id and access-log middleware,
// and the metrics endpoint served from gatherer.
func NewRouter(handler *Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(log, m))

	api := router.Group("/api")
	{
		api.POST("/orders", handler.PlaceOrder)
		api.GET("/orders", handler.ListOrders)
		api.GET("/orders/:id", handler.GetOrder)
		api.GET("/best-offer", handler.GetBestOffer)
		api.GET("/pairs", handler.ListPairs)
		api.GET("/stats", handler.GetStats)
		api.GET("/view/:symbol", handler.GetView)
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}

// RequestIDMiddleware propagates X-Request-ID, generating one when absent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := util.WithRequestID(c.Request.Context(), c.GetHeader(util.RequestIDHeader))
		ctx = util.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Header(util.RequestIDHeader, util.GetRequestID(ctx))
		c.Next()
	}
}

// LoggingMiddleware logs every request and records its duration.
func LoggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()

		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(status), duration.Seconds())
		log.InfoContext(c.Request.Context(), "HTTP request",
			logger.Field{Key: "method", Value: c.Request.Method},
			logger.Field{Key: "path", Value: c.Request.URL.Path},
			logger.Field{Key: "status", Value: status},
			logger.Field{Key: "duration", Value: duration.String()},
			logger.Field{Key: "client_ip", Value: util.GetClientIP(c.Request.Context())},
		)
	}
}
