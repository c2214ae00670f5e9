package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/terminal-chat/internal/config"
	"github.com/vovakirdan/terminal-chat/internal/metrics"
)

// NewServer builds an HTTP server with the websocket endpoint and read-only routes.
func NewServer(hub Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	ws := NewWSHandler(hub, WSOptions{
		ClientBuffer:    cfg.ClientBuffer,
		MaxMessageBytes: cfg.MaxMessageBytes,
		EventsPerSecond: cfg.EventsPerSecond,
		AllowedOrigins:  cfg.AllowedOrigins,
	}, logger)
	stats := NewStatsHandlers(hub, logger)

	router.GET("/ws", gin.WrapH(ws))
	router.GET("/health", healthHandler)
	router.GET("/api/stats", stats.Stats)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
