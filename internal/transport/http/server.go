package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-lobby/internal/config"
	"github.com/vovakirdan/wirechat-lobby/internal/core"
)

// NewServer builds an HTTP server with the websocket endpoint and the admin API.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	httpLogger := logger.With().Str("component", "http").Logger()
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/", requestLogger(&httpLogger))
	api.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, &httpLogger)
	api.GET("/api/rooms", rooms.ListRooms)
	api.DELETE("/api/rooms/:id", rooms.CloseRoom)
	api.GET("/api/users", rooms.ListUsers)

	// The websocket endpoint is mounted beside gin: the upgrade hijacks the
	// connection and gin refuses a hijack once a status has been written.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, *cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
