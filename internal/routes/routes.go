package routes

import (
	"dealroom_backend/internal/handlers"
	"dealroom_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the HTTP API, the websocket endpoint and /metrics.
func RegisterRoutes(router *gin.Engine, appHandlers *handlers.AppHandlers, wsHandler *ws.Handler) {
	api := router.Group("/api/v1")
	{
		appHandlers.ExchangeHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
	}

	router.GET("/ws", wsHandler.ServeWS)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
