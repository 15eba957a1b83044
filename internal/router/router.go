package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sheeddhartho/Secura/internal/handler"
	"github.com/Sheeddhartho/Secura/pkg/constants"
)

// New builds the HTTP router. Every /api route sits behind the session
// middleware; the WebSocket endpoint does its own (identical) session
// resolution before upgrading.
func New(
	sessions handler.SessionResolver,
	faces *handler.FaceHandler,
	logs *handler.LogHandler,
	settings *handler.SettingsHandler,
	streamWS *handler.StreamWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	api := r.Group("/api", handler.RequireSession(sessions))
	{
		api.GET("/faces", faces.List)
		api.POST("/faces", faces.Create)
		api.DELETE("/faces/:id", faces.Delete)
		api.POST("/faces/import", faces.Import)

		api.GET("/logs", logs.List)
		api.POST("/logs", logs.Submit)

		api.GET("/settings", settings.Get)
		api.PUT("/settings", settings.Update)
	}

	r.GET(constants.PathWSStream, streamWS.ServeWS)

	return r
}
