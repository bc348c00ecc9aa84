package http

import (
	"github.com/gin-gonic/gin"

	"violet-client/internal/bootstrap"
	"violet-client/internal/transport/http/handler"
	"violet-client/internal/transport/http/middleware"
)

// NewRouter exposes the orchestrator to a browser page as JSON state plus
// intent endpoints.
func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.Bridge.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(app.Orchestrator)
	collectionHandler := handler.NewCollectionHandler(app.Orchestrator)
	uploadHandler := handler.NewUploadHandler(app.Orchestrator)
	chatHandler := handler.NewChatHandler(app.Orchestrator)

	router.GET("/healthz", healthHandler.Check)

	api := router.Group("/api")
	api.GET("/state", authHandler.State)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/logout", authHandler.Logout)

	collectionGroup := api.Group("/collections")
	collectionGroup.POST("/refresh", collectionHandler.Refresh)
	collectionGroup.POST("/:id/select", collectionHandler.Select)
	collectionGroup.GET("/:id/tables", collectionHandler.Tables)
	collectionGroup.DELETE("/:id", collectionHandler.Delete)
	collectionGroup.DELETE("", collectionHandler.DeleteAll)

	api.GET("/providers", collectionHandler.Providers)
	api.POST("/upload", uploadHandler.Submit)
	api.POST("/upload/cancel", uploadHandler.Cancel)
	api.POST("/chat", chatHandler.Send)
	api.PUT("/chat/draft", chatHandler.Draft)

	return router
}
