package http

import (
	"github.com/gin-gonic/gin"
	"github.com/halalcheck/client/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.SetHTMLTemplate(loadTemplates())
	router.MaxMultipartMemory = 12 << 20

	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", handler.Home)
	router.GET("/guide", handler.Guide)

	limit := RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst)

	upload := router.Group("/upload")
	{
		upload.GET("", handler.NewUploadVisit)
		upload.GET("/:visit", handler.UploadPage)
		upload.POST("/:visit/file", limit, handler.SelectFile)
		upload.POST("/:visit/submit", limit, handler.SubmitUpload)
	}

	chat := router.Group("/chat")
	{
		chat.GET("", handler.NewChatVisit)
		chat.GET("/:visit", handler.ChatPage)
		chat.POST("/:visit/submit", limit, handler.SubmitChat)
	}

	api := router.Group("/api")
	{
		api.GET("/visits/:visit", handler.GetVisit)
		api.DELETE("/visits/:visit", handler.DeleteVisit)
	}

	return router
}
