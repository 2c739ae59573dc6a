package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/server/handlers"
)

// New wires the Gin engine with the inventory routes and middlewares. reports
// may be nil, which leaves the report routes unregistered.
func New(handler *handlers.InventoryHandler, reports *handlers.ReportHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/dashboard", handler.Dashboard)

	items := api.Group("/items")
	items.GET("", handler.ListItems)
	items.POST("", handler.CreateItem)
	items.GET("/:id", handler.GetItem)
	items.PUT("/:id", handler.UpdateItem)
	items.DELETE("/:id", handler.DeleteItem)

	movements := api.Group("/movements")
	movements.GET("", handler.ListMovements)
	movements.POST("/entry", handler.RegisterEntry)
	movements.POST("/exit", handler.RegisterExit)

	api.GET("/orders/suggestions", handler.OrderSuggestions)
	api.GET("/insights", handler.Insights)

	settings := api.Group("/settings")
	settings.POST("/reset", handler.Reset)
	settings.POST("/backup", handler.Backup)
	settings.GET("/backup", handler.BackupStatus)

	if reports != nil {
		api.POST("/reports/daily", reports.DailyReport)
		api.GET("/reports/latest", reports.LatestSnapshot)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
