package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"travelagent/handlers"
)

// RegisterRoutes wires the full HTTP surface. Every endpoint is
// registered twice: at the root and under /agent, because deployed
// clients disagree on the path prefix.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/", hb.Status)
	r.HEAD("/", hb.Status)
	r.GET("/status", hb.Status)
	r.GET("/health", handlers.Health)

	for _, api := range []*gin.RouterGroup{r.Group(""), r.Group("/agent")} {
		api.GET("/assistants/search", hb.AssistantsSearch)
		api.GET("/info", hb.Info)

		api.POST("/threads", hb.CreateThread)
		api.POST("/threads/search", hb.SearchThreads)
		api.GET("/threads/:thread_id/history", hb.ThreadHistory)
		api.POST("/threads/:thread_id/history", hb.ThreadHistory)
		api.POST("/threads/:thread_id/runs/stream", hb.StreamRun)
	}
}
