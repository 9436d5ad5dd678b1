package queues

import (
	"queueflow/internal/shared/config"
	"queueflow/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the queue endpoints under /shops/:shop_id/queues.
// Reads are open to any authenticated caller of the shop; writes require
// staff or admin, bulk operations admin only.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	queues := rg.Group("/shops/:shop_id/queues")
	queues.Use(middleware.JWTAuthWithConfig(cfg))
	queues.Use(middleware.RequireShopAccess())

	queues.GET("", controller.ListQueues)
	queues.GET("/stats", controller.GetQueueStats)
	queues.GET("/:queue_id", controller.GetQueue)
	queues.POST("", controller.CreateQueue)

	staff := queues.Group("")
	staff.Use(middleware.RequireRoles("STAFF", "ADMIN"))
	{
		staff.PATCH("/:queue_id", controller.UpdateQueue)
		staff.DELETE("/:queue_id", controller.DeleteQueue)
	}

	admin := queues.Group("/bulk")
	admin.Use(middleware.RequireRoles("ADMIN"))
	{
		admin.POST("/update", controller.BulkUpdateQueues)
		admin.POST("/delete", controller.BulkDeleteQueues)
		admin.POST("/reassign", controller.BulkReassignQueues)
	}
}
