package leave

import (
	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts the workflow endpoints. protected runs before every
// route and must authenticate the caller.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
	protected ...gin.HandlerFunc,
) {
	headOnly := middleware.RoleMiddleware(string(domain.RoleDepartmentHead))

	leaves := r.Group("/leaves")
	leaves.Use(protected...)
	{
		leaves.POST("",
			middleware.RoleMiddleware(string(domain.RoleFaculty)),
			middleware.Idempotency(rdb),
			handler.Submit,
		)
		leaves.GET("", handler.ListOwn)
		leaves.GET("/:id", handler.GetByID)
		leaves.PUT("/:id/decision", headOnly, handler.Decide)
	}

	department := r.Group("/department")
	department.Use(protected...)
	{
		department.GET("/leaves/pending", headOnly, handler.ListPending)
		department.GET("/leaves/history", headOnly, handler.ListHistory)
		department.GET("/summary", headOnly, handler.Summary)
	}
}
