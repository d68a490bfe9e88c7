package employee

import (
	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the directory endpoints. protected runs before every
// route and must authenticate the caller.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	protected ...gin.HandlerFunc,
) {
	me := r.Group("/me")
	me.Use(protected...)
	{
		me.GET("", handler.GetProfile)
		me.GET("/balance", handler.GetBalance)
	}

	department := r.Group("/department")
	department.Use(protected...)
	{
		department.GET("/faculty",
			middleware.RoleMiddleware(string(domain.RoleDepartmentHead)),
			handler.ListDepartmentFaculty,
		)
	}
}
