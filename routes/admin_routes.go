package routes

import (
	"bidquotes/internal/handlers"
	"bidquotes/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, auth gin.HandlerFunc) {
	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminRequired())
	{
		admin.POST("/credits/compensate", adminHandler.CompensateCredit)
	}
}
