package routes

import (
	"bidquotes/internal/handlers"
	"bidquotes/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupProfileRoutes(r *gin.RouterGroup, profileHandler *handlers.ProfileHandler, auth gin.HandlerFunc) {
	buyer := r.Group("/profiles/buyer")
	buyer.Use(auth, middleware.BuyerRequired())
	{
		buyer.GET("/contact-info", profileHandler.GetBuyerContactInfo)
		buyer.PUT("/contact-info", profileHandler.SaveBuyerContactInfo)
	}

	contractor := r.Group("/profiles/contractor")
	contractor.Use(auth, middleware.ContractorRequired())
	{
		contractor.GET("/contact-info", profileHandler.GetContractorContactInfo)
		contractor.PUT("/contact-info", profileHandler.SaveContractorContactInfo)
	}
}
