package routes

import (
	"bidquotes/internal/handlers"
	"bidquotes/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, auth gin.HandlerFunc) {
	payments := r.Group("/payments")
	payments.Use(auth, middleware.ContractorRequired())
	{
		payments.POST("/bid-session", paymentHandler.CreateBidPaymentSession)
		payments.POST("/credit-session", paymentHandler.CreateCreditPurchaseSession)
		payments.GET("/history", paymentHandler.GetPaymentHistory)
	}
}
