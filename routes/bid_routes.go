package routes

import (
	"bidquotes/internal/handlers"
	"bidquotes/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBidRoutes wires the contractor-side bid and credit routes.
func SetupBidRoutes(r *gin.RouterGroup, bidHandler *handlers.BidHandler, auth gin.HandlerFunc) {
	bids := r.Group("/bids")
	bids.Use(auth, middleware.ContractorRequired())
	{
		bids.POST("", bidHandler.CreateBid)
		bids.POST("/drafts", bidHandler.CreateBidDraft)
		bids.GET("/mine", bidHandler.GetMyBids)
		bids.GET("/:id", bidHandler.GetBidDetail)
		bids.POST("/:id/submit", bidHandler.SubmitBidDraft)
		bids.PUT("/:id", bidHandler.UpdateBid)
		bids.DELETE("/:id", bidHandler.DeleteBid)

		// Responses to a buyer's selection
		bids.POST("/:id/confirm", bidHandler.ConfirmBid)
		bids.POST("/:id/decline", bidHandler.DeclineBid)
	}

	credits := r.Group("/credits")
	credits.Use(auth, middleware.ContractorRequired())
	{
		credits.GET("/balance", bidHandler.GetCreditBalance)
		credits.GET("/history", bidHandler.GetCreditHistory)
	}
}
