package routes

import (
	"bidquotes/internal/handlers"
	"bidquotes/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupJobRoutes wires the buyer-side job routes and the contractor-facing
// job board.
func SetupJobRoutes(r *gin.RouterGroup, jobHandler *handlers.JobHandler, auth gin.HandlerFunc) {
	jobs := r.Group("/jobs")
	jobs.Use(auth)
	{
		// Browsing is open to any authenticated user; the board only
		// shows jobs accepting bids.
		jobs.GET("", jobHandler.GetOpenJobs)
		jobs.GET("/:id", jobHandler.GetJobDetail)
	}

	buyerJobs := r.Group("/jobs")
	buyerJobs.Use(auth, middleware.BuyerRequired())
	{
		buyerJobs.POST("", jobHandler.CreateJob)
		buyerJobs.POST("/drafts", jobHandler.CreateJobDraft)
		buyerJobs.GET("/mine", jobHandler.GetMyJobs)
		buyerJobs.POST("/:id/post", jobHandler.PostJobDraft)
		buyerJobs.PUT("/:id", jobHandler.UpdateJob)
		buyerJobs.DELETE("/:id", jobHandler.DeleteJob)
		buyerJobs.PUT("/:id/close", jobHandler.CloseJob)

		// Bid selection
		buyerJobs.POST("/:id/select/:bidId", jobHandler.SelectBid)
		buyerJobs.DELETE("/:id/selection", jobHandler.CancelBidSelection)

		// Images
		buyerJobs.POST("/:id/images", jobHandler.UploadJobImage)
		buyerJobs.DELETE("/:id/images/:imageId", jobHandler.DeleteJobImage)
	}
}
