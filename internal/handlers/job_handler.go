package handlers

import (
	"bidquotes/internal/models"
	"bidquotes/internal/services"
	"bidquotes/internal/utils"
	"bidquotes/internal/validators"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService services.JobService
}

func NewJobHandler(jobService services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
	}
}

// CreateJob posts a new job, live immediately.
func (h *JobHandler) CreateJob(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.JobCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), buyerID, &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Job posted successfully", job)
}

// CreateJobDraft saves a job draft; fields may be incomplete.
func (h *JobHandler) CreateJobDraft(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.JobDraftCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	job, err := h.jobService.SaveJobDraft(c.Request.Context(), buyerID, &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Job draft saved", job)
}

// PostJobDraft publishes a previously saved draft.
func (h *JobHandler) PostJobDraft(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	job, err := h.jobService.PostDraft(c.Request.Context(), buyerID, jobID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Job posted successfully", job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request models.JobUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	job, err := h.jobService.UpdateJob(c.Request.Context(), buyerID, jobID, &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Job updated successfully", job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(c.Request.Context(), buyerID, jobID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Job deleted successfully", nil)
}

// CloseJob stops new bids without deleting the job.
func (h *JobHandler) CloseJob(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.CloseJob(c.Request.Context(), buyerID, jobID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Job closed", nil)
}

func (h *JobHandler) GetMyJobs(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	jobs, total, err := h.jobService.GetBuyerJobs(c.Request.Context(), buyerID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Jobs retrieved", jobs, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}

// GetOpenJobs is the contractor-facing job board.
func (h *JobHandler) GetOpenJobs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	jobs, total, err := h.jobService.GetOpenJobs(c.Request.Context(), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Jobs retrieved", jobs, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}

func (h *JobHandler) GetJobDetail(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	viewerType := models.UserType(c.GetString("user_type"))

	detail, err := h.jobService.GetJobDetail(c.Request.Context(), jobID, viewerID, viewerType)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Job retrieved", detail)
}

// SelectBid marks a bid as the buyer's choice for the job.
func (h *JobHandler) SelectBid(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "bidId")
	if !ok {
		return
	}

	if err := h.jobService.SelectBid(c.Request.Context(), buyerID, jobID, bidID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid selected", nil)
}

func (h *JobHandler) CancelBidSelection(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.CancelBidSelection(c.Request.Context(), buyerID, jobID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid selection cancelled", nil)
}

// UploadJobImage accepts one multipart image for the job.
func (h *JobHandler) UploadJobImage(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	defer file.Close()

	image, err := h.jobService.AddJobImage(
		c.Request.Context(),
		buyerID,
		jobID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Image uploaded", image)
}

func (h *JobHandler) DeleteJobImage(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathObjectID(c, "imageId")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJobImage(c.Request.Context(), buyerID, jobID, imageID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Image deleted", nil)
}
