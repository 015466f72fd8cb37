package handlers

import (
	"bidquotes/internal/models"
	"bidquotes/internal/services"
	"bidquotes/internal/utils"
	"bidquotes/internal/validators"

	"github.com/gin-gonic/gin"
)

type BidHandler struct {
	bidService    services.BidService
	creditService services.CreditService
}

func NewBidHandler(bidService services.BidService, creditService services.CreditService) *BidHandler {
	return &BidHandler{
		bidService:    bidService,
		creditService: creditService,
	}
}

// CreateBid submits a bid. When the contractor has a credit the bid goes live
// immediately; otherwise the response flags that payment is required and the
// bid stays a draft.
func (h *BidHandler) CreateBid(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.BidCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	response, err := h.bidService.CreateBid(c.Request.Context(), contractorID, &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	message := "Bid submitted successfully"
	if response.PaymentRequired {
		message = "Bid saved as draft, payment required"
	}
	utils.CreatedResponse(c, message, response)
}

func (h *BidHandler) CreateBidDraft(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.BidDraftCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	bid, err := h.bidService.SaveBidDraft(c.Request.Context(), contractorID, &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Bid draft saved", bid)
}

// SubmitBidDraft pushes an existing draft through the submission gate.
func (h *BidHandler) SubmitBidDraft(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	response, err := h.bidService.SubmitDraft(c.Request.Context(), contractorID, bidID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	message := "Bid submitted successfully"
	if response.PaymentRequired {
		message = "Payment required to submit this bid"
	}
	utils.SuccessResponse(c, message, response)
}

func (h *BidHandler) UpdateBid(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request models.BidUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	bid, err := h.bidService.UpdateBid(c.Request.Context(), contractorID, bidID, &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid updated successfully", bid)
}

func (h *BidHandler) DeleteBid(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.bidService.DeleteBid(c.Request.Context(), contractorID, bidID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid deleted successfully", nil)
}

// ConfirmBid is the contractor's acceptance of the buyer's selection.
func (h *BidHandler) ConfirmBid(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.bidService.ConfirmSelectedBid(c.Request.Context(), contractorID, bidID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid confirmed", nil)
}

// DeclineBid rejects the buyer's selection and frees the bid slot.
func (h *BidHandler) DeclineBid(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.bidService.DeclineSelectedBid(c.Request.Context(), contractorID, bidID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid declined", nil)
}

func (h *BidHandler) GetMyBids(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	bids, total, err := h.bidService.GetContractorBids(c.Request.Context(), contractorID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bids retrieved", bids, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}

func (h *BidHandler) GetBidDetail(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	bidID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	detail, err := h.bidService.GetBidDetail(c.Request.Context(), contractorID, bidID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bid retrieved", detail)
}

// GetCreditBalance returns the contractor's current credit balance.
func (h *BidHandler) GetCreditBalance(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.creditService.GetBalance(c.Request.Context(), contractorID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Credit balance retrieved", models.CreditBalanceResponse{Credits: balance})
}

// GetCreditHistory returns the contractor's credit ledger, newest first.
func (h *BidHandler) GetCreditHistory(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	transactions, total, err := h.creditService.GetHistory(c.Request.Context(), contractorID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Credit history retrieved", transactions, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}
