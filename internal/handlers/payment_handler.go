package handlers

import (
	"bidquotes/internal/models"
	"bidquotes/internal/services"
	"bidquotes/internal/utils"
	"bidquotes/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateBidPaymentSession starts checkout for a single bid submission fee.
func (h *PaymentHandler) CreateBidPaymentSession(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.DraftBidPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	bidID, err := primitive.ObjectIDFromHex(request.DraftBidID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid draft bid ID")
		return
	}

	session, err := h.paymentService.CreateBidPaymentSession(c.Request.Context(), contractorID, bidID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Checkout session created", session)
}

// CreateCreditPurchaseSession starts checkout for the credit bundle.
func (h *PaymentHandler) CreateCreditPurchaseSession(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.paymentService.CreateCreditPurchaseSession(c.Request.Context(), contractorID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Checkout session created", session)
}

func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	contractorID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	transactions, total, err := h.paymentService.GetPaymentHistory(c.Request.Context(), contractorID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Payment history retrieved", transactions, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}
