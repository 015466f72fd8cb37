package handlers

import (
	"bidquotes/internal/models"
	"bidquotes/internal/services"
	"bidquotes/internal/utils"
	"bidquotes/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminHandler struct {
	creditService services.CreditService
}

func NewAdminHandler(creditService services.CreditService) *AdminHandler {
	return &AdminHandler{
		creditService: creditService,
	}
}

// CompensateCredit hands one credit back to a contractor, recorded as a
// refund in the ledger. Used to make a contractor whole after a dispute.
func (h *AdminHandler) CompensateCredit(c *gin.Context) {
	var request models.CreditCompensationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	contractorID, err := primitive.ObjectIDFromHex(request.ContractorID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contractor ID")
		return
	}

	description := request.Description
	if description == "" {
		description = "admin compensation"
	}

	result, err := h.creditService.RefundCredit(c.Request.Context(), contractorID, description)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Credit refunded", result)
}
