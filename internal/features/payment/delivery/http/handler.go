package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/common/middleware"
	"raffle-tool-backend/internal/features/payment/models"
	"raffle-tool-backend/internal/features/payment/service"
	ticketmodels "raffle-tool-backend/internal/features/ticket/models"
)

// maxProofBytes caps the transfer-proof image size.
const maxProofBytes = 10 << 20

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service: service,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/raffles/:raffle_id/sellers/:seller_id")
	{
		payments.POST("/payments", h.completePayment)
	}
}

// completePayment accepts a multipart form: numbers (comma-separated),
// buyer fields, payment_method, optional participant_id, fraud_note
// and the proof image file.
func (h *PaymentHandler) completePayment(c *gin.Context) {
	scope := ticketmodels.Scope{
		RaffleID: c.Param("raffle_id"),
		SellerID: c.Param("seller_id"),
	}

	input, err := parseFinalizeForm(c)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	result, err := h.service.Finalize(c.Request.Context(), scope, *input)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	switch result.Status {
	case models.ResultSuccess:
		c.JSON(http.StatusOK, result)
	case models.ResultConflict:
		c.JSON(http.StatusConflict, result)
	default:
		c.JSON(middleware.HTTPStatusFor(apperrors.ErrorCode(result.ErrorCode)), result)
	}
}

func parseFinalizeForm(c *gin.Context) (*models.FinalizeInput, error) {
	numbers := splitNumbers(c.PostForm("numbers"))
	if len(numbers) == 0 {
		return nil, apperrors.NewValidationError("numbers", "at least one number is required")
	}

	input := &models.FinalizeInput{
		Numbers:       numbers,
		ParticipantID: c.PostForm("participant_id"),
		PaymentMethod: c.PostForm("payment_method"),
		FraudNote:     c.PostForm("fraud_note"),
		Buyer: ticketmodels.BuyerInfo{
			Name:              c.PostForm("name"),
			Phone:             c.PostForm("phone"),
			Cedula:            c.PostForm("cedula"),
			Email:             c.PostForm("email"),
			Address:           c.PostForm("address"),
			ProductSuggestion: c.PostForm("product_suggestion"),
			Note:              c.PostForm("note"),
		},
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return input, nil // transfer-without-proof fails later in validation
	}
	if fileHeader.Size > maxProofBytes {
		return nil, apperrors.NewValidationError("proof", "proof image exceeds the size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Failed to read proof upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProofBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Failed to read proof upload")
	}

	input.Proof = &models.ProofAsset{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	return input, nil
}

func splitNumbers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	numbers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}
