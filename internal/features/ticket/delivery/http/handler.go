package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/common/middleware"
	"raffle-tool-backend/internal/features/ticket/models"
	"raffle-tool-backend/internal/features/ticket/service"
)

type TicketHandler struct {
	service service.InventoryService
}

func NewTicketHandler(service service.InventoryService) *TicketHandler {
	return &TicketHandler{
		service: service,
	}
}

// RegisterRoutes mounts the inventory endpoints. The seller segment
// accepts either the opaque id or the human-readable code; resolution
// happens inside the services.
func (h *TicketHandler) RegisterRoutes(router *gin.RouterGroup) {
	tickets := router.Group("/raffles/:raffle_id/sellers/:seller_id")
	{
		tickets.GET("/board", h.getBoard)
		tickets.GET("/sold-count", h.getSoldCount)
		tickets.GET("/selection/:number", h.getSelection)
		tickets.POST("/reserve", h.reserve)
		tickets.POST("/payments/precheck", h.precheckPayment)
	}
}

func scopeFrom(c *gin.Context) models.Scope {
	return models.Scope{
		RaffleID: c.Param("raffle_id"),
		SellerID: c.Param("seller_id"),
	}
}

func (h *TicketHandler) getBoard(c *gin.Context) {
	entries, err := h.service.Board(c.Request.Context(), scopeFrom(c))
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": entries})
}

func (h *TicketHandler) getSoldCount(c *gin.Context) {
	count, err := h.service.SoldCount(c.Request.Context(), scopeFrom(c))
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sold_count": count})
}

func (h *TicketHandler) getSelection(c *gin.Context) {
	numbers, err := h.service.SelectionForNumber(c.Request.Context(), scopeFrom(c), c.Param("number"))
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

type reserveRequest struct {
	Numbers []string         `json:"numbers" binding:"required"`
	Buyer   models.BuyerInfo `json:"buyer"`
}

func (h *TicketHandler) reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.service.Reserve(c.Request.Context(), scopeFrom(c), req.Numbers, req.Buyer); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

type precheckRequest struct {
	Numbers       []string `json:"numbers" binding:"required"`
	ParticipantID string   `json:"participant_id"`
}

func (h *TicketHandler) precheckPayment(c *gin.Context) {
	var req precheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	err := h.service.ProceedToPayment(c.Request.Context(), scopeFrom(c), req.Numbers, req.ParticipantID)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
