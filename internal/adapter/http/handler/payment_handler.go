package handler

import (
	"mpesa-push-relay/internal/adapter/http/dto"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/apperror"
	"mpesa-push-relay/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles push initiation.
type PaymentHandler struct {
	pushSvc ports.PushService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(pushSvc ports.PushService) *PaymentHandler {
	return &PaymentHandler{pushSvc: pushSvc}
}

// InitiatePush handles POST /pay.
func (h *PaymentHandler) InitiatePush(c *gin.Context) {
	var req dto.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrMissingFields())
		return
	}

	ack, err := h.pushSvc.InitiatePush(c.Request.Context(), ports.PushParams{
		Phone:       req.Phone,
		Amount:      req.Amount.String(),
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PayResponse{
		Success:           true,
		CheckoutRequestID: ack.CheckoutRequestID,
		MerchantRequestID: ack.MerchantRequestID,
		Message:           ack.CustomerMessage,
	})
}
