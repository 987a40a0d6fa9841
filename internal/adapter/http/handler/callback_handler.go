package handler

import (
	"context"
	"io"
	"net/http"

	"mpesa-push-relay/internal/adapter/http/dto"
	"mpesa-push-relay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CallbackHandler receives the gateway's asynchronous result callbacks.
type CallbackHandler struct {
	relaySvc ports.RelayService
	log      zerolog.Logger
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(relaySvc ports.RelayService, log zerolog.Logger) *CallbackHandler {
	return &CallbackHandler{relaySvc: relaySvc, log: log}
}

// Receive handles POST /callback. The gateway is acknowledged immediately
// with a fixed success body no matter what the payload contains; processing
// happens after the response is written. A retried delivery gets the same
// ack and is deduplicated downstream.
func (h *CallbackHandler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn().Err(err).Msg("callback body read failed")
		raw = nil
	}

	c.JSON(http.StatusOK, dto.CallbackAck{ResultCode: 0, ResultDesc: "Success"})

	if len(raw) == 0 {
		return
	}

	// The inbound request context dies with the response; processing gets
	// its own.
	go h.relaySvc.Process(context.Background(), raw)
}
