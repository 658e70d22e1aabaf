package controller

import (
	"errors"
	"net/http"

	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	messaging "msg-relay/internal/pkg/messaging/domain"
	"msg-relay/internal/pkg/messaging/provider"

	"github.com/gin-gonic/gin"
)

// SmsWebhookController handles the inbound SMS/MMS webhook endpoint.
type SmsWebhookController struct {
	Webhook    provider.WebhookHandler
	Dispatcher *dispatch.Dispatcher
}

func NewSmsWebhookController(d *dispatch.Dispatcher) *SmsWebhookController {
	return &SmsWebhookController{Webhook: &provider.MockWebhookService{}, Dispatcher: d}
}

// inboundSmsRequest is the DTO for the webhook payload. Inbound payloads carry
// the provider's message id.
type inboundSmsRequest struct {
	From                string   `json:"from" binding:"required"`
	To                  string   `json:"to" binding:"required"`
	Type                string   `json:"type" binding:"required"`
	MessagingProviderID string   `json:"messaging_provider_id" binding:"required"`
	Body                string   `json:"body" binding:"required"`
	Attachments         []string `json:"attachments"`
	Timestamp           string   `json:"timestamp"`
}

// Handle validates the webhook payload, runs the mocked provider handler and
// records the event.
func (h *SmsWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inboundSmsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		providerID := req.MessagingProviderID
		event, err := messaging.NewSmsEvent(messaging.SmsPayload{
			From:                req.From,
			To:                  req.To,
			Type:                req.Type,
			Body:                req.Body,
			Attachments:         req.Attachments,
			MessagingProviderID: &providerID,
			Timestamp:           req.Timestamp,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		outcome, err := h.Webhook.HandleIncomingMessage(c.Request.Context(), logger.CorrelationID(c), event, simulateError(c))
		if err != nil {
			status := http.StatusInternalServerError
			if !errors.Is(err, provider.ErrUpstream) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		recordAndRespond(c, h.Dispatcher, event, outcome)
	}
}
