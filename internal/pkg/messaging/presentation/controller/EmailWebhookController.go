package controller

import (
	"net/http"

	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	messaging "msg-relay/internal/pkg/messaging/domain"
	"msg-relay/internal/pkg/messaging/provider"

	"github.com/gin-gonic/gin"
)

// EmailWebhookController handles the inbound email webhook endpoint.
type EmailWebhookController struct {
	Webhook    provider.WebhookHandler
	Dispatcher *dispatch.Dispatcher
}

func NewEmailWebhookController(d *dispatch.Dispatcher) *EmailWebhookController {
	return &EmailWebhookController{Webhook: &provider.MockWebhookService{}, Dispatcher: d}
}

// inboundEmailRequest is the DTO for the webhook payload. Inbound payloads
// carry the provider's tracking id.
type inboundEmailRequest struct {
	From        string   `json:"from" binding:"required"`
	To          string   `json:"to" binding:"required"`
	XillioID    string   `json:"xillio_id" binding:"required"`
	Body        string   `json:"body" binding:"required"`
	Attachments []string `json:"attachments"`
	Timestamp   string   `json:"timestamp"`
}

// Handle validates the webhook payload, runs the mocked provider handler and
// records the event.
func (h *EmailWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inboundEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		xillioID := req.XillioID
		event, err := messaging.NewEmailEvent(messaging.EmailPayload{
			From:        req.From,
			To:          req.To,
			Body:        req.Body,
			Attachments: req.Attachments,
			XillioID:    &xillioID,
			Timestamp:   req.Timestamp,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		outcome, err := h.Webhook.HandleIncomingMessage(c.Request.Context(), logger.CorrelationID(c), event, simulateError(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAndRespond(c, h.Dispatcher, event, outcome)
	}
}
