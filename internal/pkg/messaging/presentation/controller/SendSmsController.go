package controller

import (
	"net/http"

	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	messaging "msg-relay/internal/pkg/messaging/domain"
	"msg-relay/internal/pkg/messaging/provider"

	"github.com/gin-gonic/gin"
)

// SendSmsController handles the outbound SMS/MMS endpoint (one controller per endpoint)
type SendSmsController struct {
	Sender     provider.SmsSender
	Dispatcher *dispatch.Dispatcher
}

func NewSendSmsController(d *dispatch.Dispatcher) *SendSmsController {
	return &SendSmsController{Sender: &provider.MockTwilioService{}, Dispatcher: d}
}

// sendSmsRequest is the DTO for the HTTP request body
type sendSmsRequest struct {
	From        string   `json:"from" binding:"required"`
	To          string   `json:"to" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Body        string   `json:"body" binding:"required"`
	Attachments []string `json:"attachments"`
	Timestamp   string   `json:"timestamp"`
}

// Handle validates the request, runs the mocked provider send and records the event.
func (h *SendSmsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendSmsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		event, err := messaging.NewSmsEvent(messaging.SmsPayload{
			From:        req.From,
			To:          req.To,
			Type:        req.Type,
			Body:        req.Body,
			Attachments: req.Attachments,
			Timestamp:   req.Timestamp,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		outcome, err := h.Sender.SendMessage(c.Request.Context(), logger.CorrelationID(c), event, simulateError(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAndRespond(c, h.Dispatcher, event, outcome)
	}
}
