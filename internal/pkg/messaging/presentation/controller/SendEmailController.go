package controller

import (
	"net/http"

	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	messaging "msg-relay/internal/pkg/messaging/domain"
	"msg-relay/internal/pkg/messaging/provider"

	"github.com/gin-gonic/gin"
)

// SendEmailController handles the outbound email endpoint (one controller per endpoint)
type SendEmailController struct {
	Sender     provider.EmailSender
	Dispatcher *dispatch.Dispatcher
}

func NewSendEmailController(d *dispatch.Dispatcher) *SendEmailController {
	return &SendEmailController{Sender: &provider.MockSendGridService{}, Dispatcher: d}
}

// sendEmailRequest is the DTO for the HTTP request body
type sendEmailRequest struct {
	From        string   `json:"from" binding:"required"`
	To          string   `json:"to" binding:"required"`
	Body        string   `json:"body" binding:"required"`
	Attachments []string `json:"attachments"`
	Timestamp   string   `json:"timestamp"`
}

// Handle validates the request, runs the mocked provider send and records the event.
func (h *SendEmailController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		event, err := messaging.NewEmailEvent(messaging.EmailPayload{
			From:        req.From,
			To:          req.To,
			Body:        req.Body,
			Attachments: req.Attachments,
			Timestamp:   req.Timestamp,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		outcome, err := h.Sender.SendEmail(c.Request.Context(), logger.CorrelationID(c), event, simulateError(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAndRespond(c, h.Dispatcher, event, outcome)
	}
}
