package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"msg-relay/internal/pkg/messaging/application/usecase"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// GetMessagesController handles fetching conversation history (one controller per endpoint)
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(repo repository.MessagingRepository) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(repo)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || conversationID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessagesInput{ConversationID: conversationID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"message_id":      m.ID,
				"conversation_id": m.ConversationID,
				"sender_id":       m.SenderID,
				"recipient_id":    m.RecipientID,
				"body":            m.Body,
				"provider_id":     m.ProviderID,
				"message_type":    m.MessageType,
				"attachments":     m.Attachments,
				"status":          m.Status,
				"created_at":      m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"count":    len(out),
		})
	}
}
