package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	cport "msg-relay/internal/infrastructure/cache/port"
	"msg-relay/internal/pkg/messaging/application/usecase"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// ListConversationsController handles conversation enumeration (one controller per endpoint)
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(repo repository.MessagingRepository, cache cport.Cache) *ListConversationsController {
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo, cache)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ids, err := h.UC.Execute(ctx)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"conversations": ids})
	}
}
