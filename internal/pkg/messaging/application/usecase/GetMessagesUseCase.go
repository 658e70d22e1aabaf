package usecase

import (
	"context"
	"fmt"

	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
)

// GetMessagesInput wraps the conversation identifier to fetch its history.
type GetMessagesInput struct {
	ConversationID int64
}

// GetMessagesUseCase returns the full ordered history of a conversation.
// An unknown conversation yields an empty slice, not an error.
type GetMessagesUseCase struct {
	Repo repository.MessagingRepository
}

func NewGetMessagesUseCase(repo repository.MessagingRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]messaging.Message, error) {
	if in.ConversationID <= 0 {
		return nil, fmt.Errorf("conversationId is required")
	}
	msgs, err := uc.Repo.GetMessagesByConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
