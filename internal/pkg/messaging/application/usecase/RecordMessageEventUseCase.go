package usecase

import (
	"context"
	"errors"
	"fmt"

	"msg-relay/internal/logger"
	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
	"msg-relay/internal/pkg/messaging/provider"

	"go.uber.org/zap"
)

// RecordMessageEventInput carries one normalized message event plus the
// provider call result it was produced by. Outcome may be nil (no provider
// response available, e.g. on queued retries).
type RecordMessageEventInput struct {
	Event   messaging.MessageEvent
	Outcome *provider.Outcome
}

// RecordMessageEventResult reports what the transaction created.
type RecordMessageEventResult struct {
	ConversationID      int64
	MessageID           int64
	SenderID            int64
	RecipientID         int64
	CreatedConversation bool
	Message             messaging.Message
}

// RecordMessageEventUseCase persists one message event as a single unit of
// work: resolve sender, resolve recipient, resolve or create the two-party
// conversation, append the message row. Any step failing rolls the whole
// transaction back, so no orphan user or conversation survives.
type RecordMessageEventUseCase struct {
	Repo repository.MessagingRepository
}

func NewRecordMessageEventUseCase(repo repository.MessagingRepository) *RecordMessageEventUseCase {
	return &RecordMessageEventUseCase{Repo: repo}
}

// Execute runs the four persistence steps inside one transaction.
func (uc *RecordMessageEventUseCase) Execute(ctx context.Context, in RecordMessageEventInput) (RecordMessageEventResult, error) {
	var result RecordMessageEventResult

	event := in.Event
	logger.Log.Debug("recording message event",
		zap.String("from", event.From),
		zap.String("to", event.To),
		zap.String("message_type", string(event.MessageType)),
	)

	err := uc.Repo.WithinTx(ctx, func(r repository.MessagingRepository) error {
		senderID, err := resolveOrCreateUser(ctx, r, event.From, event.Channel)
		if err != nil {
			return fmt.Errorf("%w: sender %s: %v", ErrResolution, event.From, err)
		}
		recipientID, err := resolveOrCreateUser(ctx, r, event.To, event.Channel)
		if err != nil {
			return fmt.Errorf("%w: recipient %s: %v", ErrResolution, event.To, err)
		}

		conversationID, created, err := resolveOrCreateConversation(ctx, r, senderID, recipientID)
		if err != nil {
			return fmt.Errorf("%w: conversation between %d and %d: %v", ErrResolution, senderID, recipientID, err)
		}

		msg := buildMessage(event, in.Outcome, conversationID, senderID, recipientID)
		messageID, err := r.InsertMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("%w: conversation %d: %v", ErrWrite, conversationID, err)
		}
		msg.ID = messageID

		result = RecordMessageEventResult{
			ConversationID:      conversationID,
			MessageID:           messageID,
			SenderID:            senderID,
			RecipientID:         recipientID,
			CreatedConversation: created,
			Message:             msg,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrPersistence) {
			// begin/commit failure rather than a step inside the transaction
			err = fmt.Errorf("%w: %v", ErrTransaction, err)
		}
		logger.Log.Error("failed storing message event",
			zap.String("from", event.From),
			zap.String("to", event.To),
			zap.Error(err),
		)
		return RecordMessageEventResult{}, err
	}

	logger.Log.Info("processed message event",
		zap.String("from", event.From),
		zap.String("to", event.To),
		zap.Int64("conversation_id", result.ConversationID),
		zap.Int64("message_id", result.MessageID),
	)
	return result, nil
}
