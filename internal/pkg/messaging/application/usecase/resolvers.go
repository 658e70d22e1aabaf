package usecase

import (
	"context"
	"errors"
	"time"

	"msg-relay/internal/logger"
	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
	"msg-relay/internal/pkg/messaging/provider"

	"go.uber.org/zap"
)

// resolveOrCreateUser maps an address to its user id, creating the user row on
// first contact. Lookup matches either address column, so the same address
// never maps to two users regardless of channel.
func resolveOrCreateUser(ctx context.Context, r repository.MessagingRepository, addr string, channel messaging.Channel) (int64, error) {
	id, err := r.GetUserIDByAddress(ctx, addr)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	logger.Log.Debug("no existing user found, creating", zap.String("address", addr))
	return r.CreateUser(ctx, addr, channel)
}

// resolveOrCreateConversation finds the conversation whose participant set is
// exactly {userA, userB}, creating it (with both participant rows) when none
// exists. Creation for a given unordered pair is serialized behind a
// transaction-scoped advisory lock, so two concurrent first contacts cannot
// both create a conversation.
func resolveOrCreateConversation(ctx context.Context, r repository.MessagingRepository, userA, userB int64) (int64, bool, error) {
	if err := r.LockConversationPair(ctx, userA, userB); err != nil {
		return 0, false, err
	}

	id, err := r.FindConversationBetween(ctx, userA, userB)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	logger.Log.Debug("no existing conversation found, creating",
		zap.Int64("user_a", userA),
		zap.Int64("user_b", userB),
	)
	id, err = r.CreateConversation(ctx)
	if err != nil {
		return 0, false, err
	}
	if err := r.AddParticipants(ctx, id, userA, userB); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// buildMessage assembles the row to append. The payload timestamp wins when
// present; otherwise processing time is used. Attachments are always stored as
// an ordered list, empty when absent.
func buildMessage(event messaging.MessageEvent, outcome *provider.Outcome, conversationID, senderID, recipientID int64) messaging.Message {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	attachments := event.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	return messaging.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Body:           event.Body,
		ProviderID:     event.ProviderMessageID,
		MessageType:    event.MessageType,
		Attachments:    attachments,
		Status:         outcome.StatusPtr(),
		CreatedAt:      ts.UTC(),
	}
}
