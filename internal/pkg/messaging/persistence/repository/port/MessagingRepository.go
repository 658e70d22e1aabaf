package repository

import (
	"context"
	"errors"

	messaging "msg-relay/internal/pkg/messaging/domain"
)

// ErrNotFound signals an empty lookup result. It is a valid outcome, distinct
// from a store failure, so resolvers can decide to create instead of abort.
var ErrNotFound = errors.New("repository: not found")

// MessagingRepository defines persistence operations for the messaging domain.
//
// Implementations are bound to a query executor (pool or open transaction).
// WithinTx derives a repository bound to a fresh transaction and commits when
// fn returns nil; any error rolls back and is returned. Rollback failures are
// swallowed so the original cause propagates.
type MessagingRepository interface {
	WithinTx(ctx context.Context, fn func(r MessagingRepository) error) error

	// GetUserIDByAddress matches either address column against addr.
	GetUserIDByAddress(ctx context.Context, addr string) (int64, error)
	CreateUser(ctx context.Context, addr string, channel messaging.Channel) (int64, error)

	// LockConversationPair serializes first-contact creation for the unordered
	// pair for the duration of the enclosing transaction.
	LockConversationPair(ctx context.Context, userA, userB int64) error
	// FindConversationBetween returns the conversation whose participant set is
	// exactly the unordered pair {userA, userB}, or ErrNotFound.
	FindConversationBetween(ctx context.Context, userA, userB int64) (int64, error)
	CreateConversation(ctx context.Context) (int64, error)
	AddParticipants(ctx context.Context, conversationID, userA, userB int64) error
	ListConversationIDs(ctx context.Context) ([]int64, error)

	InsertMessage(ctx context.Context, m messaging.Message) (int64, error)
	GetMessagesByConversation(ctx context.Context, conversationID int64) ([]messaging.Message, error)
}
