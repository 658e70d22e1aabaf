package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"msg-relay/internal/infrastructure/cache/port"
	"msg-relay/internal/logger"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"

	"go.uber.org/zap"
)

// conversationIDsCacheKey holds the JSON-encoded id list.
const conversationIDsCacheKey = "messaging:conversation_ids"

const conversationIDsCacheTTL = 30 * time.Second

// ListConversationsUseCase enumerates all conversation ids, optionally backed
// by a short-TTL cache. Cache is best effort: a miss or a cache error falls
// through to the store, and set failures are only logged.
type ListConversationsUseCase struct {
	Repo  repository.MessagingRepository
	Cache port.Cache // nil disables caching
}

func NewListConversationsUseCase(repo repository.MessagingRepository, cache port.Cache) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Cache: cache}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context) ([]int64, error) {
	if uc.Cache != nil {
		if cached, err := uc.Cache.Get(ctx, conversationIDsCacheKey); err == nil {
			var ids []int64
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				return ids, nil
			}
		} else if !errors.Is(err, port.ErrMiss) {
			logger.Log.Warn("conversation id cache read failed", zap.Error(err))
		}
	}

	ids, err := uc.Repo.ListConversationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if encoded, err := json.Marshal(ids); err == nil {
			if err := uc.Cache.Set(ctx, conversationIDsCacheKey, string(encoded), conversationIDsCacheTTL); err != nil {
				logger.Log.Warn("conversation id cache write failed", zap.Error(err))
			}
		}
	}
	return ids, nil
}

// InvalidateConversationIDs drops the cached listing after a new conversation
// is created. Best effort.
func InvalidateConversationIDs(ctx context.Context, cache port.Cache) {
	if cache == nil {
		return
	}
	if _, err := cache.Del(ctx, conversationIDsCacheKey); err != nil {
		logger.Log.Warn("conversation id cache invalidation failed", zap.Error(err))
	}
}
