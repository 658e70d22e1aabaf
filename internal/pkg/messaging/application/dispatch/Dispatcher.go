package dispatch

import (
	"context"
	"encoding/json"
	"time"

	cport "msg-relay/internal/infrastructure/cache/port"
	qport "msg-relay/internal/infrastructure/queue/port"
	"msg-relay/internal/infrastructure/realtime"
	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/task"
	"msg-relay/internal/pkg/messaging/application/usecase"
	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
	"msg-relay/internal/pkg/messaging/provider"

	"go.uber.org/zap"
)

// Dispatcher ties the persistence orchestrator to its side channels: the
// retry queue for failed writes, cache invalidation for new conversations and
// the realtime hub for live subscribers. Queue, cache and hub are optional.
type Dispatcher struct {
	recordUC *usecase.RecordMessageEventUseCase
	queue    qport.Client
	cache    cport.Cache
	hub      realtime.Broadcaster

	// strict downgrades the HTTP response when persistence fails; the default
	// mirrors the provider-result-only responses of the legacy behavior.
	strict bool
}

func NewDispatcher(repo repository.MessagingRepository, queue qport.Client, cache cport.Cache, hub realtime.Broadcaster, strict bool) *Dispatcher {
	return &Dispatcher{
		recordUC: usecase.NewRecordMessageEventUseCase(repo),
		queue:    queue,
		cache:    cache,
		hub:      hub,
		strict:   strict,
	}
}

// Strict reports whether persistence failures should fail the HTTP response.
func (d *Dispatcher) Strict() bool { return d.strict }

// Record persists the message event and reports whether it was recorded.
// On failure the event is handed to the retry queue (when configured), so a
// false return still means the event may eventually be stored.
func (d *Dispatcher) Record(ctx context.Context, event messaging.MessageEvent, outcome *provider.Outcome) bool {
	result, err := d.recordUC.Execute(ctx, usecase.RecordMessageEventInput{Event: event, Outcome: outcome})
	if err != nil {
		d.enqueueRetry(ctx, event, outcome)
		return false
	}

	if result.CreatedConversation {
		usecase.InvalidateConversationIDs(ctx, d.cache)
	}
	d.broadcast(result)
	return true
}

func (d *Dispatcher) enqueueRetry(ctx context.Context, event messaging.MessageEvent, outcome *provider.Outcome) {
	if d.queue == nil {
		return
	}
	payload, err := json.Marshal(task.NewRecordMessagePayload(event, outcome))
	if err != nil {
		logger.Log.Error("failed to encode retry payload", zap.Error(err))
		return
	}
	id, err := d.queue.Enqueue(ctx,
		qport.Task{Type: task.RecordMessageTaskType, Payload: payload},
		qport.EnqueueOption{Queue: "messaging", ProcessIn: 30 * time.Second, MaxRetry: 20},
	)
	if err != nil {
		logger.Log.Error("failed to enqueue message event retry", zap.Error(err))
		return
	}
	logger.Log.Info("message event queued for retry", zap.String("task_id", id))
}

// streamedMessage is the frame pushed to websocket subscribers.
type streamedMessage struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type messagePayload struct {
	ID             int64     `json:"message_id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	RecipientID    int64     `json:"recipient_id"`
	Body           string    `json:"body"`
	ProviderID     *string   `json:"provider_id"`
	MessageType    string    `json:"message_type"`
	Attachments    []string  `json:"attachments"`
	Status         *string   `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (d *Dispatcher) broadcast(result usecase.RecordMessageEventResult) {
	if d.hub == nil {
		return
	}
	m := result.Message
	frame := streamedMessage{
		Type: "message",
		Message: messagePayload{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			RecipientID:    m.RecipientID,
			Body:           m.Body,
			ProviderID:     m.ProviderID,
			MessageType:    string(m.MessageType),
			Attachments:    m.Attachments,
			Status:         m.Status,
			CreatedAt:      m.CreatedAt,
		},
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		logger.Log.Error("failed to encode stream frame", zap.Error(err))
		return
	}
	d.hub.Broadcast(result.ConversationID, payload)
}
