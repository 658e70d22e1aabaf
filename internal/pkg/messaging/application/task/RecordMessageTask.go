package task

import (
	"context"
	"encoding/json"
	"time"

	qport "msg-relay/internal/infrastructure/queue/port"
	"msg-relay/internal/logger"
	"msg-relay/internal/pkg/messaging/application/usecase"
	messaging "msg-relay/internal/pkg/messaging/domain"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
	"msg-relay/internal/pkg/messaging/provider"

	"go.uber.org/zap"
)

// RecordMessageTaskType is the queue task name for retrying a message event
// whose first persistence attempt failed.
const RecordMessageTaskType = "messaging:record_event"

// RecordMessagePayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type RecordMessagePayload struct {
	Channel           string   `json:"channel"`
	MessageType       string   `json:"messageType"`
	From              string   `json:"from"`
	To                string   `json:"to"`
	Body              string   `json:"body"`
	Attachments       []string `json:"attachments"`
	ProviderMessageID *string  `json:"providerMessageId"`
	Timestamp         *string  `json:"timestamp"`
	Status            string   `json:"status"`
}

// NewRecordMessagePayload converts a normalized event plus provider outcome
// into the queue payload.
func NewRecordMessagePayload(event messaging.MessageEvent, outcome *provider.Outcome) RecordMessagePayload {
	p := RecordMessagePayload{
		Channel:           string(event.Channel),
		MessageType:       string(event.MessageType),
		From:              event.From,
		To:                event.To,
		Body:              event.Body,
		Attachments:       event.Attachments,
		ProviderMessageID: event.ProviderMessageID,
	}
	if !event.Timestamp.IsZero() {
		ts := event.Timestamp.UTC().Format(time.RFC3339)
		p.Timestamp = &ts
	}
	if outcome != nil {
		p.Status = outcome.Status
	}
	return p
}

// Event reconstructs the normalized message event.
func (p RecordMessagePayload) Event() (messaging.MessageEvent, error) {
	event := messaging.MessageEvent{
		Channel:           messaging.Channel(p.Channel),
		MessageType:       messaging.MessageType(p.MessageType),
		From:              p.From,
		To:                p.To,
		Body:              p.Body,
		Attachments:       p.Attachments,
		ProviderMessageID: p.ProviderMessageID,
	}
	if p.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339, *p.Timestamp)
		if err != nil {
			return messaging.MessageEvent{}, err
		}
		event.Timestamp = ts
	}
	return event, nil
}

// RegisterRecordMessageTask binds the retry handler to the provided server.
// The handler re-runs the persistence orchestrator; returning an error defers
// to the adapter's retry policy.
func RegisterRecordMessageTask(srv qport.Server, repo repository.MessagingRepository) {
	srv.Register(RecordMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p RecordMessagePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}
		event, err := p.Event()
		if err != nil {
			return err
		}

		var outcome *provider.Outcome
		if p.Status != "" {
			outcome = &provider.Outcome{Status: p.Status}
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		uc := usecase.NewRecordMessageEventUseCase(repo)
		if _, err := uc.Execute(ctx, usecase.RecordMessageEventInput{Event: event, Outcome: outcome}); err != nil {
			logger.Log.Warn("queued message event retry failed",
				zap.String("from", event.From),
				zap.String("to", event.To),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
}
