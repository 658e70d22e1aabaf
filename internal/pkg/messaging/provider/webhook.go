package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"msg-relay/internal/logger"
	messaging "msg-relay/internal/pkg/messaging/domain"

	"go.uber.org/zap"
)

// ErrUpstream simulates a provider-side failure while handling a webhook.
var ErrUpstream = errors.New("provider: upstream provider server error")

// smsWebhookProviders are the messaging_provider_id values with a handler.
var smsWebhookProviders = map[string]struct{}{
	"twilio":    {},
	"message-1": {},
	"message-2": {},
}

// WebhookHandler acknowledges an inbound provider webhook and produces the
// provider-shaped receipt the caller echoes back.
type WebhookHandler interface {
	HandleIncomingMessage(ctx context.Context, correlationID string, event messaging.MessageEvent, simulateError bool) (Outcome, error)
}

// MockWebhookService simulates per-provider inbound handling.
type MockWebhookService struct{}

var _ WebhookHandler = (*MockWebhookService)(nil)

func (s *MockWebhookService) HandleIncomingMessage(ctx context.Context, correlationID string, event messaging.MessageEvent, simulateError bool) (Outcome, error) {
	if simulateError {
		logger.Log.Error("mocking webhook call failure",
			zap.String("from", event.From),
			zap.String("to", event.To),
		)
		return Outcome{}, ErrUpstream
	}

	switch event.Channel {
	case messaging.ChannelPhone:
		return s.handleSms(correlationID, event)
	case messaging.ChannelEmail:
		return s.handleEmail(correlationID, event)
	default:
		return Outcome{}, fmt.Errorf("provider: unsupported channel %q", string(event.Channel))
	}
}

func (s *MockWebhookService) handleSms(correlationID string, event messaging.MessageEvent) (Outcome, error) {
	providerID := ""
	if event.ProviderMessageID != nil {
		providerID = *event.ProviderMessageID
	}
	if _, ok := smsWebhookProviders[providerID]; !ok {
		return Outcome{}, fmt.Errorf("provider: unsupported sms provider %q", providerID)
	}
	logger.Log.Info("mocking sms webhook handler", zap.String("provider", providerID))

	now := time.Now().UTC().Format(time.RFC3339)
	resp := baseTwilioResponse(correlationID, event)
	resp.Direction = "inbound"
	resp.DateCreated = &now
	resp.DateSent = &now
	resp.DateUpdated = &now
	resp.Status = "delivered"
	return Outcome{Status: resp.Status, OK: true, Raw: resp}, nil
}

func (s *MockWebhookService) handleEmail(correlationID string, event messaging.MessageEvent) (Outcome, error) {
	// one generic handler covers all email providers
	logger.Log.Info("mocking email webhook handler")
	resp := EmailAPIResponse{
		MessageID: correlationID,
		Status:    200,
		Message:   "Email received successfully",
	}
	return Outcome{Status: strconv.Itoa(resp.Status), OK: true, Raw: resp}, nil
}
