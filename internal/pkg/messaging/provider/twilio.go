package provider

import (
	"context"
	"time"

	"msg-relay/internal/logger"
	messaging "msg-relay/internal/pkg/messaging/domain"

	"go.uber.org/zap"
)

// Statuses a Twilio-style API reports for a message that is on its way.
var smsSuccessStatuses = map[string]struct{}{
	"queued":    {},
	"sent":      {},
	"delivered": {},
}

// TwilioAPIResponse mirrors the provider's message resource shape.
type TwilioAPIResponse struct {
	AccountSid          string  `json:"account_sid"`
	APIVersion          string  `json:"api_version"`
	Body                string  `json:"body"`
	DateCreated         *string `json:"date_created"`
	DateSent            *string `json:"date_sent"`
	DateUpdated         *string `json:"date_updated"`
	Direction           string  `json:"direction"`
	ErrorCode           *int    `json:"error_code"`
	ErrorMessage        *string `json:"error_message"`
	From                string  `json:"from"`
	NumMedia            string  `json:"num_media"`
	NumSegments         string  `json:"num_segments"`
	Price               *string `json:"price"`
	PriceUnit           *string `json:"price_unit"`
	MessagingServiceSid string  `json:"messaging_service_sid"`
	Sid                 string  `json:"sid"`
	Status              string  `json:"status"`
	To                  string  `json:"to"`
	URI                 string  `json:"uri"`
}

// SmsSender sends an SMS/MMS through the messaging provider.
type SmsSender interface {
	SendMessage(ctx context.Context, correlationID string, event messaging.MessageEvent, simulateError bool) (Outcome, error)
}

// MockTwilioService simulates the provider call without touching the network.
// simulateError forces the provider's failure response for testing the
// persistence-on-failure path.
type MockTwilioService struct{}

var _ SmsSender = (*MockTwilioService)(nil)

func (s *MockTwilioService) SendMessage(ctx context.Context, correlationID string, event messaging.MessageEvent, simulateError bool) (Outcome, error) {
	logger.Log.Info("mocking sms provider call",
		zap.String("from", event.From),
		zap.String("to", event.To),
		zap.Bool("simulate_error", simulateError),
	)

	resp := baseTwilioResponse(correlationID, event)
	if simulateError {
		code := 500
		msg := "Internal Server Error. Error sending message"
		resp.ErrorCode = &code
		resp.ErrorMessage = &msg
		resp.Status = "failed"
		return Outcome{Status: resp.Status, OK: false, Raw: resp}, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ts := now
	if !event.Timestamp.IsZero() {
		ts = event.Timestamp.UTC().Format(time.RFC3339)
	}
	resp.DateCreated = &ts
	resp.DateSent = &now
	resp.DateUpdated = &now
	resp.Status = "queued"

	_, ok := smsSuccessStatuses[resp.Status]
	return Outcome{Status: resp.Status, OK: ok, Raw: resp}, nil
}

func baseTwilioResponse(correlationID string, event messaging.MessageEvent) TwilioAPIResponse {
	return TwilioAPIResponse{
		AccountSid:          "ACXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX",
		APIVersion:          "2010-04-01",
		Body:                event.Body,
		Direction:           "outbound-api",
		From:                event.From,
		NumMedia:            "0",
		NumSegments:         "1",
		MessagingServiceSid: "MGaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Sid:                 correlationID,
		To:                  event.To,
		URI:                 "/2010-04-01/Accounts/ACaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa/Messages/SMaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.json",
	}
}
