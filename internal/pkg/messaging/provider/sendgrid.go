package provider

import (
	"context"
	"strconv"

	"msg-relay/internal/logger"
	messaging "msg-relay/internal/pkg/messaging/domain"

	"go.uber.org/zap"
)

// SendGridError is one entry of the provider's error detail list.
type SendGridError struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

// EmailAPIResponse mirrors the provider's send-mail response shape.
type EmailAPIResponse struct {
	MessageID string          `json:"messageId"`
	Status    int             `json:"status"`
	Message   string          `json:"message,omitempty"`
	Errors    []SendGridError `json:"error,omitempty"`
}

// EmailSender sends an email through the messaging provider.
type EmailSender interface {
	SendEmail(ctx context.Context, correlationID string, event messaging.MessageEvent, simulateError bool) (Outcome, error)
}

// MockSendGridService simulates the email provider call without touching the network.
type MockSendGridService struct{}

var _ EmailSender = (*MockSendGridService)(nil)

func (s *MockSendGridService) SendEmail(ctx context.Context, correlationID string, event messaging.MessageEvent, simulateError bool) (Outcome, error) {
	logger.Log.Info("mocking email provider call",
		zap.String("from", event.From),
		zap.String("to", event.To),
		zap.Bool("simulate_error", simulateError),
	)

	if simulateError {
		resp := EmailAPIResponse{
			MessageID: correlationID,
			Status:    400,
			Errors: []SendGridError{
				{
					ErrorType:    "personalizations.subject",
					ErrorMessage: "The subject of your email must be a string at least one character in length.",
				},
				{
					ErrorType:    "personalizations.subject",
					ErrorMessage: "The subject is required. You can get around this requirement if you use a template with a subject defined.",
				},
			},
		}
		return Outcome{Status: strconv.Itoa(resp.Status), OK: false, Raw: resp}, nil
	}

	resp := EmailAPIResponse{
		MessageID: correlationID,
		Status:    200,
		Message:   "Email sent successfully",
	}
	return Outcome{Status: strconv.Itoa(resp.Status), OK: true, Raw: resp}, nil
}
