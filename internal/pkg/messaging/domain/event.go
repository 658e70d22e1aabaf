package messaging

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// Validation errors surfaced to the HTTP layer as 400s.
var (
	ErrInvalidPhone       = errors.New("messaging: malformed phone number")
	ErrInvalidEmail       = errors.New("messaging: malformed email address")
	ErrInvalidTimestamp   = errors.New("messaging: malformed timestamp")
	ErrInvalidAttachment  = errors.New("messaging: malformed attachment url")
	ErrInvalidMessageType = errors.New("messaging: unsupported message type")
)

var (
	// US numbers in E.164 form only.
	phoneRe = regexp.MustCompile(`^\+1\d{10}$`)
	// Accepts plain addresses as well as the [x](mailto:x) markdown form some
	// inbound providers deliver.
	emailRe = regexp.MustCompile(`^(\[.*\]\(mailto:)?([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})(\))?$`)
)

// MessageEvent is the normalized shape every send request and webhook payload
// collapses into before persistence. The Channel and MessageType fields are the
// explicit discriminants; ProviderMessageID carries whichever provider-tracking
// field the variant had (messaging_provider_id for SMS/MMS, xillio_id for email).
type MessageEvent struct {
	Channel           Channel
	MessageType       MessageType
	From              string
	To                string
	Body              string
	Attachments       []string
	ProviderMessageID *string
	// Timestamp is zero when the payload carried none; the message writer
	// substitutes processing time.
	Timestamp time.Time
}

// SmsPayload is the variant for both outbound sends and inbound webhooks on the
// SMS/MMS channel. MessagingProviderID is only present on inbound payloads.
type SmsPayload struct {
	From                string
	To                  string
	Type                string // "sms" or "mms"
	Body                string
	Attachments         []string
	MessagingProviderID *string
	Timestamp           string
}

// EmailPayload is the variant for the email channel. XillioID is only present
// on inbound payloads.
type EmailPayload struct {
	From        string
	To          string
	Body        string
	Attachments []string
	XillioID    *string
	Timestamp   string
}

// NewSmsEvent validates an SMS/MMS payload and normalizes it.
func NewSmsEvent(p SmsPayload) (MessageEvent, error) {
	if !phoneRe.MatchString(p.From) {
		return MessageEvent{}, fmt.Errorf("%w: from=%q", ErrInvalidPhone, p.From)
	}
	if !phoneRe.MatchString(p.To) {
		return MessageEvent{}, fmt.Errorf("%w: to=%q", ErrInvalidPhone, p.To)
	}

	var msgType MessageType
	switch p.Type {
	case string(MessageTypeSms):
		msgType = MessageTypeSms
	case string(MessageTypeMms):
		msgType = MessageTypeMms
	default:
		return MessageEvent{}, fmt.Errorf("%w: %q", ErrInvalidMessageType, p.Type)
	}

	ts, err := parseTimestamp(p.Timestamp)
	if err != nil {
		return MessageEvent{}, err
	}
	attachments, err := normalizeAttachments(p.Attachments)
	if err != nil {
		return MessageEvent{}, err
	}

	return MessageEvent{
		Channel:           ChannelPhone,
		MessageType:       msgType,
		From:              p.From,
		To:                p.To,
		Body:              p.Body,
		Attachments:       attachments,
		ProviderMessageID: p.MessagingProviderID,
		Timestamp:         ts,
	}, nil
}

// NewEmailEvent validates an email payload and normalizes it.
func NewEmailEvent(p EmailPayload) (MessageEvent, error) {
	if !emailRe.MatchString(p.From) {
		return MessageEvent{}, fmt.Errorf("%w: from=%q", ErrInvalidEmail, p.From)
	}
	if !emailRe.MatchString(p.To) {
		return MessageEvent{}, fmt.Errorf("%w: to=%q", ErrInvalidEmail, p.To)
	}

	ts, err := parseTimestamp(p.Timestamp)
	if err != nil {
		return MessageEvent{}, err
	}
	attachments, err := normalizeAttachments(p.Attachments)
	if err != nil {
		return MessageEvent{}, err
	}

	return MessageEvent{
		Channel:           ChannelEmail,
		MessageType:       MessageTypeEmail,
		From:              p.From,
		To:                p.To,
		Body:              p.Body,
		Attachments:       attachments,
		ProviderMessageID: p.XillioID,
		Timestamp:         ts,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return ts, nil
}

func normalizeAttachments(urls []string) ([]string, error) {
	if len(urls) == 0 {
		return []string{}, nil
	}
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAttachment, raw)
		}
		out = append(out, raw)
	}
	return out, nil
}
