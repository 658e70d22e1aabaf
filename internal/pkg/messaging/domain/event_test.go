package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSmsEvent(t *testing.T) {
	providerID := "message-1"

	testCases := []struct {
		name        string
		payload     SmsPayload
		expectedErr error
	}{
		{
			name: "valid_sms",
			payload: SmsPayload{
				From: "+12016661234",
				To:   "+18045551234",
				Type: "sms",
				Body: "hello",
			},
		},
		{
			name: "valid_mms_with_attachment",
			payload: SmsPayload{
				From:        "+12016661234",
				To:          "+18045551234",
				Type:        "mms",
				Body:        "picture",
				Attachments: []string{"https://example.com/image.jpg"},
			},
		},
		{
			name: "inbound_with_provider_id",
			payload: SmsPayload{
				From:                "+18045551234",
				To:                  "+12016661234",
				Type:                "sms",
				Body:                "reply",
				MessagingProviderID: &providerID,
			},
		},
		{
			name: "missing_country_code",
			payload: SmsPayload{
				From: "2016661234",
				To:   "+18045551234",
				Type: "sms",
			},
			expectedErr: ErrInvalidPhone,
		},
		{
			name: "too_short",
			payload: SmsPayload{
				From: "+12016661234",
				To:   "+1804555",
				Type: "sms",
			},
			expectedErr: ErrInvalidPhone,
		},
		{
			name: "unsupported_type",
			payload: SmsPayload{
				From: "+12016661234",
				To:   "+18045551234",
				Type: "fax",
			},
			expectedErr: ErrInvalidMessageType,
		},
		{
			name: "bad_timestamp",
			payload: SmsPayload{
				From:      "+12016661234",
				To:        "+18045551234",
				Type:      "sms",
				Timestamp: "yesterday",
			},
			expectedErr: ErrInvalidTimestamp,
		},
		{
			name: "bad_attachment_url",
			payload: SmsPayload{
				From:        "+12016661234",
				To:          "+18045551234",
				Type:        "mms",
				Attachments: []string{"not a url"},
			},
			expectedErr: ErrInvalidAttachment,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := NewSmsEvent(tc.payload)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ChannelPhone, event.Channel)
			assert.Equal(t, tc.payload.From, event.From)
			assert.Equal(t, tc.payload.To, event.To)
			assert.Equal(t, tc.payload.Type, string(event.MessageType))
			assert.Equal(t, tc.payload.MessagingProviderID, event.ProviderMessageID)
		})
	}
}

func TestNewEmailEvent(t *testing.T) {
	xillioID := "message-2"

	testCases := []struct {
		name        string
		payload     EmailPayload
		expectedErr error
	}{
		{
			name:    "plain_address",
			payload: EmailPayload{From: "user@usehatchapp.com", To: "contact@gmail.com", Body: "hi"},
		},
		{
			name:    "mailto_markdown_form",
			payload: EmailPayload{From: "[user@usehatchapp.com](mailto:user@usehatchapp.com)", To: "contact@gmail.com"},
		},
		{
			name: "inbound_with_xillio_id",
			payload: EmailPayload{
				From:     "contact@gmail.com",
				To:       "user@usehatchapp.com",
				XillioID: &xillioID,
			},
		},
		{
			name:        "missing_domain",
			payload:     EmailPayload{From: "user@", To: "contact@gmail.com"},
			expectedErr: ErrInvalidEmail,
		},
		{
			name:        "no_at_sign",
			payload:     EmailPayload{From: "user.usehatchapp.com", To: "contact@gmail.com"},
			expectedErr: ErrInvalidEmail,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := NewEmailEvent(tc.payload)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ChannelEmail, event.Channel)
			assert.Equal(t, MessageTypeEmail, event.MessageType)
			assert.Equal(t, tc.payload.XillioID, event.ProviderMessageID)
		})
	}
}

func TestEventTimestamp(t *testing.T) {
	t.Run("rfc3339_is_parsed", func(t *testing.T) {
		event, err := NewSmsEvent(SmsPayload{
			From:      "+12016661234",
			To:        "+18045551234",
			Type:      "sms",
			Timestamp: "2024-11-01T14:00:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 11, 1, 14, 0, 0, 0, time.UTC), event.Timestamp.UTC())
	})

	t.Run("absent_timestamp_stays_zero", func(t *testing.T) {
		event, err := NewSmsEvent(SmsPayload{From: "+12016661234", To: "+18045551234", Type: "sms"})
		require.NoError(t, err)
		assert.True(t, event.Timestamp.IsZero())
	})
}

func TestEventAttachmentsNeverNil(t *testing.T) {
	event, err := NewEmailEvent(EmailPayload{From: "a@b.com", To: "c@d.com"})
	require.NoError(t, err)
	assert.NotNil(t, event.Attachments)
	assert.Empty(t, event.Attachments)
}

func TestChannelAddressColumn(t *testing.T) {
	col, err := ChannelPhone.AddressColumn()
	require.NoError(t, err)
	assert.Equal(t, "phone_number", col)

	col, err = ChannelEmail.AddressColumn()
	require.NoError(t, err)
	assert.Equal(t, "email", col)

	_, err = Channel("carrier-pigeon").AddressColumn()
	assert.Error(t, err)
}
