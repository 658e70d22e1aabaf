package task

import (
	"context"
	"encoding/json"
	"testing"

	qport "msg-relay/internal/infrastructure/queue/port"
	messaging "msg-relay/internal/pkg/messaging/domain"
	"msg-relay/internal/pkg/messaging/persistence/repository/memory"
	"msg-relay/internal/pkg/messaging/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer captures registered handlers so tests can invoke them directly.
type fakeServer struct {
	handlers map[string]qport.Handler
}

func newFakeServer() *fakeServer {
	return &fakeServer{handlers: make(map[string]qport.Handler)}
}

func (s *fakeServer) Register(taskType string, h qport.Handler) {
	s.handlers[taskType] = h
}

func (s *fakeServer) Run(ctx context.Context) error  { return nil }
func (s *fakeServer) Stop(ctx context.Context) error { return nil }

func TestRecordMessagePayloadKeepsEventShape(t *testing.T) {
	providerID := "message-1"
	event, err := messaging.NewSmsEvent(messaging.SmsPayload{
		From:                "+12016661234",
		To:                  "+18045551234",
		Type:                "mms",
		Body:                "with picture",
		Attachments:         []string{"https://example.com/image.jpg"},
		MessagingProviderID: &providerID,
		Timestamp:           "2024-11-01T14:00:00Z",
	})
	require.NoError(t, err)

	p := NewRecordMessagePayload(event, &provider.Outcome{Status: "queued", OK: true})
	rebuilt, err := p.Event()
	require.NoError(t, err)

	assert.Equal(t, event.Channel, rebuilt.Channel)
	assert.Equal(t, event.MessageType, rebuilt.MessageType)
	assert.Equal(t, event.From, rebuilt.From)
	assert.Equal(t, event.To, rebuilt.To)
	assert.Equal(t, event.Attachments, rebuilt.Attachments)
	assert.Equal(t, event.ProviderMessageID, rebuilt.ProviderMessageID)
	assert.True(t, event.Timestamp.Equal(rebuilt.Timestamp))
	assert.Equal(t, "queued", p.Status)
}

func TestRecordMessagePayloadZeroTimestampStaysAbsent(t *testing.T) {
	event, err := messaging.NewSmsEvent(messaging.SmsPayload{
		From: "+12016661234", To: "+18045551234", Type: "sms", Body: "x",
	})
	require.NoError(t, err)

	p := NewRecordMessagePayload(event, nil)
	assert.Nil(t, p.Timestamp)

	rebuilt, err := p.Event()
	require.NoError(t, err)
	assert.True(t, rebuilt.Timestamp.IsZero())
}

func TestRetryHandlerPersistsEvent(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newFakeServer()
	RegisterRecordMessageTask(srv, repo)

	handler, ok := srv.handlers[RecordMessageTaskType]
	require.True(t, ok)

	event, err := messaging.NewSmsEvent(messaging.SmsPayload{
		From: "+12016661234", To: "+18045551234", Type: "sms", Body: "retried",
	})
	require.NoError(t, err)

	payload, err := json.Marshal(NewRecordMessagePayload(event, &provider.Outcome{Status: "queued", OK: true}))
	require.NoError(t, err)

	err = handler(context.Background(), qport.Task{Type: RecordMessageTaskType, Payload: payload})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.CountUsers())
	assert.Equal(t, 1, repo.CountConversations())

	msgs, err := repo.GetMessagesByConversation(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "retried", msgs[0].Body)
	require.NotNil(t, msgs[0].Status)
	assert.Equal(t, "queued", *msgs[0].Status)
}

func TestRetryHandlerRejectsMalformedPayload(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newFakeServer()
	RegisterRecordMessageTask(srv, repo)

	err := srv.handlers[RecordMessageTaskType](context.Background(), qport.Task{
		Type:    RecordMessageTaskType,
		Payload: []byte("not json"),
	})
	assert.Error(t, err)
	assert.Equal(t, 0, repo.CountUsers())
}
