package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"msg-relay/internal/infrastructure/realtime"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	"msg-relay/internal/pkg/messaging/persistence/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, repo *memory.MemMessagingRepository, strict bool) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	d := dispatch.NewDispatcher(repo, nil, nil, hub, strict)

	r := gin.New()
	api := r.Group("/api")
	RegisterRoutes(api, repo, d, nil, hub)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *resty.Response {
	t.Helper()
	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	require.NoError(t, err)
	return resp
}

func TestSmsConversationFlow(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newTestServer(t, repo, false)

	// outbound send creates both users and the conversation
	resp := postJSON(t, srv.URL+"/api/messages/sms", `{
		"from": "+12016661234",
		"to": "+18045551234",
		"type": "sms",
		"body": "Hello! This is a test message.",
		"timestamp": "2024-11-01T14:00:00Z"
	}`)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Equal(t, 2, repo.CountUsers())
	assert.Equal(t, 1, repo.CountConversations())

	var sent struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &sent))
	assert.Equal(t, "queued", sent.Status)

	// the inbound reply lands in the same conversation
	resp = postJSON(t, srv.URL+"/api/webhooks/sms", `{
		"from": "+18045551234",
		"to": "+12016661234",
		"type": "sms",
		"messaging_provider_id": "message-1",
		"body": "This is an incoming message",
		"timestamp": "2024-11-01T14:00:30Z"
	}`)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Equal(t, 2, repo.CountUsers())
	assert.Equal(t, 1, repo.CountConversations())

	// one conversation listed
	resp, err := resty.New().R().Get(srv.URL + "/api/conversations")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())

	var listing struct {
		Conversations []int64 `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &listing))
	require.Len(t, listing.Conversations, 1)

	// history holds both messages in order with the inbound provider id kept
	resp, err = resty.New().R().Get(srv.URL + "/api/conversations/1/messages")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())

	var history struct {
		Count    int `json:"count"`
		Messages []struct {
			Body       string  `json:"body"`
			ProviderID *string `json:"provider_id"`
			Status     *string `json:"status"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &history))
	require.Equal(t, 2, history.Count)
	assert.Equal(t, "Hello! This is a test message.", history.Messages[0].Body)
	assert.Nil(t, history.Messages[0].ProviderID)
	require.NotNil(t, history.Messages[1].ProviderID)
	assert.Equal(t, "message-1", *history.Messages[1].ProviderID)
}

func TestEmailConversationFlow(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newTestServer(t, repo, false)

	resp := postJSON(t, srv.URL+"/api/messages/email", `{
		"from": "user@usehatchapp.com",
		"to": "contact@gmail.com",
		"body": "Hello! This is a test email message.",
		"attachments": ["https://example.com/document.pdf"]
	}`)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())

	resp = postJSON(t, srv.URL+"/api/webhooks/email", `{
		"from": "contact@gmail.com",
		"to": "user@usehatchapp.com",
		"xillio_id": "message-2",
		"body": "<html><body>reply</body></html>"
	}`)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())

	assert.Equal(t, 2, repo.CountUsers())
	assert.Equal(t, 1, repo.CountConversations())
}

func TestInvalidPayloads(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newTestServer(t, repo, false)

	testCases := []struct {
		name string
		path string
		body string
	}{
		{
			name: "missing_required_fields",
			path: "/api/messages/sms",
			body: `{"from": "+12016661234"}`,
		},
		{
			name: "malformed_phone",
			path: "/api/messages/sms",
			body: `{"from": "2016661234", "to": "+18045551234", "type": "sms", "body": "x"}`,
		},
		{
			name: "unsupported_type",
			path: "/api/messages/sms",
			body: `{"from": "+12016661234", "to": "+18045551234", "type": "fax", "body": "x"}`,
		},
		{
			name: "malformed_email",
			path: "/api/messages/email",
			body: `{"from": "not-an-email", "to": "contact@gmail.com", "body": "x"}`,
		},
		{
			name: "webhook_missing_provider_id",
			path: "/api/webhooks/sms",
			body: `{"from": "+18045551234", "to": "+12016661234", "type": "sms", "body": "x"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+tc.path, tc.body)
			assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode())
		})
	}

	// nothing invalid was persisted
	assert.Equal(t, 0, repo.CountUsers())
	assert.Equal(t, 0, repo.CountConversations())
}

func TestSimulatedProviderFailure(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newTestServer(t, repo, false)

	resp := postJSON(t, srv.URL+"/api/messages/sms?error=true", `{
		"from": "+12016661234",
		"to": "+18045551234",
		"type": "sms",
		"body": "will fail"
	}`)
	assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode())

	// failed provider calls are still recorded for audit
	assert.Equal(t, 2, repo.CountUsers())
	assert.Equal(t, 1, repo.CountConversations())

	resp, err := resty.New().R().Get(srv.URL + "/api/conversations/1/messages")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())

	var history struct {
		Messages []struct {
			Body   string  `json:"body"`
			Status *string `json:"status"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &history))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "will fail", history.Messages[0].Body)
	require.NotNil(t, history.Messages[0].Status)
	assert.Equal(t, "failed", *history.Messages[0].Status)
}

func TestHealthEndpoints(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newTestServer(t, repo, false)

	for _, path := range []string{"/api/messages", "/api/webhooks"} {
		t.Run(path, func(t *testing.T) {
			resp, err := resty.New().R().Get(srv.URL + path)
			require.NoError(t, err)
			assert.Equal(t, nethttp.StatusOK, resp.StatusCode())
			assert.Contains(t, string(resp.Body()), "running")
		})
	}
}

func TestPersistenceFailurePolicy(t *testing.T) {
	body := `{"from": "+12016661234", "to": "+18045551234", "type": "sms", "body": "x"}`

	t.Run("lenient_mode_returns_provider_result", func(t *testing.T) {
		repo := memory.NewMemMessagingRepository()
		repo.FailInsertMessage = assert.AnError
		srv := newTestServer(t, repo, false)

		resp := postJSON(t, srv.URL+"/api/messages/sms", body)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode())
	})

	t.Run("strict_mode_fails_the_request", func(t *testing.T) {
		repo := memory.NewMemMessagingRepository()
		repo.FailInsertMessage = assert.AnError
		srv := newTestServer(t, repo, true)

		resp := postJSON(t, srv.URL+"/api/messages/sms", body)
		assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode())
	})
}

func TestGetMessagesEndpoint(t *testing.T) {
	repo := memory.NewMemMessagingRepository()
	srv := newTestServer(t, repo, false)

	t.Run("bad_conversation_id", func(t *testing.T) {
		resp, err := resty.New().R().Get(srv.URL + "/api/conversations/abc/messages")
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode())
	})

	t.Run("unknown_conversation_is_empty", func(t *testing.T) {
		resp, err := resty.New().R().Get(srv.URL + "/api/conversations/99/messages")
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode())

		var history struct {
			Count    int               `json:"count"`
			Messages []json.RawMessage `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(resp.Body(), &history))
		assert.Zero(t, history.Count)
		assert.Empty(t, history.Messages)
	})
}
