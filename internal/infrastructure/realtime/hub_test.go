package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialSubscriber connects a websocket client and registers the server side of
// the connection with the hub under the given conversation.
func dialSubscriber(t *testing.T, hub *Hub, conversationID int64) (*websocket.Conn, *Connection) {
	t.Helper()

	registered := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := NewConnection(ws)
		hub.Subscribe(conversationID, conn)
		registered <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, <-registered
}

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	client, _ := dialSubscriber(t, hub, 7)

	delivered := hub.Broadcast(7, []byte(`{"type":"message"}`))
	assert.Equal(t, 1, delivered)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message"}`, string(payload))
}

func TestHubBroadcastIsScopedToConversation(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	dialSubscriber(t, hub, 1)

	assert.Equal(t, 0, hub.Broadcast(2, []byte("x")))
	assert.Equal(t, 1, hub.Broadcast(1, []byte("x")))
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	_, conn := dialSubscriber(t, hub, 3)
	hub.Unsubscribe(3, conn)

	assert.Equal(t, 0, hub.Broadcast(3, []byte("x")))
}

func TestHubBroadcastWithNoSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	assert.Equal(t, 0, hub.Broadcast(99, []byte("x")))
}
