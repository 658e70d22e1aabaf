package realtime

import "sync"

// Broadcaster is the narrow surface the dispatch layer needs to push newly
// recorded messages to live subscribers.
type Broadcaster interface {
	Broadcast(conversationID int64, payload []byte) int
}

// Hub tracks websocket subscriptions per conversation and fans newly recorded
// messages out to every subscriber of that conversation.
type Hub struct {
	mu      sync.RWMutex
	streams map[int64]map[string]*Connection // conversationID -> connectionID -> connection
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{streams: make(map[int64]map[string]*Connection)}
}

var _ Broadcaster = (*Hub)(nil)

// Subscribe adds the connection to the conversation's stream and starts its
// write loop.
func (h *Hub) Subscribe(conversationID int64, conn *Connection) {
	h.mu.Lock()
	stream := h.streams[conversationID]
	if stream == nil {
		stream = make(map[string]*Connection)
		h.streams[conversationID] = stream
	}
	stream[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
}

// Unsubscribe removes the connection from the conversation's stream.
func (h *Hub) Unsubscribe(conversationID int64, conn *Connection) {
	h.mu.Lock()
	if stream := h.streams[conversationID]; stream != nil {
		delete(stream, conn.ID)
		if len(stream) == 0 {
			delete(h.streams, conversationID)
		}
	}
	h.mu.Unlock()
}

// Broadcast writes payload to every subscriber of the conversation and
// reports how many deliveries succeeded.
func (h *Hub) Broadcast(conversationID int64, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, conn := range h.streams[conversationID] {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0)
	for _, stream := range h.streams {
		for _, conn := range stream {
			conns = append(conns, conn)
		}
	}
	h.streams = make(map[int64]map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "hub shutdown")
	}
}
