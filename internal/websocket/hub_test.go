package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHubSendToViewer(t *testing.T) {
	h := &Hub{
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan []byte, 10),
		register:   make(chan *Client, 1),
		unregister: make(chan *Client, 1),
	}

	id1 := uuid.New()
	id2 := uuid.New()

	// Use actual Client struct but only use the send channel for assertion
	c1 := &Client{id: id1, send: make(chan []byte, 4)}
	c2 := &Client{id: id2, send: make(chan []byte, 4)}

	h.clients[id1] = c1
	h.clients[id2] = c2

	if h.ViewerCount() != 2 {
		t.Fatalf("expected 2 viewers, got %d", h.ViewerCount())
	}

	msg := map[string]string{"event": "stream_status"}
	if err := h.Send(id1, msg); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	select {
	case b := <-c1.send:
		var got map[string]string
		json.Unmarshal(b, &got)
		if got["event"] != "stream_status" {
			t.Fatalf("unexpected payload: %v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timed out waiting for message to viewer 1")
	}

	// The other viewer must not receive a directed message
	select {
	case b := <-c2.send:
		t.Fatalf("viewer 2 unexpectedly received: %s", b)
	default:
	}
}

func TestHubSendToUnknownViewer(t *testing.T) {
	h := &Hub{
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan []byte, 10),
		register:   make(chan *Client, 1),
		unregister: make(chan *Client, 1),
	}

	// Unknown recipients are a silent no-op
	if err := h.Send(uuid.New(), map[string]string{"event": "stream_status"}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
}
