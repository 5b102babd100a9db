package models

// WebSocket/pub-sub event types
const (
	EventStreamStatus = "stream_status"
	EventError        = "error"
)

// WSMessage is the envelope pushed to websocket viewers and over redis
type WSMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// StreamStatusPayload carries the stream state after a transition. Stream is
// nil when no current state exists.
type StreamStatusPayload struct {
	Stream *LiveStreamState `json:"stream"`
}

type WSErrorPayload struct {
	Message string `json:"message"`
}
