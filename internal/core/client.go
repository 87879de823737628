package core

// DefaultSendBuffer is the outbound queue size used when none is configured.
const DefaultSendBuffer = 32

// Client is one live connection as seen by the core layer.
// The display name is owned by the Presence registry, not by the client.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with an outbound queue of the given size.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// Send enqueues an event without blocking. It reports false when the
// outbound queue is full and the event was dropped.
func (c *Client) Send(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
