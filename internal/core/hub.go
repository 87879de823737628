package core

import (
	"context"

	"github.com/rs/zerolog"
)

// DefaultRoomCapacity bounds room membership when no capacity is configured.
const DefaultRoomCapacity = 5

// Options configures a Hub.
type Options struct {
	RoomCapacity int
	Logger       *zerolog.Logger
}

// Hub owns the lobby unit, the presence registry and the relay, and is the
// entry point used by transports.
type Hub struct {
	presence *Presence
	lobby    *Lobby
	relay    *Relay
	log      zerolog.Logger
	done     chan struct{}
}

// NewHub creates a new chat hub instance.
func NewHub(opts Options) *Hub {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	capacity := opts.RoomCapacity
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}

	presence := NewPresence()
	return &Hub{
		presence: presence,
		lobby:    newLobby(presence, capacity, logger),
		relay:    NewRelay(presence, logger),
		log:      logger.With().Str("component", "hub").Logger(),
		done:     make(chan struct{}),
	}
}

// Run drives the lobby (and, through it, every room) until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.log.Info().Int("room_capacity", h.lobby.capacity).Msg("hub started")
	h.lobby.Run(ctx)
}

// Done is closed once Run has returned and every room has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Connect registers a new connection and places it in the lobby.
func (h *Hub) Connect(c *Client) (*Session, error) {
	info := h.presence.Register(c)
	c.Send(&Event{Kind: EventConnected, User: info})
	if !h.lobby.post(lobbyConnect{client: c}) {
		h.presence.Unregister(c.ID)
		return nil, ErrHubClosed
	}
	h.log.Info().Str("client_id", c.ID).Str("nick", info.Name).Msg("client connected")
	return &Session{hub: h, client: c, owner: h.lobby}, nil
}

// Rooms returns a snapshot of the room directory.
func (h *Hub) Rooms(ctx context.Context) ([]RoomSummary, error) {
	reply := make(chan []RoomSummary, 1)
	if !h.lobby.post(directoryQuery{reply: reply}) {
		return nil, ErrHubClosed
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrHubClosed
	}
}

// Users returns a snapshot of every connected identity.
func (h *Hub) Users() []UserInfo {
	return h.presence.Snapshot()
}

// CloseRoom asks a room to shut down; its members are sent back to the lobby.
func (h *Hub) CloseRoom(ctx context.Context, id int64) error {
	reply := make(chan error, 1)
	if !h.lobby.post(closeRoomRequest{roomID: id, reply: reply}) {
		return ErrHubClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubClosed
	}
}
