package core

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Messages understood by a room unit.
type (
	// roomArriving carries ownership of a connection from the lobby.
	roomArriving struct {
		client *Client
		reply  chan<- owner
	}
	roomCommand struct {
		client *Client
		cmd    Command
		reply  chan<- owner
	}
	roomDetach struct {
		client *Client
		who    UserInfo
	}
	roomDirectory struct {
		rooms []RoomSummary
	}
	roomShutdown struct{}
)

// Room is a bounded channel running in its own goroutine. It is the only
// authority on its membership; the lobby learns about it through
// occupancyChanged and roomClosed.
type Room struct {
	ID       int64
	Name     string
	capacity int

	inbox    *mailbox[any]
	lobby    *Lobby
	presence *Presence
	log      zerolog.Logger

	members *members
	closing bool
}

func newRoom(id int64, name string, capacity int, lobby *Lobby, presence *Presence, logger zerolog.Logger) *Room {
	return &Room{
		ID:       id,
		Name:     name,
		capacity: capacity,
		inbox:    newMailbox[any](),
		lobby:    lobby,
		presence: presence,
		log:      logger.With().Str("component", "room").Int64("room_id", id).Str("room", name).Logger(),
		members:  newMembers(),
	}
}

func (r *Room) submit(c *Client, cmd Command, reply chan<- owner) bool {
	return r.inbox.put(roomCommand{client: c, cmd: cmd, reply: reply})
}

func (r *Room) detach(c *Client, who UserInfo) bool {
	return r.inbox.put(roomDetach{client: c, who: who})
}

func (r *Room) run(ctx context.Context) {
	r.log.Debug().Msg("room started")
	for {
		select {
		case <-ctx.Done():
			r.inbox.close()
			return
		case <-r.inbox.ready():
			for {
				msg, ok := r.inbox.pop()
				if !ok {
					break
				}
				r.handle(msg)
				if r.closing {
					r.shutdown()
					return
				}
			}
		}
	}
}

func (r *Room) handle(msg any) {
	switch m := msg.(type) {
	case roomArriving:
		r.arrive(m.client, m.reply)
	case roomCommand:
		if !r.members.has(m.client.ID) {
			// The connection was already sent back; let the lobby answer.
			r.lobby.submit(m.client, m.cmd, m.reply)
			return
		}
		r.dispatch(m)
	case roomDetach:
		if _, ok := r.members.remove(m.client.ID); !ok {
			r.lobby.detach(m.client, m.who)
			return
		}
		r.members.broadcast(r.notice(EventUserLeft, m.who), "")
		r.log.Debug().Str("client_id", m.client.ID).Msg("member disconnected")
		r.reportOccupancy()
	case roomDirectory:
		r.members.broadcast(&Event{Kind: EventRoomListUpdate, Rooms: m.rooms}, "")
	case roomShutdown:
		r.evictAll()
	default:
		r.log.Error().Type("message", msg).Msg("unexpected room message")
	}
}

func (r *Room) arrive(c *Client, reply chan<- owner) {
	if r.members.len() >= r.capacity {
		r.reportOccupancy()
		r.lobby.post(memberReturned{
			client: c,
			reply:  reply,
			err:    coreErrorf(ErrCodeRoomFull, "room %s is full", r.Name),
		})
		return
	}

	info := r.presence.Info(c.ID)
	r.members.broadcast(r.notice(EventUserJoined, info), "")
	r.members.add(c)
	c.Send(&Event{Kind: EventRoomEntered, RoomID: r.ID, RoomName: r.Name})
	r.log.Debug().Str("client_id", c.ID).Int("users", r.members.len()).Msg("member arrived")

	r.reportOccupancy()
	answer(reply, r)
}

func (r *Room) dispatch(m roomCommand) {
	c, cmd := m.client, m.cmd
	handed := false
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("client_id", c.ID).Stringer("command", cmd.Kind).Msg("room handler fault")
			c.Send(NewErrorEvent(ErrCodeHandlerFault, "internal error while processing command"))
		}
		if !handed {
			answer(m.reply, r)
		}
	}()

	switch cmd.Kind {
	case CommandSendRoomMessage:
		text := strings.TrimSpace(cmd.Text)
		if text == "" {
			c.Send(NewErrorEvent(ErrCodeBadRequest, "message is required"))
			return
		}
		id := ulid.Make().String()
		sender := r.presence.Info(c.ID)
		sent, dropped := r.members.broadcast(&Event{
			Kind:      EventRoomMessage,
			MessageID: id,
			RoomID:    r.ID,
			RoomName:  r.Name,
			User:      sender,
			Text:      cmd.Text,
		}, c.ID)
		if dropped > 0 {
			r.log.Debug().Str("message_id", id).Int("sent", sent).Int("dropped", dropped).Msg("broadcast dropped for slow members")
		}
		c.Send(&Event{Kind: EventMessageSent, MessageID: id, RoomID: r.ID, Text: cmd.Text})
	case CommandLeaveRoom:
		r.leave(c, m.reply)
		handed = true
	case CommandNick:
		if old, ok := rename(r.presence, c, cmd.Name); ok {
			r.members.broadcast(&Event{
				Kind:     EventUserRenamed,
				RoomID:   r.ID,
				RoomName: r.Name,
				User:     r.presence.Info(c.ID),
				OldName:  old,
			}, c.ID)
		}
	case CommandList:
		if cmd.Entity != ListUsers {
			c.Send(errorEvent(coreErrorf(ErrCodeBadRequest, "unknown entity %q (only %q is valid in a room)", cmd.Entity, ListUsers)))
			return
		}
		c.Send(&Event{Kind: EventUserList, RoomID: r.ID, Users: r.members.snapshot(r.presence)})
	case CommandListAllUsers:
		c.Send(&Event{Kind: EventUserList, Users: r.presence.Snapshot()})
	case CommandCreateRoom, CommandJoinRoom:
		c.Send(errorEvent(coreErrorf(ErrCodeUnknownCommand, "command %q is not available inside a room, leave first", cmd.Kind)))
	default:
		c.Send(errorEvent(coreErrorf(ErrCodeUnknownCommand, "unknown command %q", cmd.Kind)))
	}
}

// leave sends c back to the lobby. The lobby, not the room, answers the
// session once it has taken the connection back.
func (r *Room) leave(c *Client, reply chan<- owner) {
	r.members.remove(c.ID)
	c.Send(&Event{Kind: EventRoomLeft, RoomID: r.ID, RoomName: r.Name})
	r.members.broadcast(r.notice(EventUserLeft, r.presence.Info(c.ID)), "")
	r.log.Debug().Str("client_id", c.ID).Int("users", r.members.len()).Msg("member left")

	r.reportOccupancy()
	r.lobby.post(memberReturned{client: c, reply: reply})
}

// evictAll returns every member to the lobby and marks the room for teardown.
func (r *Room) evictAll() {
	evicted := r.members.clients()
	r.closing = true
	r.lobby.post(roomClosed{roomID: r.ID})
	for _, c := range evicted {
		r.members.remove(c.ID)
		c.Send(&Event{Kind: EventRoomClosed, RoomID: r.ID, RoomName: r.Name})
		r.lobby.post(memberReturned{client: c})
	}
	r.log.Info().Int("evicted", len(evicted)).Msg("room closed by request")
}

func (r *Room) reportOccupancy() {
	n := r.members.len()
	if n == 0 {
		r.closing = true
		r.lobby.post(roomClosed{roomID: r.ID})
		return
	}
	r.lobby.post(occupancyChanged{roomID: r.ID, users: n})
}

// shutdown closes the inbox and routes everything still queued to the lobby:
// arrivals bounce, commands are replayed, detaches are forwarded.
func (r *Room) shutdown() {
	for _, msg := range r.inbox.close() {
		switch m := msg.(type) {
		case roomArriving:
			r.lobby.post(memberReturned{
				client: m.client,
				reply:  m.reply,
				err:    coreErrorf(ErrCodeRoomNotFound, "room %d not found", r.ID),
			})
		case roomCommand:
			r.lobby.submit(m.client, m.cmd, m.reply)
		case roomDetach:
			r.lobby.detach(m.client, m.who)
		}
	}
	r.log.Info().Msg("room destroyed")
}

func (r *Room) notice(kind EventKind, who UserInfo) *Event {
	return &Event{Kind: kind, RoomID: r.ID, RoomName: r.Name, User: who}
}
