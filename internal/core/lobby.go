package core

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Messages understood by the lobby unit.
type (
	lobbyConnect struct {
		client *Client
	}
	lobbyCommand struct {
		client *Client
		cmd    Command
		reply  chan<- owner
	}
	lobbyDetach struct {
		client *Client
	}
	// occupancyChanged is reported by a room after every membership change.
	occupancyChanged struct {
		roomID int64
		users  int
	}
	// roomClosed is reported by a room that emptied and tore itself down.
	roomClosed struct {
		roomID int64
	}
	// memberReturned carries ownership of a connection back from a room.
	// err is set when the room refused an arrival.
	memberReturned struct {
		client *Client
		reply  chan<- owner
		err    *CoreError
	}
	directoryQuery struct {
		reply chan []RoomSummary
	}
	closeRoomRequest struct {
		roomID int64
		reply  chan error
	}
)

type roomEntry struct {
	room  *Room
	users int
}

// Lobby is the root channel. Its goroutine is the sole writer of the room
// directory and of the lobby membership set.
type Lobby struct {
	inbox    *mailbox[any]
	presence *Presence
	capacity int
	log      zerolog.Logger

	members    *members
	rooms      map[int64]*roomEntry
	nextRoomID int64

	roomCtx context.Context
	roomWG  sync.WaitGroup
}

func newLobby(presence *Presence, capacity int, logger zerolog.Logger) *Lobby {
	return &Lobby{
		inbox:    newMailbox[any](),
		presence: presence,
		capacity: capacity,
		log:      logger.With().Str("component", "lobby").Logger(),
		members:  newMembers(),
		rooms:    make(map[int64]*roomEntry),
	}
}

func (l *Lobby) post(msg any) bool {
	return l.inbox.put(msg)
}

func (l *Lobby) submit(c *Client, cmd Command, reply chan<- owner) bool {
	return l.post(lobbyCommand{client: c, cmd: cmd, reply: reply})
}

func (l *Lobby) detach(c *Client, _ UserInfo) bool {
	return l.post(lobbyDetach{client: c})
}

// Run processes lobby messages until ctx is cancelled, then waits for every
// room goroutine it started.
func (l *Lobby) Run(ctx context.Context) {
	l.roomCtx = ctx
	defer func() {
		l.inbox.close()
		l.roomWG.Wait()
		l.log.Info().Msg("lobby stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.inbox.ready():
			for {
				msg, ok := l.inbox.pop()
				if !ok {
					break
				}
				l.handle(msg)
			}
		}
	}
}

func (l *Lobby) handle(msg any) {
	switch m := msg.(type) {
	case lobbyConnect:
		l.members.add(m.client)
		l.log.Debug().Str("client_id", m.client.ID).Msg("client entered lobby")
	case lobbyCommand:
		l.dispatch(m)
	case lobbyDetach:
		if _, ok := l.members.remove(m.client.ID); ok {
			l.log.Debug().Str("client_id", m.client.ID).Msg("client left lobby")
		}
	case occupancyChanged:
		entry, ok := l.rooms[m.roomID]
		if !ok {
			return
		}
		entry.users = m.users
		l.publish()
	case roomClosed:
		if _, ok := l.rooms[m.roomID]; !ok {
			return
		}
		delete(l.rooms, m.roomID)
		l.log.Info().Int64("room_id", m.roomID).Msg("room removed from directory")
		l.publish()
	case memberReturned:
		l.members.add(m.client)
		if m.err != nil {
			m.client.Send(errorEvent(m.err))
		} else {
			m.client.Send(&Event{Kind: EventRoomListUpdate, Rooms: l.directory()})
		}
		answer(m.reply, l)
	case directoryQuery:
		m.reply <- l.directory()
	case closeRoomRequest:
		entry, ok := l.rooms[m.roomID]
		if !ok || !entry.room.inbox.put(roomShutdown{}) {
			m.reply <- ErrRoomNotFound
			return
		}
		m.reply <- nil
	default:
		l.log.Error().Type("message", msg).Msg("unexpected lobby message")
	}
}

// dispatch runs one command from a lobby member. Unless the connection was
// handed to a room, the lobby answers the session itself.
func (l *Lobby) dispatch(m lobbyCommand) {
	c, cmd := m.client, m.cmd
	handed := false
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Str("client_id", c.ID).Stringer("command", cmd.Kind).Msg("lobby handler fault")
			c.Send(NewErrorEvent(ErrCodeHandlerFault, "internal error while processing command"))
		}
		if !handed {
			answer(m.reply, l)
		}
	}()

	if l.members.add(c) {
		l.log.Warn().Str("client_id", c.ID).Msg("command from non-member, adopted into lobby")
	}

	switch cmd.Kind {
	case CommandNick:
		rename(l.presence, c, cmd.Name)
	case CommandList:
		switch cmd.Entity {
		case ListRooms:
			c.Send(&Event{Kind: EventRoomList, Rooms: l.directory()})
		case ListUsers:
			c.Send(&Event{Kind: EventUserList, Users: l.presence.Snapshot()})
		default:
			c.Send(errorEvent(coreErrorf(ErrCodeBadRequest, "unknown entity %q", cmd.Entity)))
		}
	case CommandListAllUsers:
		c.Send(&Event{Kind: EventUserList, Users: l.presence.Snapshot()})
	case CommandCreateRoom:
		handed = l.createRoom(c, cmd.Name, m.reply)
	case CommandJoinRoom:
		handed = l.joinRoom(c, cmd.RoomID, m.reply)
	case CommandSendRoomMessage, CommandLeaveRoom:
		c.Send(errorEvent(coreErrorf(ErrCodeUnknownCommand, "command %q is not available in the lobby", cmd.Kind)))
	default:
		c.Send(errorEvent(coreErrorf(ErrCodeUnknownCommand, "unknown command %q", cmd.Kind)))
	}
}

func (l *Lobby) createRoom(c *Client, requested string, reply chan<- owner) bool {
	name, cerr := validName(requested, "room name")
	if cerr != nil {
		c.Send(errorEvent(cerr))
		return false
	}

	id := l.nextRoomID
	l.nextRoomID++

	room := newRoom(id, name, l.capacity, l, l.presence, l.log)
	entry := &roomEntry{room: room}
	l.rooms[id] = entry

	l.roomWG.Add(1)
	go func() {
		defer l.roomWG.Done()
		room.run(l.roomCtx)
	}()

	l.log.Info().Int64("room_id", id).Str("room", name).Str("client_id", c.ID).Msg("room created")
	return l.handOver(c, entry, reply)
}

func (l *Lobby) joinRoom(c *Client, id int64, reply chan<- owner) bool {
	entry, ok := l.rooms[id]
	if !ok {
		c.Send(errorEvent(coreErrorf(ErrCodeRoomNotFound, "room %d not found", id)))
		return false
	}
	if entry.users >= l.capacity {
		c.Send(errorEvent(coreErrorf(ErrCodeRoomFull, "room %s is full", entry.room.Name)))
		return false
	}
	return l.handOver(c, entry, reply)
}

// handOver transfers ownership of c to the room. After a successful put the
// lobby must not touch c again until a memberReturned brings it back.
func (l *Lobby) handOver(c *Client, entry *roomEntry, reply chan<- owner) bool {
	l.members.remove(c.ID)
	if !entry.room.inbox.put(roomArriving{client: c, reply: reply}) {
		l.members.add(c)
		c.Send(errorEvent(coreErrorf(ErrCodeRoomNotFound, "room %d not found", entry.room.ID)))
		return false
	}
	// Provisional until the room reports its real occupancy.
	entry.users++
	return true
}

func (l *Lobby) directory() []RoomSummary {
	out := make([]RoomSummary, 0, len(l.rooms))
	for id, entry := range l.rooms {
		out = append(out, RoomSummary{
			ID:       id,
			Name:     entry.room.Name,
			Users:    entry.users,
			MaxUsers: l.capacity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// publish pushes the directory to lobby members and to every room.
func (l *Lobby) publish() {
	rooms := l.directory()
	l.members.broadcast(&Event{Kind: EventRoomListUpdate, Rooms: rooms}, "")
	for _, entry := range l.rooms {
		entry.room.inbox.put(roomDirectory{rooms: rooms})
	}
}
