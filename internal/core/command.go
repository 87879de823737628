package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandNick changes the caller's display name.
	CommandNick CommandKind = iota
	// CommandList lists rooms or users, depending on Entity.
	CommandList
	// CommandListAllUsers lists every connected user.
	CommandListAllUsers
	// CommandCreateRoom creates a room and moves the caller into it.
	CommandCreateRoom
	// CommandJoinRoom moves the caller into an existing room.
	CommandJoinRoom
	// CommandSendRoomMessage delivers a chat message to room participants.
	CommandSendRoomMessage
	// CommandLeaveRoom moves the caller back to the lobby.
	CommandLeaveRoom
	// CommandDirectMessage sends a private message to one user.
	CommandDirectMessage
	// CommandSignal relays an opaque signaling payload to one user.
	CommandSignal
	// CommandPing asks the server to echo a timestamp.
	CommandPing
)

// Entities accepted by CommandList.
const (
	ListRooms = "rooms"
	ListUsers = "users"
)

var commandNames = map[CommandKind]string{
	CommandNick:            "nick",
	CommandList:            "list",
	CommandListAllUsers:    "list_all_users",
	CommandCreateRoom:      "create",
	CommandJoinRoom:        "join",
	CommandSendRoomMessage: "message",
	CommandLeaveRoom:       "leave",
	CommandDirectMessage:   "dm",
	CommandSignal:          "signal",
	CommandPing:            "ping",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client.
// Only the fields relevant to Kind are set.
type Command struct {
	Kind       CommandKind
	Name       string // nick, create
	Entity     string // list
	RoomID     int64  // join
	Text       string // message, dm
	TargetID   string // dm, signal
	SignalType string
	Data       json.RawMessage // signal payload, never inspected
	Timestamp  json.RawMessage // ping
}

// relayed reports whether the command bypasses channel dispatch.
func (c Command) relayed() bool {
	switch c.Kind {
	case CommandDirectMessage, CommandSignal, CommandPing:
		return true
	default:
		return false
	}
}
