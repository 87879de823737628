package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventConnected greets a freshly accepted connection.
	EventConnected EventKind = iota
	// EventNickChanged confirms a rename to the caller.
	EventNickChanged
	// EventRoomEntered confirms to the caller that it is now inside a room.
	EventRoomEntered
	// EventRoomLeft confirms to the caller that it is back in the lobby.
	EventRoomLeft
	// EventMessageSent echoes a chat message back to its sender.
	EventMessageSent
	// EventRoomMessage notifies clients about a chat message in a room.
	EventRoomMessage
	// EventUserJoined notifies clients about a user joining a room.
	EventUserJoined
	// EventUserLeft notifies clients about a user leaving a room.
	EventUserLeft
	// EventUserRenamed notifies room members that someone changed name.
	EventUserRenamed
	// EventRoomClosed tells room members they were sent back to the lobby.
	EventRoomClosed
	// EventRoomList answers a room listing.
	EventRoomList
	// EventRoomListUpdate is pushed whenever the room directory changes.
	EventRoomListUpdate
	// EventUserList answers a user listing.
	EventUserList
	// EventDirectMessage delivers a private message.
	EventDirectMessage
	// EventDirectMessageSent acknowledges a private message to its sender.
	EventDirectMessageSent
	// EventSignal delivers a relayed signaling payload.
	EventSignal
	// EventSignalSent acknowledges a relayed signaling payload.
	EventSignalSent
	// EventPong echoes a ping timestamp.
	EventPong
	// EventError notifies a client about a domain error.
	EventError
)

// UserInfo is a point-in-time view of an identity.
type UserInfo struct {
	ID   string
	Name string
}

// RoomSummary is one room directory entry.
type RoomSummary struct {
	ID       int64
	Name     string
	Users    int
	MaxUsers int
}

// Full reports whether the room has reached its capacity.
func (s RoomSummary) Full() bool {
	return s.Users >= s.MaxUsers
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind       EventKind
	MessageID  string // ULID, set on room chat messages
	RoomID     int64
	RoomName   string
	User       UserInfo // subject of the event: sender, joiner, renamed user
	OldName    string
	Text       string
	TargetID   string
	SignalType string
	Data       json.RawMessage
	Timestamp  json.RawMessage
	Rooms      []RoomSummary
	Users      []UserInfo
	Error      *CoreError
}
