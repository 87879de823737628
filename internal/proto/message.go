package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command names accepted from clients.
const (
	CommandNick         = "nick"
	CommandList         = "list"
	CommandListAllUsers = "list_all_users"
	CommandCreate       = "create"
	CommandJoin         = "join"
	CommandMessage      = "message"
	CommandLeave        = "leave"
	CommandDM           = "dm"
	CommandSignal       = "signal"
	CommandPing         = "ping"
)

// Outbound statuses.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusBroadcast = "broadcast"
	StatusSignal    = "signal"
	StatusConnected = "connected"
)

// Broadcast body types.
const (
	TypeMessage        = "message"
	TypeUserJoined     = "user-joined"
	TypeUserLeft       = "user-left"
	TypeNickChange     = "nick-change"
	TypeRoomClosed     = "room-closed"
	TypeRoomListUpdate = "room-list-update"
	TypeDirectMessage  = "direct-message"
	TypeDMSent         = "dm-sent"
	TypeSignalSent     = "signal-sent"
	TypePong           = "pong"
)

// SystemSender is the sender shown on server-generated notices.
const SystemSender = "System"

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Status string `json:"status"`
	Body   any    `json:"body"`
}

// NickData changes the display name.
type NickData struct {
	Nickname string `json:"nickname"`
}

// ListData asks for a listing of rooms or users.
type ListData struct {
	Entity string `json:"entity"`
}

// CreateData creates a room and enters it.
type CreateData struct {
	RoomName string `json:"roomName"`
}

// JoinData requests to join a specific room. RoomID is nil when the field
// was absent or null.
type JoinData struct {
	RoomID *RoomID `json:"roomId"`
}

// MsgData is a chat message for the current room.
type MsgData struct {
	Message string `json:"message"`
}

// DMData is a private message to another connection.
type DMData struct {
	TargetID string `json:"targetId"`
	Message  string `json:"message"`
}

// SignalData carries an opaque payload to another connection.
type SignalData struct {
	TargetID string          `json:"targetId"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// PingData is echoed back as a pong.
type PingData struct {
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// RoomID accepts both JSON numbers and numeric strings.
type RoomID int64

// RoomRef returns a pointer suitable for JoinData.
func RoomRef(id int64) *RoomID {
	r := RoomID(id)
	return &r
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *RoomID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q", b)
	}
	*id = RoomID(n)
	return nil
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// ConnectedBody greets a freshly accepted connection.
type ConnectedBody struct {
	Msg    string `json:"msg"`
	UserID string `json:"userId"`
	Nick   string `json:"nick"`
}

// MsgBody is a plain acknowledgement. ID is set when echoing a chat message.
type MsgBody struct {
	Msg string `json:"msg"`
	ID  string `json:"id,omitempty"`
}

// NickBody confirms a rename.
type NickBody struct {
	OldNick string `json:"oldNick"`
	NewNick string `json:"newNick"`
}

// RoomEnteredBody confirms entering a room.
type RoomEnteredBody struct {
	RoomName string `json:"roomName"`
	RoomID   int64  `json:"roomId"`
}

// RoomInfo is one directory entry.
type RoomInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	UsersCount int    `json:"usersCount"`
	MaxUsers   int    `json:"maxUsers"`
	IsFull     bool   `json:"isFull"`
}

// RoomsBody answers a room listing.
type RoomsBody struct {
	Rooms []RoomInfo `json:"rooms"`
}

// RoomListUpdate is pushed whenever the directory changes.
type RoomListUpdate struct {
	Type  string     `json:"type"`
	Rooms []RoomInfo `json:"rooms"`
}

// UserInfo is one entry of a user listing.
type UserInfo struct {
	ID   string `json:"id"`
	Nick string `json:"nick"`
}

// UsersBody answers a user listing.
type UsersBody struct {
	Users []UserInfo `json:"users"`
}

// ChatBody is a room broadcast: a chat line or a system notice.
type ChatBody struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Sender   string `json:"sender"`
	SenderID string `json:"senderId,omitempty"`
	Message  string `json:"message"`
	RoomID   int64  `json:"roomId"`
}

// DirectMessageBody delivers a private message.
type DirectMessageBody struct {
	Type       string `json:"type"`
	SenderID   string `json:"senderId"`
	SenderNick string `json:"senderNick"`
	Message    string `json:"message"`
}

// DMSentBody confirms a delivered private message.
type DMSentBody struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
	Message  string `json:"message"`
}

// SignalBody relays an opaque signaling payload.
type SignalBody struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
	SenderID string          `json:"senderId"`
	TargetID string          `json:"targetId"`
}

// SignalSentBody confirms a relayed signal.
type SignalSentBody struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
}

// PongBody answers a ping.
type PongBody struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}
