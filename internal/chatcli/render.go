package chatcli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

// Frame is a server envelope with the body left undecoded.
type Frame struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// body is the union of every field Render looks at.
type body struct {
	Type       string           `json:"type"`
	Msg        string           `json:"msg"`
	Message    string           `json:"message"`
	Sender     string           `json:"sender"`
	SenderID   string           `json:"senderId"`
	SenderNick string           `json:"senderNick"`
	TargetID   string           `json:"targetId"`
	UserID     string           `json:"userId"`
	Nick       string           `json:"nick"`
	OldNick    string           `json:"oldNick"`
	NewNick    string           `json:"newNick"`
	RoomName   string           `json:"roomName"`
	RoomID     *int64           `json:"roomId"`
	Rooms      []proto.RoomInfo `json:"rooms"`
	Users      []proto.UserInfo `json:"users"`
	Code       string           `json:"code"`
	Timestamp  json.RawMessage  `json:"timestamp"`
}

// Render formats one frame for the terminal. nowMillis is used to report
// ping round trips.
func Render(f Frame, nowMillis int64) string {
	var b body
	if err := json.Unmarshal(f.Body, &b); err != nil {
		return fmt.Sprintf("[%s] %s", f.Status, f.Body)
	}

	switch f.Status {
	case proto.StatusConnected:
		return fmt.Sprintf("* %s You are %s (id %s). Type /help for commands.", b.Msg, b.Nick, b.UserID)
	case proto.StatusError:
		return fmt.Sprintf("! %s (%s)", b.Msg, b.Code)
	case proto.StatusSignal:
		return fmt.Sprintf("* signal %s from %s", b.Type, b.SenderID)
	case proto.StatusBroadcast:
		switch b.Type {
		case proto.TypeMessage:
			return fmt.Sprintf("<%s> %s", b.Sender, b.Message)
		case proto.TypeDirectMessage:
			return fmt.Sprintf("[dm from %s (%s)] %s", b.SenderNick, b.SenderID, b.Message)
		case proto.TypeRoomListUpdate:
			return "* rooms: " + formatRooms(b.Rooms)
		default:
			return "* " + b.Message
		}
	case proto.StatusSuccess:
		switch {
		case b.Type == proto.TypePong:
			var sent int64
			if err := json.Unmarshal(b.Timestamp, &sent); err == nil && sent > 0 {
				return fmt.Sprintf("* pong in %dms", nowMillis-sent)
			}
			return "* pong"
		case b.Type == proto.TypeDMSent:
			return fmt.Sprintf("[dm to %s] %s", b.TargetID, b.Message)
		case b.Type == proto.TypeSignalSent:
			return "* signal delivered to " + b.TargetID
		case b.NewNick != "":
			return fmt.Sprintf("* %s is now known as %s", b.OldNick, b.NewNick)
		case b.RoomName != "" && b.RoomID != nil:
			return fmt.Sprintf("* entered room %q (id %d)", b.RoomName, *b.RoomID)
		case b.Rooms != nil:
			return "* rooms: " + formatRooms(b.Rooms)
		case b.Users != nil:
			return "* users: " + formatUsers(b.Users)
		case b.Msg != "":
			return "* " + b.Msg
		}
	}
	return fmt.Sprintf("[%s] %s", f.Status, f.Body)
}

func formatRooms(rooms []proto.RoomInfo) string {
	if len(rooms) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(rooms))
	for _, r := range rooms {
		full := ""
		if r.IsFull {
			full = " full"
		}
		parts = append(parts, fmt.Sprintf("#%d %s (%d/%d%s)", r.ID, r.Name, r.UsersCount, r.MaxUsers, full))
	}
	return strings.Join(parts, ", ")
}

func formatUsers(users []proto.UserInfo) string {
	if len(users) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(users))
	for _, u := range users {
		parts = append(parts, fmt.Sprintf("%s (%s)", u.Nick, u.ID))
	}
	return strings.Join(parts, ", ")
}
