package http

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/wirechat-lobby/internal/core"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

const (
	greeting     = "Welcome to wirechat!"
	returnedText = "You returned to the lobby."
)

var commandKinds = map[string]core.CommandKind{
	proto.CommandNick:         core.CommandNick,
	proto.CommandList:         core.CommandList,
	proto.CommandListAllUsers: core.CommandListAllUsers,
	proto.CommandCreate:       core.CommandCreateRoom,
	proto.CommandJoin:         core.CommandJoinRoom,
	proto.CommandMessage:      core.CommandSendRoomMessage,
	proto.CommandLeave:        core.CommandLeaveRoom,
	proto.CommandDM:           core.CommandDirectMessage,
	proto.CommandSignal:       core.CommandSignal,
	proto.CommandPing:         core.CommandPing,
}

// decodePayload treats a missing or null payload as an empty object.
func decodePayload(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	if inbound.Command == "" {
		return nil, &proto.Error{Code: core.ErrCodeMalformedEnvelope, Msg: "command is required"}
	}
	kind, ok := commandKinds[inbound.Command]
	if !ok {
		return nil, &proto.Error{Code: core.ErrCodeUnknownCommand, Msg: fmt.Sprintf("unknown command %q", inbound.Command)}
	}

	cmd := &core.Command{Kind: kind}
	var err error
	switch kind {
	case core.CommandNick:
		var data proto.NickData
		err = decodePayload(inbound.Payload, &data)
		cmd.Name = data.Nickname
	case core.CommandList:
		var data proto.ListData
		err = decodePayload(inbound.Payload, &data)
		cmd.Entity = data.Entity
	case core.CommandCreateRoom:
		var data proto.CreateData
		err = decodePayload(inbound.Payload, &data)
		cmd.Name = data.RoomName
	case core.CommandJoinRoom:
		var data proto.JoinData
		err = decodePayload(inbound.Payload, &data)
		if err == nil && data.RoomID == nil {
			return nil, &proto.Error{Code: core.ErrCodeMalformedEnvelope, Msg: "join requires roomId"}
		}
		if data.RoomID != nil {
			cmd.RoomID = int64(*data.RoomID)
		}
	case core.CommandSendRoomMessage:
		var data proto.MsgData
		err = decodePayload(inbound.Payload, &data)
		cmd.Text = data.Message
	case core.CommandDirectMessage:
		var data proto.DMData
		err = decodePayload(inbound.Payload, &data)
		cmd.TargetID = data.TargetID
		cmd.Text = data.Message
	case core.CommandSignal:
		var data proto.SignalData
		err = decodePayload(inbound.Payload, &data)
		cmd.TargetID = data.TargetID
		cmd.SignalType = data.Type
		cmd.Data = data.Data
	case core.CommandPing:
		var data proto.PingData
		err = decodePayload(inbound.Payload, &data)
		cmd.Timestamp = data.Timestamp
	}
	if err != nil {
		return nil, &proto.Error{
			Code: core.ErrCodeMalformedEnvelope,
			Msg:  fmt.Sprintf("invalid payload for %q: %v", inbound.Command, err),
		}
	}
	return cmd, nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventConnected:
		return proto.Outbound{
			Status: proto.StatusConnected,
			Body:   proto.ConnectedBody{Msg: greeting, UserID: event.User.ID, Nick: event.User.Name},
		}
	case core.EventNickChanged:
		return success(proto.NickBody{OldNick: event.OldName, NewNick: event.User.Name})
	case core.EventRoomEntered:
		return success(proto.RoomEnteredBody{RoomName: event.RoomName, RoomID: event.RoomID})
	case core.EventRoomLeft:
		return success(proto.MsgBody{Msg: returnedText})
	case core.EventMessageSent:
		return success(proto.MsgBody{Msg: event.Text, ID: event.MessageID})
	case core.EventRoomMessage:
		return broadcast(proto.ChatBody{
			ID:       event.MessageID,
			Type:     proto.TypeMessage,
			Sender:   event.User.Name,
			SenderID: event.User.ID,
			Message:  event.Text,
			RoomID:   event.RoomID,
		})
	case core.EventUserJoined:
		return notice(event, proto.TypeUserJoined, event.User.Name+" joined the room.")
	case core.EventUserLeft:
		return notice(event, proto.TypeUserLeft, event.User.Name+" left.")
	case core.EventUserRenamed:
		return notice(event, proto.TypeNickChange, event.OldName+" is now "+event.User.Name+".")
	case core.EventRoomClosed:
		return notice(event, proto.TypeRoomClosed, "Room "+event.RoomName+" was closed. "+returnedText)
	case core.EventRoomList:
		return success(proto.RoomsBody{Rooms: roomInfos(event.Rooms)})
	case core.EventRoomListUpdate:
		return broadcast(proto.RoomListUpdate{Type: proto.TypeRoomListUpdate, Rooms: roomInfos(event.Rooms)})
	case core.EventUserList:
		return success(proto.UsersBody{Users: userInfos(event.Users)})
	case core.EventDirectMessage:
		return broadcast(proto.DirectMessageBody{
			Type:       proto.TypeDirectMessage,
			SenderID:   event.User.ID,
			SenderNick: event.User.Name,
			Message:    event.Text,
		})
	case core.EventDirectMessageSent:
		return success(proto.DMSentBody{Type: proto.TypeDMSent, TargetID: event.TargetID, Message: event.Text})
	case core.EventSignal:
		return proto.Outbound{
			Status: proto.StatusSignal,
			Body: proto.SignalBody{
				Type:     event.SignalType,
				Data:     event.Data,
				SenderID: event.User.ID,
				TargetID: event.TargetID,
			},
		}
	case core.EventSignalSent:
		return success(proto.SignalSentBody{Type: proto.TypeSignalSent, TargetID: event.TargetID})
	case core.EventPong:
		return success(proto.PongBody{Type: proto.TypePong, Timestamp: event.Timestamp})
	case core.EventError:
		if event.Error == nil {
			return errorOutbound(&proto.Error{Code: "unknown", Msg: "unknown error"})
		}
		return errorOutbound(&proto.Error{Code: event.Error.Code, Msg: event.Error.Message})
	default:
		return errorOutbound(&proto.Error{Code: core.ErrCodeHandlerFault, Msg: "unsupported event"})
	}
}

func success(body any) proto.Outbound {
	return proto.Outbound{Status: proto.StatusSuccess, Body: body}
}

func broadcast(body any) proto.Outbound {
	return proto.Outbound{Status: proto.StatusBroadcast, Body: body}
}

func errorOutbound(e *proto.Error) proto.Outbound {
	return proto.Outbound{Status: proto.StatusError, Body: e}
}

func notice(event *core.Event, kind, text string) proto.Outbound {
	return broadcast(proto.ChatBody{
		Type:     kind,
		Sender:   proto.SystemSender,
		SenderID: event.User.ID,
		Message:  text,
		RoomID:   event.RoomID,
	})
}

func roomInfos(rooms []core.RoomSummary) []proto.RoomInfo {
	out := make([]proto.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, proto.RoomInfo{
			ID:         r.ID,
			Name:       r.Name,
			UsersCount: r.Users,
			MaxUsers:   r.MaxUsers,
			IsFull:     r.Full(),
		})
	}
	return out
}

func userInfos(users []core.UserInfo) []proto.UserInfo {
	out := make([]proto.UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, proto.UserInfo{ID: u.ID, Nick: u.Name})
	}
	return out
}
