package http

import (
	"encoding/json"
	"testing"

	"github.com/vovakirdan/wirechat-lobby/internal/core"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name    string
		inbound proto.Inbound
		want    core.Command
		errCode string
	}{
		{
			name:    "join with numeric id",
			inbound: proto.Inbound{Command: "join", Payload: json.RawMessage(`{"roomId":3}`)},
			want:    core.Command{Kind: core.CommandJoinRoom, RoomID: 3},
		},
		{
			name:    "join with string id",
			inbound: proto.Inbound{Command: "join", Payload: json.RawMessage(`{"roomId":"12"}`)},
			want:    core.Command{Kind: core.CommandJoinRoom, RoomID: 12},
		},
		{
			name:    "join room zero",
			inbound: proto.Inbound{Command: "join", Payload: json.RawMessage(`{"roomId":0}`)},
			want:    core.Command{Kind: core.CommandJoinRoom, RoomID: 0},
		},
		{
			name:    "join without room id",
			inbound: proto.Inbound{Command: "join", Payload: json.RawMessage(`{}`)},
			errCode: core.ErrCodeMalformedEnvelope,
		},
		{
			name:    "join with null room id",
			inbound: proto.Inbound{Command: "join", Payload: json.RawMessage(`{"roomId":null}`)},
			errCode: core.ErrCodeMalformedEnvelope,
		},
		{
			name:    "join without payload",
			inbound: proto.Inbound{Command: "join"},
			errCode: core.ErrCodeMalformedEnvelope,
		},
		{
			name:    "leave without payload",
			inbound: proto.Inbound{Command: "leave"},
			want:    core.Command{Kind: core.CommandLeaveRoom},
		},
		{
			name:    "list with null payload",
			inbound: proto.Inbound{Command: "list", Payload: json.RawMessage(`null`)},
			want:    core.Command{Kind: core.CommandList},
		},
		{
			name:    "dm",
			inbound: proto.Inbound{Command: "dm", Payload: json.RawMessage(`{"targetId":"u2","message":"psst"}`)},
			want:    core.Command{Kind: core.CommandDirectMessage, TargetID: "u2", Text: "psst"},
		},
		{
			name:    "unknown command",
			inbound: proto.Inbound{Command: "teleport"},
			errCode: core.ErrCodeUnknownCommand,
		},
		{
			name:    "missing command",
			inbound: proto.Inbound{Payload: json.RawMessage(`{}`)},
			errCode: core.ErrCodeMalformedEnvelope,
		},
		{
			name:    "payload of the wrong shape",
			inbound: proto.Inbound{Command: "nick", Payload: json.RawMessage(`["alice"]`)},
			errCode: core.ErrCodeMalformedEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, perr := inboundToCommand(tt.inbound)
			if tt.errCode != "" {
				if perr == nil || perr.Code != tt.errCode {
					t.Fatalf("expected %s, got %+v", tt.errCode, perr)
				}
				return
			}
			if perr != nil {
				t.Fatalf("unexpected error: %+v", perr)
			}
			if cmd.Kind != tt.want.Kind || cmd.RoomID != tt.want.RoomID || cmd.TargetID != tt.want.TargetID || cmd.Text != tt.want.Text {
				t.Fatalf("got %+v, want %+v", *cmd, tt.want)
			}
		})
	}
}

func TestInboundSignalKeepsDataVerbatim(t *testing.T) {
	raw := `{"targetId":"u9","type":"new-ice-candidate","data":{"candidate":"a=1", "n": [1, 2]}}`
	cmd, perr := inboundToCommand(proto.Inbound{Command: "signal", Payload: json.RawMessage(raw)})
	if perr != nil {
		t.Fatalf("unexpected error: %+v", perr)
	}
	if string(cmd.Data) != `{"candidate":"a=1", "n": [1, 2]}` {
		t.Fatalf("signal data was rewritten: %s", cmd.Data)
	}
}

func TestOutboundFromEvent(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:  core.EventRoomList,
		Rooms: []core.RoomSummary{{ID: 1, Name: "full", Users: 5, MaxUsers: 5}},
	})
	body, ok := out.Body.(proto.RoomsBody)
	if out.Status != proto.StatusSuccess || !ok || len(body.Rooms) != 1 || !body.Rooms[0].IsFull {
		t.Fatalf("unexpected room list outbound: %+v", out)
	}

	out = outboundFromEvent(&core.Event{Kind: core.EventUserRenamed, User: core.UserInfo{ID: "u1", Name: "ally"}, OldName: "alice"})
	notice, ok := out.Body.(proto.ChatBody)
	if out.Status != proto.StatusBroadcast || !ok || notice.Type != proto.TypeNickChange || notice.Sender != proto.SystemSender {
		t.Fatalf("unexpected rename outbound: %+v", out)
	}
	if notice.Message != "alice is now ally." {
		t.Fatalf("unexpected rename text: %q", notice.Message)
	}

	out = outboundFromEvent(core.NewErrorEvent(core.ErrCodeRoomFull, "room party is full"))
	if perr, ok := out.Body.(*proto.Error); out.Status != proto.StatusError || !ok || perr.Code != core.ErrCodeRoomFull {
		t.Fatalf("unexpected error outbound: %+v", out)
	}
}
