package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/pflag"

	"github.com/vovakirdan/wirechat-lobby/internal/chatcli"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ws_smoke: %v", err)
	}
	fmt.Println("smoke test passed")
}

func run() error {
	fs := pflag.NewFlagSet("ws_smoke", pflag.ExitOnError)
	addr := fs.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	room := fs.String("room", "smoke", "room name to create")
	text := fs.String("text", "hello from smoke test", "message text to send")
	timeout := fs.Duration("timeout", 5*time.Second, "total timeout for the run")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	host, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer host.Close(websocket.StatusNormalClosure, "bye")
	guest, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer guest.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, host, "/create "+*room); err != nil {
		return err
	}
	var entered proto.RoomEnteredBody
	if err := await(ctx, host, proto.StatusSuccess, &entered, func() bool { return entered.RoomName != "" }); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	fmt.Printf("created room %q with id %d\n", entered.RoomName, entered.RoomID)

	if err := send(ctx, guest, fmt.Sprintf("/join %d", entered.RoomID)); err != nil {
		return err
	}
	var joined proto.RoomEnteredBody
	if err := await(ctx, guest, proto.StatusSuccess, &joined, func() bool { return joined.RoomName != "" }); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	if err := send(ctx, host, *text); err != nil {
		return err
	}
	var chat proto.ChatBody
	if err := await(ctx, guest, proto.StatusBroadcast, &chat, func() bool { return chat.Type == proto.TypeMessage }); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if chat.Message != *text {
		return fmt.Errorf("guest received %q, want %q", chat.Message, *text)
	}
	fmt.Printf("guest received %q from %s\n", chat.Message, chat.Sender)
	return nil
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, line string) error {
	inbound, err := chatcli.ParseLine(line, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, inbound); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// await reads frames until one with the given status decodes into dst and
// satisfies done. Error frames abort the wait.
func await(ctx context.Context, conn *websocket.Conn, status string, dst any, done func() bool) error {
	for {
		var frame chatcli.Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if frame.Status == proto.StatusError {
			return fmt.Errorf("server error: %s", chatcli.Render(frame, 0))
		}
		if frame.Status != status {
			continue
		}
		if err := json.Unmarshal(frame.Body, dst); err != nil {
			continue
		}
		if done() {
			return nil
		}
	}
}
