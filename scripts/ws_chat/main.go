package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/pflag"

	"github.com/vovakirdan/wirechat-lobby/internal/chatcli"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("ws_chat", pflag.ExitOnError)
	addr := fs.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	nick := fs.String("nick", "", "display name to take after connecting")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	if *nick != "" {
		if err := sendLine(ctx, conn, "/nick "+*nick); err != nil {
			return err
		}
	}

	writeLoop(ctx, conn)

	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame chatcli.Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				fmt.Println("* connection closed by server")
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		fmt.Println(chatcli.Render(frame, time.Now().UnixMilli()))
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line := prompt.Input("> ", completer, prompt.OptionTitle("wirechat"))
			if strings.TrimSpace(line) == "/quit" {
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "/help" {
				fmt.Println(chatcli.Help)
				continue
			}
			if err := sendLine(ctx, conn, line); err != nil {
				if errors.Is(err, chatcli.ErrQuit) {
					return
				}
				fmt.Println("!", err)
			}
		}
	}
}

func sendLine(ctx context.Context, conn *websocket.Conn, line string) error {
	inbound, err := chatcli.ParseLine(line, time.Now().UnixMilli())
	if err != nil || inbound == nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, inbound); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func completer(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if !strings.HasPrefix(word, "/") || strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	suggests := make([]prompt.Suggest, 0, len(chatcli.Commands))
	for _, c := range chatcli.Commands {
		suggests = append(suggests, prompt.Suggest{Text: c})
	}
	return prompt.FilterHasPrefix(suggests, word, true)
}
