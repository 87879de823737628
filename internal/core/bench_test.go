package core

import (
	"context"
	"strconv"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(Options{RoomCapacity: recipients + 1})
	go hub.Run(ctx)

	sender, err := hub.Connect(NewClient("sender", 16))
	if err != nil {
		b.Fatalf("connect sender: %v", err)
	}
	go func() {
		for range sender.Client().Events {
		}
	}()
	if err := sender.Submit(Command{Kind: CommandCreateRoom, Name: "bench"}); err != nil {
		b.Fatalf("create room: %v", err)
	}

	sessions := make([]*Session, 0, recipients)
	for i := range recipients {
		s, err := hub.Connect(NewClient("c"+strconv.Itoa(i), 256))
		if err != nil {
			b.Fatalf("connect recipient: %v", err)
		}
		if err := s.Submit(Command{Kind: CommandJoinRoom, RoomID: 0}); err != nil {
			b.Fatalf("join room: %v", err)
		}
		sessions = append(sessions, s)
	}

	// Drain events for all but the first recipient to avoid queue drops.
	target := sessions[0].Client()
	for _, s := range sessions[1:] {
		go func(c *Client) {
			for range c.Events {
			}
		}(s.Client())
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := sender.Submit(Command{Kind: CommandSendRoomMessage, Text: "payload"}); err != nil {
			b.Fatalf("send: %v", err)
		}
		for ev := range target.Events {
			if ev.Kind == EventRoomMessage {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
