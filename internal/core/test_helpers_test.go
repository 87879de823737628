package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustError(t *testing.T, ch <-chan *Event, code string) {
	t.Helper()

	ev := mustEvent(t, ch, EventError)
	if ev.Error == nil || ev.Error.Code != code {
		t.Fatalf("expected %s error, got %+v", code, ev.Error)
	}
}

func startHub(t *testing.T, capacity int) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(Options{RoomCapacity: capacity})
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Session {
	t.Helper()

	sess, err := hub.Connect(NewClient(id, 64))
	if err != nil {
		t.Fatalf("connect %s: %v", id, err)
	}
	mustEvent(t, sess.Client().Events, EventConnected)
	return sess
}

func submit(t *testing.T, sess *Session, cmd Command) {
	t.Helper()

	if err := sess.Submit(cmd); err != nil {
		t.Fatalf("submit %v: %v", cmd.Kind, err)
	}
}

func listRooms(t *testing.T, hub *Hub) []RoomSummary {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rooms, err := hub.Rooms(ctx)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	return rooms
}

func inLobby(sess *Session) bool {
	return sess.owner == owner(sess.hub.lobby)
}
