package core

import (
	"strings"
	"testing"
)

func TestMembersBroadcastOrderAndExclusion(t *testing.T) {
	m := newMembers()
	a := NewClient("a", 4)
	b := NewClient("b", 4)
	slow := NewClient("slow", 1)
	m.add(a)
	m.add(slow)
	m.add(b)

	slow.Send(&Event{Kind: EventPong})

	sent, dropped := m.broadcast(&Event{Kind: EventRoomMessage, Text: "x"}, "a")
	if sent != 1 || dropped != 1 {
		t.Fatalf("sent=%d dropped=%d, want 1 and 1", sent, dropped)
	}
	if len(a.Events) != 0 {
		t.Fatal("excluded member received the broadcast")
	}
	if ev := <-b.Events; ev.Text != "x" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if m.add(a) {
		t.Fatal("adding an existing member should report false")
	}
	m.remove("slow")
	clients := m.clients()
	if len(clients) != 2 || clients[0] != a || clients[1] != b {
		t.Fatalf("unexpected membership order: %v", clients)
	}
}

func TestValidName(t *testing.T) {
	if name, err := validName("  alice  ", "nickname"); err != nil || name != "alice" {
		t.Fatalf("validName trimmed = %q, %v", name, err)
	}
	if _, err := validName("   ", "nickname"); err == nil || err.Code != ErrCodeBadRequest {
		t.Fatalf("blank name should be rejected, got %v", err)
	}
	if _, err := validName(strings.Repeat("я", maxNameRunes+1), "room name"); err == nil {
		t.Fatal("over-long name should be rejected")
	}
	if _, err := validName(strings.Repeat("я", maxNameRunes), "room name"); err != nil {
		t.Fatalf("name at the limit should pass: %v", err)
	}
}
