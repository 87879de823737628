package core

import (
	"testing"
	"time"
)

func TestMailboxKeepsFIFOOrder(t *testing.T) {
	mb := newMailbox[int]()
	for i := range 100 {
		if !mb.put(i) {
			t.Fatalf("put %d rejected", i)
		}
	}

	select {
	case <-mb.ready():
	case <-time.After(time.Second):
		t.Fatal("ready did not fire after put")
	}

	for want := range 100 {
		got, ok := mb.pop()
		if !ok || got != want {
			t.Fatalf("pop = %d, %v; want %d", got, ok, want)
		}
	}
	if _, ok := mb.pop(); ok {
		t.Fatal("pop on empty mailbox should report false")
	}
}

func TestMailboxCloseReturnsLeftovers(t *testing.T) {
	mb := newMailbox[string]()
	mb.put("a")
	mb.put("b")

	rest := mb.close()
	if len(rest) != 2 || rest[0] != "a" || rest[1] != "b" {
		t.Fatalf("unexpected leftovers: %v", rest)
	}
	if mb.put("c") {
		t.Fatal("put after close should be rejected")
	}
	if _, ok := mb.pop(); ok {
		t.Fatal("closed mailbox should be empty")
	}
}

func TestMailboxConcurrentPutsNeverBlock(t *testing.T) {
	mb := newMailbox[int]()
	done := make(chan struct{})
	for w := range 8 {
		go func(w int) {
			for i := range 1000 {
				mb.put(w*1000 + i)
			}
			done <- struct{}{}
		}(w)
	}
	for range 8 {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("producers blocked without a consumer")
		}
	}
	if n := len(mb.close()); n != 8000 {
		t.Fatalf("expected 8000 queued items, got %d", n)
	}
}
