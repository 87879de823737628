package core

import (
	"sync"

	"github.com/gammazero/deque"
)

// mailbox is an unbounded FIFO inbox for one execution unit.
// put never blocks, so units may post to each other in any direction
// without forming a wait cycle. After close, put is rejected and the
// owner receives whatever was still queued.
type mailbox[T any] struct {
	mu     sync.Mutex
	queue  deque.Deque[T]
	notify chan struct{}
	closed bool
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{notify: make(chan struct{}, 1)}
}

func (m *mailbox[T]) put(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue.PushBack(v)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// ready fires at least once after any successful put.
func (m *mailbox[T]) ready() <-chan struct{} {
	return m.notify
}

func (m *mailbox[T]) pop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue.Len() == 0 {
		var zero T
		return zero, false
	}
	return m.queue.PopFront(), true
}

func (m *mailbox[T]) close() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	rest := make([]T, 0, m.queue.Len())
	for m.queue.Len() > 0 {
		rest = append(rest, m.queue.PopFront())
	}
	return rest
}
