package core

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxNameRunes = 64

// owner is an execution unit that can hold connections: the lobby or a room.
// Handing a command to an owner hands it the right to answer on reply with
// the unit that owns the connection afterwards.
type owner interface {
	submit(c *Client, cmd Command, reply chan<- owner) bool
	detach(c *Client, who UserInfo) bool
}

// members is an insertion-ordered membership set. It is only ever touched
// by the goroutine of the unit that owns it.
type members struct {
	byID  map[string]*Client
	order []string
}

func newMembers() *members {
	return &members{byID: make(map[string]*Client)}
}

func (m *members) add(c *Client) bool {
	if _, exists := m.byID[c.ID]; exists {
		return false
	}
	m.byID[c.ID] = c
	m.order = append(m.order, c.ID)
	return true
}

func (m *members) remove(id string) (*Client, bool) {
	c, exists := m.byID[id]
	if !exists {
		return nil, false
	}
	delete(m.byID, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return c, true
}

func (m *members) has(id string) bool {
	_, ok := m.byID[id]
	return ok
}

func (m *members) len() int {
	return len(m.order)
}

func (m *members) clients() []*Client {
	out := make([]*Client, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// broadcast delivers ev to every member except excludeID, in membership
// order. A full outbound queue drops the event for that member only.
func (m *members) broadcast(ev *Event, excludeID string) (sent, dropped int) {
	for _, id := range m.order {
		if id == excludeID {
			continue
		}
		if m.byID[id].Send(ev) {
			sent++
		} else {
			dropped++
		}
	}
	return sent, dropped
}

func (m *members) snapshot(p *Presence) []UserInfo {
	out := make([]UserInfo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, p.Info(id))
	}
	return out
}

// rename applies a display name change and answers the caller.
// It returns the previous name and whether the change was applied.
func rename(p *Presence, c *Client, requested string) (string, bool) {
	name, cerr := validName(requested, "nickname")
	if cerr != nil {
		c.Send(errorEvent(cerr))
		return "", false
	}
	old, err := p.Rename(c.ID, name)
	switch {
	case errors.Is(err, ErrNameTaken):
		c.Send(errorEvent(coreErrorf(ErrCodeNameTaken, "nickname %q is already in use", name)))
		return "", false
	case err != nil:
		c.Send(errorEvent(coreError(ErrCodeUserNotFound, err.Error())))
		return "", false
	}
	c.Send(&Event{Kind: EventNickChanged, OldName: old, User: UserInfo{ID: c.ID, Name: name}})
	return old, true
}

func validName(raw, what string) (string, *CoreError) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", coreErrorf(ErrCodeBadRequest, "%s is required", what)
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return "", coreErrorf(ErrCodeBadRequest, "%s must be at most %d characters", what, maxNameRunes)
	}
	return name, nil
}

// answer hands the next owner to a waiting session. The reply channel is
// buffered for exactly one answer, so a second answer is dropped.
func answer(reply chan<- owner, next owner) {
	if reply == nil {
		return
	}
	select {
	case reply <- next:
	default:
	}
}
