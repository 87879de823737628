package core

import (
	"sort"
	"strconv"
	"sync"
)

const guestPrefix = "Guest_"

type presenceEntry struct {
	id     string
	client *Client
	name   string
	seq    uint64
}

// Presence is the global registry of live identities. It is the only state
// shared between execution units; every write holds the lock for the whole
// check-and-set, so readers always see a consistent snapshot.
type Presence struct {
	mu     sync.RWMutex
	byID   map[string]*presenceEntry
	byName map[string]string
	seq    uint64
}

// NewPresence returns an empty registry.
func NewPresence() *Presence {
	return &Presence{
		byID:   make(map[string]*presenceEntry),
		byName: make(map[string]string),
	}
}

// Register adds a client under a unique guest name derived from its ID.
func (p *Presence) Register(c *Client) UserInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.byID[c.ID]; ok {
		return UserInfo{ID: c.ID, Name: e.name}
	}

	name := p.guestNameLocked(c.ID)
	p.seq++
	p.byID[c.ID] = &presenceEntry{id: c.ID, client: c, name: name, seq: p.seq}
	p.byName[name] = c.ID
	return UserInfo{ID: c.ID, Name: name}
}

func (p *Presence) guestNameLocked(id string) string {
	for n := 4; n < len(id); n++ {
		name := guestPrefix + id[:n]
		if _, taken := p.byName[name]; !taken {
			return name
		}
	}
	name := guestPrefix + id
	for suffix := 2; ; suffix++ {
		if _, taken := p.byName[name]; !taken {
			return name
		}
		name = guestPrefix + id + "_" + strconv.Itoa(suffix)
	}
}

// Unregister removes an identity. It reports the removed entry, if any.
func (p *Presence) Unregister(id string) (UserInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.byID[id]
	if !ok {
		return UserInfo{}, false
	}
	delete(p.byID, id)
	if p.byName[e.name] == id {
		delete(p.byName, e.name)
	}
	return UserInfo{ID: id, Name: e.name}, true
}

// Rename assigns name to id if no other live identity holds it.
// Renaming to the current name succeeds and changes nothing.
func (p *Presence) Rename(id, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.byID[id]
	if !ok {
		return "", ErrUserNotFound
	}
	if holder, taken := p.byName[name]; taken && holder != id {
		return "", ErrNameTaken
	}

	old := e.name
	delete(p.byName, old)
	e.name = name
	p.byName[name] = id
	return old, nil
}

// Lookup returns the identity and connection registered under id.
func (p *Presence) Lookup(id string) (UserInfo, *Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.byID[id]
	if !ok {
		return UserInfo{}, nil, false
	}
	return UserInfo{ID: id, Name: e.name}, e.client, true
}

// Info returns the identity for id, falling back to the bare id.
func (p *Presence) Info(id string) UserInfo {
	if info, _, ok := p.Lookup(id); ok {
		return info
	}
	return UserInfo{ID: id, Name: id}
}

// Snapshot lists every live identity in connection order.
func (p *Presence) Snapshot() []UserInfo {
	p.mu.RLock()
	entries := make([]presenceEntry, 0, len(p.byID))
	for _, e := range p.byID {
		entries = append(entries, *e)
	}
	p.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]UserInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, UserInfo{ID: e.id, Name: e.name})
	}
	return out
}

// Len returns the number of live identities.
func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}
