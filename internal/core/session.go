package core

// Session binds one connection to the unit that currently owns it.
// It is driven by a single goroutine (the connection's reader): each command
// goes to the current owner, and the owner's reply names the next one.
type Session struct {
	hub    *Hub
	client *Client
	owner  owner
}

// Client returns the connection handle of the session.
func (s *Session) Client() *Client {
	return s.client
}

// Submit hands one command to the owning unit and waits until it has been
// handled. Relay commands are served directly.
func (s *Session) Submit(cmd Command) error {
	if cmd.relayed() {
		s.hub.relay.Handle(s.client, cmd)
		return nil
	}

	reply := make(chan owner, 1)
	for !s.owner.submit(s.client, cmd, reply) {
		// A closed room no longer accepts work; the lobby has the connection.
		if s.owner == owner(s.hub.lobby) {
			return ErrHubClosed
		}
		s.owner = s.hub.lobby
	}

	select {
	case next := <-reply:
		s.owner = next
		return nil
	case <-s.hub.done:
		return ErrHubClosed
	}
}

// Close removes the identity from presence and releases the connection from
// whichever unit holds it.
func (s *Session) Close() {
	info, ok := s.hub.presence.Unregister(s.client.ID)
	if !ok {
		info = UserInfo{ID: s.client.ID, Name: s.client.ID}
	}
	if !s.owner.detach(s.client, info) {
		s.hub.lobby.detach(s.client, info)
	}
	s.hub.log.Info().Str("client_id", s.client.ID).Str("nick", info.Name).Msg("client disconnected")
}
