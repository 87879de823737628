package core

import (
	"strings"

	"github.com/rs/zerolog"
)

// Relay forwards private messages and signaling payloads by recipient id.
// It keeps no state and ignores channel membership entirely.
type Relay struct {
	presence *Presence
	log      zerolog.Logger
}

// NewRelay builds a relay that routes through the given registry.
func NewRelay(presence *Presence, logger zerolog.Logger) *Relay {
	return &Relay{
		presence: presence,
		log:      logger.With().Str("component", "relay").Logger(),
	}
}

// Handle runs one relayed command on behalf of from.
func (r *Relay) Handle(from *Client, cmd Command) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("client_id", from.ID).Stringer("command", cmd.Kind).Msg("relay handler fault")
			from.Send(NewErrorEvent(ErrCodeHandlerFault, "internal error while processing command"))
		}
	}()

	switch cmd.Kind {
	case CommandPing:
		from.Send(&Event{Kind: EventPong, Timestamp: cmd.Timestamp})
	case CommandDirectMessage:
		r.directMessage(from, cmd)
	case CommandSignal:
		r.signal(from, cmd)
	default:
		from.Send(errorEvent(coreErrorf(ErrCodeUnknownCommand, "unknown command %q", cmd.Kind)))
	}
}

func (r *Relay) directMessage(from *Client, cmd Command) {
	if strings.TrimSpace(cmd.Text) == "" {
		from.Send(NewErrorEvent(ErrCodeBadRequest, "message is required"))
		return
	}
	target, ok := r.target(from, cmd.TargetID)
	if !ok {
		return
	}

	sender := r.presence.Info(from.ID)
	if !target.Send(&Event{Kind: EventDirectMessage, User: sender, TargetID: cmd.TargetID, Text: cmd.Text}) {
		r.log.Debug().Str("from", from.ID).Str("to", cmd.TargetID).Msg("direct message dropped, slow consumer")
	}
	from.Send(&Event{Kind: EventDirectMessageSent, TargetID: cmd.TargetID, Text: cmd.Text})
}

func (r *Relay) signal(from *Client, cmd Command) {
	target, ok := r.target(from, cmd.TargetID)
	if !ok {
		return
	}

	if !target.Send(&Event{
		Kind:       EventSignal,
		User:       UserInfo{ID: from.ID},
		TargetID:   cmd.TargetID,
		SignalType: cmd.SignalType,
		Data:       cmd.Data,
	}) {
		r.log.Debug().Str("from", from.ID).Str("to", cmd.TargetID).Str("type", cmd.SignalType).Msg("signal dropped, slow consumer")
	}
	from.Send(&Event{Kind: EventSignalSent, TargetID: cmd.TargetID, SignalType: cmd.SignalType})
}

func (r *Relay) target(from *Client, id string) (*Client, bool) {
	if id == "" {
		from.Send(NewErrorEvent(ErrCodeBadRequest, "targetId is required"))
		return nil, false
	}
	_, target, ok := r.presence.Lookup(id)
	if !ok {
		from.Send(errorEvent(coreErrorf(ErrCodeUserNotFound, "user %s not found", id)))
		return nil, false
	}
	return target, true
}
