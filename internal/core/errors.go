package core

import (
	"errors"
	"fmt"
)

// Error codes for domain errors.
const (
	ErrCodeUnknownCommand    = "unknown_command"
	ErrCodeRoomNotFound      = "room_not_found"
	ErrCodeRoomFull          = "room_full"
	ErrCodeNameTaken         = "name_taken"
	ErrCodeUserNotFound      = "user_not_found"
	ErrCodeMalformedEnvelope = "malformed_envelope"
	ErrCodeHandlerFault      = "handler_fault"
	ErrCodeBadRequest        = "bad_request"
	ErrCodeRateLimited       = "rate_limited"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNameTaken    = errors.New("name already in use")
	ErrUserNotFound = errors.New("user not found")
	ErrHubClosed    = errors.New("hub closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

func coreErrorf(code, format string, args ...any) *CoreError {
	return &CoreError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewErrorEvent builds an error event addressed to a single client.
func NewErrorEvent(code, msg string) *Event {
	return &Event{Kind: EventError, Error: coreError(code, msg)}
}

func errorEvent(err *CoreError) *Event {
	return &Event{Kind: EventError, Error: err}
}
