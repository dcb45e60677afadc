package orchestrator

import (
	"errors"
)

// -- Sentinels --

var (
	// ErrUnknownConversation means an interaction referenced a conversation
	// that is not in the store. Stale clicks land here and are ignored.
	ErrUnknownConversation = errors.New("unknown conversation")

	// ErrNoPendingCall means the referenced conversation has no tool call
	// awaiting a decision, or the request ID does not match it.
	ErrNoPendingCall = errors.New("no matching pending tool call")
)
