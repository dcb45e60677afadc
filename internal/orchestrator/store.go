package orchestrator

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

// Session is one logical exchange with the model: a mention, its accumulated
// history, and at most one tool call awaiting a human decision. It lives only
// until the mention resolves; nothing survives a process restart.
type Session struct {
	ID      string
	Origin  models.Mention
	History []models.Message
	Tools   []provider.ToolDefinition
	Pending *PendingToolCall
}

// PendingToolCall records the tool calls of the last assistant turn while the
// approval flow waits for a decision. Calls[0] is the one surfaced for
// approval; the rest are answered with not-executed results.
type PendingToolCall struct {
	Calls []models.ToolCall
	State models.ApprovalState
}

// SessionStore holds in-flight sessions between the approval prompt being
// posted and the human's decision arriving as a later event. It is the only
// state shared across event handlers, hence the lock.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create allocates a session with a fresh opaque identifier. The identifier
// is purely a correlation key; the real exchange happens at send time.
func (s *SessionStore) Create(origin models.Mention, tools []provider.ToolDefinition) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Origin: origin,
		Tools:  tools,
	}
}

// Put makes the session claimable by later interaction events.
func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Delete drops a resolved session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Claim atomically transitions the session's pending call from Pending to
// the given decision state and removes the session from the store, so that
// exactly one interaction per request ID is honored. It fails when the
// conversation is unknown, when nothing is pending, or when the request ID
// does not match the surfaced call; duplicate and stale clicks all land on
// one of those cases.
func (s *SessionStore) Claim(conversationID, requestID string, decision models.ApprovalState) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[conversationID]
	if !ok {
		return nil, ErrUnknownConversation
	}
	pending := sess.Pending
	if pending == nil || pending.State != models.ApprovalPending {
		return nil, ErrNoPendingCall
	}
	if len(pending.Calls) == 0 || pending.Calls[0].ID != requestID {
		return nil, ErrNoPendingCall
	}

	pending.State = decision
	delete(s.sessions, conversationID)
	return sess, nil
}

// Len reports the number of in-flight sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
