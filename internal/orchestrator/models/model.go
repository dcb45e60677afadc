package models

// Mention is an inbound request addressed to the bot in a channel or thread.
// It is created by the messaging platform and consumed once.
type Mention struct {
	Channel string
	// ThreadTS is the anchor timestamp of the surrounding thread.
	// Empty when the mention is not inside a thread.
	ThreadTS string
	// TS is the timestamp of the mention message itself.
	TS   string
	User string
	Text string
}

// Anchor returns the timestamp replies to this mention should thread under.
func (m Mention) Anchor() string {
	if m.ThreadTS != "" {
		return m.ThreadTS
	}
	return m.TS
}

// InThread reports whether the mention arrived inside an existing thread.
func (m Mention) InThread() bool {
	return m.ThreadTS != ""
}

// MessageRef locates a message the bot has posted, so it can be updated in place.
type MessageRef struct {
	Channel   string
	Timestamp string
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in the conversation history
type Message struct {
	Role    string // RoleUser or RoleAssistant
	Content string

	// For assistant messages requesting tool use
	ToolCalls []ToolCall

	// For user messages carrying tool execution results
	ToolResults []ToolResult
}

// ToolCall represents a structured tool invocation requested by the model.
type ToolCall struct {
	ID     string
	Name   string
	Params map[string]any
}

// ToolResult represents the outcome of a tool execution.
type ToolResult struct {
	RequestID string // Matches ToolCall.ID
	Content   string
	IsError   bool
}

// ApprovalState tracks a pending tool call through the approval flow.
//
// Valid transitions:
//
//	pending -> approved -> executed          -> resolved
//	pending -> approved -> execution_failed  -> resolved
//	pending -> denied                        -> resolved
type ApprovalState string

const (
	// ApprovalPending means the prompt is posted and no decision has arrived.
	ApprovalPending ApprovalState = "pending"
	// ApprovalApproved means a human approved the call; execution is underway.
	ApprovalApproved ApprovalState = "approved"
	// ApprovalDenied means a human rejected the call.
	ApprovalDenied ApprovalState = "denied"
	// ApprovalExecuted means the approved call completed.
	ApprovalExecuted ApprovalState = "executed"
	// ApprovalExecutionFailed means the approved call failed. The failure is
	// still forwarded to the model as an error tool result.
	ApprovalExecutionFailed ApprovalState = "execution_failed"
	// ApprovalResolved means the follow-up model call has completed.
	ApprovalResolved ApprovalState = "resolved"
)
