package orchestrator

import (
	"context"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// HistoryLoader fetches the prior turns of the thread a mention lives in.
type HistoryLoader interface {
	// Load returns the thread's messages in original posting order, or an
	// empty slice when threadTS is empty (the mention is not in a thread).
	Load(ctx context.Context, channel, threadTS string) ([]models.Message, error)
}

// ToolBroker executes approved tool calls via the external tool layer.
type ToolBroker interface {
	// Execute runs the call and always returns a result; failures are folded
	// into an error-flagged result so the model is never left waiting.
	Execute(ctx context.Context, call models.ToolCall) models.ToolResult
}

// Messenger posts and updates messages on the chat surface.
type Messenger interface {
	// PostText posts plain content, threaded under the mention when it came
	// from a thread.
	PostText(ctx context.Context, m models.Mention, text string) error

	// PostApprovalPrompt renders the interactive approve/deny prompt for the
	// call, carrying conversationID and the call's request ID as the opaque
	// correlation payload.
	PostApprovalPrompt(ctx context.Context, m models.Mention, conversationID string, call models.ToolCall) (models.MessageRef, error)

	// UpdateDecision replaces the approval prompt in place with a terminal
	// decision notice, removing the buttons.
	UpdateDecision(ctx context.Context, ref models.MessageRef, text string) error
}
