package models

import (
	"context"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// Conversation is the LLM collaborator for one mention's resolution.
// Implementations are stateless: the caller owns the accumulated history and
// re-sends it on every call.
type Conversation interface {
	// Send submits the user's message plus prior history and available tools,
	// and returns the classified reply.
	Send(ctx context.Context, history []models.Message, message string, tools []ToolDefinition) (*Response, error)

	// SendToolResult submits tool execution results for the tool calls in the
	// last assistant turn. Every pending call must be answered, so results
	// carries one entry per call.
	SendToolResult(ctx context.Context, history []models.Message, results []models.ToolResult, tools []ToolDefinition) (*Response, error)

	// NotifyDenial informs the model that the human rejected the given tool
	// calls, and returns the model's reaction.
	NotifyDenial(ctx context.Context, history []models.Message, calls []models.ToolCall, tools []ToolDefinition) (*Response, error)
}
