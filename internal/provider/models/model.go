package models

import (
	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// ResponseType indicates what the model produced.
type ResponseType string

const (
	// ResponseTypeText is a plain conversational reply. Terminal for the
	// current mention.
	ResponseTypeText ResponseType = "text"
	// ResponseTypeToolUse means the model asked for one or more tool
	// invocations and is waiting for their results.
	ResponseTypeToolUse ResponseType = "tool_use"
	// ResponseTypeFinalAnswer means the model signalled its task is complete.
	// Terminal for the current mention.
	ResponseTypeFinalAnswer ResponseType = "final_answer"
)

// Response is the classified reply from the model.
// It is a closed tagged variant: exactly one of the three types above,
// and ToolCalls is non-empty if and only if Type is ResponseTypeToolUse.
type Response struct {
	Type    ResponseType
	Content string

	// ToolCalls holds every tool invocation in the reply, in order.
	// Only the first is surfaced for approval; the rest are answered with
	// not-executed results on the follow-up round trip.
	ToolCalls []models.ToolCall
}

// Terminal reports whether the response ends the current mention's handling.
func (r *Response) Terminal() bool {
	return r.Type != ResponseTypeToolUse
}

// First returns the tool call surfaced for approval.
// Only valid when Type is ResponseTypeToolUse.
func (r *Response) First() models.ToolCall {
	return r.ToolCalls[0]
}

// ToolDefinition describes a tool the model may request.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ParameterSchema // nil when the tool takes no parameters
}

// ParameterSchema maps directly to standard JSON Schema.
// Properties is kept free-form because tool schemas arrive verbatim from
// external tool servers.
type ParameterSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}
