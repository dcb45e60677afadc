package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

// Final-answer convention: the model wraps a completed task's reply in these
// tags. Their presence distinguishes a final answer from ordinary text.
const (
	finalAnswerOpen  = "<final_answer>"
	finalAnswerClose = "</final_answer>"
)

// toMessageParams converts accumulated history to Messages API params.
func toMessageParams(history []models.Message) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		switch {
		case len(m.ToolCalls) > 0:
			msgs = append(msgs, anthropic.NewAssistantMessage(toUseBlocks(m)...))
		case len(m.ToolResults) > 0:
			msgs = append(msgs, anthropic.NewUserMessage(toResultBlocks(m.ToolResults)...))
		case m.Role == models.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return msgs
}

// toUseBlocks renders an assistant turn that requested tools, preserving any
// leading text alongside the tool_use blocks.
func toUseBlocks(m models.Message) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
	if m.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	for _, call := range m.ToolCalls {
		input := call.Params
		if input == nil {
			input = map[string]any{}
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Name))
	}
	return blocks
}

// toResultBlocks renders tool results as tool_result content blocks.
func toResultBlocks(results []models.ToolResult) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, anthropic.NewToolResultBlock(r.RequestID, r.Content, r.IsError))
	}
	return blocks
}

// toToolParams converts tool definitions to the Messages API tool format.
func toToolParams(tools []provider.ToolDefinition) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
		}
		if t.Parameters != nil {
			tool.InputSchema = anthropic.ToolInputSchemaParam{
				Properties: t.Parameters.Properties,
				Required:   t.Parameters.Required,
			}
		}
		params = append(params, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return params
}

// classify interprets a raw reply as one of the closed response variants.
// Classification policy: any tool_use block makes the reply a tool-use
// request; otherwise the final-answer convention decides between final answer
// and plain text.
func classify(msg *anthropic.Message) (*provider.Response, error) {
	if msg == nil || len(msg.Content) == 0 {
		return nil, &provider.ConversationError{
			Kind:    provider.ErrMalformedResponse,
			Message: "reply has no content blocks",
		}
	}

	var text strings.Builder
	var calls []models.ToolCall
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(block.Text)
		case "tool_use":
			params, err := decodeParams(block.Input)
			if err != nil {
				return nil, &provider.ConversationError{
					Kind:       provider.ErrMalformedResponse,
					Message:    fmt.Sprintf("tool_use block %q has undecodable input", block.Name),
					Underlying: err,
				}
			}
			calls = append(calls, models.ToolCall{
				ID:     block.ID,
				Name:   block.Name,
				Params: params,
			})
		}
	}

	if len(calls) > 0 {
		return &provider.Response{
			Type:      provider.ResponseTypeToolUse,
			Content:   text.String(),
			ToolCalls: calls,
		}, nil
	}

	content := text.String()
	if content == "" {
		return nil, &provider.ConversationError{
			Kind:    provider.ErrMalformedResponse,
			Message: "reply contains neither text nor tool_use blocks",
		}
	}

	if final, ok := extractFinalAnswer(content); ok {
		return &provider.Response{
			Type:    provider.ResponseTypeFinalAnswer,
			Content: final,
		}, nil
	}

	return &provider.Response{
		Type:    provider.ResponseTypeText,
		Content: content,
	}, nil
}

// extractFinalAnswer strips the final-answer tags if present.
func extractFinalAnswer(content string) (string, bool) {
	if !strings.Contains(content, finalAnswerOpen) {
		return "", false
	}
	stripped := strings.ReplaceAll(content, finalAnswerOpen, "")
	stripped = strings.ReplaceAll(stripped, finalAnswerClose, "")
	return strings.TrimSpace(stripped), true
}

func decodeParams(input json.RawMessage) (map[string]any, error) {
	if len(input) == 0 {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

// mapAPIError folds SDK failures onto the conversation error taxonomy.
// Context cancellation passes through untouched so callers can tell a
// timeout from an upstream failure.
func mapAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &provider.ConversationError{
			Kind:       provider.ErrUpstreamUnavailable,
			Message:    fmt.Sprintf("messages api returned status %d", apiErr.StatusCode),
			Underlying: err,
		}
	}

	return &provider.ConversationError{
		Kind:       provider.ErrUpstreamUnavailable,
		Message:    "messages api call failed",
		Underlying: err,
	}
}
