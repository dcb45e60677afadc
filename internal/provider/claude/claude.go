// Package claude implements the Conversation interface on top of the
// Anthropic Messages API. History is kept caller-side and re-sent on every
// call; the only state here is client configuration.
package claude

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

// deniedResult is the tool result content sent when a human rejects a call.
const deniedResult = "The user denied this tool call. Do not retry it; explain or continue without it."

// skippedResult answers tool calls that were present in the reply but not
// selected for approval. The Messages API requires a result for every
// requested call.
const skippedResult = "This tool call was not executed; only one tool call is processed per approval round."

// Client talks to Claude and classifies its replies.
type Client struct {
	api       MessagesAPI
	model     anthropic.Model
	maxTokens int64
	system    string
	timeout   time.Duration
}

// Config carries the generation settings for a Client.
type Config struct {
	Model     string
	MaxTokens int64
	System    string
	// Timeout bounds each Messages API call.
	Timeout time.Duration
}

// New creates a Client around the given Messages endpoint.
func New(api MessagesAPI, cfg Config) *Client {
	return &Client{
		api:       api,
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		system:    cfg.System,
		timeout:   cfg.Timeout,
	}
}

// Send submits a user message plus prior history and available tools, and
// returns the classified reply.
func (c *Client) Send(ctx context.Context, history []models.Message, message string, tools []provider.ToolDefinition) (*provider.Response, error) {
	msgs := toMessageParams(history)
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))
	return c.call(ctx, msgs, tools)
}

// SendToolResult submits execution results for the tool calls requested in
// the last assistant turn. results must answer every pending call.
func (c *Client) SendToolResult(ctx context.Context, history []models.Message, results []models.ToolResult, tools []provider.ToolDefinition) (*provider.Response, error) {
	msgs := toMessageParams(history)
	msgs = append(msgs, anthropic.NewUserMessage(toResultBlocks(results)...))
	return c.call(ctx, msgs, tools)
}

// NotifyDenial informs the model that the human rejected the given tool calls.
func (c *Client) NotifyDenial(ctx context.Context, history []models.Message, calls []models.ToolCall, tools []provider.ToolDefinition) (*provider.Response, error) {
	results := make([]models.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, models.ToolResult{
			RequestID: call.ID,
			Content:   deniedResult,
			IsError:   true,
		})
	}
	return c.SendToolResult(ctx, history, results, tools)
}

func (c *Client) call(ctx context.Context, msgs []anthropic.MessageParam, tools []provider.ToolDefinition) (*provider.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  msgs,
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}

	msg, err := c.api.New(ctx, params)
	if err != nil {
		return nil, mapAPIError(err)
	}

	return classify(msg)
}
