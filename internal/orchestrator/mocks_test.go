package orchestrator

import (
	"context"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

type mockConversation struct {
	sendFn           func(ctx context.Context, history []models.Message, message string, tools []provider.ToolDefinition) (*provider.Response, error)
	sendToolResultFn func(ctx context.Context, history []models.Message, results []models.ToolResult, tools []provider.ToolDefinition) (*provider.Response, error)
	notifyDenialFn   func(ctx context.Context, history []models.Message, calls []models.ToolCall, tools []provider.ToolDefinition) (*provider.Response, error)
}

func (m *mockConversation) Send(ctx context.Context, history []models.Message, message string, tools []provider.ToolDefinition) (*provider.Response, error) {
	return m.sendFn(ctx, history, message, tools)
}

func (m *mockConversation) SendToolResult(ctx context.Context, history []models.Message, results []models.ToolResult, tools []provider.ToolDefinition) (*provider.Response, error) {
	return m.sendToolResultFn(ctx, history, results, tools)
}

func (m *mockConversation) NotifyDenial(ctx context.Context, history []models.Message, calls []models.ToolCall, tools []provider.ToolDefinition) (*provider.Response, error) {
	return m.notifyDenialFn(ctx, history, calls, tools)
}

type mockBroker struct {
	executeFn func(ctx context.Context, call models.ToolCall) models.ToolResult
	calls     []models.ToolCall
}

func (m *mockBroker) Execute(ctx context.Context, call models.ToolCall) models.ToolResult {
	m.calls = append(m.calls, call)
	return m.executeFn(ctx, call)
}

type mockMessenger struct {
	postTextFn     func(ctx context.Context, m models.Mention, text string) error
	postApprovalFn func(ctx context.Context, m models.Mention, conversationID string, call models.ToolCall) (models.MessageRef, error)
	updateFn       func(ctx context.Context, ref models.MessageRef, text string) error

	texts     []string
	decisions []string
	prompts   []promptRecord
}

type promptRecord struct {
	conversationID string
	call           models.ToolCall
}

func (m *mockMessenger) PostText(ctx context.Context, mention models.Mention, text string) error {
	m.texts = append(m.texts, text)
	if m.postTextFn != nil {
		return m.postTextFn(ctx, mention, text)
	}
	return nil
}

func (m *mockMessenger) PostApprovalPrompt(ctx context.Context, mention models.Mention, conversationID string, call models.ToolCall) (models.MessageRef, error) {
	m.prompts = append(m.prompts, promptRecord{conversationID: conversationID, call: call})
	if m.postApprovalFn != nil {
		return m.postApprovalFn(ctx, mention, conversationID, call)
	}
	return models.MessageRef{Channel: mention.Channel, Timestamp: "1700000000.000100"}, nil
}

func (m *mockMessenger) UpdateDecision(ctx context.Context, ref models.MessageRef, text string) error {
	m.decisions = append(m.decisions, text)
	if m.updateFn != nil {
		return m.updateFn(ctx, ref, text)
	}
	return nil
}

type mockHistory struct {
	loadFn    func(ctx context.Context, channel, threadTS string) ([]models.Message, error)
	loadCalls int
}

func (m *mockHistory) Load(ctx context.Context, channel, threadTS string) ([]models.Message, error) {
	m.loadCalls++
	if m.loadFn != nil {
		return m.loadFn(ctx, channel, threadTS)
	}
	return nil, nil
}
