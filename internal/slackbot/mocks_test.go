package slackbot

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

type mockAPI struct {
	postMessageFn func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	updateFn      func(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	repliesFn     func(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)

	posted  []string
	updated []models.MessageRef
}

func (m *mockAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.posted = append(m.posted, channelID)
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, options...)
	}
	return channelID, "1700000000.000100", nil
}

func (m *mockAPI) UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	m.updated = append(m.updated, models.MessageRef{Channel: channelID, Timestamp: timestamp})
	if m.updateFn != nil {
		return m.updateFn(ctx, channelID, timestamp, options...)
	}
	return channelID, timestamp, "", nil
}

func (m *mockAPI) GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error) {
	return m.repliesFn(ctx, params)
}

// flowCall records one dispatched flow invocation for assertion from the
// test goroutine.
type flowCall struct {
	kind           string
	mention        models.Mention
	conversationID string
	requestID      string
	prompt         models.MessageRef
}

type mockFlow struct {
	calls chan flowCall
}

func newMockFlow() *mockFlow {
	return &mockFlow{calls: make(chan flowCall, 8)}
}

func (f *mockFlow) HandleMention(_ context.Context, m models.Mention, _ []provider.ToolDefinition) error {
	f.calls <- flowCall{kind: "mention", mention: m}
	return nil
}

func (f *mockFlow) Approve(_ context.Context, conversationID, requestID string, prompt models.MessageRef) error {
	f.calls <- flowCall{kind: "approve", conversationID: conversationID, requestID: requestID, prompt: prompt}
	return nil
}

func (f *mockFlow) Deny(_ context.Context, conversationID, requestID string, prompt models.MessageRef) error {
	f.calls <- flowCall{kind: "deny", conversationID: conversationID, requestID: requestID, prompt: prompt}
	return nil
}

type staticTools struct{}

func (staticTools) Tools() []provider.ToolDefinition { return nil }
