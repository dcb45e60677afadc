package slackbot

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

// API is the subset of the Slack Web API the bot uses.
// *slack.Client satisfies it.
type API interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
}

// Flow is the conversation flow the bot dispatches inbound events into.
type Flow interface {
	HandleMention(ctx context.Context, m models.Mention, tools []provider.ToolDefinition) error
	Approve(ctx context.Context, conversationID, requestID string, prompt models.MessageRef) error
	Deny(ctx context.Context, conversationID, requestID string, prompt models.MessageRef) error
}

// ToolSource supplies the tool set available to a new conversation.
type ToolSource interface {
	Tools() []provider.ToolDefinition
}
