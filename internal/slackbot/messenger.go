package slackbot

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// Messenger posts and updates the bot's messages. Replies thread under the
// originating mention when it came from a thread; approval prompts always
// thread under the mention so the decision stays next to the request.
type Messenger struct {
	api API
}

// NewMessenger creates a Messenger over the Slack Web API.
func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

// PostText posts a plain reply to the mention's channel, threading it when
// the mention itself was threaded.
func (s *Messenger) PostText(ctx context.Context, m models.Mention, text string) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if m.InThread() {
		opts = append(opts, slack.MsgOptionTS(m.ThreadTS))
	}
	if _, _, err := s.api.PostMessageContext(ctx, m.Channel, opts...); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// PostApprovalPrompt posts the interactive approve/deny prompt for the
// surfaced tool call and returns a reference to the posted message.
func (s *Messenger) PostApprovalPrompt(ctx context.Context, m models.Mention, conversationID string, call models.ToolCall) (models.MessageRef, error) {
	payload, err := ApprovalPayload{ConversationID: conversationID, RequestID: call.ID}.Encode()
	if err != nil {
		return models.MessageRef{}, err
	}

	opts := []slack.MsgOption{
		slack.MsgOptionBlocks(approvalBlocks(call, payload)...),
		slack.MsgOptionText(fmt.Sprintf("Tool approval requested: %s", call.Name), false),
		slack.MsgOptionTS(m.Anchor()),
	}
	channel, ts, err := s.api.PostMessageContext(ctx, m.Channel, opts...)
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("post approval prompt: %w", err)
	}
	return models.MessageRef{Channel: channel, Timestamp: ts}, nil
}

// UpdateDecision replaces the approval prompt in place with plain text,
// removing the buttons so the decision cannot be re-taken from the UI.
func (s *Messenger) UpdateDecision(ctx context.Context, ref models.MessageRef, text string) error {
	_, _, _, err := s.api.UpdateMessageContext(ctx, ref.Channel, ref.Timestamp,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(),
	)
	if err != nil {
		return fmt.Errorf("update approval prompt: %w", err)
	}
	return nil
}
