package slackbot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot(flow Flow) *Bot {
	return New(nil, flow, staticTools{}, "UBOT", zerolog.Nop())
}

func awaitCall(t *testing.T, flow *mockFlow) flowCall {
	t.Helper()
	select {
	case call := <-flow.calls:
		return call
	case <-time.After(time.Second):
		t.Fatal("flow was not invoked")
		return flowCall{}
	}
}

func TestHandleMentionDispatchesToFlow(t *testing.T) {
	flow := newMockFlow()
	b := newTestBot(flow)

	b.handleMention(context.Background(), &slackevents.AppMentionEvent{
		Channel:         "C1",
		User:            "U1",
		Text:            "<@UBOT> list the files",
		TimeStamp:       "1700.0002",
		ThreadTimeStamp: "1700.0001",
	})

	call := awaitCall(t, flow)
	assert.Equal(t, "mention", call.kind)
	assert.Equal(t, "C1", call.mention.Channel)
	assert.Equal(t, "list the files", call.mention.Text, "self-mention token is stripped")
	assert.Equal(t, "1700.0001", call.mention.ThreadTS)
	assert.Equal(t, "1700.0002", call.mention.TS)
}

func TestHandleMentionIgnoresBots(t *testing.T) {
	flow := newMockFlow()
	b := newTestBot(flow)

	b.handleMention(context.Background(), &slackevents.AppMentionEvent{Channel: "C1", User: "UBOT", Text: "self"})
	b.handleMention(context.Background(), &slackevents.AppMentionEvent{Channel: "C1", User: "U9", BotID: "B42", Text: "from an app"})

	select {
	case <-flow.calls:
		t.Fatal("bot-authored mentions must not reach the flow")
	case <-time.After(50 * time.Millisecond):
	}
}

func decisionCallback(actionID, value string) slack.InteractionCallback {
	callback := slack.InteractionCallback{
		Type: slack.InteractionTypeBlockActions,
		ActionCallback: slack.ActionCallbacks{
			BlockActions: []*slack.BlockAction{{ActionID: actionID, Value: value}},
		},
	}
	callback.Channel.ID = "C1"
	callback.Message.Timestamp = "1700.0005"
	return callback
}

func TestHandleInteractionApprove(t *testing.T) {
	flow := newMockFlow()
	b := newTestBot(flow)
	value, err := ApprovalPayload{ConversationID: "conv-1", RequestID: "toolu_01"}.Encode()
	require.NoError(t, err)

	b.handleInteraction(context.Background(), decisionCallback(ActionApprove, value))

	call := awaitCall(t, flow)
	assert.Equal(t, "approve", call.kind)
	assert.Equal(t, "conv-1", call.conversationID)
	assert.Equal(t, "toolu_01", call.requestID)
	assert.Equal(t, "C1", call.prompt.Channel)
	assert.Equal(t, "1700.0005", call.prompt.Timestamp, "the clicked prompt is the message to collapse")
}

func TestHandleInteractionDeny(t *testing.T) {
	flow := newMockFlow()
	b := newTestBot(flow)
	value, err := ApprovalPayload{ConversationID: "conv-1", RequestID: "toolu_01"}.Encode()
	require.NoError(t, err)

	b.handleInteraction(context.Background(), decisionCallback(ActionDeny, value))

	call := awaitCall(t, flow)
	assert.Equal(t, "deny", call.kind)
}

func TestHandleInteractionDropsUndecodableValue(t *testing.T) {
	flow := newMockFlow()
	b := newTestBot(flow)

	b.handleInteraction(context.Background(), decisionCallback(ActionApprove, "not json"))

	select {
	case <-flow.calls:
		t.Fatal("undecodable payloads must not reach the flow")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleInteractionIgnoresForeignActions(t *testing.T) {
	flow := newMockFlow()
	b := newTestBot(flow)

	b.handleInteraction(context.Background(), decisionCallback("some_other_action", "{}"))

	select {
	case <-flow.calls:
		t.Fatal("unrelated actions must not reach the flow")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAlreadySeenDeduplicates(t *testing.T) {
	b := newTestBot(newMockFlow())

	assert.False(t, b.alreadySeen("env-1"))
	assert.True(t, b.alreadySeen("env-1"))
	assert.False(t, b.alreadySeen("env-2"))
	assert.False(t, b.alreadySeen(""), "empty envelope IDs are never deduplicated")
	assert.False(t, b.alreadySeen(""))
}

func TestStripSelfMention(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"leading mention", "<@UBOT> list files", "list files"},
		{"mid-sentence mention", "hey <@UBOT> help", "hey  help"},
		{"other user untouched", "<@UOTHER> hi", "<@UOTHER> hi"},
		{"only the mention", "<@UBOT>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripSelfMention(tt.text, "UBOT"))
		})
	}
}
