package claude

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

func TestClassifyPlainText(t *testing.T) {
	resp, err := classify(textReply("hello there"))

	require.NoError(t, err)
	assert.Equal(t, provider.ResponseTypeText, resp.Type)
	assert.Equal(t, "hello there", resp.Content)
	assert.Empty(t, resp.ToolCalls)
}

func TestClassifyFinalAnswer(t *testing.T) {
	resp, err := classify(textReply("<final_answer>\nThere are 42 files.\n</final_answer>"))

	require.NoError(t, err)
	assert.Equal(t, provider.ResponseTypeFinalAnswer, resp.Type)
	assert.Equal(t, "There are 42 files.", resp.Content, "tags are stripped")
}

func TestClassifyToolUse(t *testing.T) {
	resp, err := classify(toolUseReply("toolu_01", "list_files", `{"path":"/tmp"}`))

	require.NoError(t, err)
	assert.Equal(t, provider.ResponseTypeToolUse, resp.Type)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_01", resp.ToolCalls[0].ID)
	assert.Equal(t, "list_files", resp.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"path": "/tmp"}, resp.ToolCalls[0].Params)
}

func TestClassifyToolUseWinsOverText(t *testing.T) {
	msg := &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Let me check."},
			{Type: "tool_use", ID: "toolu_01", Name: "list_files", Input: []byte(`{}`)},
			{Type: "tool_use", ID: "toolu_02", Name: "read_file", Input: []byte(`{"path":"a"}`)},
		},
	}

	resp, err := classify(msg)

	require.NoError(t, err)
	assert.Equal(t, provider.ResponseTypeToolUse, resp.Type)
	assert.Equal(t, "Let me check.", resp.Content)
	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "toolu_01", resp.First().ID, "the first requested call is the surfaced one")
}

func TestClassifyEmptyReply(t *testing.T) {
	_, err := classify(&anthropic.Message{})

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrMalformedResponse)
}

func TestClassifyUndecodableToolInput(t *testing.T) {
	_, err := classify(toolUseReply("toolu_01", "list_files", `{not json`))

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrMalformedResponse)
}

func TestClassifyNilToolInputDefaultsToEmptyParams(t *testing.T) {
	msg := &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "tool_use", ID: "toolu_01", Name: "ping"},
		},
	}

	resp, err := classify(msg)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, resp.ToolCalls[0].Params)
}

func TestToMessageParamsShapesTurns(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "list the files"},
		{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{{ID: "toolu_01", Name: "list_files", Params: map[string]any{"path": "."}}}},
		{Role: models.RoleUser, ToolResults: []models.ToolResult{{RequestID: "toolu_01", Content: "a.txt"}}},
		{Role: models.RoleAssistant, Content: "just a.txt"},
	}

	msgs := toMessageParams(history)

	require.Len(t, msgs, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 1)
	assert.NotNil(t, msgs[1].Content[0].OfToolUse)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	assert.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[3].Role)
}

func TestExtractFinalAnswer(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		found   bool
	}{
		{"wrapped", "<final_answer>done</final_answer>", "done", true},
		{"with surrounding text", "ok\n<final_answer>done</final_answer>\n", "ok\ndone", true},
		{"unclosed tag still counts", "<final_answer>done", "done", true},
		{"plain text", "no tags here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractFinalAnswer(tt.content)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapAPIErrorPassesContextErrors(t *testing.T) {
	assert.ErrorIs(t, mapAPIError(context.Canceled), context.Canceled)
	assert.ErrorIs(t, mapAPIError(context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestMapAPIErrorWrapsUpstreamFailures(t *testing.T) {
	cause := errors.New("connection refused")

	err := mapAPIError(cause)

	assert.ErrorIs(t, err, provider.ErrUpstreamUnavailable)
	var convErr *provider.ConversationError
	require.ErrorAs(t, err, &convErr)
	assert.ErrorIs(t, convErr.Underlying, cause)
}
