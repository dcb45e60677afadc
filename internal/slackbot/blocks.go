package slackbot

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// Action IDs the interaction handler dispatches on.
const (
	ActionApprove = "approve_tool_use"
	ActionDeny    = "deny_tool_use"
)

// approvalBlocks renders the prompt for a tool call awaiting a human
// decision: tool name, pretty-printed parameters, and the two decision
// buttons carrying the correlation payload.
func approvalBlocks(call models.ToolCall, payload string) []slack.Block {
	header := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf(":robot_face: The assistant wants to use the tool `%s` with these parameters:", call.Name),
			false, false),
		nil, nil,
	)
	params := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("```%s```", formatToolParams(call.Params)),
			false, false),
		nil, nil,
	)
	approve := slack.NewButtonBlockElement(ActionApprove, payload,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false))
	approve.Style = slack.StylePrimary
	deny := slack.NewButtonBlockElement(ActionDeny, payload,
		slack.NewTextBlockObject(slack.PlainTextType, "Deny", false, false))
	deny.Style = slack.StyleDanger

	return []slack.Block{
		header,
		params,
		slack.NewActionBlock("tool_approval", approve, deny),
	}
}

// formatToolParams pretty-prints the parameter map for the prompt body.
func formatToolParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return string(data)
}
