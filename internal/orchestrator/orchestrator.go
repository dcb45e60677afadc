// Package orchestrator drives the tool-approval conversation flow: a mention
// is relayed to the model, the classified reply either terminates with a
// post or suspends on a human approval prompt, and the eventual decision
// resumes the flow until a terminal reply is reached.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

// failureNotice is posted when the model call fails; the flow is aborted and
// not retried.
const failureNotice = "Sorry, something went wrong while talking to the assistant. Please try again."

// Orchestrator coordinates the collaborators of one mention's resolution.
// All collaborators are injected; it holds no hidden process-wide state
// beyond the session store.
type Orchestrator struct {
	conv      provider.Conversation
	broker    ToolBroker
	messenger Messenger
	history   HistoryLoader
	store     *SessionStore
	log       zerolog.Logger
}

// New creates an Orchestrator with its collaborator handles.
func New(conv provider.Conversation, broker ToolBroker, messenger Messenger, history HistoryLoader, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		conv:      conv,
		broker:    broker,
		messenger: messenger,
		history:   history,
		store:     NewSessionStore(),
		log:       log,
	}
}

// HandleMention runs one mention through the flow until it terminates or
// suspends on an approval prompt.
func (o *Orchestrator) HandleMention(ctx context.Context, m models.Mention, tools []provider.ToolDefinition) error {
	sess := o.store.Create(m, tools)

	if m.InThread() {
		turns, err := o.history.Load(ctx, m.Channel, m.ThreadTS)
		if err != nil {
			// Availability over completeness: continue with empty history.
			o.log.Warn().Err(err).Str("channel", m.Channel).Str("thread", m.ThreadTS).
				Msg("thread history unavailable, continuing without context")
		} else {
			sess.History = turns
		}
	}

	resp, err := o.conv.Send(ctx, sess.History, m.Text, sess.Tools)
	if err != nil {
		return o.abort(ctx, sess, err)
	}

	sess.History = append(sess.History, models.Message{Role: models.RoleUser, Content: m.Text})
	return o.dispatch(ctx, sess, resp)
}

// Approve resumes a suspended flow after a human approved the surfaced tool
// call. prompt locates the approval message so it can be updated in place.
// Duplicate or stale payloads are ignored.
func (o *Orchestrator) Approve(ctx context.Context, conversationID, requestID string, prompt models.MessageRef) error {
	sess, err := o.store.Claim(conversationID, requestID, models.ApprovalApproved)
	if err != nil {
		o.log.Debug().Err(err).Str("conversation", conversationID).Str("request", requestID).
			Msg("ignoring approval for unclaimable tool call")
		return nil
	}

	if err := o.messenger.UpdateDecision(ctx, prompt, fmt.Sprintf("Tool use approved. Running `%s`…", sess.Pending.Calls[0].Name)); err != nil {
		o.log.Warn().Err(err).Msg("failed to update approval prompt")
	}

	result := o.broker.Execute(ctx, sess.Pending.Calls[0])
	if result.IsError {
		sess.Pending.State = models.ApprovalExecutionFailed
	} else {
		sess.Pending.State = models.ApprovalExecuted
	}

	// Every requested call must be answered, executed or not.
	results := answerAll(sess.Pending.Calls, result)
	resp, err := o.conv.SendToolResult(ctx, sess.History, results, sess.Tools)
	if err != nil {
		return o.abort(ctx, sess, err)
	}

	sess.History = append(sess.History, models.Message{Role: models.RoleUser, ToolResults: results})
	sess.Pending.State = models.ApprovalResolved
	sess.Pending = nil
	return o.dispatch(ctx, sess, resp)
}

// Deny resumes a suspended flow after a human rejected the surfaced tool
// call. No tool is executed. Duplicate or stale payloads are ignored.
func (o *Orchestrator) Deny(ctx context.Context, conversationID, requestID string, prompt models.MessageRef) error {
	sess, err := o.store.Claim(conversationID, requestID, models.ApprovalDenied)
	if err != nil {
		o.log.Debug().Err(err).Str("conversation", conversationID).Str("request", requestID).
			Msg("ignoring denial for unclaimable tool call")
		return nil
	}

	if err := o.messenger.UpdateDecision(ctx, prompt, fmt.Sprintf("Tool use denied: `%s`.", sess.Pending.Calls[0].Name)); err != nil {
		o.log.Warn().Err(err).Msg("failed to update approval prompt")
	}

	calls := sess.Pending.Calls
	resp, err := o.conv.NotifyDenial(ctx, sess.History, calls, sess.Tools)
	if err != nil {
		return o.abort(ctx, sess, err)
	}

	sess.History = append(sess.History, models.Message{Role: models.RoleUser, ToolResults: deniedResults(calls)})
	sess.Pending.State = models.ApprovalResolved
	sess.Pending = nil
	return o.dispatch(ctx, sess, resp)
}

// dispatch branches on the classified reply: terminal replies are posted and
// end the flow, a tool-use request posts an approval prompt and suspends.
func (o *Orchestrator) dispatch(ctx context.Context, sess *Session, resp *provider.Response) error {
	switch resp.Type {
	case provider.ResponseTypeText, provider.ResponseTypeFinalAnswer:
		sess.History = append(sess.History, models.Message{Role: models.RoleAssistant, Content: resp.Content})
		if err := o.messenger.PostText(ctx, sess.Origin, resp.Content); err != nil {
			return fmt.Errorf("failed to post reply: %w", err)
		}
		return nil

	case provider.ResponseTypeToolUse:
		sess.History = append(sess.History, models.Message{
			Role:      models.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		sess.Pending = &PendingToolCall{
			Calls: resp.ToolCalls,
			State: models.ApprovalPending,
		}
		// Make the session claimable before the prompt is visible, so a
		// decision can never race the store.
		o.store.Put(sess)

		call := resp.First()
		if len(resp.ToolCalls) > 1 {
			o.log.Debug().Int("extra_calls", len(resp.ToolCalls)-1).Str("tool", call.Name).
				Msg("multiple tool calls in reply, surfacing only the first")
		}
		if _, err := o.messenger.PostApprovalPrompt(ctx, sess.Origin, sess.ID, call); err != nil {
			o.store.Delete(sess.ID)
			return fmt.Errorf("failed to post approval prompt: %w", err)
		}
		o.log.Info().Str("conversation", sess.ID).Str("request", call.ID).Str("tool", call.Name).
			Msg("awaiting tool approval")
		return nil

	default:
		return fmt.Errorf("unknown response type %q", resp.Type)
	}
}

// abort ends the flow on a model failure: the user gets a notice, the
// session is dropped, and nothing is retried.
func (o *Orchestrator) abort(ctx context.Context, sess *Session, cause error) error {
	o.store.Delete(sess.ID)
	if postErr := o.messenger.PostText(ctx, sess.Origin, failureNotice); postErr != nil {
		o.log.Warn().Err(postErr).Msg("failed to post failure notice")
	}
	return fmt.Errorf("conversation %s aborted: %w", sess.ID, cause)
}

// answerAll builds one result per requested call: the executed result for the
// surfaced call and not-executed errors for the rest.
func answerAll(calls []models.ToolCall, executed models.ToolResult) []models.ToolResult {
	results := make([]models.ToolResult, 0, len(calls))
	for _, call := range calls {
		if call.ID == executed.RequestID {
			results = append(results, executed)
			continue
		}
		results = append(results, models.ToolResult{
			RequestID: call.ID,
			Content:   "This tool call was not executed; only one tool call is processed per approval round.",
			IsError:   true,
		})
	}
	return results
}

// deniedResults mirrors the denial the provider reports to the model, so the
// session history stays consistent with what was sent.
func deniedResults(calls []models.ToolCall) []models.ToolResult {
	results := make([]models.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, models.ToolResult{
			RequestID: call.ID,
			Content:   "The user denied this tool call. Do not retry it; explain or continue without it.",
			IsError:   true,
		})
	}
	return results
}
