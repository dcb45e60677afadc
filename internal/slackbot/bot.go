// Package slackbot is the Slack surface: it receives mention events and
// button interactions over Socket Mode and dispatches them into the
// conversation flow, and it renders the flow's replies and approval
// prompts back into the channel.
package slackbot

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// maxSeenEnvelopes bounds the dedup set; Slack redelivers within minutes,
// so dropping the oldest half on overflow is safe.
const maxSeenEnvelopes = 2048

// Bot runs the Socket Mode event loop. Every event is acked immediately and
// handled on its own goroutine so a slow model call never stalls the socket.
type Bot struct {
	client    *socketmode.Client
	flow      Flow
	tools     ToolSource
	botUserID string
	log       zerolog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a Bot. botUserID is the bot's own Slack user ID, used to strip
// self-mentions from inbound text and skip self-authored thread messages.
func New(client *socketmode.Client, flow Flow, tools ToolSource, botUserID string, log zerolog.Logger) *Bot {
	return &Bot{
		client:    client,
		flow:      flow,
		tools:     tools,
		botUserID: botUserID,
		log:       log,
		seen:      make(map[string]struct{}),
	}
}

// Run connects the Socket Mode client and processes events until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	go b.consume(ctx)
	return b.client.RunContext(ctx)
}

func (b *Bot) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.client.Events:
			if !ok {
				return
			}
			b.route(ctx, evt)
		}
	}
}

func (b *Bot) route(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.log.Info().Msg("connecting to slack")
	case socketmode.EventTypeConnected:
		b.log.Info().Msg("connected to slack")
	case socketmode.EventTypeConnectionError:
		b.log.Warn().Msg("slack connection error, socket client will reconnect")

	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if evt.Request != nil {
			if b.alreadySeen(evt.Request.EnvelopeID) {
				b.client.Ack(*evt.Request)
				b.log.Debug().Str("envelope", evt.Request.EnvelopeID).Msg("skipping redelivered event")
				return
			}
			b.client.Ack(*evt.Request)
		}
		b.handleEventsAPI(ctx, apiEvent)

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		if evt.Request != nil {
			b.client.Ack(*evt.Request)
		}
		b.handleInteraction(ctx, callback)
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		b.handleMention(ctx, ev)
	}
}

func (b *Bot) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	// Ignore mentions authored by bots, including ourselves.
	if ev.BotID != "" || ev.User == b.botUserID || ev.User == "" {
		return
	}

	m := models.Mention{
		Channel:  ev.Channel,
		ThreadTS: ev.ThreadTimeStamp,
		TS:       ev.TimeStamp,
		User:     ev.User,
		Text:     stripSelfMention(ev.Text, b.botUserID),
	}
	b.log.Info().Str("channel", m.Channel).Str("user", m.User).Bool("in_thread", m.InThread()).
		Msg("mention received")

	go func() {
		if err := b.flow.HandleMention(ctx, m, b.tools.Tools()); err != nil {
			b.log.Error().Err(err).Str("channel", m.Channel).Msg("mention handling failed")
		}
	}()
}

func (b *Bot) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	if callback.Type != slack.InteractionTypeBlockActions {
		return
	}
	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID != ActionApprove && action.ActionID != ActionDeny {
			continue
		}
		payload, err := DecodeApprovalPayload(action.Value)
		if err != nil {
			b.log.Warn().Err(err).Str("action", action.ActionID).Msg("dropping undecodable interaction")
			continue
		}
		// The clicked prompt itself is the message to collapse.
		prompt := models.MessageRef{
			Channel:   callback.Channel.ID,
			Timestamp: callback.Message.Timestamp,
		}
		approve := action.ActionID == ActionApprove
		b.log.Info().Str("conversation", payload.ConversationID).Str("request", payload.RequestID).
			Bool("approved", approve).Msg("tool decision received")

		go func() {
			var err error
			if approve {
				err = b.flow.Approve(ctx, payload.ConversationID, payload.RequestID, prompt)
			} else {
				err = b.flow.Deny(ctx, payload.ConversationID, payload.RequestID, prompt)
			}
			if err != nil {
				b.log.Error().Err(err).Str("conversation", payload.ConversationID).
					Msg("decision handling failed")
			}
		}()
	}
}

// alreadySeen records the envelope ID and reports whether it was seen before.
func (b *Bot) alreadySeen(envelopeID string) bool {
	if envelopeID == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[envelopeID]; dup {
		return true
	}
	if len(b.seen) >= maxSeenEnvelopes {
		b.seen = make(map[string]struct{})
	}
	b.seen[envelopeID] = struct{}{}
	return false
}

// stripSelfMention removes the bot's own <@UXXX> mention tokens from the
// text, leaving only what the user asked.
func stripSelfMention(text, botUserID string) string {
	if botUserID != "" {
		text = strings.ReplaceAll(text, "<@"+botUserID+">", "")
	}
	return strings.TrimSpace(text)
}
