package slackbot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
)

// HistoryLoader fetches the prior turns of a Slack thread so a mention
// inside it carries its surrounding conversation as context.
type HistoryLoader struct {
	api       API
	botUserID string
	limit     int
	log       zerolog.Logger
}

// NewHistoryLoader creates a loader. limit caps the number of thread
// messages fetched; the bot's own messages are skipped when mapping.
func NewHistoryLoader(api API, botUserID string, limit int, log zerolog.Logger) *HistoryLoader {
	return &HistoryLoader{api: api, botUserID: botUserID, limit: limit, log: log}
}

// Load returns the thread's messages as conversation turns, oldest first.
// An empty threadTS means the mention is not in a thread; no fetch happens.
func (l *HistoryLoader) Load(ctx context.Context, channel, threadTS string) ([]models.Message, error) {
	if threadTS == "" {
		return nil, nil
	}

	var raw []slack.Message
	params := &slack.GetConversationRepliesParameters{
		ChannelID: channel,
		Timestamp: threadTS,
		Limit:     l.limit,
	}
	for {
		msgs, hasMore, cursor, err := l.api.GetConversationRepliesContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
		}
		raw = append(raw, msgs...)
		if !hasMore || len(raw) >= l.limit {
			break
		}
		params.Cursor = cursor
	}

	turns := make([]models.Message, 0, len(raw))
	for _, msg := range raw {
		// The bot's own replies are re-derived by the model; only human
		// messages form the context.
		if msg.BotID != "" || msg.User == l.botUserID {
			continue
		}
		if msg.Text == "" {
			continue
		}
		turns = append(turns, models.Message{
			Role:    models.RoleUser,
			Content: msg.Text,
		})
	}
	l.log.Debug().Str("channel", channel).Str("thread", threadTS).
		Int("fetched", len(raw)).Int("turns", len(turns)).
		Msg("loaded thread history")
	return turns, nil
}
