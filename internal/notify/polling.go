package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CommandHandler maps one incoming bot command to its reply text. An
// empty reply suppresses the response.
type CommandHandler func(command string) string

// telegramUpdate is one entry from the getUpdates long poll.
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

// StartPolling long-polls the bot for user commands and feeds each one to
// handler, sending whatever it returns back to the chat. Blocks until ctx
// is cancelled; a disabled notifier returns immediately.
func (n *Notifier) StartPolling(ctx context.Context, handler CommandHandler) {
	if !n.Enabled() {
		return
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("command polling stopped")
			return
		default:
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		resp, err := n.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"offset":  strconv.FormatInt(offset, 10),
				"timeout": "25",
			}).
			SetResult(&result).
			Get(fmt.Sprintf("%s/bot%s/getUpdates", n.baseURL, n.botToken))
		if err != nil || !resp.IsSuccess() {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("command polling request failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			cmd := strings.TrimSpace(update.Message.Text)
			log.Info().Str("command", cmd).Msg("bot command received")
			if reply := handler(cmd); reply != "" {
				if err := n.Send(ctx, reply); err != nil {
					log.Warn().Err(err).Msg("command reply failed")
				}
			}
		}
	}
}
