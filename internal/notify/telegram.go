package notify

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/observability"
)

// Telegram pushes notifications to the configured admin chats.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	log     *zap.Logger
}

func NewTelegram(bot *tgbotapi.BotAPI, chatIDs []int64, log *zap.Logger) *Telegram {
	return &Telegram{bot: bot, chatIDs: chatIDs, log: log}
}

func (t *Telegram) Notify(title, body string, isError bool) {
	prefix := "ℹ️ "
	if isError {
		prefix = "⚠️ "
	}
	text := prefix + title + "\n" + body
	for _, chatID := range t.chatIDs {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			if isSystemErr(err) {
				observability.CaptureErr(err)
			}
			t.log.Warn("telegram notify failed", zap.Int64("chat", chatID), zap.Error(err))
		}
	}
}

// System-level failures (5xx, 429, timeouts) are worth capturing; chat
// validation noise is not.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}
