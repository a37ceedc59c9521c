package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"score-report-relay/internal/domain/model"
	"score-report-relay/internal/domain/ports/adapter"
)

var _ adapter.TelegramNotifier = (*NoopSender)(nil)

// NoopSender implements adapter.TelegramNotifier for local/dev testing.
// It logs messages instead of sending real Telegram messages.
type NoopSender struct {
	log *zerolog.Logger
}

func NewNoopSender(logger *zerolog.Logger) *NoopSender {
	return &NoopSender{log: logger}
}

func (s *NoopSender) SendMessage(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info().
		Str("chat_id", n.ChatID).
		Str("parse_mode", n.ParseMode).
		Str("text", n.Text).
		Msg("[noop-telegram] sendMessage")
	return nil
}
