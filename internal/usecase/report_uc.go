package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"score-report-relay/internal/config"
	"score-report-relay/internal/domain"
	"score-report-relay/internal/domain/model"
	"score-report-relay/internal/domain/ports/adapter"
	"score-report-relay/internal/infra/logging"
	"score-report-relay/internal/infra/metrics"
)

// Compile-time check
var _ ReportUseCase = (*reportUC)(nil)

type ReportUseCase interface {
	// Relay formats r and sends it to the configured chat with a single call.
	// Returns domain.ErrNotConfigured before any call when credentials are
	// missing, or a *RelayError when the call fails.
	Relay(ctx context.Context, r *model.Report) error
}

// RelayError wraps a failed outbound call. It matches domain.ErrRelayFailed.
type RelayError struct {
	Err error
}

func (e *RelayError) Error() string { return fmt.Sprintf("relay failed: %v", e.Err) }

func (e *RelayError) Unwrap() error { return e.Err }

func (e *RelayError) Is(target error) bool { return target == domain.ErrRelayFailed }

// Detail is the upstream diagnostic text.
func (e *RelayError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

type reportUC struct {
	notifier  adapter.TelegramNotifier
	tg        config.TelegramConfig
	formatter *MessageFormatter
	log       *zerolog.Logger
}

func NewReportUseCase(notifier adapter.TelegramNotifier, tg config.TelegramConfig, formatter *MessageFormatter, logger *zerolog.Logger) *reportUC {
	return &reportUC{notifier: notifier, tg: tg, formatter: formatter, log: logger}
}

func (u *reportUC) Relay(ctx context.Context, r *model.Report) error {
	l := logging.With(ctx, u.log)
	if !u.tg.Configured() {
		l.Error().Msg("telegram token or chat id is not configured")
		return domain.ErrNotConfigured
	}

	n := model.Notification{
		ChatID:    u.tg.ChatID,
		Text:      u.formatter.Format(r),
		ParseMode: u.tg.ParseMode,
	}

	done := logging.TraceDuration(l, "telegram.SendMessage")
	start := time.Now()
	err := u.notifier.SendMessage(ctx, n)
	metrics.ObserveTelegramSend(err == nil, time.Since(start))
	done()

	if err != nil {
		l.Warn().Err(err).Msg("telegram relay failed")
		return &RelayError{Err: err}
	}
	l.Info().
		Str("test_id", r.TestID).
		Float64("score", r.Score).
		Float64("max_score", r.MaxScore).
		Msg("report relayed")
	return nil
}
