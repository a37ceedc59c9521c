package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"score-report-relay/internal/config"
	"score-report-relay/internal/domain"
	"score-report-relay/internal/domain/model"
	"score-report-relay/internal/usecase"
)

func TestReportUseCase_Relay(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	formatter := usecase.NewMessageFormatter("IELTS Listening", "Unknown")
	tg := config.TelegramConfig{Token: "123:abc", ChatID: "-1001", ParseMode: "HTML"}

	t.Run("should send one notification to the configured chat", func(t *testing.T) {
		bot := &MockTelegramNotifier{}
		uc := usecase.NewReportUseCase(bot, tg, formatter, testLogger)

		err := uc.Relay(ctx, &model.Report{StudentName: "<b>Eve</b>", Score: 8, MaxScore: 9})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if bot.Calls() != 1 {
			t.Fatalf("expected exactly one send, got %d", bot.Calls())
		}
		sent := bot.Sent[0]
		if sent.ChatID != "-1001" || sent.ParseMode != "HTML" {
			t.Errorf("unexpected notification routing %+v", sent)
		}
		if !strings.Contains(sent.Text, "👤 &lt;b&gt;Eve&lt;/b&gt;") {
			t.Errorf("expected escaped name in text, got %q", sent.Text)
		}
	})

	t.Run("identical reports are relayed twice", func(t *testing.T) {
		bot := &MockTelegramNotifier{}
		uc := usecase.NewReportUseCase(bot, tg, formatter, testLogger)
		r := &model.Report{Score: 1, MaxScore: 2}

		_ = uc.Relay(ctx, r)
		_ = uc.Relay(ctx, r)
		if bot.Calls() != 2 {
			t.Fatalf("expected no deduplication, got %d sends", bot.Calls())
		}
	})

	t.Run("should not call telegram without credentials", func(t *testing.T) {
		for _, missing := range []config.TelegramConfig{
			{ChatID: "-1001"},
			{Token: "123:abc"},
			{Token: "  ", ChatID: "-1001"},
		} {
			bot := &MockTelegramNotifier{}
			uc := usecase.NewReportUseCase(bot, missing, formatter, testLogger)

			err := uc.Relay(ctx, &model.Report{Score: 1, MaxScore: 2})
			if !errors.Is(err, domain.ErrNotConfigured) {
				t.Errorf("expected ErrNotConfigured for %+v, got %v", missing, err)
			}
			if bot.Calls() != 0 {
				t.Errorf("expected no send for %+v", missing)
			}
		}
	})

	t.Run("should wrap upstream failure", func(t *testing.T) {
		upstream := errors.New("telegram api error 400: Bad Request: chat not found")
		bot := &MockTelegramNotifier{
			SendMessageFunc: func(ctx context.Context, n model.Notification) error { return upstream },
		}
		uc := usecase.NewReportUseCase(bot, tg, formatter, testLogger)

		err := uc.Relay(ctx, &model.Report{Score: 1, MaxScore: 2})
		if !errors.Is(err, domain.ErrRelayFailed) {
			t.Fatalf("expected ErrRelayFailed, got %v", err)
		}
		if !errors.Is(err, upstream) {
			t.Errorf("expected upstream error to be unwrappable")
		}
		var relayErr *usecase.RelayError
		if !errors.As(err, &relayErr) {
			t.Fatalf("expected *RelayError, got %T", err)
		}
		if !strings.Contains(relayErr.Detail(), "chat not found") {
			t.Errorf("unexpected detail %q", relayErr.Detail())
		}
		if bot.Calls() != 1 {
			t.Errorf("expected a single attempt, got %d", bot.Calls())
		}
	})
}
