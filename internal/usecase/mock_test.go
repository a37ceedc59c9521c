package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"score-report-relay/internal/domain/model"
	"score-report-relay/internal/domain/ports/adapter"
)

// MockTelegramNotifier records every notification it is asked to send.
type MockTelegramNotifier struct {
	mu   sync.Mutex
	Sent []model.Notification

	SendMessageFunc func(ctx context.Context, n model.Notification) error
}

var _ adapter.TelegramNotifier = (*MockTelegramNotifier)(nil)

func (m *MockTelegramNotifier) SendMessage(ctx context.Context, n model.Notification) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, n)
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, n)
	}
	return nil
}

func (m *MockTelegramNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
