// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"score-report-relay/internal/domain/model"
)

// TelegramNotifier delivers a single notification. Implementations make at most
// one outbound call per invocation and never retry.
type TelegramNotifier interface {
	SendMessage(ctx context.Context, n model.Notification) error
}
