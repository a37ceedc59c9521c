package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"score-report-relay/internal/config"
	"score-report-relay/internal/domain/model"
	"score-report-relay/internal/domain/ports/adapter"
)

var _ adapter.TelegramNotifier = (*BotAPISender)(nil)

const maxErrorBody = 512

// BotAPISender posts notifications to the Bot API sendMessage method as JSON.
// Each SendMessage is exactly one HTTP request; there is no retry.
type BotAPISender struct {
	client                *http.Client
	apiBase               string
	token                 string
	disableWebPagePreview bool
	log                   *zerolog.Logger
}

// NewBotAPISender builds a sender from cfg. A nil client gets an http.Client
// with cfg.Timeout (zero keeps the client default).
func NewBotAPISender(cfg config.TelegramConfig, client *http.Client, logger *zerolog.Logger) *BotAPISender {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &BotAPISender{
		client:                client,
		apiBase:               strings.TrimRight(cfg.APIBase, "/"),
		token:                 cfg.Token,
		disableWebPagePreview: cfg.DisableWebPagePreview,
		log:                   logger,
	}
}

type sendMessageRequest struct {
	ChatID                any    `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// chatID sends numeric ids as numbers and channel usernames as strings.
func chatID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func (s *BotAPISender) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", s.apiBase, s.token, method)
}

func (s *BotAPISender) SendMessage(ctx context.Context, n model.Notification) error {
	if s.token == "" {
		return errors.New("bot token is required")
	}
	if n.ChatID == "" {
		return errors.New("chat ID is required")
	}
	if n.Text == "" {
		return errors.New("message text is required")
	}
	parseMode := n.ParseMode
	if parseMode == "" {
		parseMode = tgbotapi.ModeHTML
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID(n.ChatID),
		Text:                  n.Text,
		ParseMode:             parseMode,
		DisableWebPagePreview: s.disableWebPagePreview,
	})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		// the URL embeds the token; never surface it
		return errors.New("creating request: invalid api base")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("sending request: %w", urlErr.Err)
		}
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var apiResp tgbotapi.APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, truncate(string(body), maxErrorBody))
	}
	if !apiResp.Ok {
		apiErr := tgbotapi.Error{Code: apiResp.ErrorCode, Message: apiResp.Description}
		if apiResp.Parameters != nil {
			apiErr.ResponseParameters = *apiResp.Parameters
		}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		return fmt.Errorf("telegram API error %d: %w", apiErr.Code, apiErr)
	}

	var msg tgbotapi.Message
	if err := json.Unmarshal(apiResp.Result, &msg); err == nil {
		s.log.Debug().Int("message_id", msg.MessageID).Msg("telegram message sent")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
