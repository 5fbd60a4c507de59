package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// DefaultTelegramAPI is the Bot API base URL.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramNotifier sends events via the Telegram Bot API.
type TelegramNotifier struct {
	apiURL   string
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram notifier. An empty apiURL uses DefaultTelegramAPI.
func NewTelegramNotifier(apiURL, botToken, chatID string) *TelegramNotifier {
	if apiURL == "" {
		apiURL = DefaultTelegramAPI
	}

	return &TelegramNotifier{
		apiURL:   strings.TrimSuffix(apiURL, "/"),
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *TelegramNotifier) Notify(ctx context.Context, event Event) error {
	emoji := "⏸"
	switch {
	case event.Current.IsBuy():
		emoji = "🟢"
	case event.Current.IsSell():
		emoji = "🔴"
	}

	text := fmt.Sprintf("%s *%s*\n\n%s", emoji, escapeMarkdown(event.Subject()), escapeMarkdown(event.Body()))

	body, err := json.Marshal(map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "telegram: marshal", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "telegram: create request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "telegram: send", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrCodeNotificationFailed, "telegram: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// escapeMarkdown escapes special characters for Telegram MarkdownV2.
func escapeMarkdown(s string) string {
	const specials = "_*[]()~`>#+-=|{}.!"

	var buf strings.Builder

	for _, r := range s {
		if strings.ContainsRune(specials, r) {
			buf.WriteByte('\\')
		}

		buf.WriteRune(r)
	}

	return buf.String()
}
