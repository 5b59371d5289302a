package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"NewsMirror/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	// Telegram rejects sendMessage texts longer than this many characters.
	maxMessageLength = 4096
)

// ErrMisconfigured is returned when the token or chat id is missing.
var ErrMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier sends plain-text messages to a Telegram chat via the bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at another bot API host.
func (n *Notifier) WithAPIBase(base string, client *http.Client) *Notifier {
	n.apiBase = strings.TrimSuffix(base, "/")
	if client != nil {
		n.client = client
	}
	return n
}

// Configured reports whether both token and chat id are set.
func (n *Notifier) Configured() bool {
	return n.botToken != "" && n.chatID != ""
}

// Publish posts message, split into several messages when it exceeds the API limit.
func (n *Notifier) Publish(ctx context.Context, message string) error {
	if !n.Configured() || n.client == nil {
		return ErrMisconfigured
	}

	for _, chunk := range splitMessage(message, maxMessageLength) {
		if err := n.send(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
