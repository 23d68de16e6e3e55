package core

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// webhookPayload is the body posted by WebhookNotifier
type webhookPayload struct {
	Source    string    `json:"source"`
	Host      string    `json:"host,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp int64     `json:"timestamp"`
	SentAt    time.Time `json:"sent_at"`
}

// WebhookNotifier posts alerts as JSON to any HTTP endpoint. The URL and
// header values may reference environment variables as $VAR or ${VAR}.
type WebhookNotifier struct {
	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration

	host   string
	client *http.Client
	now    func() time.Time
}

// NewWebhookNotifier creates a webhook notifier from config
func NewWebhookNotifier(config NotifierConfig) *WebhookNotifier {
	host, _ := os.Hostname()
	wn := &WebhookNotifier{
		URL:     os.ExpandEnv(config.URL),
		Method:  http.MethodPost,
		Headers: make(map[string]string, len(config.Headers)),
		Timeout: defaultNotifyTimeout,
		host:    host,
		now:     time.Now,
	}
	if config.Method != "" {
		wn.Method = strings.ToUpper(config.Method)
	}
	if config.Timeout > 0 {
		wn.Timeout = config.Timeout
	}
	for k, v := range config.Headers {
		wn.Headers[k] = os.ExpandEnv(v)
	}
	wn.client = &http.Client{Timeout: wn.Timeout}
	return wn
}

// Send posts one notification
func (wn *WebhookNotifier) Send(title, content string) error {
	if wn.URL == "" {
		return fmt.Errorf("webhook URL is empty")
	}

	sentAt := wn.now().UTC()
	payload := webhookPayload{
		Source:    "sysdiag",
		Host:      wn.host,
		Title:     title,
		Content:   content,
		Timestamp: sentAt.Unix(),
		SentAt:    sentAt,
	}
	if _, err := postJSON(wn.client, wn.Method, wn.URL, wn.Headers, payload); err != nil {
		return fmt.Errorf("webhook %s: %w", wn.URL, err)
	}
	return nil
}
