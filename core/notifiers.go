package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultNotifyTimeout = 10 * time.Second
	// maxNotifyResponse bounds how much of a notification reply is read.
	maxNotifyResponse = 64 << 10
)

// Notifier is the interface for all notification methods
type Notifier interface {
	Send(title, content string) error
}

// NotifierConfig represents configuration for a notifier
type NotifierConfig struct {
	Type    string            `yaml:"type"` // webhook, dingtalk, feishu, wechat
	URL     string            `yaml:"url"`
	Secret  string            `yaml:"secret,omitempty"`
	Method  string            `yaml:"method,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
}

// NewNotifier creates a notifier from configuration
func NewNotifier(config NotifierConfig) (Notifier, error) {
	switch config.Type {
	case "webhook":
		return NewWebhookNotifier(config), nil
	case RobotDingTalk, RobotFeishu, RobotWeChat:
		return NewRobotNotifier(config), nil
	default:
		return nil, fmt.Errorf("unsupported notifier type %q", config.Type)
	}
}

// postJSON sends payload as a JSON request and returns the body of a 2xx
// reply. Non-2xx replies fail with the status and the start of the body.
func postJSON(client *http.Client, method, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxNotifyResponse))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return body, fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return body, nil
}
