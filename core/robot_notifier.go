package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Chat robot notifier types.
const (
	RobotDingTalk = "dingtalk"
	RobotFeishu   = "feishu"
	RobotWeChat   = "wechat"
)

// RobotNotifier posts alerts to a DingTalk, Feishu or WeChat Work group robot.
type RobotNotifier struct {
	Kind    string
	URL     string
	Secret  string // DingTalk only
	Timeout time.Duration

	client *http.Client
	now    func() time.Time
}

// NewRobotNotifier creates a chat robot notifier; config.Type selects the
// message format.
func NewRobotNotifier(config NotifierConfig) *RobotNotifier {
	rn := &RobotNotifier{
		Kind:    config.Type,
		URL:     config.URL,
		Secret:  config.Secret,
		Timeout: defaultNotifyTimeout,
		now:     time.Now,
	}
	if config.Timeout > 0 {
		rn.Timeout = config.Timeout
	}
	rn.client = &http.Client{Timeout: rn.Timeout}
	return rn
}

// Send posts title and content as a markdown or text message
func (rn *RobotNotifier) Send(title, content string) error {
	if rn.URL == "" {
		return fmt.Errorf("%s webhook URL is empty", rn.Kind)
	}

	stamp := rn.now().Format("2006-01-02 15:04:05")
	requestURL := rn.URL
	var payload map[string]interface{}

	switch rn.Kind {
	case RobotDingTalk:
		if rn.Secret != "" {
			ts := rn.now().UnixMilli()
			requestURL = fmt.Sprintf("%s&timestamp=%d&sign=%s", rn.URL, ts, url.QueryEscape(rn.sign(ts)))
		}
		payload = map[string]interface{}{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"title": title,
				"text":  fmt.Sprintf("### %s\n\n%s\n\n---\n\n%s", title, content, stamp),
			},
		}
	case RobotFeishu:
		payload = map[string]interface{}{
			"msg_type": "text",
			"content": map[string]string{
				"text": fmt.Sprintf("%s\n\n%s\n\n%s", title, content, stamp),
			},
		}
	case RobotWeChat:
		payload = map[string]interface{}{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"content": fmt.Sprintf("**%s**\n\n%s\n\n<font color=\"info\">%s</font>", title, content, stamp),
			},
		}
	default:
		return fmt.Errorf("unsupported robot type %q", rn.Kind)
	}

	body, err := postJSON(rn.client, http.MethodPost, requestURL, nil, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", rn.Kind, err)
	}

	// DingTalk and WeChat answer errcode/errmsg, Feishu answers code/msg.
	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
		Code    int    `json:"code"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("%s error: %s (code: %d)", rn.Kind, result.ErrMsg, result.ErrCode)
	}
	if result.Code != 0 {
		return fmt.Errorf("%s error: %s (code: %d)", rn.Kind, result.Msg, result.Code)
	}
	return nil
}

// sign computes the DingTalk HMAC-SHA256 request signature
func (rn *RobotNotifier) sign(timestamp int64) string {
	h := hmac.New(sha256.New, []byte(rn.Secret))
	fmt.Fprintf(h, "%d\n%s", timestamp, rn.Secret)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
