package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func robotServer(t *testing.T, reply string, got *map[string]interface{}, query *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if query != nil {
			*query = r.URL.RawQuery
		}
		_ = json.NewDecoder(r.Body).Decode(got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRobotNotifier_Payloads(t *testing.T) {
	tests := []struct {
		kind    string
		reply   string
		msgKey  string
		msgType string
	}{
		{RobotDingTalk, `{"errcode":0,"errmsg":"ok"}`, "msgtype", "markdown"},
		{RobotFeishu, `{"code":0,"msg":"success"}`, "msg_type", "text"},
		{RobotWeChat, `{"errcode":0,"errmsg":"ok"}`, "msgtype", "markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var got map[string]interface{}
			server := robotServer(t, tt.reply, &got, nil)

			notifier, err := NewNotifier(NotifierConfig{Type: tt.kind, URL: server.URL})
			require.NoError(t, err)
			require.NoError(t, notifier.Send("CPU critical", "cpu at 99%"))
			assert.Equal(t, tt.msgType, got[tt.msgKey])
		})
	}
}

func TestRobotNotifier_DingTalkSignature(t *testing.T) {
	var (
		got   map[string]interface{}
		query string
	)
	server := robotServer(t, `{"errcode":0}`, &got, &query)

	notifier := NewRobotNotifier(NotifierConfig{Type: RobotDingTalk, URL: server.URL + "/robot/send?access_token=abc", Secret: "SEC"})
	notifier.now = func() time.Time { return time.UnixMilli(1700000000000) }
	require.NoError(t, notifier.Send("title", "body"))

	assert.Contains(t, query, "access_token=abc")
	assert.Contains(t, query, "timestamp=1700000000000")
	assert.Contains(t, query, "sign=")
	assert.Equal(t, notifier.sign(1700000000000), notifier.sign(1700000000000))
}

func TestRobotNotifier_ErrorCodes(t *testing.T) {
	var got map[string]interface{}

	dingtalk := robotServer(t, `{"errcode":310000,"errmsg":"keywords not in content"}`, &got, nil)
	err := NewRobotNotifier(NotifierConfig{Type: RobotDingTalk, URL: dingtalk.URL}).Send("t", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords not in content")

	feishu := robotServer(t, `{"code":19001,"msg":"param invalid"}`, &got, nil)
	err = NewRobotNotifier(NotifierConfig{Type: RobotFeishu, URL: feishu.URL}).Send("t", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param invalid")
}

func TestRobotNotifier_EmptyURL(t *testing.T) {
	assert.Error(t, NewRobotNotifier(NotifierConfig{Type: RobotWeChat}).Send("t", "c"))
}
