package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Send(title, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingNotifier) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func newTestAlertManager(clock *time.Time) (*AlertManager, *recordingNotifier) {
	am := NewAlertManager(AlertConfig{Enabled: true, SuppressDuration: 30}, nil)
	am.now = func() time.Time { return *clock }
	notifier := &recordingNotifier{}
	am.AddNotifier("test", notifier)
	return am, notifier
}

func criticalCPUReport() *AnalysisReport {
	return &AnalysisReport{
		Health: HealthAssessment{Score: 60, Status: HealthFair},
		Recommendations: []Recommendation{
			{Kind: RecommendCPUHigh, Priority: PriorityHigh, Title: "CPU usage critical", Description: "CPU usage is 97.0%"},
			{Kind: RecommendMemoryMedium, Priority: PriorityMedium, Title: "Memory usage elevated"},
		},
	}
}

func TestAlertManager_RaisesHighPriorityOnly(t *testing.T) {
	clock := testEpoch
	am, notifier := newTestAlertManager(&clock)

	am.Evaluate(criticalCPUReport(), "r1")

	assert.Equal(t, []string{"🚨 CPU usage critical"}, notifier.sent())
	alerts := am.GetActiveAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, RecommendCPUHigh, alerts[0].Kind)
	assert.Equal(t, "r1", alerts[0].LastReportID)
	assert.Equal(t, 1, alerts[0].Count)
}

func TestAlertManager_SuppressesRepeats(t *testing.T) {
	clock := testEpoch
	am, notifier := newTestAlertManager(&clock)

	am.Evaluate(criticalCPUReport(), "r1")
	clock = clock.Add(10 * time.Minute)
	am.Evaluate(criticalCPUReport(), "r2")
	assert.Len(t, notifier.sent(), 1)

	clock = clock.Add(25 * time.Minute)
	am.Evaluate(criticalCPUReport(), "r3")
	assert.Len(t, notifier.sent(), 2)
	assert.Equal(t, 3, am.GetActiveAlerts()[0].Count)
}

func TestAlertManager_Resolves(t *testing.T) {
	clock := testEpoch
	am, notifier := newTestAlertManager(&clock)

	am.Evaluate(criticalCPUReport(), "r1")
	am.Evaluate(&AnalysisReport{}, "r2")

	assert.Equal(t, []string{"🚨 CPU usage critical", "✅ Resolved: CPU usage critical"}, notifier.sent())
	assert.Empty(t, am.GetActiveAlerts())
}

func TestAlertManager_LeakFindings(t *testing.T) {
	clock := testEpoch
	am, notifier := newTestAlertManager(&clock)

	report := &AnalysisReport{Memory: MemoryAnalysis{LeakFindings: []LeakFinding{
		{Severity: "warning", Description: "Possible memory leak: 4/5 windows show sustained growth"},
	}}}
	am.Evaluate(report, "")

	assert.Equal(t, []string{"🚨 Possible memory leak"}, notifier.sent())
}

// gatedNotifier blocks in Send until release is closed
type gatedNotifier struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedNotifier() *gatedNotifier {
	return &gatedNotifier{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedNotifier) Send(title, content string) error {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return nil
}

func TestAlertManager_SlowNotifierDoesNotHoldState(t *testing.T) {
	am := NewAlertManager(AlertConfig{Enabled: true}, nil)
	gate := newGatedNotifier()
	am.AddNotifier("slow", gate)

	done := make(chan struct{})
	go func() {
		defer close(done)
		am.Evaluate(criticalCPUReport(), "r1")
	}()
	<-gate.started

	alerts := make(chan []AlertState, 1)
	go func() { alerts <- am.GetActiveAlerts() }()
	select {
	case got := <-alerts:
		require.Len(t, got, 1)
		assert.Equal(t, RecommendCPUHigh, got[0].Kind)
	case <-time.After(time.Second):
		t.Fatal("GetActiveAlerts blocked while a notifier was sending")
	}

	close(gate.release)
	<-done
}

func TestAlertManager_TestNotifier(t *testing.T) {
	clock := testEpoch
	am, notifier := newTestAlertManager(&clock)

	require.NoError(t, am.TestNotifier("test"))
	assert.Equal(t, []string{"Test notification"}, notifier.sent())
	assert.ErrorIs(t, am.TestNotifier("missing"), ErrNotifierNotFound)
}

func TestNewAlertManager_SkipsUnsupportedNotifiers(t *testing.T) {
	am := NewAlertManager(AlertConfig{Notifiers: map[string]NotifierConfig{
		"hook":  {Type: "webhook", URL: "http://localhost:1"},
		"pager": {Type: "pagerduty"},
	}}, nil)

	assert.Len(t, am.notifiers, 1)
	assert.Equal(t, 30*time.Minute, am.suppressDuration)
}

func TestWebhookNotifier_Send(t *testing.T) {
	t.Setenv("SYSDIAG_HOOK_TOKEN", "secret")
	var received webhookPayload
	var gotHeader, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(NotifierConfig{
		URL:     server.URL,
		Method:  "put",
		Headers: map[string]string{"X-Token": "${SYSDIAG_HOOK_TOKEN}"},
	})
	notifier.host = "db-01"
	notifier.now = func() time.Time { return testEpoch }
	require.NoError(t, notifier.Send("title", "body"))

	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "title", received.Title)
	assert.Equal(t, "body", received.Content)
	assert.Equal(t, "sysdiag", received.Source)
	assert.Equal(t, "db-01", received.Host)
	assert.Equal(t, testEpoch.Unix(), received.Timestamp)
	assert.True(t, testEpoch.Equal(received.SentAt))
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down\n"))
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(NotifierConfig{URL: server.URL})
	err := notifier.Send("title", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502: upstream down")
}

func TestWebhookNotifier_URLFromEnvironment(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "http://hooks.example.internal/alerts")
	notifier := NewWebhookNotifier(NotifierConfig{URL: "${WEBHOOK_URL}"})
	assert.Equal(t, "http://hooks.example.internal/alerts", notifier.URL)

	empty := NewWebhookNotifier(NotifierConfig{URL: "${SYSDIAG_UNSET_HOOK}"})
	assert.EqualError(t, empty.Send("t", "c"), "webhook URL is empty")
}
