package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AlertConfig represents alert configuration
type AlertConfig struct {
	Enabled          bool                      `yaml:"enabled"`
	SuppressDuration int                       `yaml:"suppress_duration" validate:"gte=0"` // In minutes
	Notifiers        map[string]NotifierConfig `yaml:"notifiers"`
}

// AlertState tracks an active alert
type AlertState struct {
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	StartTime    time.Time `json:"start_time"`
	Count        int       `json:"count"`       // Consecutive reports raising it
	LastNotify   time.Time `json:"last_notify"` // Last notification time
	LastReportID string    `json:"last_report_id"`
}

// AlertManager turns critical findings of live reports into notifications
type AlertManager struct {
	notifiers map[string]Notifier
	states    map[string]*AlertState
	mu        sync.RWMutex
	log       *logrus.Entry
	now       func() time.Time

	suppressDuration time.Duration // Suppress repeat notifications
}

// alertCondition is one critical finding of a report
type alertCondition struct {
	kind    string
	title   string
	details string
}

// NewAlertManager creates a new alert manager
func NewAlertManager(config AlertConfig, logger logrus.FieldLogger) *AlertManager {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	am := &AlertManager{
		notifiers:        make(map[string]Notifier),
		states:           make(map[string]*AlertState),
		log:              logger.WithField("component", "alerts"),
		now:              time.Now,
		suppressDuration: time.Duration(config.SuppressDuration) * time.Minute,
	}

	// Default suppress duration
	if am.suppressDuration == 0 {
		am.suppressDuration = 30 * time.Minute
	}

	for name, cfg := range config.Notifiers {
		notifier, err := NewNotifier(cfg)
		if err != nil {
			am.log.WithError(err).WithField("notifier", name).Warn("failed to create notifier")
			continue
		}
		am.notifiers[name] = notifier
	}

	am.log.WithField("notifiers", len(am.notifiers)).Info("alert manager initialized")
	return am
}

// AddNotifier registers a notifier under name
func (am *AlertManager) AddNotifier(name string, notifier Notifier) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.notifiers[name] = notifier
}

// alertMessage is a notification decided under the lock and sent after it
type alertMessage struct {
	title   string
	content string
}

// Evaluate raises, repeats or resolves alerts for a report. Notifiers are
// called after the alert state is updated and the lock released.
func (am *AlertManager) Evaluate(report *AnalysisReport, reportID string) {
	if report == nil {
		return
	}
	conditions := alertConditions(report)

	am.mu.Lock()
	now := am.now()
	var messages []alertMessage
	active := make(map[string]bool, len(conditions))
	for _, cond := range conditions {
		active[cond.kind] = true
		state, exists := am.states[cond.kind]
		if !exists {
			state = &AlertState{Kind: cond.kind, Title: cond.title, StartTime: now}
			am.states[cond.kind] = state
		}
		state.Count++
		state.LastReportID = reportID

		if !state.LastNotify.IsZero() && now.Sub(state.LastNotify) < am.suppressDuration {
			continue
		}
		state.LastNotify = now
		messages = append(messages, alertMessage{"🚨 " + cond.title, alertContent(cond, report, reportID)})
	}

	for kind, state := range am.states {
		if active[kind] {
			continue
		}
		delete(am.states, kind)
		content := fmt.Sprintf("**Issue**: %s\n**Since**: %s\n**Status**: resolved",
			state.Title, state.StartTime.Format(time.RFC3339))
		messages = append(messages, alertMessage{"✅ Resolved: " + state.Title, content})
	}
	notifiers := am.notifierSnapshot()
	am.mu.Unlock()

	for _, msg := range messages {
		broadcast(notifiers, msg, am.log)
	}
}

// GetActiveAlerts returns currently active alerts ordered by kind
func (am *AlertManager) GetActiveAlerts() []AlertState {
	am.mu.RLock()
	defer am.mu.RUnlock()

	alerts := make([]AlertState, 0, len(am.states))
	for _, state := range am.states {
		alerts = append(alerts, *state)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Kind < alerts[j].Kind })
	return alerts
}

// TestNotifier sends a test message through one notifier
func (am *AlertManager) TestNotifier(name string) error {
	am.mu.RLock()
	notifier, ok := am.notifiers[name]
	am.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotifierNotFound, name)
	}
	content := fmt.Sprintf("Test notification from sysdiag\n\nTime: %s", am.now().Format("2006-01-02 15:04:05"))
	return notifier.Send("Test notification", content)
}

// notifierSnapshot must be called with am.mu held
func (am *AlertManager) notifierSnapshot() map[string]Notifier {
	notifiers := make(map[string]Notifier, len(am.notifiers))
	for name, n := range am.notifiers {
		notifiers[name] = n
	}
	return notifiers
}

func broadcast(notifiers map[string]Notifier, msg alertMessage, log *logrus.Entry) {
	for name, notifier := range notifiers {
		if err := notifier.Send(msg.title, msg.content); err != nil {
			log.WithError(err).WithField("notifier", name).Warn("failed to send alert")
		} else {
			log.WithField("notifier", name).WithField("title", msg.title).Info("alert sent")
		}
	}
}

// alertConditions collects high-priority recommendations and leak findings
func alertConditions(report *AnalysisReport) []alertCondition {
	var conditions []alertCondition
	for _, rec := range report.Recommendations {
		if rec.Priority != PriorityHigh {
			continue
		}
		conditions = append(conditions, alertCondition{
			kind:    rec.Kind,
			title:   rec.Title,
			details: rec.Description,
		})
	}
	for _, leak := range report.Memory.LeakFindings {
		conditions = append(conditions, alertCondition{
			kind:    "memory_leak",
			title:   "Possible memory leak",
			details: leak.Description,
		})
	}
	return conditions
}

func alertContent(cond alertCondition, report *AnalysisReport, reportID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Issue**: %s\n", cond.details)
	fmt.Fprintf(&b, "**Health**: %d (%s)\n", report.Health.Score, report.Health.Status)
	fmt.Fprintf(&b, "**Window**: %s - %s\n",
		report.TimeRange.Start.Format(time.RFC3339), report.TimeRange.End.Format(time.RFC3339))
	if reportID != "" {
		fmt.Fprintf(&b, "**Report**: %s\n", reportID)
	}
	return b.String()
}
