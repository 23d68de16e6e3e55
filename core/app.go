package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// App wires sample acquisition, the live window, the analyzer, the report
// archive and alerting together.
type App struct {
	Config   Config
	Analyzer *Analyzer
	Window   *SampleWindow
	Store    ReportStore
	Alerts   *AlertManager

	source    SampleSource
	sampleLog *SampleLog
	log       *logrus.Entry

	mu           sync.RWMutex
	lastReport   *AnalysisReport
	lastReportID string
	alertQueue   chan alertJob
}

// alertJob is a report waiting for alert evaluation
type alertJob struct {
	report *AnalysisReport
	id     string
}

// NewApp creates a new application instance. store may be nil to disable
// archiving.
func NewApp(config Config, source SampleSource, store ReportStore, logger logrus.FieldLogger) (*App, error) {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	analyzer, err := NewAnalyzer(config.Analysis)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   config,
		Analyzer: analyzer,
		Window:   NewSampleWindow(config.Collector.WindowSize),
		Store:    store,
		source:   source,
		log:      logger.WithField("component", "app"),
	}
	if config.Alerts.Enabled {
		app.Alerts = NewAlertManager(config.Alerts, logger)
	}
	return app, nil
}

// Initialize prepares the report archive
func (a *App) Initialize() error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize report store: %w", err)
	}
	return nil
}

// Close releases the report archive
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// CollectOnce takes one sample and appends it to the live window
func (a *App) CollectOnce(ctx context.Context) (Sample, error) {
	if a.source == nil {
		return Sample{}, fmt.Errorf("no sample source configured")
	}
	sample, err := a.source.Collect(ctx)
	if err != nil {
		return Sample{}, err
	}
	a.Window.Append(sample)
	if a.sampleLog != nil {
		if err := a.sampleLog.Write(sample); err != nil {
			a.log.WithError(err).Warn("failed to record sample")
		}
	}
	return sample, nil
}

// RecordSamples makes every collected sample also go to l
func (a *App) RecordSamples(l *SampleLog) {
	a.sampleLog = l
}

// CollectFor samples every interval until duration elapses or ctx is done,
// and returns the samples taken. progress, if non-nil, is called after each
// sample.
func (a *App) CollectFor(ctx context.Context, duration, interval time.Duration, progress func(n int, s Sample)) ([]Sample, error) {
	if interval <= 0 {
		interval = a.Config.Collector.Interval
	}
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var samples []Sample
	take := func() {
		sample, err := a.CollectOnce(ctx)
		if err != nil {
			if ctx.Err() == nil {
				a.log.WithError(err).Warn("sample collection failed")
			}
			return
		}
		samples = append(samples, sample)
		if progress != nil {
			progress(len(samples), sample)
		}
	}

	take()
	for {
		select {
		case <-ctx.Done():
			return samples, nil
		case <-ticker.C:
			take()
		}
	}
}

// Run collects samples and periodically analyzes the live window until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	collectTicker := time.NewTicker(a.Config.Collector.Interval)
	defer collectTicker.Stop()

	var analysisC <-chan time.Time
	if a.Config.Collector.AnalysisInterval > 0 {
		analysisTicker := time.NewTicker(a.Config.Collector.AnalysisInterval)
		defer analysisTicker.Stop()
		analysisC = analysisTicker.C
	}

	cleanupTicker := time.NewTicker(24 * time.Hour)
	defer cleanupTicker.Stop()

	// Notifiers may be slow; they run beside the loop so sampling keeps its
	// interval.
	if a.Alerts != nil {
		queue := make(chan alertJob, 8)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for job := range queue {
				a.Alerts.Evaluate(job.report, job.id)
			}
		}()
		a.setAlertQueue(queue)
		defer func() {
			a.setAlertQueue(nil)
			close(queue)
			<-done
		}()
	}

	a.log.WithFields(logrus.Fields{
		"interval":          a.Config.Collector.Interval,
		"analysis_interval": a.Config.Collector.AnalysisInterval,
		"window_size":       a.Config.Collector.WindowSize,
	}).Info("monitoring started")

	for {
		select {
		case <-ctx.Done():
			a.log.Info("monitoring stopped")
			return nil
		case <-collectTicker.C:
			if _, err := a.CollectOnce(ctx); err != nil && ctx.Err() == nil {
				a.log.WithError(err).Warn("sample collection failed")
			}
		case <-analysisC:
			if _, _, err := a.AnalyzeAndArchive(); err != nil {
				a.log.WithError(err).Warn("periodic analysis failed")
			}
		case <-cleanupTicker.C:
			a.cleanup()
		}
	}
}

// AnalyzeWindow analyzes a snapshot of the live window
func (a *App) AnalyzeWindow() (*AnalysisReport, error) {
	return a.Analyzer.Analyze(a.Window.Snapshot())
}

// AnalyzeAndArchive analyzes the live window, archives the report, and
// feeds it to the alert manager. The returned id is empty when archiving is
// disabled or failed.
func (a *App) AnalyzeAndArchive() (*AnalysisReport, string, error) {
	report, err := a.AnalyzeWindow()
	if err != nil {
		return nil, "", err
	}

	id := a.Archive(report)

	a.mu.Lock()
	a.lastReport = report
	a.lastReportID = id
	a.mu.Unlock()

	a.evaluateAlerts(report, id)

	a.log.WithFields(logrus.Fields{
		"report_id":    id,
		"health_score": report.Health.Score,
		"anomalies":    len(report.Anomalies),
	}).Debug("window analyzed")
	return report, id, nil
}

func (a *App) setAlertQueue(queue chan alertJob) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alertQueue = queue
}

// evaluateAlerts hands report to the alert worker while Run is active and
// evaluates inline otherwise. A full queue drops the report.
func (a *App) evaluateAlerts(report *AnalysisReport, id string) {
	if a.Alerts == nil {
		return
	}

	a.mu.RLock()
	queue := a.alertQueue
	if queue != nil {
		select {
		case queue <- alertJob{report: report, id: id}:
		default:
			a.log.WithField("report_id", id).Warn("alert queue full, skipping alert evaluation")
		}
	}
	a.mu.RUnlock()

	if queue == nil {
		a.Alerts.Evaluate(report, id)
	}
}

// Archive saves report when an archive is configured and returns its id
func (a *App) Archive(report *AnalysisReport) string {
	if a.Store == nil {
		return ""
	}
	id, err := a.Store.Save(report)
	if err != nil {
		a.log.WithError(err).Warn("failed to archive report")
		return ""
	}
	return id
}

// LatestReport returns the most recent periodic report, if any
func (a *App) LatestReport() (*AnalysisReport, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastReport, a.lastReportID
}

func (a *App) cleanup() {
	if a.Store == nil || a.Config.Storage.KeepDays <= 0 {
		return
	}
	removed, err := a.Store.CleanOldData(a.Config.Storage.KeepDays)
	if err != nil {
		a.log.WithError(err).Warn("report cleanup failed")
		return
	}
	if removed > 0 {
		a.log.WithField("removed", removed).Info("old reports removed")
	}
}
