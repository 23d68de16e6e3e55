package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/yourusername/sysdiag/core"
)

// newApp builds an App sampling this host. The returned cleanup closes the
// collector and the archive.
func (s *session) newApp(ctx context.Context, store core.ReportStore) (*core.App, func(), error) {
	var containers core.ContainerSource
	if s.config.Collector.Docker.Enabled {
		docker, err := core.NewDockerSource(ctx, s.config.Collector.Docker, s.log)
		if err != nil {
			s.log.WithError(err).Warn("docker monitoring disabled")
		} else {
			containers = docker
		}
	}
	collector := core.NewCollector(s.config.Collector, containers, s.log)

	app, err := core.NewApp(s.config, collector, store, s.log)
	if err != nil {
		collector.Close()
		return nil, nil, err
	}
	if err := app.Initialize(); err != nil {
		collector.Close()
		return nil, nil, err
	}

	var sampleLog *core.SampleLog
	if s.config.Collector.SampleLog.Enabled {
		sampleLog = core.NewSampleLog(s.config.Collector.SampleLog, s.log)
		if err := sampleLog.Open(); err != nil {
			s.log.WithError(err).Warn("sample recording disabled")
			sampleLog = nil
		} else {
			app.RecordSamples(sampleLog)
		}
	}

	cleanup := func() {
		if sampleLog != nil {
			if err := sampleLog.Close(); err != nil {
				s.log.WithError(err).Debug("failed to close sample log")
			}
		}
		if err := collector.Close(); err != nil {
			s.log.WithError(err).Debug("failed to close collector")
		}
		if err := app.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close report archive")
		}
	}
	return app, cleanup, nil
}

// openStore opens the configured report archive
func (s *session) openStore() (core.ReportStore, error) {
	store := core.NewReportStore(s.config.Storage)
	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to open report archive: %w", err)
	}
	return store, nil
}

// writeReport prints report as text or JSON
func writeReport(w io.Writer, report *core.AnalysisReport, format, id string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text", "":
		return RenderReport(w, report, id)
	default:
		return fmt.Errorf("unsupported format %q (use text or json)", format)
	}
}
