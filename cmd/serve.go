package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/api"
	"github.com/yourusername/sysdiag/core"
	"golang.org/x/sync/errgroup"
)

func serveCmd(opts *globalOptions, version string) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Monitor continuously and serve the HTTP API and report pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				s.config.Web.Host = host
			}
			if cmd.Flags().Changed("port") {
				s.config.Web.Port = port
			}

			pidFile := core.NewPIDFile(s.dataDir())
			if err := pidFile.Acquire(); err != nil {
				return err
			}
			defer func() {
				if err := pidFile.Release(); err != nil {
					s.log.WithError(err).Warn("failed to release PID file")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, cleanup, err := s.newApp(ctx, core.NewReportStore(s.config.Storage))
			if err != nil {
				return err
			}
			defer cleanup()

			api.Version = version
			server, err := api.NewServer(app, s.config.Web, s.log)
			if err != nil {
				return err
			}
			server.PrintStartupInfo()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return app.Run(gctx) })
			g.Go(func() error { return server.Start(gctx) })
			if runtime.GOOS != "windows" {
				g.Go(func() error {
					analyzeOnSignal(gctx, app, s.log)
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

// analyzeOnSignal analyzes and archives the live window every time the
// process receives core.AnalyzeSignal
func analyzeOnSignal(ctx context.Context, app *core.App, log logrus.FieldLogger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, core.AnalyzeSignal())
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			report, id, err := app.AnalyzeAndArchive()
			if err != nil {
				log.WithError(err).Warn("on-demand analysis failed")
				continue
			}
			log.WithFields(logrus.Fields{
				"report_id":    id,
				"health_score": report.Health.Score,
				"status":       report.Health.Status,
			}).Info("on-demand analysis complete")
		}
	}
}

func stopCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running sysdiag server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			pidFile := core.NewPIDFile(s.dataDir())
			pid, err := pidFile.Owner()
			if errors.Is(err, core.ErrNotRunning) && pid != 0 {
				if cerr := pidFile.Clear(); cerr != nil {
					return cerr
				}
				return fmt.Errorf("%w (stale PID file removed)", core.ErrNotRunning)
			}
			if err != nil {
				return err
			}
			if err := pidFile.Signal(syscall.SIGTERM); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Sent stop signal to PID %d\n", pid)
			return nil
		},
	}
}

func statusCmd(opts *globalOptions) *cobra.Command {
	var trigger bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a sysdiag server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pidFile := core.NewPIDFile(s.dataDir())
			pid, err := pidFile.Owner()
			if errors.Is(err, core.ErrNotRunning) {
				fmt.Fprintln(out, "⏹  sysdiag is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "▶️  sysdiag is running (PID: %d)\n", pid)
			fmt.Fprintf(out, "   http://%s:%d/report/live\n", s.config.Web.Host, s.config.Web.Port)

			if trigger {
				if runtime.GOOS == "windows" {
					return fmt.Errorf("on-demand analysis is not supported on windows")
				}
				if err := pidFile.Signal(core.AnalyzeSignal()); err != nil {
					return err
				}
				fmt.Fprintln(out, "📊 Analysis requested; the report will appear in the archive")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&trigger, "analyze", false, "ask the server to analyze its window now")
	return cmd
}
