package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/core"
)

func collectCmd(opts *globalOptions) *cobra.Command {
	var (
		duration time.Duration
		interval time.Duration
		output   string
	)
	cmd := &cobra.Command{
		Use:     "collect",
		Short:   "Record samples of this host to a file",
		Example: `sysdiag collect --duration 2m --interval 1s --output samples.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, cleanup, err := s.newApp(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			errOut := cmd.ErrOrStderr()
			fmt.Fprintf(errOut, "🔄 Collecting for %v every %v (Ctrl+C to stop early)\n", duration, interval)
			samples, err := app.CollectFor(ctx, duration, interval, func(n int, sample core.Sample) {
				fmt.Fprintf(errOut, "\r📈 %d samples  cpu %5.1f%%  mem %5.1f%% (%s)", n, sample.CPUPercent, sample.MemoryPercent, formatBytes(sample.MemoryUsedBytes))
			})
			fmt.Fprintln(errOut)
			if err != nil {
				return err
			}

			if err := writeSamples(output, samples); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintf(errOut, "✅ %d samples written to %s\n", len(samples), output)
			}
			return nil
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 2*time.Minute, "how long to collect")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "time between samples")
	cmd.Flags().StringVarP(&output, "output", "o", "samples.json", "output file, - for stdout")
	return cmd
}
