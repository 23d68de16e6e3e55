package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/core"
)

func analyzeCmd(opts *globalOptions) *cobra.Command {
	var (
		input  string
		format string
		save   bool
	)
	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Diagnose a recorded samples file",
		Example: `sysdiag analyze --input samples.json --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			samples, err := readSamples(input)
			if err != nil {
				return err
			}

			analyzer, err := core.NewAnalyzer(s.config.Analysis)
			if err != nil {
				return err
			}
			report, err := analyzer.Analyze(samples)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			var id string
			if save {
				if id, err = s.archive(report); err != nil {
					return err
				}
			}
			return writeReport(cmd.OutOrStdout(), report, format, id)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "f", "samples.json", "samples file, - for stdin")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&save, "save", false, "store the report in the archive")
	return cmd
}

// archive saves report to the configured archive and returns its id
func (s *session) archive(report *core.AnalysisReport) (string, error) {
	store, err := s.openStore()
	if err != nil {
		return "", err
	}
	defer store.Close()

	id, err := store.Save(report)
	if err != nil {
		return "", fmt.Errorf("failed to archive report: %w", err)
	}
	return id, nil
}
