package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func reportsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse archived reports",
	}
	cmd.AddCommand(reportsListCmd(opts), reportsShowCmd(opts))
	return cmd
}

func reportsListCmd(opts *globalOptions) *cobra.Command {
	var (
		limit  int
		offset int
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			store, err := s.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			headers, total, err := store.List(limit, offset)
			if err != nil {
				return err
			}
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(headers)
			}
			return RenderReportList(cmd.OutOrStdout(), headers, total)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of reports, 0 for all")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of reports to skip")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func reportsShowCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			store, err := s.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stored, err := store.Get(args[0])
			if err != nil {
				return fmt.Errorf("report %s: %w", args[0], err)
			}
			return writeReport(cmd.OutOrStdout(), stored.Report, format, stored.ID)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
