package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/core"
)

func alertsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and test alert notifiers",
	}
	cmd.AddCommand(alertsNotifiersCmd(opts), alertsTestCmd(opts))
	return cmd
}

func alertsNotifiersCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notifiers",
		Short: "List the configured notifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			notifiers := s.config.Alerts.Notifiers
			if len(notifiers) == 0 {
				fmt.Fprintln(out, "No notifiers configured")
				return nil
			}

			names := make([]string, 0, len(notifiers))
			for name := range notifiers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%-16s %s\n", name, notifiers[name].Type)
			}
			if !s.config.Alerts.Enabled {
				fmt.Fprintln(out, "(alerts are disabled)")
			}
			return nil
		},
	}
}

func alertsTestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <name>",
		Short: "Send a test message through one notifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			// Works with alerts disabled so notifiers can be checked first.
			alerts := core.NewAlertManager(s.config.Alerts, s.log)
			if err := alerts.TestNotifier(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Test notification sent via %s\n", args[0])
			return nil
		},
	}
}
