package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/core"
)

const defaultConfigPath = "~/.sysdiag/config.yaml"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	logLevel   string
}

// session is what most commands need once flags are parsed
type session struct {
	config core.Config
	log    *logrus.Logger
}

// New returns the root sysdiag command
func New(version string) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "sysdiag",
		Short: "Collect host metrics and diagnose system health",
		Long: `sysdiag samples CPU, memory, disk and per-process usage, then turns a
window of samples into a health report with trends, anomalies, leak
heuristics and prioritized recommendations.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		collectCmd(opts),
		analyzeCmd(opts),
		runCmd(opts),
		serveCmd(opts, version),
		stopCmd(opts),
		statusCmd(opts),
		reportsCmd(opts),
		alertsCmd(opts),
		configCmd(opts),
	)
	return cmd
}

// Execute runs the root command
func Execute(version string) error {
	return New(version).Execute()
}

// load reads the configuration and builds the logger
func (o *globalOptions) load() (*session, error) {
	log := core.NewLogger("info")
	config, err := LoadConfig(core.ExpandPath(o.configPath), log)
	if err != nil {
		return nil, err
	}

	level := config.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", level).Warn("unknown log level, using info")
	}
	return &session{config: config, log: log}, nil
}

// dataDir is where the pid file lives, next to the report archive
func (s *session) dataDir() string {
	return dirOf(s.config.Storage.SQLitePath, "~/.sysdiag")
}
