package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/core"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from file, creating a default file when
// none exists. A file that fails to parse or validate is reported and the
// defaults are used instead.
func LoadConfig(configPath string, log logrus.FieldLogger) (core.Config, error) {
	config := core.GetDefaultConfig()

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := createDefaultConfigFile(configPath, config); err != nil {
			log.WithError(err).Warn("failed to create default config file")
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.WithError(err).Warn("failed to read config file, using defaults")
		return config, nil
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		log.WithError(err).Warn("failed to parse config file, using defaults")
		return core.GetDefaultConfig(), nil
	}

	if err := core.ValidateConfig(config); err != nil {
		log.WithError(err).Warn("invalid config, using defaults")
		return core.GetDefaultConfig(), nil
	}

	return config, nil
}

// createDefaultConfigFile writes config as YAML with a header comment
func createDefaultConfigFile(configPath string, config core.Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString("# sysdiag configuration file\n\n"); err != nil {
		return err
	}
	_, err = file.Write(data)
	return err
}

func configCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(configInitCmd(opts), configShowCmd(opts))
	return cmd
}

func configInitCmd(opts *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := core.ExpandPath(opts.configPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := createDefaultConfigFile(path, core.GetDefaultConfig()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s.config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// dirOf returns the directory of path after expansion, or fallback when
// path is empty
func dirOf(path, fallback string) string {
	if path == "" {
		return core.ExpandPath(fallback)
	}
	return filepath.Dir(core.ExpandPath(path))
}
