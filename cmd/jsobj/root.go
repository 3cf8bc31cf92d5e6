package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Input holds what the global flags and the config file resolved to.
type Input struct {
	configPath string
	logLevel   string
	maxDepth   int

	cfg Config
}

func newRootCmd(ctx context.Context, version string) *cobra.Command {
	input := new(Input)

	rootCmd := &cobra.Command{
		Use:          "jsobj",
		Short:        "Run scripts against the object model and inspect what they build.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return input.setup(cmd.Flags())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&input.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/"+configRelPath+")")
	rootCmd.PersistentFlags().StringVar(&input.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&input.maxDepth, "max-call-depth", 0, "limit on nested function calls")

	rootCmd.AddCommand(newRunCmd(ctx, input))
	rootCmd.AddCommand(newTest262Cmd(ctx, input))
	return rootCmd
}

// setup loads the config file and lets explicit flags override it.
func (input *Input) setup(flags *pflag.FlagSet) error {
	cfg, err := LoadConfig(input.configPath)
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = input.logLevel
	}
	if flags.Changed("max-call-depth") {
		cfg.MaxCallDepth = input.maxDepth
	}
	input.cfg = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.WithField("config", cfg.Source).Debug("configuration loaded")
	return nil
}
