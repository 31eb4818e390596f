package main

import (
	"github.com/spf13/cobra"

	"tidyd/internal/config"
	"tidyd/internal/log"
)

var (
	cfgFile string
	debug   bool
	jsonLog bool
	logFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tidyd",
	Short: "Unattended inbox organizer",
	Long: `tidyd watches a single directory and organizes files as they arrive.

Ordered regex rules decide each file's fate: move it into a destination
folder, extract it, or delete it. The first matching rule wins. Point it
at a downloads folder, define a few rules, and forget about it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetDebug(debug)
		if jsonLog {
			log.Configure(log.WithJSON())
		}
		if logFile != "" {
			log.Configure(log.WithFile(logFile))
		}

		if skipsConfigLoad(cmd) {
			return nil
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadConfigFile(cfgFile)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			return err
		}

		// --debug beats the configured level.
		if !debug && cfg.Settings.LogLevel != "" {
			return log.SetLevel(cfg.Settings.LogLevel)
		}
		return nil
	},
}

// skipsConfigLoad reports whether cmd runs without a loaded configuration.
// setup writes the config file and rules check loads it with its own error
// reporting; help and completion never need one.
func skipsConfigLoad(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "setup", "check", "help", "completion":
			return true
		}
	}
	return false
}

// configPath returns the explicit --config path or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append logs to this file")
}
