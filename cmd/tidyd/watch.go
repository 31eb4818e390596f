package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tidyd/cmd/tidyd/cli"
	"tidyd/internal/errors"
	"tidyd/internal/watch"
)

var watchDryRun bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory and organize new files",
	Long: `Start the organizing daemon in the foreground. New files in the watch
directory are matched against the configured rules and moved, extracted,
or deleted. Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("dry-run") {
			cfg.Settings.DryRun = watchDryRun
		}

		// One watching instance per config. The lock lives beside the
		// config file so separate configs can run side by side.
		lock := flock.New(lockPath())
		locked, err := lock.TryLock()
		if err != nil {
			return errors.Wrap(err, "failed to acquire instance lock")
		}
		if !locked {
			return errors.Newf("another tidyd instance is already watching (lock held at %s)", lock.Path())
		}
		defer lock.Unlock()

		daemon, err := watch.NewDaemon(cfg)
		if err != nil {
			return err
		}
		if err := daemon.Start(); err != nil {
			return err
		}

		cli.PrintInfo(fmt.Sprintf("Watching %s. Press Ctrl+C to stop.", cfg.WatchPath()))
		if cfg.Settings.DryRun {
			cli.PrintWarning("Dry-run mode: actions are logged, not performed")
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Println()
		daemon.Stop()

		status := daemon.Status()
		cli.PrintSuccess(fmt.Sprintf("Stopped after organizing %d files", status.FilesProcessed))
		return nil
	},
}

func lockPath() string {
	return filepath.Join(filepath.Dir(configPath()), "tidyd.lock")
}

func init() {
	watchCmd.Flags().BoolVarP(&watchDryRun, "dry-run", "n", false, "log actions without performing them")
	rootCmd.AddCommand(watchCmd)
}
