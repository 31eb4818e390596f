package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidyd/cmd/tidyd/cli"
	"tidyd/internal/organize"
	"tidyd/internal/rules"
)

var sweepDryRun bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Organize files already in the watch directory",
	Long: `Run one pass over the watch directory, applying the configured rules to
every file already present. Useful for catching up after downtime or for
trying out a rule set with --dry-run before starting the daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("dry-run") {
			cfg.Settings.DryRun = sweepDryRun
		}

		engine, err := rules.NewEngine(cfg.Rules, cfg.Ignore)
		if err != nil {
			return err
		}
		exec := organize.New(cfg.BaseDir, cfg.Settings.DryRun)

		if cfg.Settings.DryRun {
			cli.PrintWarning("Dry run: reporting what would happen, touching nothing")
		}

		result, err := organize.Sweep(engine, exec, cfg.WatchPath())
		if err != nil {
			return err
		}

		cli.PrintHeader(fmt.Sprintf("Swept %s", cfg.WatchPath()))
		fmt.Printf("  %d files scanned, %d ignored, %d matched a rule\n",
			result.Scanned, result.Ignored, result.Matched)
		if !cfg.Settings.DryRun {
			fmt.Printf("  %d moved, %d extracted, %d deleted, %d skipped\n",
				result.Moved, result.Extracted, result.Deleted, result.Skipped)
		}
		if result.Failed > 0 {
			cli.PrintWarning(fmt.Sprintf("%d files failed, see the log for details", result.Failed))
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().BoolVarP(&sweepDryRun, "dry-run", "n", false, "report actions without performing them")
	rootCmd.AddCommand(sweepCmd)
}
