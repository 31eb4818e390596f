package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tidyd/cmd/tidyd/cli"
	"tidyd/internal/config"
	"tidyd/internal/errors"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a starter configuration",
	Long: `Create a configuration file with sensible starter rules for a downloads
folder: extract archives, file images and documents away. Also creates
the destination directories the starter rules reference. Edit the file,
check it with 'tidyd rules check', then start 'tidyd watch'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()

		if _, err := os.Stat(path); err == nil && !setupForce {
			cli.PrintWarning(path + " already exists, use --force to overwrite")
			return nil
		}

		sample := config.Sample()
		if err := config.SaveConfig(sample, path); err != nil {
			return err
		}
		cli.PrintSuccess("Wrote " + path)

		for _, dir := range sampleDirs(sample) {
			if _, err := os.Stat(dir); err == nil {
				continue
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, "failed to create %s", dir)
			}
			cli.PrintInfo("Created " + dir)
		}

		fmt.Println()
		cli.PrintInfo("Edit the rules to taste, then run 'tidyd watch'")
		return nil
	},
}

// sampleDirs lists the directories the starter config expects to exist:
// the watch directory and every action destination.
func sampleDirs(sample *config.Config) []string {
	dirs := []string{sample.WatchPath()}
	for _, rule := range sample.Rules {
		for _, action := range rule.Actions {
			if action.Dest != "" {
				dirs = append(dirs, filepath.Join(sample.BaseDir, action.Dest))
			}
		}
	}
	return dirs
}

func init() {
	setupCmd.Flags().BoolVarP(&setupForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(setupCmd)
}
