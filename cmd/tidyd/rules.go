package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tidyd/cmd/tidyd/cli"
	"tidyd/internal/config"
	"tidyd/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate the configured rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Rules) == 0 {
			cli.PrintInfo("No rules configured. Run 'tidyd setup' to write a starter config.")
			return nil
		}

		sizes, err := rules.NewSizeMatcher()
		if err != nil {
			return err
		}

		cli.PrintHeader(fmt.Sprintf("%d rules, first match wins", len(cfg.Rules)))
		for i, rule := range cfg.Rules {
			fmt.Printf("%2d. %s\n", i+1, cli.Highlight(rule.Regex))
			if rule.MinSize != "" {
				human := rule.MinSize
				if limit, err := sizes.ParseThreshold(rule.MinSize); err == nil {
					human = humanize.IBytes(uint64(limit))
				}
				fmt.Printf("    %s\n", cli.Dim("only files larger than "+human))
			}
			for j, action := range rule.Actions {
				if j == 0 {
					fmt.Printf("    → %s\n", action.String())
				} else {
					fmt.Printf("    %s\n", cli.Dim(fmt.Sprintf("→ %s (never runs, only the first action executes)", action.String())))
				}
			}
		}

		if len(cfg.Ignore) > 0 {
			fmt.Printf("\nIgnoring: %v\n", cfg.Ignore)
		}
		return nil
	},
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration without running anything. Reports the
first problem found: unreadable file, unknown keys, malformed rules, bad
regex or size thresholds, unknown actions or duplicate strategies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		checked, err := config.LoadConfigFile(path)
		if err != nil {
			cli.PrintError("Configuration check failed for " + path)
			return err
		}

		cli.PrintSuccess(fmt.Sprintf("%s is valid", path))
		fmt.Printf("  watching %s with %d rules\n", checked.WatchPath(), len(checked.Rules))
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rootCmd.AddCommand(rulesCmd)
}
