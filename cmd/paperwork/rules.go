package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paperwork-flow/internal/cli"
	"github.com/Veraticus/paperwork-flow/internal/config"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect classification rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List classification rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rules, err := loadRuleSet(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := cli.WriteRules(out, rules.Rules()); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d rules\n", rules.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a YAML rule file without importing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.RulesFile = config.ExpandPath(args[0])

			rules, err := loadRuleSet(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is valid (%d rules in total)", args[0], rules.Len())))
			return nil
		},
	})

	return cmd
}
