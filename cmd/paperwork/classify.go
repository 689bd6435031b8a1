package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paperwork-flow/internal/cli"
	"github.com/Veraticus/paperwork-flow/internal/config"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify a single bank statement description",
		Long: `Run one description, with an optional amount and direction, through the
classification rules and print the resulting accounting treatment.

Examples:
  paperwork classify "ENBRIDGE GAS" --amount 120.50 --direction debit
  paperwork classify "Service Charge" --amount 120 --direction credit
  paperwork classify "UBER EATS" --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().Float64("amount", 0, "transaction amount")
	cmd.Flags().String("direction", "", "transaction direction (credit, debit)")
	cmd.Flags().Bool("all", false, "list every rule whose description pattern matches")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")
	showAll, _ := cmd.Flags().GetBool("all")

	var amount *float64
	if cmd.Flags().Changed("amount") {
		v, _ := cmd.Flags().GetFloat64("amount")
		amount = &v
	}

	var direction *model.Direction
	if raw, _ := cmd.Flags().GetString("direction"); raw != "" {
		d, err := model.ParseDirection(raw)
		if err != nil {
			return err
		}
		direction = &d
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rules, err := loadRuleSet(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := rules.Classify(description, amount, direction)
	fmt.Fprintln(out, cli.RenderBox(description, cli.FormatResult(result)))

	if showAll {
		matches := rules.RulesMatching(description)
		fmt.Fprintf(out, "\n%s\n", cli.TitleStyle.Render(fmt.Sprintf("%d rules match the description", len(matches))))
		if len(matches) > 0 {
			return cli.WriteRules(out, matches)
		}
	}

	return nil
}
