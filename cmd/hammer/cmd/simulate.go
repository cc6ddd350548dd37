package cmd

import (
	"fmt"
	"github.com/kurumiimari/hammer"
	"github.com/kurumiimari/hammer/sim"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario]",
	Short: "Replays demo auctions against an in-memory ledger",
	Long: "Replays demo auctions against an in-memory ledger. Without a scenario every demo is run. " +
		"Use --list to see the available scenarios.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listScenarios {
			for _, sc := range sim.Scenarios {
				fmt.Printf("%s: %s\n", sc.Name, sc.Description)
			}
			return nil
		}

		scenarios := sim.Scenarios
		if len(args) == 1 {
			sc := sim.ScenarioByName(args[0])
			if sc == nil {
				return errors.Errorf("unknown scenario %s", args[0])
			}
			scenarios = []*sim.Scenario{sc}
		}

		var reports []*sim.Report
		for _, sc := range scenarios {
			report, err := sim.Run(hammer.Config.Network, sc)
			if err != nil {
				return errors.Wrapf(err, "error running scenario %s", sc.Name)
			}
			reports = append(reports, report)
		}
		return printJSON(reports)
	},
}

var listScenarios bool

func init() {
	simulateCmd.Flags().BoolVar(&listScenarios, "list", false, "Lists the available scenarios")
	rootCmd.AddCommand(simulateCmd)
}
