package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"graphpipe/internal/ledger"
)

// costCmd shows the persisted usage ledger: per-model subtotals and the
// aggregate estimated spend of the most recent session.
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "View recorded API usage costs",
	Long:  `Displays the usage ledger: call counts, token totals and estimated cost per model, plus the session aggregate.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := ledger.LoadStats(appInstance.Config.Ledger.Path)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No usage recorded yet.")
				return nil
			}
			return fmt.Errorf("failed to read usage ledger: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Model", "Calls", "In Tokens", "Out Tokens", "Cost"})

		ids := make([]string, 0, len(stats.ByModel))
		for id := range stats.ByModel {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			u := stats.ByModel[id]
			table.Append([]string{
				id,
				strconv.Itoa(u.Count),
				strconv.FormatInt(u.InputTokens, 10),
				strconv.FormatInt(u.OutputTokens, 10),
				fmt.Sprintf("$%.4f", u.TotalCost),
			})
		}
		table.Render()

		fmt.Printf("Session started: %s\n", stats.SessionStart.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("Total calls:     %d\n", stats.CallCount)
		color.New(color.Bold).Printf("Total estimated cost: $%.4f\n", stats.TotalCost)
		return nil
	},
}
