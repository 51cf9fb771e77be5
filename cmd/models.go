package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"graphpipe/internal/catalog"
	"graphpipe/internal/clix"
	"graphpipe/internal/models"
)

var listVisionOnly bool

// modelsCmd is the base command for model catalog operations.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage the model catalog cache",
	Long:  `Provides subcommands to refresh the cached model catalog and list known models with their vision capability and declared costs.`,
}

var modelsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the model catalog cache",
	Long: `Fetches the live model list when the cache is stale (older than the
configured expiry) or --force is given. New models are probed for
vision capability unless --skip-vision-check is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := appInstance.Config.RequireAPIKey(); err != nil {
			return err
		}

		params := clix.ParseRefresh(cmd.Flags())
		snap := appInstance.Catalog.Refresh(cmd.Context(), params.Force, params.CheckVision)

		if snap.LastUpdated == nil {
			return fmt.Errorf("catalog refresh produced no data; check API connectivity")
		}
		fmt.Printf("Catalog contains %d models (last updated %s)\n",
			len(snap.Models), snap.LastUpdated.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		snap := appInstance.Catalog.Load()
		if len(snap.Models) == 0 {
			fmt.Println("Model cache is empty. Run 'graphpipe models refresh' first.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)

		if listVisionOnly {
			table.SetHeader([]string{"ID", "Cost", "Tier"})
			for _, cand := range catalog.VisionQualified(snap, false) {
				tier := "confirmed"
				if cand.Heuristic {
					tier = "heuristic"
				}
				table.Append([]string{cand.ID, formatCost(cand.TotalCost()), tier})
			}
			table.Render()
			return nil
		}

		table.SetHeader([]string{"ID", "Vision", "Checked", "Cost Context", "Cost Completion"})
		for _, id := range sortedModelIDs(snap) {
			rec := snap.Models[id]
			vision := "?"
			if rec.HasVision != nil {
				vision = strconv.FormatBool(*rec.HasVision)
			}
			table.Append([]string{
				rec.ID,
				vision,
				strconv.FormatBool(rec.VisionChecked),
				string(rec.CostContext),
				string(rec.CostCompletion),
			})
		}
		table.Render()
		return nil
	},
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func sortedModelIDs(snap *models.CatalogSnapshot) []string {
	ids := make([]string, 0, len(snap.Models))
	for id := range snap.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func init() {
	modelsRefreshCmd.Flags().Bool("force", false, "refresh even if the cache is fresh; re-probe models never checked")
	modelsRefreshCmd.Flags().Bool("skip-vision-check", false, "skip live vision capability probes")
	modelsListCmd.Flags().BoolVar(&listVisionOnly, "vision", false, "show only vision-qualified models")

	modelsCmd.AddCommand(modelsRefreshCmd)
	modelsCmd.AddCommand(modelsListCmd)
}
