package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"graphpipe/internal/animate"
	"graphpipe/internal/clix"
	"graphpipe/internal/extract"
	"graphpipe/internal/models"
)

var (
	extractImagePath   string
	extractModelID     string
	extractOutputPath  string
	extractStrictVis   bool
	extractNoAnimation bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract graph structure from an image and emit an animation script",
	Long: `Runs the full pipeline on one image: select the cheapest eligible
vision model (or use --model), check the budget, ask for confirmation,
call the vision endpoint, print the recognized vertices, edges and
adjacency matrix and write a manim animation script.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := appInstance.Config.RequireAPIKey(); err != nil {
			return err
		}

		if _, err := os.Stat(extractImagePath); err != nil {
			return fmt.Errorf("image file not accessible: %w", err)
		}

		refresh := clix.ParseRefresh(cmd.Flags())
		budget := clix.ParseBudget(cmd.Flags(), appInstance.Config.Budget.Limit)

		opts := extract.Options{
			ModelID:         extractModelID,
			BudgetLimit:     budget.Limit,
			HardStop:        appInstance.Config.Budget.HardStop,
			RequireApproval: appInstance.Config.Budget.RequireApproval && !budget.Approved,
			StrictVision:    extractStrictVis,
			ForceRefresh:    refresh.Force,
			CheckVision:     refresh.CheckVision,
		}

		result, err := appInstance.Extractor.Extract(cmd.Context(), extractImagePath, opts)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrUserDeclined):
				fmt.Println("Operation cancelled by user.")
				return nil
			case errors.Is(err, models.ErrNoEligibleModel):
				return fmt.Errorf("no vision-capable model with cost data available: %w", err)
			default:
				return err
			}
		}

		fmt.Printf("Model:    %s (call cost $%.4f)\n", result.ModelID, result.CallCost)
		fmt.Printf("Vertices: %v\n", result.Vertices)
		fmt.Print("Edges:    ")
		for i, e := range result.Edges {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("(%s, %s)", e.From, e.To)
		}
		fmt.Println()
		fmt.Println("Adjacency matrix:")
		for _, row := range result.Adjacency {
			fmt.Printf("  %v\n", row)
		}

		if extractNoAnimation {
			return nil
		}
		if err := animate.GenerateScript(extractOutputPath, result.Vertices, result.Edges); err != nil {
			return err
		}
		fmt.Printf("Manim script written to %s\n", extractOutputPath)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractImagePath, "image", "", "path to the graph image (required)")
	extractCmd.Flags().StringVar(&extractModelID, "model", "", "model id override; skips selection")
	extractCmd.Flags().StringVar(&extractOutputPath, "output", "graph_manim.py", "output path for the manim script")
	extractCmd.Flags().Float64("budget", 0, "budget ceiling in dollars for this run (defaults to config)")
	extractCmd.Flags().Bool("yes", false, "skip the interactive confirmation")
	extractCmd.Flags().Bool("force", false, "force a catalog refresh before selection")
	extractCmd.Flags().Bool("skip-vision-check", false, "skip vision probes during the refresh")
	extractCmd.Flags().BoolVar(&extractStrictVis, "strict-vision", false, "only use models whose vision support was confirmed by a probe")
	extractCmd.Flags().BoolVar(&extractNoAnimation, "no-animation", false, "skip writing the manim script")
	extractCmd.MarkFlagRequired("image")
}
