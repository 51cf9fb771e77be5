package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"graphpipe/internal/apihandlers"
)

var serveAddr string

// serveCmd exposes a read-only HTTP view of the catalog and the usage
// ledger, for dashboards or other tooling. It never triggers paid
// calls.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only HTTP API over the catalog and usage ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		router := gin.Default()
		apiHandler := apihandlers.NewAPIHandler(appInstance)

		v1 := router.Group("/api/v1")
		{
			v1.GET("/models", apiHandler.ListModelsHandler)
			v1.GET("/models/vision", apiHandler.VisionModelsHandler)
			v1.GET("/models/:id", apiHandler.GetModelHandler)
			v1.GET("/usage", apiHandler.UsageHandler)
		}

		fmt.Printf("Listening on %s\n", serveAddr)
		return router.Run(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}
