package main

import (
	"fmt"
	"os"

	"reservas/client"

	"github.com/spf13/cobra"
)

var (
	outputJSON bool
	apiURL     string
	apiToken   string
	api        *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "reservasctl",
	Short: "Consultas de disponibilidad, estimaciones e importaciones",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiToken == "" {
			apiToken = os.Getenv("RESERVAS_TOKEN")
		}
		if apiToken == "" {
			return fmt.Errorf("--token or RESERVAS_TOKEN is required")
		}
		api = client.New(apiURL, apiToken)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.AddCommand(availabilityCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", client.DefaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token (default $RESERVAS_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
}
