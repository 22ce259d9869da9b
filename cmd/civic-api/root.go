package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/civic-report-api/api/swagger"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "civic-api",
	Short: "Municipal incident report and document request backend",
	Long: "civic-api serves the REST and realtime API used by the citizen app and the LGU and\n" +
		"barangay dashboards, and runs the pickup expiry and notification retention jobs.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.Version = version
}

// @title Civic Report API
// @version 1.0.0
// @description Incident reports, document requests and staff notifications for LGUs and barangays.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
