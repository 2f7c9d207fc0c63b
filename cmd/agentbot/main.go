// Command agentbot serves the vehicle-service assistant and manages its knowledge base.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TechTorque-2025/Agent-Bot/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "agentbot",
	Short:         "Conversational assistant for the vehicle-service platform",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
