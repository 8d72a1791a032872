// Package main is the entry point for the progression gRPC server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "progression-api",
	Short: "Saga Edition character progression server",
	Long:  `progression-api runs the character progression engine: step-gated creation and level-up sessions with atomic finalize.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
