package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swsaga/progression-api/internal/config"
	"github.com/swsaga/progression-api/internal/orchestrators/progression"
)

// clearLockCmd is the administrative recovery path for a progression lock
// whose holder crashed. Locks never expire on their own.
var clearLockCmd = &cobra.Command{
	Use:   "clear-lock <character-id>",
	Short: "Clear a stuck progression lock",
	Long:  `Clear the progression lock of a character whose finalize crashed before releasing it. Verify no transaction is actually running first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runClearLock,
}

func init() {
	rootCmd.AddCommand(clearLockCmd)
}

func runClearLock(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	orchestrator, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	characterID := args[0]
	if _, err := orchestrator.ClearLock(context.Background(), &progression.ClearLockInput{CharacterID: characterID}); err != nil {
		return fmt.Errorf("failed to clear lock: %w", err)
	}

	fmt.Printf("Cleared progression lock for character %s\n", characterID)
	return nil
}
