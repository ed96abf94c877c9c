package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/shortstop/internal/core/config"
	"github.com/solatis/shortstop/internal/core/filestore"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete offloaded blobs older than the retention window",
	RunE:  runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "delete blobs older than this")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	olderThan, _ := cmd.Flags().GetDuration("older-than")

	store, err := filestore.NewDiskStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	removed, err := store.Prune(context.Background(), time.Now().Add(-olderThan))
	if err != nil {
		return err
	}

	fmt.Printf("pruned %d blob(s)\n", removed)
	return nil
}
