package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/shortstop/internal/core/config"
	"github.com/solatis/shortstop/internal/core/db"
	"github.com/solatis/shortstop/internal/core/filestore"
	"github.com/solatis/shortstop/internal/core/repo"
	"github.com/solatis/shortstop/internal/truncate"
	"github.com/solatis/shortstop/internal/types"
)

var showCmd = &cobra.Command{
	Use:   "show <execution-id>",
	Short: "Print a stored execution as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func newRepository(cfg *config.CaptureConfig) (*repo.ExecutionRepository, func(), error) {
	database, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}

	store, err := filestore.NewDiskStore(cfg.DataDir)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	truncator, err := truncate.New(cfg.TruncatorConfig())
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	repository, err := repo.NewExecutionRepository(queries, store, truncator, cfg.OffloadThreshold)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return repository, func() { database.Close() }, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := types.ParseExecutionID(args[0])
	if err != nil {
		return fmt.Errorf("invalid execution id %q: %w", args[0], err)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repository, closeDB, err := newRepository(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	exec, err := repository.Get(context.Background(), id)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(exec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
