package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/shortstop/internal/core/config"
	"github.com/solatis/shortstop/internal/truncate"
	"github.com/solatis/shortstop/internal/types"
)

var trimCmd = &cobra.Command{
	Use:   "trim [file]",
	Short: "Truncate a JSON document to the configured limits",
	Long: `Reads a JSON document from a file (or stdin when no file is given),
applies the configured truncation limits, and writes the compact result to
stdout. Exit status is 0 whether or not truncation occurred; the truncated
flag is reported on stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
	trimCmd.Flags().Int("max-size-bytes", 0, "override max result size in bytes")
	trimCmd.Flags().Int("string-length-limit", 0, "override per-string character limit")
	trimCmd.Flags().Int("array-element-limit", 0, "override per-array element limit")
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("max-size-bytes") {
		cfg.MaxSizeBytes, _ = cmd.Flags().GetInt("max-size-bytes")
	}
	if cmd.Flags().Changed("string-length-limit") {
		cfg.StringLengthLimit, _ = cmd.Flags().GetInt("string-length-limit")
	}
	if cmd.Flags().Changed("array-element-limit") {
		cfg.ArrayElementLimit, _ = cmd.Flags().GetInt("array-element-limit")
	}

	var raw []byte
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}

	seg, err := types.BuildSegment(value)
	if err != nil {
		return fmt.Errorf("unsupported value: %w", err)
	}

	truncator, err := truncate.New(cfg.TruncatorConfig())
	if err != nil {
		return err
	}

	result, err := truncator.Truncate(seg)
	if err != nil {
		return fmt.Errorf("truncation failed: %w", err)
	}

	out, err := json.Marshal(result.Segment.Value)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	fmt.Println(string(out))
	fmt.Fprintf(os.Stderr, "truncated: %t\n", result.Truncated)
	return nil
}
