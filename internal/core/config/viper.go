package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/solatis/shortstop/internal/types"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*CaptureConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultCaptureConfig
	v.SetDefault("capture.data_dir", "./data")
	v.SetDefault("capture.string_length_limit", types.DefaultStringLengthLimit)
	v.SetDefault("capture.array_element_limit", types.DefaultArrayElementLimit)
	v.SetDefault("capture.max_size_bytes", types.DefaultMaxSizeBytes)
	v.SetDefault("capture.offload_threshold", types.DefaultOffloadThreshold)

	// Bind environment variables with SS_ prefix
	v.SetEnvPrefix("SS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &CaptureConfig{
		DataDir:           v.GetString("capture.data_dir"),
		StringLengthLimit: v.GetInt("capture.string_length_limit"),
		ArrayElementLimit: v.GetInt("capture.array_element_limit"),
		MaxSizeBytes:      v.GetInt("capture.max_size_bytes"),
		OffloadThreshold:  v.GetInt("capture.offload_threshold"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig rejects limits below their required minimums so an invalid
// truncator configuration never leaves the loading step.
func validateConfig(cfg *CaptureConfig) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if cfg.StringLengthLimit < types.MinStringLengthLimit {
		return fmt.Errorf("string_length_limit must be at least %d, got %d",
			types.MinStringLengthLimit, cfg.StringLengthLimit)
	}
	if cfg.ArrayElementLimit < 1 {
		return fmt.Errorf("array_element_limit must be positive, got %d", cfg.ArrayElementLimit)
	}
	if cfg.MaxSizeBytes < 1 {
		return fmt.Errorf("max_size_bytes must be positive, got %d", cfg.MaxSizeBytes)
	}
	if cfg.OffloadThreshold < 1 {
		return fmt.Errorf("offload_threshold must be positive, got %d", cfg.OffloadThreshold)
	}
	return nil
}
