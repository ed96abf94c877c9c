// Package config provides configuration management for Shortstop services.
package config

import (
	"github.com/solatis/shortstop/internal/truncate"
	"github.com/solatis/shortstop/internal/types"
)

// CaptureConfig holds configuration for execution-log capture: truncation
// limits, the offload threshold, and where the blob store keeps full payloads.
type CaptureConfig struct {
	DataDir           string
	StringLengthLimit int
	ArrayElementLimit int
	MaxSizeBytes      int
	OffloadThreshold  int
}

// DefaultCaptureConfig returns configuration with default values.
func DefaultCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		DataDir:           "./data",
		StringLengthLimit: types.DefaultStringLengthLimit,
		ArrayElementLimit: types.DefaultArrayElementLimit,
		MaxSizeBytes:      types.DefaultMaxSizeBytes,
		OffloadThreshold:  types.DefaultOffloadThreshold,
	}
}

// TruncatorConfig maps the capture limits onto the truncator's configuration.
func (c *CaptureConfig) TruncatorConfig() truncate.Config {
	return truncate.Config{
		StringLengthLimit: c.StringLengthLimit,
		ArrayElementLimit: c.ArrayElementLimit,
		MaxSizeBytes:      c.MaxSizeBytes,
	}
}
