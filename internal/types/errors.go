package types

import "errors"

// Sentinel errors for Shortstop operations.
var (
	// ErrMaxDepthExceeded indicates a value nests deeper than MaxEstimateDepth.
	// Size estimation fails loudly rather than guess; an under-estimate could
	// let an oversized payload through the offload threshold.
	ErrMaxDepthExceeded = errors.New("value exceeds maximum nesting depth")

	// ErrUnknownType indicates a value outside the JSON-compatible variant set
	// (string, integer, float, boolean, null, sequence, mapping).
	ErrUnknownType = errors.New("value is not a JSON-compatible type")

	// ErrInvalidLimit indicates a truncator limit below its required minimum.
	ErrInvalidLimit = errors.New("truncation limit below required minimum")

	// ErrSegmentValueMismatch indicates a segment whose value does not match
	// its kind tag (e.g. an Array segment not carrying a slice).
	ErrSegmentValueMismatch = errors.New("segment value does not match kind")

	// ErrExecutionNotFound indicates a lookup for an execution record that
	// does not exist.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrBlobNotFound indicates a lookup for an offloaded payload that does
	// not exist in blob storage.
	ErrBlobNotFound = errors.New("blob not found")
)
