// Package types provides domain models shared across Shortstop components.
//
// Zero-dependency design: types.go, segment.go and errors.go use only the
// standard library so the truncation core can be embedded without pulling in
// persistence or CLI dependencies. ID utilities in ids.go import uuid but are
// isolated for selective inclusion.
package types

// Truncation limits enforced by the truncator to bound persisted payload size
// and keep execution-log rows cheap to scan.
const (
	// DefaultStringLengthLimit caps a single string value at 5000 characters.
	// Long enough for typical prompt/completion payloads; anything larger is
	// offloaded in full and only a preview is kept inline.
	DefaultStringLengthLimit = 5000

	// DefaultArrayElementLimit caps container element count at 100.
	// Keeps per-row fanout bounded; dropped elements are always a trailing
	// suffix so the kept prefix stays meaningful.
	DefaultArrayElementLimit = 100

	// DefaultMaxSizeBytes caps the compact-JSON encoding of an inline payload
	// at 10KB. Matches DefaultOffloadThreshold: anything that must be
	// truncated is also recoverable from blob storage.
	DefaultMaxSizeBytes = 10 * 1024

	// DefaultOffloadThreshold is the pre-truncation size above which the full
	// payload is uploaded to blob storage before truncation.
	DefaultOffloadThreshold = 10 * 1024

	// MinStringLengthLimit is the smallest usable string limit. An
	// ellipsis-suffixed result must be shorter than the original, so limits
	// below 4 cannot produce one.
	MinStringLengthLimit = 4

	// MaxEstimateDepth bounds recursion during size estimation. 20 levels
	// handles any payload a workflow node legitimately produces; deeper
	// structures fail loudly rather than risk an under-estimate.
	MaxEstimateDepth = 20

	// ArrayCharLimit is a hard ceiling on a truncated string inside an array,
	// independent of the surrounding byte budget. Prevents one element from
	// dominating an otherwise-plentiful allowance.
	ArrayCharLimit = 1000

	// ObjectCharLimit is the equivalent ceiling for object values. Larger
	// than ArrayCharLimit since object values are typically richer payloads
	// worth a bigger preview.
	ObjectCharLimit = 5000
)

// TruncatedKey is the reserved key injected into a truncated mapping so
// downstream consumers can detect truncation at the data level without
// consulting the offload pointer.
const TruncatedKey = "__truncated__"
