package truncate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/solatis/shortstop/internal/types"
)

// Config holds truncation limits. Validated at construction; a Truncator is
// never created in an invalid state.
type Config struct {
	// StringLengthLimit caps a single string at this many characters
	// (unicode-aware, not bytes). Minimum types.MinStringLengthLimit: an
	// ellipsis-suffixed result must be shorter than the original.
	StringLengthLimit int

	// ArrayElementLimit caps container element count. Minimum 1.
	ArrayElementLimit int

	// MaxSizeBytes caps the compact-JSON encoding of the result. Minimum 1.
	MaxSizeBytes int
}

// DefaultConfig returns the limits used for execution-log persistence.
func DefaultConfig() Config {
	return Config{
		StringLengthLimit: types.DefaultStringLengthLimit,
		ArrayElementLimit: types.DefaultArrayElementLimit,
		MaxSizeBytes:      types.DefaultMaxSizeBytes,
	}
}

// Truncator shrinks tagged segments to the configured limits. Immutable after
// construction and free of shared mutable state: safe to share across
// concurrent callers without locking.
type Truncator struct {
	stringLengthLimit int
	arrayElementLimit int
	maxSizeBytes      int
}

// New validates cfg and returns a configured Truncator.
func New(cfg Config) (*Truncator, error) {
	if cfg.StringLengthLimit < types.MinStringLengthLimit {
		return nil, fmt.Errorf("%w: string_length_limit must be at least %d, got %d",
			types.ErrInvalidLimit, types.MinStringLengthLimit, cfg.StringLengthLimit)
	}
	if cfg.ArrayElementLimit < 1 {
		return nil, fmt.Errorf("%w: array_element_limit must be at least 1, got %d",
			types.ErrInvalidLimit, cfg.ArrayElementLimit)
	}
	if cfg.MaxSizeBytes < 1 {
		return nil, fmt.Errorf("%w: max_size_bytes must be at least 1, got %d",
			types.ErrInvalidLimit, cfg.MaxSizeBytes)
	}
	return &Truncator{
		stringLengthLimit: cfg.StringLengthLimit,
		arrayElementLimit: cfg.ArrayElementLimit,
		maxSizeBytes:      cfg.MaxSizeBytes,
	}, nil
}

// Result pairs a truncated segment with whether truncation changed the value.
// Truncated is true iff the returned segment's canonical value differs from
// the input's; callers rely on this flag, never on deep-equality checks.
type Result struct {
	Segment   types.Segment
	Truncated bool
}

// Truncate selects the strategy for the segment's kind, applies it, and
// enforces the final-size fallback.
//
// Integer, Float, None, File and ArrayFile segments pass through verbatim:
// their size is bounded and not controllable here. A boolean riding the
// Integer kind is coerced to its 0/1 representation.
//
// Guarantee for the remaining kinds: the result never exceeds MaxSizeBytes,
// measured as compact-JSON size for containers and content bytes for strings.
// If the type-specific pass cannot get a container under budget, the
// already-truncated result is serialized to compact JSON and clamped as a
// string; the returned segment's kind becomes String regardless of input.
func (t *Truncator) Truncate(seg types.Segment) (Result, error) {
	switch seg.Kind {
	case types.KindInteger:
		if b, ok := seg.Value.(bool); ok {
			var n int64
			if b {
				n = 1
			}
			return Result{Segment: types.IntegerSegment(n)}, nil
		}
		return Result{Segment: seg}, nil

	case types.KindFloat, types.KindNone, types.KindFile, types.KindArrayFile:
		return Result{Segment: seg}, nil

	case types.KindString:
		s, ok := seg.Value.(string)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s segment carries %T",
				types.ErrSegmentValueMismatch, seg.Kind, seg.Value)
		}
		out, changed := t.clampString(s)
		return Result{Segment: types.StringSegment(out), Truncated: changed}, nil

	case types.KindArray:
		items, ok := seg.Value.([]any)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s segment carries %T",
				types.ErrSegmentValueMismatch, seg.Kind, seg.Value)
		}
		out, changed, err := t.truncateArray(items, t.maxSizeBytes)
		if err != nil {
			return Result{}, err
		}
		return t.finalize(types.ArraySegment(out), changed)

	case types.KindObject:
		m, ok := seg.Value.(map[string]any)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s segment carries %T",
				types.ErrSegmentValueMismatch, seg.Kind, seg.Value)
		}
		out, changed, err := t.truncateObject(m, t.maxSizeBytes)
		if err != nil {
			return Result{}, err
		}
		return t.finalize(types.ObjectSegment(out), changed)

	default:
		return Result{}, fmt.Errorf("%w: segment kind %s", types.ErrUnknownType, seg.Kind)
	}
}

// finalize re-estimates a container result and applies the last-resort
// fallback when it still exceeds the byte budget. This happens when even a
// single maximally-shrunk entry does not fit, or container overhead alone
// exceeds the budget.
func (t *Truncator) finalize(seg types.Segment, changed bool) (Result, error) {
	size, err := EstimateSize(seg.Value)
	if err != nil {
		return Result{}, err
	}
	if size <= t.maxSizeBytes {
		return Result{Segment: seg, Truncated: changed}, nil
	}
	raw, err := json.Marshal(seg.Value)
	if err != nil {
		return Result{}, fmt.Errorf("serialize truncated value: %w", err)
	}
	out, _ := t.clampString(string(raw))
	return Result{Segment: types.StringSegment(out), Truncated: true}, nil
}

// clampString applies the character limit first, then the byte budget.
// The result satisfies both limits, which makes already-clamped strings a
// fixed point of Truncate.
func (t *Truncator) clampString(s string) (string, bool) {
	out, c1 := truncateRunes(s, t.stringLengthLimit)
	out, c2 := truncateBytes(out, t.maxSizeBytes)
	return out, c1 || c2
}

// truncateRunes caps s at limit characters, ellipsis-suffixed. Operates on
// character count, not bytes. Limits of 3 or fewer return a bare prefix: an
// ellipsis would leave no room for content.
func truncateRunes(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	if limit <= 3 {
		return string(runes[:limit]), true
	}
	return string(runes[:limit-3]) + "...", true
}

// truncateBytes caps s at max content bytes, cutting on a rune boundary and
// ellipsis-suffixing when room allows.
func truncateBytes(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	keep := max
	if keep > 3 {
		keep = max - 3
	}
	end := 0
	for i := range s {
		if i > keep {
			break
		}
		end = i
	}
	if max > 3 {
		return s[:end] + "...", true
	}
	return s[:end], true
}

// truncateArray shrinks a sequence to the element limit and byte budget.
// Kept elements are always a strict prefix in original order; the first
// element that cannot fit even maximally shrunk drops itself and everything
// after it.
func (t *Truncator) truncateArray(items []any, budget int) ([]any, bool, error) {
	if len(items) <= t.arrayElementLimit {
		size, err := EstimateSize(items)
		if err != nil {
			return nil, false, err
		}
		if size <= budget {
			return items, false, nil
		}
	}

	truncated := len(items) > t.arrayElementLimit
	kept := items
	if truncated {
		kept = items[:t.arrayElementLimit]
	}

	out := make([]any, 0, len(kept))
	used := 2 // brackets
	for _, item := range kept {
		sep := 0
		if len(out) > 0 {
			sep = 1
		}
		remaining := budget - used - sep
		if remaining <= 0 {
			truncated = true
			break
		}
		shrunk, changed, err := t.truncateToBudget(item, remaining, types.ArrayCharLimit)
		if err != nil {
			return nil, false, err
		}
		size, err := EstimateSize(shrunk)
		if err != nil {
			return nil, false, err
		}
		if size > remaining {
			truncated = true
			break
		}
		out = append(out, shrunk)
		used += size + sep
		truncated = truncated || changed
	}
	return out, truncated, nil
}

// truncateObject shrinks a mapping to the byte budget. Keys are walked in
// lexicographic order; this sort is a documented invariant, not an
// implementation detail — it makes output deterministic regardless of
// insertion order, and downstream consumers depend on it.
//
// A key whose maximally truncated value cannot fit the remaining budget is
// dropped entirely and the walk continues, letting smaller later keys use the
// budget. Partial key names are never emitted.
func (t *Truncator) truncateObject(m map[string]any, budget int) (map[string]any, bool, error) {
	size, err := EstimateSize(m)
	if err != nil {
		return nil, false, err
	}
	if size <= budget {
		return m, false, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	used := 2 // braces
	for _, key := range keys {
		sep := 0
		if len(out) > 0 {
			sep = 1
		}
		keySize := len(key) + 2 + 1 // quotes + colon
		remaining := budget - used - sep - keySize
		if remaining <= 0 {
			continue
		}
		shrunk, _, err := t.truncateToBudget(m[key], remaining, types.ObjectCharLimit)
		if err != nil {
			return nil, false, err
		}
		valueSize, err := EstimateSize(shrunk)
		if err != nil {
			return nil, false, err
		}
		if valueSize > remaining {
			continue
		}
		out[key] = shrunk
		used += sep + keySize + valueSize
	}
	return out, true, nil
}

// truncateToBudget shrinks a container element or object value to its byte
// allowance. charCeiling caps a truncated string's length independent of how
// generous the surrounding budget is (types.ArrayCharLimit for array items,
// types.ObjectCharLimit for object values).
//
// Atomic values (numbers, booleans, null) that do not fit even alone fall
// back to their truncated string form.
func (t *Truncator) truncateToBudget(v any, budget, charCeiling int) (any, bool, error) {
	switch val := v.(type) {
	case string:
		out, changed := truncateRunes(val, stringTarget(budget, charCeiling))
		return out, changed, nil
	case []any:
		return t.truncateArray(val, budget)
	case map[string]any:
		return t.truncateObject(val, budget)
	default:
		size, err := EstimateSize(v)
		if err != nil {
			return nil, false, err
		}
		if size <= budget {
			return v, false, nil
		}
		s, err := atomicString(v)
		if err != nil {
			return nil, false, err
		}
		out, _ := truncateRunes(s, stringTarget(budget, charCeiling))
		return out, true, nil
	}
}

// stringTarget shapes a byte budget into a character target for an embedded
// string: the two JSON quotes come out of the allowance, and the hard ceiling
// applies regardless of budget.
func stringTarget(budget, charCeiling int) int {
	target := budget - 2
	if target > charCeiling {
		target = charCeiling
	}
	if target < 0 {
		target = 0
	}
	return target
}
