// Package truncate shrinks JSON-compatible values to a configured byte budget
// before they are persisted or transmitted.
//
// Three independent limits apply: total compact-JSON bytes, per-string
// character count, and per-container element count. Limits are applied
// recursively and deterministically; object keys are always walked in
// lexicographic order, so identical input and configuration produce identical
// output regardless of insertion order.
package truncate

import (
	"fmt"
	"strconv"

	"github.com/solatis/shortstop/internal/types"
)

// EstimateSize computes the exact compact-JSON byte size of a value without
// materializing the encoding.
//
// Counting rules (all additive):
//   - string: UTF-8 byte length + 2 quotes. Escaping overhead is not
//     counted; accepted approximation.
//   - integer/float: length of the decimal textual representation.
//   - boolean: 4 for true, 5 for false. null: 4.
//   - sequence of n elements: 2 brackets + element sizes + n-1 commas.
//   - mapping of n entries: 2 braces + per entry key size + 1 colon +
//     value size, + n-1 commas.
//
// Fails with types.ErrMaxDepthExceeded beyond types.MaxEstimateDepth and
// types.ErrUnknownType outside the JSON variant set. Estimation never
// guesses: both errors propagate to the caller.
func EstimateSize(v any) (int, error) {
	return estimateSize(v, 0)
}

func estimateSize(v any, depth int) (int, error) {
	if depth > types.MaxEstimateDepth {
		return 0, types.ErrMaxDepthExceeded
	}

	switch val := v.(type) {
	case nil:
		return 4, nil
	case bool:
		if val {
			return 4, nil
		}
		return 5, nil
	case string:
		return len(val) + 2, nil
	case int:
		return len(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return len(strconv.FormatInt(val, 10)), nil
	case float64:
		return len(formatFloat(val)), nil
	case []any:
		size := 2
		for i, item := range val {
			itemSize, err := estimateSize(item, depth+1)
			if err != nil {
				return 0, err
			}
			size += itemSize
			if i > 0 {
				size++
			}
		}
		return size, nil
	case map[string]any:
		size := 2
		first := true
		for key, value := range val {
			valueSize, err := estimateSize(value, depth+1)
			if err != nil {
				return 0, err
			}
			size += len(key) + 2 + 1 + valueSize
			if !first {
				size++
			}
			first = false
		}
		return size, nil
	default:
		return 0, fmt.Errorf("%w: %T", types.ErrUnknownType, v)
	}
}

// formatFloat renders a float the way the estimator counts it. Plain decimal
// notation may over-estimate versus encoding/json's exponent form for extreme
// magnitudes; over-estimation is safe, under-estimation is not.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// atomicString renders a non-container, non-string value as its textual form.
// Used when an atomic value does not fit its byte budget even alone and must
// be represented as a truncated string instead.
func atomicString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return formatFloat(val), nil
	default:
		return "", fmt.Errorf("%w: %T", types.ErrUnknownType, v)
	}
}
