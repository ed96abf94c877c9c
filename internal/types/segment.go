package types

// SegmentKind tags the variant a Segment carries. The set is closed; the
// truncator switches over it exhaustively and rejects anything else with
// ErrUnknownType rather than guessing.
type SegmentKind int

const (
	KindInvalid SegmentKind = iota
	KindInteger
	KindFloat
	KindNone
	KindFile
	KindArrayFile
	KindString
	KindArray
	KindObject
)

// String returns the kind name for diagnostics.
func (k SegmentKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindNone:
		return "none"
	case KindFile:
		return "file"
	case KindArrayFile:
		return "array[file]"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// FileRef is an opaque reference to an externally stored file. File segments
// are never JSON-expanded or truncated; their size is bounded and not
// controllable by this system.
type FileRef struct {
	ID        FileID `json:"id"`
	Name      string `json:"name,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// Segment is a tagged value passed into the truncation entry point.
// Segments are immutable from the truncator's point of view: truncation
// produces new segments, never mutates in place.
//
// Value holds the native JSON representation for the kind:
// int64 (Integer), float64 (Float), nil (None), FileRef (File),
// []FileRef (ArrayFile), string (String), []any (Array),
// map[string]any (Object).
type Segment struct {
	Kind  SegmentKind
	Value any
}

// IntegerSegment wraps an integer value.
func IntegerSegment(v int64) Segment { return Segment{Kind: KindInteger, Value: v} }

// FloatSegment wraps a float value.
func FloatSegment(v float64) Segment { return Segment{Kind: KindFloat, Value: v} }

// NoneSegment wraps the null value.
func NoneSegment() Segment { return Segment{Kind: KindNone, Value: nil} }

// FileSegment wraps an opaque file reference.
func FileSegment(f FileRef) Segment { return Segment{Kind: KindFile, Value: f} }

// ArrayFileSegment wraps a list of opaque file references.
func ArrayFileSegment(fs []FileRef) Segment { return Segment{Kind: KindArrayFile, Value: fs} }

// StringSegment wraps a string value.
func StringSegment(s string) Segment { return Segment{Kind: KindString, Value: s} }

// ArraySegment wraps a sequence of JSON-compatible values.
func ArraySegment(items []any) Segment { return Segment{Kind: KindArray, Value: items} }

// ObjectSegment wraps a mapping of string keys to JSON-compatible values.
func ObjectSegment(m map[string]any) Segment { return Segment{Kind: KindObject, Value: m} }

// BuildSegment maps a native JSON-decoded value onto a tagged segment.
// Covers the types encoding/json produces plus the Go integer types domain
// code passes directly. Unsupported values yield ErrUnknownType.
func BuildSegment(v any) (Segment, error) {
	switch val := v.(type) {
	case nil:
		return NoneSegment(), nil
	case bool:
		// Booleans ride the Integer kind; the dispatcher coerces to 0/1.
		return Segment{Kind: KindInteger, Value: val}, nil
	case int:
		return IntegerSegment(int64(val)), nil
	case int64:
		return IntegerSegment(val), nil
	case float64:
		return FloatSegment(val), nil
	case string:
		return StringSegment(val), nil
	case []any:
		return ArraySegment(val), nil
	case map[string]any:
		return ObjectSegment(val), nil
	case FileRef:
		return FileSegment(val), nil
	case []FileRef:
		return ArrayFileSegment(val), nil
	default:
		return Segment{}, ErrUnknownType
	}
}
