package truncate

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/shortstop/internal/types"
)

// SegmentFromProto maps a structpb.Value onto a tagged segment so engines
// that carry payloads as protobuf Structs can feed the truncator directly.
//
// Numbers arrive as float64 on the wire and keep the Float kind; structpb
// does not distinguish integral literals. A nil value maps to the None kind.
func SegmentFromProto(pv *structpb.Value) (types.Segment, error) {
	if pv == nil {
		return types.NoneSegment(), nil
	}
	switch v := pv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return types.NoneSegment(), nil
	case *structpb.Value_BoolValue:
		return types.BuildSegment(v.BoolValue)
	case *structpb.Value_NumberValue:
		return types.FloatSegment(v.NumberValue), nil
	case *structpb.Value_StringValue:
		return types.StringSegment(v.StringValue), nil
	case *structpb.Value_ListValue:
		items, ok := pv.AsInterface().([]any)
		if !ok {
			items = []any{}
		}
		return types.ArraySegment(items), nil
	case *structpb.Value_StructValue:
		m, ok := pv.AsInterface().(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		return types.ObjectSegment(m), nil
	default:
		return types.Segment{}, types.ErrUnknownType
	}
}

// StructToMap converts a structpb.Struct into the native mapping form the
// truncator and repository operate on. Nil structs yield nil.
func StructToMap(s *structpb.Struct) map[string]any {
	if s == nil {
		return nil
	}
	return s.AsMap()
}
