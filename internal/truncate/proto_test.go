package truncate

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/shortstop/internal/types"
)

func TestSegmentFromProto(t *testing.T) {
	listValue, err := structpb.NewList([]any{"a", float64(2)})
	if err != nil {
		t.Fatalf("structpb.NewList error = %v", err)
	}
	structValue, err := structpb.NewStruct(map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("structpb.NewStruct error = %v", err)
	}

	cases := []struct {
		name     string
		value    *structpb.Value
		wantKind types.SegmentKind
	}{
		{"nil value", nil, types.KindNone},
		{"null", structpb.NewNullValue(), types.KindNone},
		{"bool", structpb.NewBoolValue(true), types.KindInteger},
		{"number", structpb.NewNumberValue(12.5), types.KindFloat},
		{"string", structpb.NewStringValue("hello"), types.KindString},
		{"list", structpb.NewListValue(listValue), types.KindArray},
		{"struct", structpb.NewStructValue(structValue), types.KindObject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seg, err := SegmentFromProto(tc.value)
			if err != nil {
				t.Fatalf("SegmentFromProto error = %v, want nil", err)
			}
			if seg.Kind != tc.wantKind {
				t.Errorf("kind = %s, want %s", seg.Kind, tc.wantKind)
			}
		})
	}
}

func TestSegmentFromProto_TruncatesLikeNative(t *testing.T) {
	structValue, err := structpb.NewStruct(map[string]any{
		"text":  "short",
		"count": float64(3),
	})
	if err != nil {
		t.Fatalf("structpb.NewStruct error = %v", err)
	}

	tr, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	seg, err := SegmentFromProto(structpb.NewStructValue(structValue))
	if err != nil {
		t.Fatalf("SegmentFromProto error = %v", err)
	}
	res, err := tr.Truncate(seg)
	if err != nil {
		t.Fatalf("Truncate error = %v", err)
	}
	if res.Truncated {
		t.Error("Truncated = true, want false for a small payload")
	}
	want := map[string]any{"text": "short", "count": float64(3)}
	if !reflect.DeepEqual(res.Segment.Value, want) {
		t.Errorf("value = %v, want %v", res.Segment.Value, want)
	}
}

func TestStructToMap(t *testing.T) {
	if got := StructToMap(nil); got != nil {
		t.Errorf("StructToMap(nil) = %v, want nil", got)
	}

	s, err := structpb.NewStruct(map[string]any{"a": float64(1)})
	if err != nil {
		t.Fatalf("structpb.NewStruct error = %v", err)
	}
	got := StructToMap(s)
	if !reflect.DeepEqual(got, map[string]any{"a": float64(1)}) {
		t.Errorf("StructToMap = %v, want map with a=1", got)
	}
}
