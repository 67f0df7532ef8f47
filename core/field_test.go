package core

import (
	"testing"
	"time"
)

func TestFieldStringValue(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"string", Field{Type: StringType, Str: "hello"}, "hello"},
		{"int", Field{Type: IntType, Int64: 42}, "42"},
		{"int64", Field{Type: Int64Type, Int64: -7}, "-7"},
		{"float", Field{Type: Float64Type, Float64: 3.5}, "3.5"},
		{"bool true", Field{Type: BoolType, Int64: 1}, "true"},
		{"bool false", Field{Type: BoolType, Int64: 0}, "false"},
		{"duration", Field{Type: DurationType, Int64: int64(time.Second)}, "1s"},
		{"any", Field{Type: AnyType, Any: []int{1, 2}}, "[1 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.StringValue(); got != tt.want {
				t.Errorf("StringValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeFields_LaterKeysWin(t *testing.T) {
	base := []Field{
		{Key: "a", Type: StringType, Str: "1"},
		{Key: "b", Type: StringType, Str: "2"},
	}
	overlay := []Field{
		{Key: "b", Type: StringType, Str: "overridden"},
		{Key: "c", Type: StringType, Str: "3"},
	}

	merged := MergeFields(base, overlay)

	if len(merged) != 3 {
		t.Fatalf("Expected 3 merged fields, got %d", len(merged))
	}
	if merged[0].Key != "a" || merged[0].Str != "1" {
		t.Errorf("Unexpected first field: %+v", merged[0])
	}
	if merged[1].Key != "b" || merged[1].Str != "overridden" {
		t.Errorf("Overlay should win for key b, got %+v", merged[1])
	}
	if merged[2].Key != "c" || merged[2].Str != "3" {
		t.Errorf("Unexpected appended field: %+v", merged[2])
	}
}

func TestMergeFields_BaseUntouched(t *testing.T) {
	base := []Field{{Key: "a", Type: StringType, Str: "original"}}
	merged := MergeFields(base, []Field{{Key: "a", Type: StringType, Str: "new"}})

	if base[0].Str != "original" {
		t.Errorf("MergeFields mutated the base slice: %+v", base[0])
	}

	// Mutating the result must not reach back into base either.
	merged[0].Str = "mutated"
	if base[0].Str != "original" {
		t.Errorf("Result mutation leaked into base: %+v", base[0])
	}
}

func TestMergeFields_EmptyInputs(t *testing.T) {
	if got := MergeFields(nil, nil); len(got) != 0 {
		t.Errorf("Expected empty merge, got %v", got)
	}
	got := MergeFields(nil, []Field{{Key: "a"}})
	if len(got) != 1 || got[0].Key != "a" {
		t.Errorf("Expected single field, got %v", got)
	}
}
