package core

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType represents the type of a field value
type FieldType uint8

const (
	StringType FieldType = iota
	IntType
	Int64Type
	Float64Type
	BoolType
	TimeType
	DurationType
	AnyType
)

// Field represents a key-value pair for structured logging. Values are
// encoded into fixed-size numeric slots wherever possible; Any is the
// fallback for nested maps, lists, and other arbitrary values.
type Field struct {
	Key     string
	Type    FieldType
	Int64   int64
	Float64 float64
	Str     string
	Any     interface{}
}

// StringValue returns the string representation of a field's value
func (f Field) StringValue() string {
	switch f.Type {
	case StringType:
		return f.Str
	case IntType, Int64Type:
		return strconv.FormatInt(f.Int64, 10)
	case Float64Type:
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case BoolType:
		return strconv.FormatBool(f.Int64 == 1)
	case TimeType:
		return time.Unix(0, f.Int64).Format(time.RFC3339)
	case DurationType:
		return time.Duration(f.Int64).String()
	case AnyType:
		return fmt.Sprintf("%v", f.Any)
	default:
		return ""
	}
}

// MergeFields overlays new fields on top of base, with later keys
// winning on collision. The base slice is never modified; the result is
// an independent copy, so mutating it afterwards cannot affect base.
// Relative ordering of base keys is preserved; genuinely new keys are
// appended in their given order.
func MergeFields(base, overlay []Field) []Field {
	merged := make([]Field, len(base), len(base)+len(overlay))
	copy(merged, base)

	for _, f := range overlay {
		replaced := false
		for i := range merged {
			if merged[i].Key == f.Key {
				merged[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}
	return merged
}
