package typeattr

import "github.com/shyptr/typegraph/typekind"

// MinMaxRange is the value type of MinMaxKind: an inclusive numeric
// range, either bound optional.
type MinMaxRange struct {
	Min *float64
	Max *float64
}

// MinMaxKind carries JSON-Schema-style minimum/maximum constraints on
// a numeric type. Under union composition the range widens (the
// combined range must accept either side's values); under
// intersection it narrows.
var MinMaxKind Kind = &simple{
	name:       "min-max",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.Int || k == typekind.Double },
	inIdentity: false,
	combine: func(values []interface{}) interface{} {
		return foldRanges(values, wideMin, wideMax)
	},
	intersect: func(values []interface{}) interface{} {
		return foldRanges(values, narrowMin, narrowMax)
	},
}

func foldRanges(values []interface{}, minOp func(a, b *float64) *float64, maxOp func(a, b *float64) *float64) interface{} {
	var result *MinMaxRange
	any := false
	for _, v := range values {
		if v == nil {
			continue
		}
		any = true
		r := v.(MinMaxRange)
		if result == nil {
			result = &MinMaxRange{Min: r.Min, Max: r.Max}
			continue
		}
		result.Min = minOp(result.Min, r.Min)
		result.Max = maxOp(result.Max, r.Max)
	}
	if !any {
		return nil
	}
	return *result
}

func wideMin(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil // unbounded absorbs
	}
	if *a < *b {
		return a
	}
	return b
}

func wideMax(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	if *a > *b {
		return a
	}
	return b
}

func narrowMin(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a > *b {
		return a
	}
	return b
}

func narrowMax(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a < *b {
		return a
	}
	return b
}

// GetMinMax returns the numeric range attached to attrs.
func GetMinMax(attrs TypeAttributes) (MinMaxRange, bool) {
	v, ok := attrs.Get(MinMaxKind)
	if !ok {
		return MinMaxRange{}, false
	}
	return v.(MinMaxRange), true
}

// MinMaxLengthRange is the value type of MinMaxLengthKind.
type MinMaxLengthRange struct {
	MinLength *int
	MaxLength *int
}

// MinMaxLengthKind carries minLength/maxLength constraints on string
// (and transformed-string) types, with the same widen-on-union,
// narrow-on-intersection composition as MinMaxKind.
var MinMaxLengthKind Kind = &simple{
	name:       "min-max-length",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.String || typekind.IsTransformedString(k) },
	inIdentity: false,
	combine: func(values []interface{}) interface{} {
		return foldLengthRanges(values, wideMinInt, wideMaxInt)
	},
	intersect: func(values []interface{}) interface{} {
		return foldLengthRanges(values, narrowMinInt, narrowMaxInt)
	},
}

func foldLengthRanges(values []interface{}, minOp, maxOp func(a, b *int) *int) interface{} {
	var result *MinMaxLengthRange
	any := false
	for _, v := range values {
		if v == nil {
			continue
		}
		any = true
		r := v.(MinMaxLengthRange)
		if result == nil {
			result = &MinMaxLengthRange{MinLength: r.MinLength, MaxLength: r.MaxLength}
			continue
		}
		result.MinLength = minOp(result.MinLength, r.MinLength)
		result.MaxLength = maxOp(result.MaxLength, r.MaxLength)
	}
	if !any {
		return nil
	}
	return *result
}

func wideMinInt(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	if *a < *b {
		return a
	}
	return b
}
func wideMaxInt(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	if *a > *b {
		return a
	}
	return b
}
func narrowMinInt(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a > *b {
		return a
	}
	return b
}
func narrowMaxInt(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a < *b {
		return a
	}
	return b
}

// GetMinMaxLength returns the length range attached to attrs.
func GetMinMaxLength(attrs TypeAttributes) (MinMaxLengthRange, bool) {
	v, ok := attrs.Get(MinMaxLengthKind)
	if !ok {
		return MinMaxLengthRange{}, false
	}
	return v.(MinMaxLengthRange), true
}
