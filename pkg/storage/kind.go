// Package storage provides the concrete backing representations of runtime
// arrays and the strategies that copy, expand and generalize them.
package storage

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies one storage representation.
type Kind uint8

const (
	// KindEmpty is the zero-capacity representation shared by every empty array.
	KindEmpty Kind = iota
	// KindInt packs int32 values.
	KindInt
	// KindLong packs int64 values.
	KindLong
	// KindDouble packs float64 values.
	KindDouble
	// KindObject boxes arbitrary values.
	KindObject

	numKinds
)

var kindNames = [numKinds]string{
	KindEmpty:  "empty",
	KindInt:    "int",
	KindLong:   "long",
	KindDouble: "double",
	KindObject: "object",
}

// Kinds returns every representation kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := KindEmpty; k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < numKinds
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name such as "int" or "object" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindEmpty, fmt.Errorf("unknown storage kind: %q", s)
}

// KindOf returns the narrowest kind able to hold v.
func KindOf(v any) Kind {
	if n, ok := toInt64(v); ok {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return KindInt
		}
		return KindLong
	}
	if _, ok := toFloat64(v); ok {
		return KindDouble
	}
	return KindObject
}

// KindForValues returns the narrowest kind able to hold every value in vs,
// using the default registry's generalization table.
func KindForValues(vs []any) Kind {
	r := Default()
	kind := KindEmpty
	for _, v := range vs {
		kind = r.Join(kind, KindOf(v))
		if kind == KindObject {
			break
		}
	}
	return kind
}

// toInt64 converts Go integer types to int64. uint values above
// math.MaxInt64 are not integers for storage purposes and are boxed.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}
