// Package literal parses textual array literals used to build arrays from
// the command line and from fixture files.
//
// A literal is a JSON array, optionally prefixed by a storage kind and a
// capacity:
//
//	int/4 [1, 2, 3]
//	object ["a", 3.5]
//	[1, 2.5]
package literal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/zurustar/arraystore/pkg/array"
	"github.com/zurustar/arraystore/pkg/storage"
)

var jsonAPI = jsoniter.Config{UseNumber: true}.Froze()

// Literal is one parsed array literal.
type Literal struct {
	Line     int          // 1-based line number, 0 for inline literals
	Kind     storage.Kind // explicit kind, valid when HasKind
	HasKind  bool
	Capacity int // requested capacity, 0 for exactly the value count
	Values   []any
}

// Parse parses every literal in text. Blank lines and lines starting with
// '#' are skipped.
func Parse(text string) ([]Literal, error) {
	var literals []Literal
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lit, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lit.Line = i + 1
		literals = append(literals, lit)
	}
	return literals, nil
}

// ParseLine parses a single literal.
func ParseLine(line string) (Literal, error) {
	var lit Literal

	line = strings.TrimSpace(line)
	start := strings.IndexByte(line, '[')
	if start < 0 {
		return lit, fmt.Errorf("missing '[' in literal %q", line)
	}

	if header := strings.TrimSpace(line[:start]); header != "" {
		if err := lit.parseHeader(header); err != nil {
			return lit, err
		}
	}

	var raw []any
	if err := jsonAPI.UnmarshalFromString(line[start:], &raw); err != nil {
		return lit, fmt.Errorf("invalid array literal: %w", err)
	}

	values, err := convertValues(raw)
	if err != nil {
		return lit, err
	}
	lit.Values = values
	return lit, nil
}

func (l *Literal) parseHeader(header string) error {
	name, capacity, hasCapacity := strings.Cut(header, "/")
	kind, err := storage.ParseKind(name)
	if err != nil {
		return err
	}
	l.Kind = kind
	l.HasKind = true

	if hasCapacity {
		n, err := strconv.Atoi(strings.TrimSpace(capacity))
		if err != nil || n < 0 {
			return fmt.Errorf("invalid capacity %q", capacity)
		}
		l.Capacity = n
	}
	return nil
}

// Build returns a new array holding the literal's values.
func (l Literal) Build() (*array.Array, error) {
	return l.BuildIn(storage.Default())
}

// BuildIn is Build allocating from r.
func (l Literal) BuildIn(r *storage.Registry) (*array.Array, error) {
	kind := l.Kind
	if !l.HasKind {
		kind = storage.KindForValues(l.Values)
	}
	return array.FromValuesIn(r, kind, l.Capacity, l.Values...)
}

func convertValues(raw []any) ([]any, error) {
	values := make([]any, len(raw))
	for i, v := range raw {
		converted, err := convertValue(v)
		if err != nil {
			return nil, err
		}
		values[i] = converted
	}
	return values, nil
}

// convertValue turns decoded JSON into runtime values: integral numbers
// become int64, other numbers float64 and nested arrays *array.Array.
// Integers beyond int64 are rejected rather than rounded.
func convertValue(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		if !strings.ContainsAny(x.String(), ".eE") {
			return nil, fmt.Errorf("integer %s out of range", x)
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return f, nil
	case []any:
		values, err := convertValues(x)
		if err != nil {
			return nil, err
		}
		return array.FromValues(values...), nil
	default:
		return v, nil
	}
}
