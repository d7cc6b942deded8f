package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurustar/arraystore/pkg/array"
	"github.com/zurustar/arraystore/pkg/storage"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		kind     storage.Kind
		hasKind  bool
		capacity int
		values   []any
	}{
		{"plain ints", "[1, 2, 3]", storage.KindEmpty, false, 0, []any{int64(1), int64(2), int64(3)}},
		{"explicit kind and capacity", "int/4 [1,2,3]", storage.KindInt, true, 4, []any{int64(1), int64(2), int64(3)}},
		{"mixed", `object ["a", 3.5]`, storage.KindObject, true, 0, []any{"a", 3.5}},
		{"float stays float", "[1.0, 2]", storage.KindEmpty, false, 0, []any{1.0, int64(2)}},
		{"empty", "empty []", storage.KindEmpty, true, 0, []any{}},
		{"literals", "[true, null]", storage.KindEmpty, false, 0, []any{true, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, lit.Kind)
			assert.Equal(t, tt.hasKind, lit.HasKind)
			assert.Equal(t, tt.capacity, lit.Capacity)
			assert.Equal(t, tt.values, lit.Values)
		})
	}
}

func TestParseLine_Nested(t *testing.T) {
	lit, err := ParseLine(`[1, [2, 3]]`)
	require.NoError(t, err)
	require.Len(t, lit.Values, 2)

	nested, ok := lit.Values[1].(*array.Array)
	require.True(t, ok)
	assert.Equal(t, storage.KindInt, nested.Kind())
	assert.Equal(t, []any{int64(2), int64(3)}, nested.Values())
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{
		"1, 2",
		"string [1]",
		"int/x [1]",
		"int/-1 [1]",
		"[1, 2",
		`{"a": 1}`,
		"[9223372036854775808]",
		"[1, [-9223372036854775809]]",
	} {
		_, err := ParseLine(line)
		assert.Errorf(t, err, "ParseLine(%q)", line)
	}
}

func TestParse(t *testing.T) {
	text := "# target\nint/4 [1, 2, 3]\n\n  [4, 5]\n"
	literals, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, literals, 2)
	assert.Equal(t, 2, literals[0].Line)
	assert.Equal(t, 4, literals[1].Line)

	_, err = Parse("[1]\nbogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestBuild(t *testing.T) {
	lit, err := ParseLine("int/4 [1, 2, 3]")
	require.NoError(t, err)
	a, err := lit.Build()
	require.NoError(t, err)
	assert.Equal(t, storage.KindInt, a.Kind())
	assert.Equal(t, 4, a.Capacity())
	assert.Equal(t, 3, a.Size())

	lit, err = ParseLine(`["a", 3.5]`)
	require.NoError(t, err)
	a, err = lit.Build()
	require.NoError(t, err)
	assert.Equal(t, storage.KindObject, a.Kind())

	lit, err = ParseLine("empty []")
	require.NoError(t, err)
	a, err = lit.Build()
	require.NoError(t, err)
	assert.Equal(t, storage.Empty, a.Store())

	lit, err = ParseLine("[1e300, 9223372036854775807]")
	require.NoError(t, err)
	assert.Equal(t, []any{1e300, int64(9223372036854775807)}, lit.Values)

	lit, err = ParseLine(`int ["a"]`)
	require.NoError(t, err)
	_, err = lit.Build()
	assert.Error(t, err)
}

func TestBuildIn(t *testing.T) {
	r := storage.NewDefaultRegistry(storage.WithMaxCapacity(8))

	lit, err := ParseLine("int/8 [1]")
	require.NoError(t, err)
	a, err := lit.BuildIn(r)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Capacity())

	lit, err = ParseLine("int/1000000 [1]")
	require.NoError(t, err)
	_, err = lit.BuildIn(r)
	assert.ErrorIs(t, err, storage.ErrAllocation)
}
