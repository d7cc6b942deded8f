package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurustar/arraystore/pkg/storage"
)

func TestNew(t *testing.T) {
	a := New()
	assert.Equal(t, 0, a.Size())
	assert.Equal(t, 0, a.Capacity())
	assert.Equal(t, storage.KindEmpty, a.Kind())
	assert.Equal(t, storage.Empty, a.Store())
	assert.False(t, a.IsShared())
}

func TestFromValues(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		kind   storage.Kind
	}{
		{"no values", nil, storage.KindEmpty},
		{"small ints", []any{1, 2, 3}, storage.KindInt},
		{"wide ints", []any{1, int64(1) << 40}, storage.KindLong},
		{"floats", []any{1.5, 2.0}, storage.KindDouble},
		{"mixed", []any{1, "a", 3.5}, storage.KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := FromValues(tt.values...)
			assert.Equal(t, tt.kind, a.Kind())
			assert.Equal(t, len(tt.values), a.Size())
			assert.Equal(t, len(tt.values), a.Capacity())
			for i, v := range tt.values {
				got, ok := a.Get(i)
				require.True(t, ok)
				assert.Equal(t, storage.KindOf(v), storage.KindOf(got))
			}
		})
	}
}

func TestFromValuesWithKind(t *testing.T) {
	a, err := FromValuesWithKind(storage.KindLong, 8, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, storage.KindLong, a.Kind())
	assert.Equal(t, 2, a.Size())
	assert.Equal(t, 8, a.Capacity())

	a, err = FromValuesWithKind(storage.KindObject, 0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Capacity(), "capacity never below the value count")

	_, err = FromValuesWithKind(storage.KindInt, 2, 1, "a")
	assert.Error(t, err)

	_, err = FromValuesWithKind(storage.KindEmpty, 0, 1)
	assert.Error(t, err)

	a, err = FromValuesWithKind(storage.KindEmpty, 4)
	require.NoError(t, err)
	assert.Equal(t, storage.Empty, a.Store())
}

func TestFromValuesIn(t *testing.T) {
	r := storage.NewDefaultRegistry(storage.WithMaxCapacity(8))

	a, err := FromValuesIn(r, storage.KindInt, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Capacity())

	_, err = FromValuesIn(r, storage.KindInt, 1000000, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrAllocation)
}

func TestString_SelfReference(t *testing.T) {
	x := FromValues("a")
	_, err := AppendAll(x, FromValues(x))
	require.NoError(t, err)
	assert.Equal(t, `["a", [...]]`, x.String())

	y := FromValues(1)
	outer := FromValues(y, y)
	assert.Equal(t, "[[1], [1]]", outer.String(), "siblings are not cycles")
}

func TestWithStore(t *testing.T) {
	a := WithStore(storage.IntStoreOf(1, 2, 3, 0), 3)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, a.Values())

	_, ok := a.Get(3)
	assert.False(t, ok, "slots past size are not readable")
	_, ok = a.Get(-1)
	assert.False(t, ok)

	assert.Panics(t, func() { WithStore(storage.IntStoreOf(1), 2) })
}

func TestString(t *testing.T) {
	inner := FromValues(1, 2)
	a := FromValues(1, "a", 3.5, inner)
	assert.Equal(t, `[1, "a", 3.5, [1, 2]]`, a.String())
	assert.Equal(t, "[]", New().String())
}

func TestEachReachable(t *testing.T) {
	var seen []any
	FromValues(1, 2).EachReachable(func(v any) { seen = append(seen, v) })
	assert.Empty(t, seen, "packed stores hold no references")

	inner := FromValues(1)
	a := WithStore(storage.ObjectStoreOf("a", inner, "garbage"), 2)
	a.EachReachable(func(v any) { seen = append(seen, v) })
	assert.Equal(t, []any{"a", inner}, seen)
}
