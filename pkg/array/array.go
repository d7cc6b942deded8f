// Package array provides the runtime array value and the engine that
// appends one array onto another.
package array

import (
	"fmt"
	"strings"

	"github.com/zurustar/arraystore/pkg/sharing"
	"github.com/zurustar/arraystore/pkg/storage"
)

// Array is a runtime array: a size and a store with at least size slots.
// Slots at or past size are never read.
//
// An Array is not safe for concurrent mutation. Callers hold exclusive
// access to an array while appending to it.
type Array struct {
	sharing.Flag

	size  int
	store storage.Store
}

// New returns an empty array backed by the shared empty store.
func New() *Array {
	return &Array{store: storage.Empty}
}

// WithStore returns an array over store whose first size slots are valid.
func WithStore(store storage.Store, size int) *Array {
	if size < 0 || size > store.Capacity() {
		storage.Violate("array", "size %d out of range for %s store of capacity %d", size, store.Kind(), store.Capacity())
	}
	return &Array{store: store, size: size}
}

// FromValues returns an array holding vs in the narrowest representation
// that accepts all of them, with capacity equal to len(vs).
func FromValues(vs ...any) *Array {
	a, err := FromValuesWithKind(storage.KindForValues(vs), len(vs), vs...)
	if err != nil {
		// The inferred kind accepts every value and len(vs) slices already exist.
		panic(err)
	}
	return a
}

// FromValuesWithKind returns an array of the given kind and capacity
// holding vs. It fails if a value cannot be stored in kind.
func FromValuesWithKind(kind storage.Kind, capacity int, vs ...any) (*Array, error) {
	return FromValuesIn(storage.Default(), kind, capacity, vs...)
}

// FromValuesIn is FromValuesWithKind allocating from r, so r's capacity
// limit applies.
func FromValuesIn(r *storage.Registry, kind storage.Kind, capacity int, vs ...any) (*Array, error) {
	if len(vs) == 0 && kind == storage.KindEmpty {
		return New(), nil
	}
	if capacity < len(vs) {
		capacity = len(vs)
	}
	if kind == storage.KindEmpty {
		return nil, fmt.Errorf("empty storage cannot hold %d values", len(vs))
	}

	store, err := r.Allocate(kind, capacity)
	if err != nil {
		return nil, err
	}
	for i, v := range vs {
		if err := store.Set(i, v); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return &Array{store: store, size: len(vs)}, nil
}

// Size returns the number of elements.
func (a *Array) Size() int { return a.size }

// Store returns the current backing store.
func (a *Array) Store() storage.Store { return a.store }

// Kind returns the representation of the backing store.
func (a *Array) Kind() storage.Kind { return a.store.Kind() }

// Capacity returns the number of slots in the backing store.
func (a *Array) Capacity() int { return a.store.Capacity() }

// Get returns element i, or false if i is out of range.
func (a *Array) Get(i int) (any, bool) {
	if i < 0 || i >= a.size {
		return nil, false
	}
	return a.store.Get(i), true
}

// Values returns a copy of the elements in boxed form.
func (a *Array) Values() []any {
	values := make([]any, a.size)
	for i := range values {
		values[i] = a.store.Get(i)
	}
	return values
}

// EachReachable calls fn with every element. Packed stores hold no
// references, so only boxed elements are visited.
func (a *Array) EachReachable(fn func(v any)) {
	if a.store.Kind() != storage.KindObject {
		return
	}
	for i := 0; i < a.size; i++ {
		fn(a.store.Get(i))
	}
}

// String formats the elements. An array nested inside itself is printed
// as [...].
func (a *Array) String() string {
	var b strings.Builder
	a.format(&b, map[*Array]bool{})
	return b.String()
}

func (a *Array) format(b *strings.Builder, printing map[*Array]bool) {
	if printing[a] {
		b.WriteString("[...]")
		return
	}
	printing[a] = true
	defer delete(printing, a)

	b.WriteByte('[')
	for i := 0; i < a.size; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		switch v := a.store.Get(i).(type) {
		case *Array:
			v.format(b, printing)
		case string:
			fmt.Fprintf(b, "%q", v)
		default:
			fmt.Fprintf(b, "%v", v)
		}
	}
	b.WriteByte(']')
}

func (a *Array) setSize(size int) {
	a.size = size
}

// setStoreAndSize installs a fully populated store.
func (a *Array) setStoreAndSize(store storage.Store, size int) {
	a.store = store
	a.size = size
}

var (
	_ sharing.Container = (*Array)(nil)
	_ fmt.Stringer      = (*Array)(nil)
)
