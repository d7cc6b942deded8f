package storage

import "fmt"

// Store is the backing buffer of an array. Slots past the owning array's
// size hold unspecified values.
//
// Get returns values in canonical boxed form: packed integers as int64 and
// packed floats as float64, so that a value reads the same before and after
// its array is generalized.
type Store interface {
	Kind() Kind
	Capacity() int
	Get(i int) any
	// Set stores v at slot i. It fails if v cannot be held by the store's
	// kind and panics if i is out of range.
	Set(i int, v any) error
}

type emptyStore struct{}

// Empty is the single zero-capacity store. It is immutable and shared by
// every array that has never held an element.
var Empty Store = emptyStore{}

func (emptyStore) Kind() Kind    { return KindEmpty }
func (emptyStore) Capacity() int { return 0 }

func (emptyStore) Get(i int) any {
	Violate("get", "index %d out of range for empty store", i)
	return nil
}

func (emptyStore) Set(i int, v any) error {
	Violate("set", "index %d out of range for empty store", i)
	return nil
}

// IntStore packs int32 values.
type IntStore struct {
	values []int32
}

// IntStoreOf returns an IntStore holding vs with capacity len(vs).
func IntStoreOf(vs ...int32) *IntStore {
	return &IntStore{values: append([]int32(nil), vs...)}
}

func (s *IntStore) Kind() Kind    { return KindInt }
func (s *IntStore) Capacity() int { return len(s.values) }
func (s *IntStore) Get(i int) any { return int64(s.values[i]) }

// Int returns slot i without boxing.
func (s *IntStore) Int(i int) int32 { return s.values[i] }

func (s *IntStore) Set(i int, v any) error {
	n, ok := toInt64(v)
	if !ok || KindOf(v) != KindInt {
		return fmt.Errorf("cannot store %T(%v) in %s store", v, v, KindInt)
	}
	s.values[i] = int32(n)
	return nil
}

// LongStore packs int64 values.
type LongStore struct {
	values []int64
}

// LongStoreOf returns a LongStore holding vs with capacity len(vs).
func LongStoreOf(vs ...int64) *LongStore {
	return &LongStore{values: append([]int64(nil), vs...)}
}

func (s *LongStore) Kind() Kind    { return KindLong }
func (s *LongStore) Capacity() int { return len(s.values) }
func (s *LongStore) Get(i int) any { return s.values[i] }

// Long returns slot i without boxing.
func (s *LongStore) Long(i int) int64 { return s.values[i] }

func (s *LongStore) Set(i int, v any) error {
	n, ok := toInt64(v)
	if !ok {
		return fmt.Errorf("cannot store %T(%v) in %s store", v, v, KindLong)
	}
	s.values[i] = n
	return nil
}

// DoubleStore packs float64 values.
type DoubleStore struct {
	values []float64
}

// DoubleStoreOf returns a DoubleStore holding vs with capacity len(vs).
func DoubleStoreOf(vs ...float64) *DoubleStore {
	return &DoubleStore{values: append([]float64(nil), vs...)}
}

func (s *DoubleStore) Kind() Kind    { return KindDouble }
func (s *DoubleStore) Capacity() int { return len(s.values) }
func (s *DoubleStore) Get(i int) any { return s.values[i] }

// Double returns slot i without boxing.
func (s *DoubleStore) Double(i int) float64 { return s.values[i] }

func (s *DoubleStore) Set(i int, v any) error {
	f, ok := toFloat64(v)
	if !ok {
		return fmt.Errorf("cannot store %T(%v) in %s store", v, v, KindDouble)
	}
	s.values[i] = f
	return nil
}

// ObjectStore holds boxed values of any type.
type ObjectStore struct {
	values []any
}

// ObjectStoreOf returns an ObjectStore holding vs with capacity len(vs).
func ObjectStoreOf(vs ...any) *ObjectStore {
	s := &ObjectStore{values: make([]any, len(vs))}
	for i, v := range vs {
		s.values[i] = canonical(v)
	}
	return s
}

func (s *ObjectStore) Kind() Kind    { return KindObject }
func (s *ObjectStore) Capacity() int { return len(s.values) }
func (s *ObjectStore) Get(i int) any { return s.values[i] }

func (s *ObjectStore) Set(i int, v any) error {
	s.values[i] = canonical(v)
	return nil
}

// canonical boxes numbers the way packed stores report them.
func canonical(v any) any {
	if n, ok := toInt64(v); ok {
		return n
	}
	if f, ok := toFloat64(v); ok {
		return f
	}
	return v
}
