package storage

import (
	"fmt"
	"sync"
)

// DefaultMaxCapacity is the largest store a registry allocates unless
// configured otherwise.
const DefaultMaxCapacity = 1<<31 - 1 - 8

// Registry maps each Kind to its Strategy and owns the generalization
// table. A Registry is populated before use; after that it is read-only and
// safe for concurrent use.
type Registry struct {
	strategies  [numKinds]Strategy
	joins       map[[2]Kind]Kind
	maxCapacity int
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxCapacity limits the capacity of any store the registry allocates.
func WithMaxCapacity(n int) Option {
	return func(r *Registry) {
		r.maxCapacity = n
	}
}

// NewRegistry returns a registry with no strategies.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		joins:       make(map[[2]Kind]Kind),
		maxCapacity: DefaultMaxCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry returns a validated registry holding every built-in
// strategy and the full generalization table.
func NewDefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	for _, s := range []Strategy{emptyStrategy{}, intStrategy{}, longStrategy{}, doubleStrategy{}, objectStrategy{}} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}

	kinds := Kinds()
	for _, a := range kinds {
		mustJoin(r, a, a, a)
		mustJoin(r, KindEmpty, a, a)
		mustJoin(r, a, KindObject, KindObject)
	}
	mustJoin(r, KindInt, KindLong, KindLong)
	mustJoin(r, KindInt, KindDouble, KindObject)
	mustJoin(r, KindLong, KindDouble, KindObject)

	if err := r.Validate(); err != nil {
		panic(err)
	}
	return r
}

func mustJoin(r *Registry, a, b, join Kind) {
	if err := r.RegisterJoin(a, b, join); err != nil {
		panic(err)
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry built by NewDefaultRegistry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}

// Register adds a strategy for its kind.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return fmt.Errorf("cannot register nil strategy")
	}
	kind := s.Kind()
	if !kind.Valid() {
		return fmt.Errorf("cannot register strategy for unknown %s", kind)
	}
	if r.strategies[kind] != nil {
		return fmt.Errorf("strategy for %s already registered", kind)
	}
	if !s.Accepts(kind) {
		return fmt.Errorf("strategy for %s does not accept its own kind", kind)
	}
	r.strategies[kind] = s
	return nil
}

// RegisterJoin records join as the generalization of a and b. The join's
// strategy must already be registered and accept both kinds.
func (r *Registry) RegisterJoin(a, b, join Kind) error {
	if !join.Valid() || r.strategies[join] == nil {
		return fmt.Errorf("join %s of %s and %s has no registered strategy", join, a, b)
	}
	s := r.strategies[join]
	if !s.Accepts(a) || !s.Accepts(b) {
		return fmt.Errorf("join %s does not accept both %s and %s", join, a, b)
	}
	r.joins[[2]Kind{a, b}] = join
	r.joins[[2]Kind{b, a}] = join
	return nil
}

// Validate checks that every pair of registered kinds has a join and that
// each join is the least kind accepting both sides.
func (r *Registry) Validate() error {
	var kinds []Kind
	for _, k := range Kinds() {
		if r.strategies[k] != nil {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		return fmt.Errorf("no strategies registered")
	}

	for _, a := range kinds {
		for _, b := range kinds {
			join, ok := r.joins[[2]Kind{a, b}]
			if !ok {
				return fmt.Errorf("no generalization registered for %s and %s", a, b)
			}
			for _, k := range kinds {
				s := r.strategies[k]
				if s.Accepts(a) && s.Accepts(b) && !s.Accepts(join) {
					return fmt.Errorf("join %s of %s and %s is more general than %s", join, a, b, k)
				}
			}
		}
	}
	return nil
}

// MaxCapacity returns the allocation limit.
func (r *Registry) MaxCapacity() int {
	return r.maxCapacity
}

// Strategy returns the strategy registered for kind.
func (r *Registry) Strategy(kind Kind) Strategy {
	if !kind.Valid() || r.strategies[kind] == nil {
		Violate("strategy", "no strategy registered for %s", kind)
	}
	return r.strategies[kind]
}

// Capacity returns the number of slots allocated in s.
func (r *Registry) Capacity(s Store) int {
	return s.Capacity()
}

// AcceptsAllValues reports whether every value held by other can be stored
// in target's representation. Only the kinds are compared.
func (r *Registry) AcceptsAllValues(target, other Store) bool {
	return r.Strategy(target.Kind()).Accepts(other.Kind())
}

// Join returns the least kind accepting both a and b.
func (r *Registry) Join(a, b Kind) Kind {
	join, ok := r.joins[[2]Kind{a, b}]
	if !ok {
		Violate("generalizeForStore", "no generalization registered for %s and %s", a, b)
	}
	return join
}

// Allocate returns a new zeroed store of kind with the given capacity.
func (r *Registry) Allocate(kind Kind, capacity int) (Store, error) {
	if capacity < 0 {
		Violate("allocate", "negative capacity %d", capacity)
	}
	if capacity > r.maxCapacity {
		return nil, allocationError(kind, capacity, r.maxCapacity)
	}
	return r.Strategy(kind).New(capacity), nil
}

// Expand returns a store of the same kind as s with at least capacity
// slots and s's contents at their original indices. s is not modified.
func (r *Registry) Expand(s Store, capacity int) (Store, error) {
	if capacity < 0 {
		Violate("expand", "negative capacity %d", capacity)
	}
	if s.Kind() == KindEmpty && capacity > 0 {
		Violate("expand", "empty store cannot grow to %d", capacity)
	}
	if current := s.Capacity(); capacity < current {
		capacity = current
	}
	if capacity > r.maxCapacity {
		return nil, allocationError(s.Kind(), capacity, r.maxCapacity)
	}
	return r.Strategy(s.Kind()).Expand(s, capacity), nil
}

// CopyContents copies length slots of src starting at srcStart into dst
// starting at dstStart. Ranges outside either store, or a destination that
// cannot hold the source kind, are contract violations.
func (r *Registry) CopyContents(src Store, srcStart int, dst Store, dstStart, length int) {
	if srcStart < 0 || dstStart < 0 || length < 0 {
		Violate("copyContents", "negative range (src %d, dst %d, length %d)", srcStart, dstStart, length)
	}
	if srcStart+length > src.Capacity() || srcStart+length < srcStart {
		Violate("copyContents", "source range [%d, %d) exceeds capacity %d", srcStart, srcStart+length, src.Capacity())
	}
	if dstStart+length > dst.Capacity() || dstStart+length < dstStart {
		Violate("copyContents", "destination range [%d, %d) exceeds capacity %d", dstStart, dstStart+length, dst.Capacity())
	}
	if !r.Strategy(dst.Kind()).Accepts(src.Kind()) {
		Violate("copyContents", "%s store cannot hold %s values", dst.Kind(), src.Kind())
	}
	if length == 0 {
		return
	}
	r.Strategy(src.Kind()).CopyContents(src, srcStart, dst, dstStart, length)
}

// Descriptor names a representation chosen by GeneralizeForStore and
// allocates fresh stores of it.
type Descriptor struct {
	kind     Kind
	registry *Registry
}

// Kind returns the chosen representation.
func (d Descriptor) Kind() Kind {
	return d.kind
}

// Allocate returns a new store of the descriptor's kind.
func (d Descriptor) Allocate(capacity int) (Store, error) {
	return d.registry.Allocate(d.kind, capacity)
}

// GeneralizeForStore returns the least representation able to hold the
// values of both a and b.
func (r *Registry) GeneralizeForStore(a, b Store) Descriptor {
	return Descriptor{kind: r.Join(a.Kind(), b.Kind()), registry: r}
}
