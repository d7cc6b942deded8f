package array

import (
	"log/slog"
	"math"
	"sync"

	"github.com/zurustar/arraystore/pkg/growth"
	"github.com/zurustar/arraystore/pkg/logger"
	"github.com/zurustar/arraystore/pkg/sharing"
	"github.com/zurustar/arraystore/pkg/storage"
)

// Path identifies the algorithm an append takes.
type Path int

const (
	// PathNoop: the source is empty and the target is left untouched.
	PathNoop Path = iota
	// PathSame: the target store accepts the source and has room.
	PathSame
	// PathSameGrow: the target store accepts the source but must be expanded.
	PathSameGrow
	// PathGeneralize: the target is rebuilt in a more general representation.
	PathGeneralize
)

var pathNames = map[Path]string{
	PathNoop:       "noop",
	PathSame:       "same",
	PathSameGrow:   "same_grow",
	PathGeneralize: "generalize",
}

func (p Path) String() string {
	if name, ok := pathNames[p]; ok {
		return name
	}
	return "unknown"
}

// Engine appends arrays onto arrays. An Engine holds no per-call state and
// may be shared; the arrays it mutates may not.
type Engine struct {
	registry   *storage.Registry
	policy     growth.Policy
	propagator sharing.Propagator
	log        *slog.Logger
	metrics    *Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry sets the storage registry.
func WithRegistry(r *storage.Registry) EngineOption {
	return func(e *Engine) { e.registry = r }
}

// WithGrowthPolicy sets the capacity growth policy.
func WithGrowthPolicy(p growth.Policy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithPropagator sets the sharing propagator.
func WithPropagator(p sharing.Propagator) EngineOption {
	return func(e *Engine) { e.propagator = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMetrics enables metrics.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine returns an engine using the default registry, the default
// geometric growth policy and the write-barrier propagator.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		registry:   storage.Default(),
		policy:     growth.Default(),
		propagator: sharing.WriteBarrier{},
		log:        logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// AppendAll appends source onto target with a default engine.
func AppendAll(target, source *Array) (*Array, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine.AppendAll(target, source)
}

// Plan returns the path AppendAll would take for target and source.
func (e *Engine) Plan(target, source *Array) Path {
	checkOperands(target, source)
	return e.plan(target, source, e.registry.AcceptsAllValues(target.store, source.store))
}

func (e *Engine) plan(target, source *Array, accepts bool) Path {
	switch {
	case source.size == 0:
		return PathNoop
	case !accepts:
		return PathGeneralize
	case target.size+source.size > e.registry.Capacity(target.store):
		return PathSameGrow
	default:
		return PathSame
	}
}

// AppendAll appends every element of source onto target and returns
// target. source is never modified. Appending an array onto itself is a
// contract violation.
//
// The only error is an allocation failure, in which case target is left
// exactly as it was.
func (e *Engine) AppendAll(target, source *Array) (*Array, error) {
	checkOperands(target, source)
	return e.appendAll(target, source, e.registry.AcceptsAllValues(target.store, source.store))
}

func checkOperands(target, source *Array) {
	if target == nil || source == nil {
		storage.Violate("appendAll", "nil array")
	}
	if target == source {
		storage.Violate("appendAll", "cannot append an array onto itself")
	}
}

func (e *Engine) appendAll(target, source *Array, accepts bool) (*Array, error) {
	path := e.plan(target, source, accepts)

	var err error
	switch path {
	case PathNoop:
		// Nothing becomes reachable; keep the store, even the immutable empty one.
	case PathSame, PathSameGrow:
		err = e.appendSameKind(target, source)
	case PathGeneralize:
		err = e.appendGeneralized(target, source)
	}

	if err != nil {
		e.log.Warn("append failed", "path", path, "target_kind", target.Kind(), "source_kind", source.Kind(),
			"target_size", target.size, "source_size", source.size, "error", err)
		e.metrics.allocationFailed()
		return target, err
	}

	e.log.Debug("append", "path", path, "kind", target.Kind(), "size", target.size, "capacity", target.Capacity())
	e.metrics.observe(path, source.size)
	return target, nil
}

func (e *Engine) appendSameKind(target, source *Array) error {
	oldSize := target.size
	otherSize := source.size
	newSize, err := addSizes(target, oldSize, otherSize)
	if err != nil {
		return err
	}
	store := target.store
	length := e.registry.Capacity(store)

	if newSize > length {
		newStore, err := e.registry.Expand(store, e.grownCapacity(length, newSize))
		if err != nil {
			return err
		}
		e.propagator.Propagate(target, source)
		e.registry.CopyContents(source.store, 0, newStore, oldSize, otherSize)
		target.setStoreAndSize(newStore, newSize)
		return nil
	}

	e.propagator.Propagate(target, source)
	e.registry.CopyContents(source.store, 0, store, oldSize, otherSize)
	target.setSize(newSize)
	return nil
}

func (e *Engine) appendGeneralized(target, source *Array) error {
	oldSize := target.size
	otherSize := source.size
	newSize, err := addSizes(target, oldSize, otherSize)
	if err != nil {
		return err
	}

	generalized := e.registry.GeneralizeForStore(target.store, source.store)
	newStore, err := generalized.Allocate(newSize)
	if err != nil {
		return err
	}
	e.metrics.generalized(target.Kind(), generalized.Kind())

	e.propagator.Propagate(target, source)
	e.registry.CopyContents(target.store, 0, newStore, 0, oldSize)
	e.registry.CopyContents(source.store, 0, newStore, oldSize, otherSize)
	target.setStoreAndSize(newStore, newSize)
	return nil
}

// grownCapacity applies the growth policy, clamped to what the registry
// can allocate as long as newSize itself fits.
func (e *Engine) grownCapacity(length, newSize int) int {
	capacity := e.policy.Capacity(length, newSize)
	if capacity < newSize {
		storage.Violate("growth", "policy returned capacity %d below required %d", capacity, newSize)
	}
	if limit := e.registry.MaxCapacity(); capacity > limit && newSize <= limit {
		capacity = limit
	}
	return capacity
}

func addSizes(target *Array, oldSize, otherSize int) (int, error) {
	if oldSize > math.MaxInt-otherSize {
		return 0, storage.Overflow(target.Kind(), oldSize, otherSize)
	}
	return oldSize + otherSize, nil
}
