package array

import "go.uber.org/atomic"

const (
	siteValid   = 1 << 16
	siteAccepts = 1 << 17
)

// CallSite caches the compatibility decision for the last pair of
// representations seen at one place in the program. The cache only skips
// the registry lookup; results are the same as Engine.AppendAll.
type CallSite struct {
	engine *Engine
	last   atomic.Uint32
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCallSite returns a call site appending through e.
func (e *Engine) NewCallSite() *CallSite {
	return &CallSite{engine: e}
}

// AppendAll appends source onto target, see Engine.AppendAll.
func (c *CallSite) AppendAll(target, source *Array) (*Array, error) {
	checkOperands(target, source)
	return c.engine.appendAll(target, source, c.accepts(target, source))
}

func (c *CallSite) accepts(target, source *Array) bool {
	key := uint32(target.Kind()) | uint32(source.Kind())<<8 | siteValid
	if last := c.last.Load(); last&^siteAccepts == key {
		c.hits.Add(1)
		return last&siteAccepts != 0
	}

	c.misses.Add(1)
	accepts := c.engine.registry.AcceptsAllValues(target.store, source.store)
	if accepts {
		key |= siteAccepts
	}
	c.last.Store(key)
	return accepts
}

// Hits returns how many calls reused the cached decision.
func (c *CallSite) Hits() int64 { return c.hits.Load() }

// Misses returns how many calls had to consult the registry.
func (c *CallSite) Misses() int64 { return c.misses.Load() }
