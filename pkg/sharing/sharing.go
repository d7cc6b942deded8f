// Package sharing tracks which runtime values are reachable from more than
// one owner and must therefore be treated as visible to other threads.
package sharing

import "go.uber.org/atomic"

// Shareable is a value that carries a shared mark. Once set, the mark is
// never cleared.
type Shareable interface {
	IsShared() bool
	MarkShared()
}

// Container is a shareable value through which further values are
// reachable.
type Container interface {
	Shareable
	EachReachable(fn func(v any))
}

// Propagator is called once before the values of source become reachable
// through target.
type Propagator interface {
	Propagate(target, source Shareable)
}

// Flag is an embeddable shared mark.
type Flag struct {
	shared atomic.Bool
}

func (f *Flag) IsShared() bool { return f.shared.Load() }
func (f *Flag) MarkShared()    { f.shared.Store(true) }

// Share marks v and every shareable value reachable from it. Values that
// are already shared are assumed to have been shared transitively and are
// not visited again, which also terminates cycles.
func Share(v any) {
	pending := []any{v}
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		s, ok := next.(Shareable)
		if !ok || s.IsShared() {
			continue
		}
		s.MarkShared()
		if c, ok := next.(Container); ok {
			c.EachReachable(func(child any) {
				pending = append(pending, child)
			})
		}
	}
}

// WriteBarrier shares the source, and everything reachable from it, when
// the target is already shared. Values written into a local target stay
// local.
type WriteBarrier struct{}

func (WriteBarrier) Propagate(target, source Shareable) {
	if target == nil || !target.IsShared() {
		return
	}
	Share(source)
}

// Nop never marks anything. It suits runtimes with a single thread.
type Nop struct{}

func (Nop) Propagate(_, _ Shareable) {}

// Recorder wraps another Propagator and counts its invocations.
type Recorder struct {
	Next  Propagator
	calls atomic.Int64
}

func (r *Recorder) Propagate(target, source Shareable) {
	r.calls.Add(1)
	if r.Next != nil {
		r.Next.Propagate(target, source)
	}
}

// Calls returns how many times Propagate has been called.
func (r *Recorder) Calls() int64 {
	return r.calls.Load()
}
