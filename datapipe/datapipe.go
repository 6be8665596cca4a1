// Package datapipe provides named, typed shared-state cells with ordered
// filter chains and ordered output triggers. Policy services attach
// filters to transform a pipe's value and triggers to react to it;
// executing a pipe threads an input through every filter in registration
// order and hands the final value to every trigger.
//
// A pipe caches the authoritative upstream value, so a later execute can
// recompute downstream state from cache. Pipes are not goroutine-safe:
// they belong to the single event loop that owns all policy state.
package datapipe

// Filter is a pure value transform applied before triggers run.
type Filter[T any] func(T) T

// Trigger is a side-effecting consumer of a pipe's final value.
type Trigger[T any] func(T)

// FilterHandle identifies one attached filter.
type FilterHandle[T any] struct {
	pipe    *Pipe[T]
	fn      Filter[T]
	removed bool
}

// TriggerHandle identifies one attached trigger.
type TriggerHandle[T any] struct {
	pipe    *Pipe[T]
	fn      Trigger[T]
	removed bool
}

// Pipe is one shared-state cell.
type Pipe[T any] struct {
	name     string
	cached   T
	filters  []*FilterHandle[T]
	triggers []*TriggerHandle[T]
}

// New creates a pipe with the given initial cached value.
func New[T any](name string, initial T) *Pipe[T] {
	return &Pipe[T]{name: name, cached: initial}
}

func (p *Pipe[T]) Name() string { return p.name }

// Cached returns the pipe's authoritative upstream value.
func (p *Pipe[T]) Cached() T { return p.cached }

// AddFilter appends fn to the filter chain (FIFO order).
func (p *Pipe[T]) AddFilter(fn Filter[T]) *FilterHandle[T] {
	h := &FilterHandle[T]{pipe: p, fn: fn}
	p.filters = append(p.filters, h)
	return h
}

// AddTrigger appends fn to the output-trigger list (FIFO order).
func (p *Pipe[T]) AddTrigger(fn Trigger[T]) *TriggerHandle[T] {
	h := &TriggerHandle[T]{pipe: p, fn: fn}
	p.triggers = append(p.triggers, h)
	return h
}

// Remove detaches the filter. Idempotent; safe during an execute.
func (h *FilterHandle[T]) Remove() {
	if h == nil || h.removed {
		return
	}
	h.removed = true
	p := h.pipe
	for i, f := range p.filters {
		if f == h {
			p.filters = append(p.filters[:i], p.filters[i+1:]...)
			break
		}
	}
}

// Remove detaches the trigger. Idempotent; safe during an execute.
func (h *TriggerHandle[T]) Remove() {
	if h == nil || h.removed {
		return
	}
	h.removed = true
	p := h.pipe
	for i, t := range p.triggers {
		if t == h {
			p.triggers = append(p.triggers[:i], p.triggers[i+1:]...)
			break
		}
	}
}

// Execute threads input through the filter chain and passes the result to
// every trigger. With cacheInput set, input becomes the pipe's new cached
// value before filtering. The filtered output is returned; no value flows
// back to the invoker through the pipe itself.
//
// Re-entrant execution from within a trigger is permitted. A trigger that
// also feeds a pipe it observes must compare against the pipe's cached
// value before re-executing, or it will recurse without bound.
func (p *Pipe[T]) Execute(input T, cacheInput bool) T {
	if cacheInput {
		p.cached = input
	}
	out := input
	// Snapshot both chains so handlers may attach/detach mid-flight.
	filters := make([]*FilterHandle[T], len(p.filters))
	copy(filters, p.filters)
	for _, h := range filters {
		if h.removed {
			continue
		}
		out = h.fn(out)
	}
	triggers := make([]*TriggerHandle[T], len(p.triggers))
	copy(triggers, p.triggers)
	for _, h := range triggers {
		if h.removed {
			continue
		}
		h.fn(out)
	}
	return out
}

// ExecuteCached recomputes from the cached upstream value without
// touching the cache.
func (p *Pipe[T]) ExecuteCached() T {
	return p.Execute(p.cached, false)
}

// Replay passes the cached value to the triggers only, skipping filters.
func (p *Pipe[T]) Replay() {
	triggers := make([]*TriggerHandle[T], len(p.triggers))
	copy(triggers, p.triggers)
	for _, h := range triggers {
		if h.removed {
			continue
		}
		h.fn(p.cached)
	}
}
