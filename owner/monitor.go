// Package owner reference-counts external "hold the raw sensor" requests.
// Each requester is a remote peer identity (a bus name); an entry lives
// until the peer explicitly releases or its process disappears. The set
// is bounded: a device never has more than a handful of legitimate
// sensor owners, and an unbounded set would let a misbehaving peer grow
// daemon state forever.
package owner

import (
	"fmt"

	"luxd/errcode"
)

// DefaultCapacity bounds the tracked-owner set.
const DefaultCapacity = 16

// Monitor tracks the set of requester identities. It is owned by the
// event loop and is not goroutine-safe.
type Monitor struct {
	capacity int
	names    []string
}

// New creates a monitor. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Monitor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Monitor{capacity: capacity}
}

// Count returns the current number of tracked requesters.
func (m *Monitor) Count() int { return len(m.names) }

// Holds reports whether name is currently tracked.
func (m *Monitor) Holds(name string) bool {
	return m.index(name) >= 0
}

// Acquire adds name to the set and returns the new count. Acquiring an
// already-tracked name is idempotent. A full set fails with
// errcode.OwnerCapacity and no state change.
func (m *Monitor) Acquire(name string) (int, error) {
	if name == "" {
		return len(m.names), fmt.Errorf("owner: %w: empty requester", error(errcode.InvalidParams))
	}
	if m.index(name) >= 0 {
		return len(m.names), nil
	}
	if len(m.names) >= m.capacity {
		return len(m.names), fmt.Errorf("owner: %w: %d requesters tracked", error(errcode.OwnerCapacity), len(m.names))
	}
	m.names = append(m.names, name)
	return len(m.names), nil
}

// Release removes name and returns the new count. Releasing an unknown
// name fails with errcode.UnknownRequester and no state change.
func (m *Monitor) Release(name string) (int, error) {
	i := m.index(name)
	if i < 0 {
		return len(m.names), fmt.Errorf("owner: %w: %q", error(errcode.UnknownRequester), name)
	}
	m.names = append(m.names[:i], m.names[i+1:]...)
	return len(m.names), nil
}

// Names returns a copy of the tracked identities, in acquisition order.
func (m *Monitor) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *Monitor) index(name string) int {
	for i, n := range m.names {
		if n == name {
			return i
		}
	}
	return -1
}
