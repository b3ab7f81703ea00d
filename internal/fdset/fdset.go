// Package fdset implements the Monitored Descriptor Table: the flat,
// capacity-bounded set of tracee-space file descriptors that were opened
// against one of the two sentinel device paths and have not yet been
// closed. It is mutated only by the interceptor, at syscall-exit stops.
package fdset

import "github.com/venusroot/keyed/internal/keyederr"

// DefaultCapacity is the suggested bound from spec.md §3.
const DefaultCapacity = 16

// Table is a bounded set of file descriptors.
type Table struct {
	capacity int
	set      map[int]struct{}
}

// New returns an empty Table with the given capacity.
func New(capacity int) *Table {
	return &Table{
		capacity: capacity,
		set:      make(map[int]struct{}, capacity),
	}
}

// Add inserts fd into the table. It is a no-op if fd is already present.
// Add fails with *keyederr.Error of kind Capacity if the table is full and
// fd is not already a member.
func (t *Table) Add(fd int) error {
	if _, ok := t.set[fd]; ok {
		return nil
	}
	if len(t.set) >= t.capacity {
		return keyederr.New(keyederr.Capacity, "monitored descriptor table is full")
	}
	t.set[fd] = struct{}{}
	return nil
}

// Remove deletes fd from the table. It is a no-op if fd is not present.
func (t *Table) Remove(fd int) {
	delete(t.set, fd)
}

// Contains reports whether fd is currently monitored.
func (t *Table) Contains(fd int) bool {
	_, ok := t.set[fd]
	return ok
}

// Len returns the number of monitored descriptors.
func (t *Table) Len() int {
	return len(t.set)
}
