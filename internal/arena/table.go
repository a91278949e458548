// Package arena provides an index-addressed table whose slots are absent,
// deleted, or present. Indices are never reused: Append always grows the
// table, and Delete leaves a tombstone so exported arrays stay dense.
package arena

import "iter"

// State is the lifecycle state of one slot.
type State uint8

const (
	// Absent slots were never created in this table.
	Absent State = iota
	// Deleted slots held an entity that has been removed.
	Deleted
	// Present slots hold a live entity.
	Present
)

func (s State) String() string {
	switch s {
	case Deleted:
		return "deleted"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

type slot[T any] struct {
	state State
	val   T
}

// Table is a generic arena of T values.
type Table[T any] struct {
	slots []slot[T]
	live  int
}

// New creates an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{}
}

// Len returns the high-water mark: one past the largest index ever used.
func (t *Table[T]) Len() int {
	return len(t.slots)
}

// Count returns the number of present slots.
func (t *Table[T]) Count() int {
	return t.live
}

// State returns the state of slot i. Out-of-range indices are Absent.
func (t *Table[T]) State(i int) State {
	if i < 0 || i >= len(t.slots) {
		return Absent
	}
	return t.slots[i].state
}

// Has reports whether slot i is present.
func (t *Table[T]) Has(i int) bool {
	return t.State(i) == Present
}

// Get returns the value in slot i when it is present.
func (t *Table[T]) Get(i int) (T, bool) {
	if !t.Has(i) {
		var zero T
		return zero, false
	}
	return t.slots[i].val, true
}

// Ptr returns a pointer to the value in slot i for in-place edits, or nil
// when the slot is not present.
func (t *Table[T]) Ptr(i int) *T {
	if !t.Has(i) {
		return nil
	}
	return &t.slots[i].val
}

// Append stores v in a new slot at the end of the table and returns its index.
func (t *Table[T]) Append(v T) int {
	t.slots = append(t.slots, slot[T]{state: Present, val: v})
	t.live++
	return len(t.slots) - 1
}

// Set stores v at index i, growing the table with absent slots as needed.
func (t *Table[T]) Set(i int, v T) {
	t.grow(i)
	if t.slots[i].state != Present {
		t.live++
	}
	t.slots[i] = slot[T]{state: Present, val: v}
}

// Delete tombstones slot i. Deleting an absent slot records a tombstone.
func (t *Table[T]) Delete(i int) {
	if i < 0 {
		return
	}
	t.grow(i)
	if t.slots[i].state == Present {
		t.live--
	}
	t.slots[i] = slot[T]{state: Deleted}
}

func (t *Table[T]) grow(i int) {
	for len(t.slots) <= i {
		t.slots = append(t.slots, slot[T]{})
	}
}

// All iterates present slots in ascending index order.
func (t *Table[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range t.slots {
			if t.slots[i].state != Present {
				continue
			}
			if !yield(i, t.slots[i].val) {
				return
			}
		}
	}
}

// Indices returns the present indices in ascending order.
func (t *Table[T]) Indices() []int {
	out := make([]int, 0, t.live)
	for i := range t.slots {
		if t.slots[i].state == Present {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy. copyFn copies one value; nil copies by assignment.
func (t *Table[T]) Clone(copyFn func(T) T) *Table[T] {
	out := &Table[T]{slots: make([]slot[T], len(t.slots)), live: t.live}
	for i, s := range t.slots {
		if s.state == Present && copyFn != nil {
			s.val = copyFn(s.val)
		}
		out.slots[i] = s
	}
	return out
}

// Clear empties the table.
func (t *Table[T]) Clear() {
	t.slots = nil
	t.live = 0
}
