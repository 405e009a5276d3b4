// Package arena stores values behind generation-checked handles.
//
// A Handle stays valid until its value is removed. Removing bumps the
// slot generation, so an old Handle never resolves to whatever later
// reuses the slot.
package arena

import "errors"

// ErrStaleHandle is returned for handles that were never issued or whose
// value has been removed.
var ErrStaleHandle = errors.New("arena: stale or unknown handle")

// Handle encodes both the slot generation (upper 32 bits) and the slot
// index (lower 32 bits). The zero Handle is never issued.
type Handle uint64

func NewHandle(generation uint32, index uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the generation from the handle
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// Index extracts the slot index from the handle
func (h Handle) Index() uint32 {
	return uint32(h & 0xFFFFFFFF)
}

func (h Handle) IsZero() bool { return h == 0 }

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena is a slot list with a free list. Not safe for concurrent use.
type Arena[T any] struct {
	slots     []slot[T]
	freeSlots []uint32
	live      int
}

func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{slots: make([]slot[T], 0, capacity)}
}

// Insert stores v and returns its handle, reusing freed slots first.
func (a *Arena[T]) Insert(v T) Handle {
	a.live++

	if n := len(a.freeSlots); n > 0 {
		idx := a.freeSlots[n-1]
		a.freeSlots = a.freeSlots[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.live = true
		return NewHandle(s.generation, idx)
	}

	idx := uint32(len(a.slots))
	a.slots = append(a.slots, slot[T]{value: v, generation: 1, live: true})
	return NewHandle(1, idx)
}

func (a *Arena[T]) lookup(h Handle) *slot[T] {
	idx := h.Index()
	if h.IsZero() || int(idx) >= len(a.slots) {
		return nil
	}
	s := &a.slots[idx]
	if !s.live || s.generation != h.Generation() {
		return nil
	}
	return s
}

func (a *Arena[T]) Get(h Handle) (T, bool) {
	s := a.lookup(h)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

func (a *Arena[T]) Contains(h Handle) bool { return a.lookup(h) != nil }

func (a *Arena[T]) Set(h Handle, v T) error {
	s := a.lookup(h)
	if s == nil {
		return ErrStaleHandle
	}
	s.value = v
	return nil
}

// Remove frees the slot behind h. Every copy of h becomes stale.
func (a *Arena[T]) Remove(h Handle) error {
	s := a.lookup(h)
	if s == nil {
		return ErrStaleHandle
	}

	var zero T
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		// wrapped; skip 0 so the zero handle stays invalid
		s.generation = 1
	}
	a.freeSlots = append(a.freeSlots, h.Index())
	a.live--
	return nil
}

func (a *Arena[T]) Len() int { return a.live }

// Each visits live values in slot order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		if !fn(NewHandle(s.generation, uint32(i)), s.value) {
			return
		}
	}
}

// Clear removes every value, invalidating all outstanding handles.
func (a *Arena[T]) Clear() {
	a.Each(func(h Handle, _ T) bool {
		_ = a.Remove(h)
		return true
	})
}
