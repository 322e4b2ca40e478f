// Package corelocal provides per-core storage slots, indexed by the LAPIC
// id that apic.CoreID reports. Go has no borrow checker, so the checked
// interior mutability that the original per-core cell relied on to catch
// overlapping mutable accesses is reproduced with a panicking borrow flag
// instead.
package corelocal

import "sync"

// CoreIDFunc returns the id of the currently executing core. It is a
// package variable (rather than a hard dependency on apic) so tests can
// substitute a fixed id.
var CoreIDFunc = func() uint32 { return 0 }

// cell is the per-core slot: a value plus a runtime-checked borrow flag.
// It allows one borrow at a time, shared or mutable, which is stricter than
// a Rust RefCell (that allows several shared borrows at once).
type cell[T any] struct {
	value    T
	borrowed bool
}

// CoreLocal lazily allocates one cell per core the first time it is used,
// sized by numCores, and hands out borrows of the calling core's cell.
type CoreLocal[T any] struct {
	once  sync.Once
	cells []cell[T]
	init  func() T

	// numCores is read once, by the first caller, to size cells.
	numCores func() int
}

// New returns a CoreLocal that lazily builds one T (via init) per core the
// first time Borrow or BorrowMut is called. numCores supplies the core
// count (typically bootinfo.Active().NumCores).
func New[T any](init func() T, numCores func() int) *CoreLocal[T] {
	return &CoreLocal[T]{init: init, numCores: numCores}
}

func (c *CoreLocal[T]) ensureInit() {
	c.once.Do(func() {
		n := c.numCores()
		c.cells = make([]cell[T], n)
		for i := range c.cells {
			c.cells[i].value = c.init()
		}
	})
}

func (c *CoreLocal[T]) slot() *cell[T] {
	c.ensureInit()
	id := int(CoreIDFunc())
	if id >= len(c.cells) {
		panic("corelocal: core id is out of range of the slots sized at init time")
	}
	return &c.cells[id]
}

// Borrow returns the current core's value along with a release function
// that must be called when done. A second concurrent Borrow or BorrowMut
// of the same core's cell panics, mirroring a second RefCell borrow.
func (c *CoreLocal[T]) Borrow() (value T, release func()) {
	cell := c.slot()
	if cell.borrowed {
		panic("corelocal: value already borrowed")
	}
	cell.borrowed = true
	return cell.value, func() { cell.borrowed = false }
}

// BorrowMut returns a pointer to the current core's value along with a
// release function. A second concurrent Borrow or BorrowMut of the same
// core's cell panics.
func (c *CoreLocal[T]) BorrowMut() (value *T, release func()) {
	cell := c.slot()
	if cell.borrowed {
		panic("corelocal: value already borrowed")
	}
	cell.borrowed = true
	return &cell.value, func() { cell.borrowed = false }
}
