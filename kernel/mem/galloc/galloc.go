// Package galloc wires the kernel heap into Go's own runtime allocator: it
// is the global allocator shim that the rest of the kernel (and, by
// extension, every ordinary Go allocation) ultimately runs on top of once
// kmain has brought the heap up.
package galloc

import (
	"unsafe"

	"nyxcore/kernel/mem/heap"
)

var active *heap.Heap

// Use installs h as the backing heap for Alloc/Free. It is called exactly
// once, from kmain, after heap.Init has succeeded.
func Use(h *heap.Heap) {
	active = h
}

// Ready reports whether a heap has been installed yet. Alloc and Free check
// the same condition themselves, so goruntime's allocator hooks, which call
// Alloc directly, get nil back before the heap exists (e.g. during the Go
// runtime's own package-init allocations) rather than dereferencing a nil
// heap.
func Ready() bool {
	return active != nil
}

// Alloc returns size bytes of memory satisfying align from the active heap,
// or nil if no heap has been installed yet or the heap cannot satisfy the
// request.
func Alloc(size, align uintptr) unsafe.Pointer {
	if active == nil {
		return nil
	}
	return active.Allocate(size, align)
}

// Free releases a block previously returned by Alloc.
func Free(p unsafe.Pointer) {
	if active == nil || p == nil {
		return
	}
	active.Free(p)
}
