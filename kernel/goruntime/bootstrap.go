// Package goruntime redirects Go's own runtime allocator onto the kernel
// heap so that ordinary Go code (slices, maps, closures, the bits of the
// standard library we do use) keeps working once kmain has brought galloc
// up, instead of relying on an OS that was never asked to run underneath
// it.
package goruntime

import (
	"unsafe"

	"nyxcore/kernel/mem/galloc"
)

//go:linkname mSysStatInc runtime.mSysStatInc
func mSysStatInc(*uint64, uintptr)

// defaultAlign is the alignment requested for runtime-driven allocations.
// The runtime itself doesn't tell sysMap/sysAlloc what alignment it needs;
// two pointer widths (16 bytes on amd64) covers the pointer alignment every
// Go object already assumes.
const defaultAlign = unsafe.Sizeof(uintptr(0)) * 2

// sysReserve reserves address space without allocating any memory or
// establishing any page mappings.
//
// This function replaces runtime.sysReserve and is required for
// initializing the Go allocator.
//
//go:redirect-from runtime.sysReserve
//go:nosplit
func sysReserve(_ unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	// The heap owns its own address range and hands out memory from it;
	// there is nothing separate to "reserve" ahead of the allocation
	// itself, so sysReserve always reports success without doing work
	// and defers everything to sysAlloc.
	*reserved = true
	return unsafe.Pointer(uintptr(0))
}

// sysMap establishes a mapping for a region previously reserved via
// sysReserve.
//
// This function replaces runtime.sysMap and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysMap
//go:nosplit
func sysMap(virtAddr unsafe.Pointer, size uintptr, reserved bool, sysStat *uint64) unsafe.Pointer {
	if !reserved {
		panic("goruntime: sysMap called with reserved=false")
	}

	p := galloc.Alloc(size, defaultAlign)
	if p == nil {
		return unsafe.Pointer(uintptr(0))
	}

	mSysStatInc(sysStat, size)
	return p
}

// sysAlloc requests size bytes from the kernel heap and returns a pointer
// to them.
//
// This function replaces runtime.sysAlloc and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysAlloc
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	p := galloc.Alloc(size, defaultAlign)
	if p == nil {
		return unsafe.Pointer(uintptr(0))
	}

	mSysStatInc(sysStat, size)
	return p
}

func init() {
	// Dummy calls so the compiler does not optimize away the functions in
	// this file before the linkname redirection takes effect.
	var (
		reserved bool
		stat     uint64
		zeroPtr  = unsafe.Pointer(uintptr(0))
	)

	sysReserve(zeroPtr, 0, &reserved)
	sysMap(zeroPtr, 0, reserved, &stat)
	sysAlloc(0, &stat)
}
