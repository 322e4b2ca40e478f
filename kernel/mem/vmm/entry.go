// Package vmm implements the x86_64 4-level page table walker, an
// HHDM-offset view of the currently active address space, and the portable
// MemoryMap interface used by the kernel heap.
package vmm

import (
	"nyxcore/kernel/mem"
	"nyxcore/kernel/mem/pmm"
)

// PageTableEntryFlag describes a flag that can be applied to a page table
// entry. The bit layout matches the x86_64 page table entry format.
type PageTableEntryFlag uintptr

const (
	FlagPresent PageTableEntryFlag = 1 << iota
	FlagWritable
	FlagUserAccessible
	FlagWriteThrough
	FlagNoCache
	FlagAccessed
	flagDirtyReserved
	FlagLargerPages
	flagGlobalReserved

	// FlagNoExecute occupies the top bit of the 64-bit entry (NX bit).
	FlagNoExecute PageTableEntryFlag = 1 << 63
)

const ptePhysPageMask = uintptr(0x000ffffffffff000)

// pageTableEntry describes a single page table entry. It encodes a physical
// frame address and a set of flags.
type pageTableEntry uintptr

// HasFlags returns true if this entry has all the input flags set.
func (pte pageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return (uintptr(pte) & uintptr(flags)) == uintptr(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags
// set.
func (pte pageTableEntry) HasAnyFlag(flags PageTableEntryFlag) bool {
	return (uintptr(pte) & uintptr(flags)) != 0
}

// SetFlags sets the input flags on the page table entry.
func (pte *pageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*pte = (pageTableEntry)(uintptr(*pte) | uintptr(flags))
}

// ClearFlags unsets the input flags from the page table entry.
func (pte *pageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*pte = (pageTableEntry)(uintptr(*pte) &^ uintptr(flags))
}

// Frame returns the physical page frame that this entry points to.
func (pte pageTableEntry) Frame() pmm.Frame {
	return pmm.Frame((uintptr(pte) & ptePhysPageMask) >> mem.PageShift)
}

// SetFrame updates the entry to point at the given physical frame, keeping
// its current flags.
func (pte *pageTableEntry) SetFrame(frame pmm.Frame) {
	*pte = (pageTableEntry)((uintptr(*pte) &^ ptePhysPageMask) | frame.Address())
}
