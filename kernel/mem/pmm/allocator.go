package pmm

import (
	"nyxcore/kernel/mem"
	"nyxcore/kernel/sync"
)

// MemoryRegionType mirrors a bootloader-reported memory region's type.
type MemoryRegionType uint8

const (
	// RegionUsable marks memory that is free for the kernel to claim.
	RegionUsable MemoryRegionType = iota
	RegionReserved
)

// MemoryRegion describes one entry of the bootloader-provided memory map.
type MemoryRegion struct {
	Base uintptr
	Size mem.Size
	Type MemoryRegionType
}

// FrameAllocator is a bitmap-backed physical frame allocator that manages a
// single contiguous memory region: the largest USABLE region reported by
// the bootloader. The allocator's own bookkeeping bitmap is carved out of
// the start of that same region, so the first bits it locks are always the
// pages backing the bitmap itself.
//
// A rotating cursor (nextHint) avoids rescanning already-allocated pages
// from the start of the bitmap on every request.
type FrameAllocator struct {
	lock sync.Spinlock

	bitmap     mem.Bitmap
	regionBase uintptr
	numPages   uint64

	nextHint uint64
}

// ErrOutOfMemory describes running out of free frames. RequestPage does not
// return it: it reports exhaustion by returning InvalidFrame.
var ErrOutOfMemory = errOutOfMemory{}

type errOutOfMemory struct{}

func (errOutOfMemory) Error() string { return "pmm: no free physical frames available" }

// NewFromMemoryMap builds a FrameAllocator over the largest usable region in
// regions. The allocator's bitmap is placed at the start of that region. It
// panics if no usable region is found, matching the unrecoverable nature of
// this failure during early boot.
func NewFromMemoryMap(regions []MemoryRegion) *FrameAllocator {
	var best *MemoryRegion
	for i := range regions {
		r := &regions[i]
		if r.Type != RegionUsable {
			continue
		}
		if best == nil || r.Size > best.Size {
			best = r
		}
	}
	if best == nil {
		panic("pmm: no usable memory region reported by the bootloader")
	}

	numPages := uint64(best.Size) / uint64(mem.PageSize)
	bitmapBytes := mem.SizeForBits(numPages)

	fa := &FrameAllocator{
		regionBase: best.Base,
		numPages:   numPages,
		bitmap: mem.Bitmap{
			Data: unsafeBytesAt(best.Base, bitmapBytes),
			Bits: numPages,
		},
	}

	for i := range fa.bitmap.Data {
		fa.bitmap.Data[i] = 0
	}

	bitmapPages := mem.Size(bitmapBytes).Pages()
	fa.lockPagesLocked(0, bitmapPages)

	return fa
}

func (fa *FrameAllocator) pageIndex(addr uintptr) uint64 {
	return uint64(addr-fa.regionBase) / uint64(mem.PageSize)
}

// lockPagesLocked marks [startPage, startPage+count) as used. Caller must
// hold fa.lock.
func (fa *FrameAllocator) lockPagesLocked(startPage uint64, count uint32) {
	for i := uint64(0); i < uint64(count); i++ {
		fa.bitmap.Set(startPage + i)
	}
}

// freePagesLocked marks [startPage, startPage+count) as free. Caller must
// hold fa.lock.
func (fa *FrameAllocator) freePagesLocked(startPage uint64, count uint32) {
	for i := uint64(0); i < uint64(count); i++ {
		fa.bitmap.Clear(startPage + i)
	}
}

// LockPages marks size.Pages() pages as used, starting with the page that
// contains addr. size is rounded up to whole pages, so a partially covered
// last page is included; addr is not aligned first, so when addr is not
// page-aligned the last page touched by [addr, addr+size) can be left
// unmarked. FreePages covers exactly the same pages, unlike the asymmetric
// inclusive/exclusive pairing of the allocator this code is descended from.
func (fa *FrameAllocator) LockPages(addr uintptr, size mem.Size) {
	fa.lock.Acquire()
	defer fa.lock.Release()

	start := fa.pageIndex(addr)
	pages := size.Pages()
	fa.lockPagesLocked(start, pages)
}

// FreePages marks as free the same pages LockPages marks for addr and size.
func (fa *FrameAllocator) FreePages(addr uintptr, size mem.Size) {
	fa.lock.Acquire()
	defer fa.lock.Release()

	start := fa.pageIndex(addr)
	pages := size.Pages()
	fa.freePagesLocked(start, pages)
}

// RequestPage returns the next free frame and marks it used, or
// InvalidFrame if none remain.
func (fa *FrameAllocator) RequestPage() Frame {
	fa.lock.Acquire()
	defer fa.lock.Release()

	for scanned := uint64(0); scanned < fa.numPages; scanned++ {
		idx := (fa.nextHint + scanned) % fa.numPages
		if fa.bitmap.Get(idx) {
			continue
		}

		fa.bitmap.Set(idx)
		fa.nextHint = (idx + 1) % fa.numPages
		return FrameForAddress(fa.regionBase + uintptr(idx)*uintptr(mem.PageSize))
	}

	return InvalidFrame
}

// RequestAndClearPage behaves like RequestPage but additionally zeroes the
// returned frame's contents, addressed through hhdmOffset.
func (fa *FrameAllocator) RequestAndClearPage(hhdmOffset uintptr) Frame {
	frame := fa.RequestPage()
	if !frame.Valid() {
		return frame
	}

	zero := unsafeBytesAt(frame.Address()+hhdmOffset, uint64(mem.PageSize))
	for i := range zero {
		zero[i] = 0
	}

	return frame
}

// NumPages returns the total number of pages managed by this allocator.
func (fa *FrameAllocator) NumPages() uint64 {
	return fa.numPages
}
