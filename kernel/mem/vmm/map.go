package vmm

import (
	"nyxcore/kernel"
	"nyxcore/kernel/mem"
	"nyxcore/kernel/mem/pmm"
)

var (
	// ErrInvalidMapping is returned when trying to unmap or translate a
	// virtual address that is not currently mapped.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	// ErrOutOfMemory is returned when a mapping operation needs a fresh
	// physical frame for a new intermediate page table level and the frame
	// allocator has none left.
	ErrOutOfMemory = &kernel.Error{Module: "vmm", Message: "no more physical frames are available"}

	// ErrAlreadyMapped is returned by MapMemory when the target virtual
	// address already has a live mapping. Callers must UnmapMemory first.
	ErrAlreadyMapped = &kernel.Error{Module: "vmm", Message: "virtual address is already mapped"}
)

// MemoryMap is the portable interface through which the rest of the kernel
// (the heap in particular) requests virtual memory mappings without
// depending on the architecture-specific page table format.
type MemoryMap interface {
	// MapMemory establishes a single-page mapping from the virtual address
	// to the physical address with the given flags. An address that is
	// already mapped is left as it is and ErrAlreadyMapped is returned.
	MapMemory(virtAddr, physAddr uintptr, flags MemoryFlag) *kernel.Error

	// UnmapMemory removes the mapping for the given virtual address.
	UnmapMemory(virtAddr uintptr) *kernel.Error

	// LoadMemoryMap installs this map as the currently active one.
	LoadMemoryMap()
}

// x86Mapper is the x86_64 MemoryMap implementation: a thin walker over the
// active (or a cloned) L4 page table, addressed through the HHDM offset.
type x86Mapper struct {
	walker tableWalker

	// l4PhysAddr is the physical address of this mapper's L4 table.
	l4PhysAddr uintptr
}

// NewActiveMapper returns a mapper bound to the currently active L4 table
// (read once from CR3), using hhdmOffset to translate physical frame
// addresses to the virtual addresses at which they are directly mapped.
func NewActiveMapper(hhdmOffset uintptr, allocFrame FrameAllocatorFunc) *x86Mapper {
	return &x86Mapper{
		walker:     tableWalker{hhdmOffset: hhdmOffset, allocFrame: allocFrame},
		l4PhysAddr: activePDT(),
	}
}

func (m *x86Mapper) l4Table() *PageTable {
	return m.walker.tableAt(pmm.FrameForAddress(m.l4PhysAddr))
}

// MapMemory implements MemoryMap.
func (m *x86Mapper) MapMemory(virtAddr, physAddr uintptr, flags MemoryFlag) *kernel.Error {
	virtAddr = mem.AlignDown(virtAddr)
	physAddr = mem.AlignDown(physAddr)

	pte := m.walker.walk(m.l4Table(), virtAddr, true, nil)
	if pte == nil {
		return ErrOutOfMemory
	}
	if pte.HasFlags(FlagPresent) {
		return ErrAlreadyMapped
	}

	*pte = 0
	pte.SetFrame(pmm.FrameForAddress(physAddr))
	pte.SetFlags(FlagPresent | flags.toEntryFlags())

	flushTLBEntry(virtAddr)
	return nil
}

// UnmapMemory implements MemoryMap.
func (m *x86Mapper) UnmapMemory(virtAddr uintptr) *kernel.Error {
	virtAddr = mem.AlignDown(virtAddr)

	pte := m.walker.walk(m.l4Table(), virtAddr, false, nil)
	if pte == nil || !pte.HasFlags(FlagPresent) {
		return ErrInvalidMapping
	}

	*pte = 0
	flushTLBEntry(virtAddr)
	return nil
}

// LoadMemoryMap implements MemoryMap.
func (m *x86Mapper) LoadMemoryMap() {
	switchPDT(m.l4PhysAddr)
}

// MapRegion maps pages consecutive pages starting at virtAddr/physAddr, for
// callers that need a contiguous multi-page window rather than a single
// page.
func (m *x86Mapper) MapRegion(virtAddr, physAddr uintptr, pages uint32, flags MemoryFlag) *kernel.Error {
	for i := uint32(0); i < pages; i++ {
		off := uintptr(i) * uintptr(mem.PageSize)
		if err := m.MapMemory(virtAddr+off, physAddr+off, flags); err != nil {
			return err
		}
	}
	return nil
}

// IdentityMapRegion maps pages consecutive pages starting at physAddr to
// the same virtual address.
func (m *x86Mapper) IdentityMapRegion(physAddr uintptr, pages uint32, flags MemoryFlag) *kernel.Error {
	return m.MapRegion(physAddr, physAddr, pages, flags)
}

// Translate walks the mapper's page tables and returns the physical address
// that virtAddr currently maps to.
func (m *x86Mapper) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	pageOff := virtAddr & uintptr(mem.PageSize-1)

	pte := m.walker.walk(m.l4Table(), mem.AlignDown(virtAddr), false, nil)
	if pte == nil || !pte.HasFlags(FlagPresent) {
		return 0, ErrInvalidMapping
	}

	return pte.Frame().Address() + pageOff, nil
}
