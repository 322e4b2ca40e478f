package vmm

import "nyxcore/kernel"

// AddressSpace is a handle to one virtual address space: the physical
// address of its L4 table plus the mapper bound to it. Kmain owns exactly
// one AddressSpace for the kernel itself; a future process model would give
// each task its own.
type AddressSpace struct {
	mapper *x86Mapper
}

// NewAddressSpace wraps the currently active page tables (the ones the
// bootloader handed off) into an AddressSpace.
func NewAddressSpace(hhdmOffset uintptr, allocFrame FrameAllocatorFunc) *AddressSpace {
	return &AddressSpace{mapper: NewActiveMapper(hhdmOffset, allocFrame)}
}

// Map establishes a single-page mapping in this address space.
func (as *AddressSpace) Map(virtAddr, physAddr uintptr, flags MemoryFlag) *kernel.Error {
	return as.mapper.MapMemory(virtAddr, physAddr, flags)
}

// Unmap removes the mapping for virtAddr in this address space.
func (as *AddressSpace) Unmap(virtAddr uintptr) *kernel.Error {
	return as.mapper.UnmapMemory(virtAddr)
}

// MapRegion maps pages consecutive pages starting at virtAddr/physAddr.
func (as *AddressSpace) MapRegion(virtAddr, physAddr uintptr, pages uint32, flags MemoryFlag) *kernel.Error {
	return as.mapper.MapRegion(virtAddr, physAddr, pages, flags)
}

// IdentityMapRegion maps pages consecutive pages starting at physAddr to
// the same virtual address.
func (as *AddressSpace) IdentityMapRegion(physAddr uintptr, pages uint32, flags MemoryFlag) *kernel.Error {
	return as.mapper.IdentityMapRegion(physAddr, pages, flags)
}

// Translate returns the physical address virtAddr currently maps to.
func (as *AddressSpace) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	return as.mapper.Translate(virtAddr)
}

// Activate installs this address space's page tables as the active ones.
func (as *AddressSpace) Activate() {
	as.mapper.LoadMemoryMap()
}

// Mapper exposes the underlying MemoryMap so it can be handed to the heap
// and other components that only need the portable interface.
func (as *AddressSpace) Mapper() MemoryMap {
	return as.mapper
}
