// Package bootinfo is the kernel's only "configuration" surface: a typed
// view over the Limine boot protocol's response structures (memory map,
// higher-half direct map offset, kernel load addresses, bootloader
// identity, and the SMP core table), in place of a textual config file.
package bootinfo

// MemoryRegionType mirrors Limine's memory map entry type field.
type MemoryRegionType uint32

const (
	MemoryUsable MemoryRegionType = iota
	MemoryReserved
	MemoryACPIReclaimable
	MemoryACPINVS
	MemoryBadMemory
	MemoryBootloaderReclaimable
	MemoryKernelAndModules
	MemoryFramebuffer
)

// MemoryMapEntry describes one entry of the Limine memory map response.
type MemoryMapEntry struct {
	Base   uintptr
	Length uint64
	Type   MemoryRegionType
}

// SMPCore describes one entry of the Limine SMP response: a core the
// bootloader discovered and can kick into the AP entry point.
type SMPCore struct {
	// LAPICID is the local APIC id the hardware uses to identify this
	// core; it is also the index corelocal.CoreLocal uses.
	LAPICID uint32

	// IsBSP is true for the core that is already running when Kmain is
	// called.
	IsBSP bool
}

// Info is the complete set of boot-time facts the kernel needs before it
// can bring its own subsystems up. It is populated once, by the rt0 trampoline
// parsing the bootloader's Limine response structures, and is read-only
// from then on.
type Info struct {
	MemoryMap []MemoryMapEntry

	// HHDMOffset is added to a physical address to obtain the virtual
	// address at which that physical page is directly mapped.
	HHDMOffset uintptr

	// KernelPhysBase and KernelVirtBase are the load addresses Limine
	// placed the kernel image at.
	KernelPhysBase uintptr
	KernelVirtBase uintptr

	BootloaderName    string
	BootloaderVersion string

	Cores []SMPCore
}

var active *Info

// Set installs info as the active boot-info snapshot. Called exactly once
// by the rt0 trampoline before Kmain runs.
func Set(info *Info) {
	active = info
}

// Active returns the currently installed boot-info snapshot. It panics if
// Set has not been called yet, since nothing downstream can function
// without it.
func Active() *Info {
	if active == nil {
		panic("bootinfo: Active() called before Set()")
	}
	return active
}

// NumCores returns the number of cores reported by the SMP table, used to
// size per-core data structures.
func (i *Info) NumCores() int {
	return len(i.Cores)
}
