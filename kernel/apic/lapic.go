// Package apic brings up the local APIC far enough to answer "which core
// is this": corelocal indexes its per-core slots by the id this package
// reports.
package apic

import (
	"unsafe"

	"nyxcore/kernel/cpu"
)

const (
	// msrAPICBase is the IA32_APIC_BASE model-specific register; bits
	// 12-51 hold the LAPIC's physical base address.
	msrAPICBase = 0x1B

	apicBaseAddrMask = 0x000ffffffffff000

	// idRegisterOffset is the byte offset of the LAPIC ID register
	// within the LAPIC's memory-mapped register page.
	idRegisterOffset = 0x20
)

var virtBase uintptr

// PhysBase reads the LAPIC's physical base address out of the
// IA32_APIC_BASE MSR.
func PhysBase() uintptr {
	return uintptr(cpu.RDMSR(msrAPICBase) & apicBaseAddrMask)
}

// Init records the virtual address at which the caller has already mapped
// the LAPIC's 4KB register page (one page, starting at PhysBase()). It
// must be called once, after that mapping exists, before CoreID is used.
func Init(mappedVirtBase uintptr) {
	virtBase = mappedVirtBase
}

// CoreID returns the LAPIC id of the core executing this call. LAPIC ids
// are not necessarily contiguous, but corelocal treats the value as a
// direct slot index into slots sized by the core count, and panics on an id
// at or beyond that count.
func CoreID() uint32 {
	if virtBase == 0 {
		// Tests and early single-core bring-up run before Init: treat
		// the bootstrap processor as core 0.
		return 0
	}

	reg := (*uint32)(unsafe.Pointer(virtBase + idRegisterOffset))
	return *reg >> 24
}
