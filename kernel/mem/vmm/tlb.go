package vmm

import "nyxcore/kernel/cpu"

// The following indirections exist so that tests can substitute them with
// fakes instead of touching real CR2/CR3/TLB state.
var (
	flushTLBEntryFn = cpu.FlushTLBEntry
	switchPDTFn     = cpu.SwitchPDT
	activePDTFn     = cpu.ActivePDT
)

func flushTLBEntry(virtAddr uintptr) { flushTLBEntryFn(virtAddr) }
func switchPDT(physAddr uintptr)     { switchPDTFn(physAddr) }
func activePDT() uintptr             { return activePDTFn() }
