// Package kmain contains the boot orchestration: the sequence that takes
// the machine from "Limine just jumped here" to "the kernel heap is up and
// Go's own allocator is backed by it".
package kmain

import (
	"nyxcore/kernel"
	"nyxcore/kernel/apic"
	"nyxcore/kernel/cpu"
	"nyxcore/kernel/hal"
	"nyxcore/kernel/hal/bootinfo"
	"nyxcore/kernel/irq"
	"nyxcore/kernel/kfmt/early"
	"nyxcore/kernel/mem"
	"nyxcore/kernel/mem/corelocal"
	"nyxcore/kernel/mem/galloc"
	"nyxcore/kernel/mem/heap"
	"nyxcore/kernel/mem/pmm"
	"nyxcore/kernel/mem/vmm"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

const (
	// heapVirtBase is an arbitrary canonical address picked well away
	// from the HHDM window and the kernel image itself.
	heapVirtBase = 0xffff_9000_0000_0000

	heapInitialSize = 4 * mem.Mb
	heapMaxSize     = 512 * mem.Mb
)

// Kmain is the first Go function the rt0 trampoline calls, after it has set
// up a minimal stack and parsed the Limine response structures into
// bootinfo. It is not expected to return; if it does, the trampoline halts
// the CPU.
//
//go:noinline
func Kmain() {
	hal.InitTerminal()
	cpu.DisablePIC()

	irq.Init()

	info := bootinfo.Active()

	regions := make([]pmm.MemoryRegion, 0, len(info.MemoryMap))
	for _, e := range info.MemoryMap {
		if e.Type != bootinfo.MemoryUsable {
			continue
		}
		regions = append(regions, pmm.MemoryRegion{
			Base: e.Base,
			Size: mem.Size(e.Length),
			Type: pmm.RegionUsable,
		})
	}

	frames := pmm.NewFromMemoryMap(regions)

	addrSpace := vmm.NewAddressSpace(info.HHDMOffset, func() pmm.Frame {
		return frames.RequestPage()
	})

	h, err := heap.Init(heapVirtBase, heapMaxSize, heapInitialSize, frames, addrSpace.Mapper())
	if err != nil {
		kernel.Panic(err)
	}
	galloc.Use(h)

	apic.Init(info.HHDMOffset + apic.PhysBase())
	corelocal.CoreIDFunc = apic.CoreID

	bringup := corelocal.New(func() bool { return false }, info.NumCores)
	ready, release := bringup.BorrowMut()
	*ready = true
	release()
	early.Printf("core %d up (%d total)\n", apic.CoreID(), info.NumCores())

	cpu.EnableInterrupts()

	// Use kernel.Panic instead of panic to prevent the compiler from
	// treating kernel.Panic as dead code and eliminating it.
	kernel.Panic(errKmainReturned)
}
