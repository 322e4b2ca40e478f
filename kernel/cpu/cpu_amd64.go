// Package cpu provides arch-specific primitives that cannot be expressed in
// plain Go: port I/O, control/model-specific registers, interrupt control
// and TLB management.
package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt.
func Halt()

// FlushTLBEntry flushes a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets the root page table directory to point to the specified
// physical address and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active page
// table.
func ActivePDT() uintptr

// ReadCR2 returns the faulting address recorded by the last page fault.
func ReadCR2() uintptr

// OutB writes a single byte to the given I/O port.
func OutB(port uint16, value uint8)

// InB reads a single byte from the given I/O port.
func InB(port uint16) uint8

// RDMSR reads the model-specific register identified by id.
func RDMSR(id uint32) uint64

// WRMSR writes value to the model-specific register identified by id.
func WRMSR(id uint32, value uint64)

// FramePointer returns the caller's current base pointer (RBP), the head of
// the frame-pointer chain used to walk the stack during a panic.
func FramePointer() uintptr
