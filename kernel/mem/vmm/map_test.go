package vmm

import (
	"testing"
	"unsafe"

	"nyxcore/kernel/mem"
	"nyxcore/kernel/mem/pmm"
)

// newTestMapper builds an x86Mapper over a host-allocated slab that stands
// in for physical memory: frame 0 backs the L4 table and the remaining
// frames are handed out by allocFrame as intermediate levels are created.
// flushTLBEntryFn is stubbed out since INVLPG is a privileged instruction
// that cannot run in a hosted test process.
func newTestMapper(t *testing.T) *x86Mapper {
	t.Helper()

	const frameCount = 8
	buf := make([]byte, frameCount*int(mem.PageSize))
	hhdm := uintptr(unsafe.Pointer(&buf[0]))

	origFlush := flushTLBEntryFn
	flushTLBEntryFn = func(uintptr) {}
	t.Cleanup(func() { flushTLBEntryFn = origFlush })

	next := pmm.Frame(1)
	allocFrame := func() pmm.Frame {
		if uint64(next) >= frameCount {
			return pmm.InvalidFrame
		}
		f := next
		next++
		return f
	}

	return &x86Mapper{
		walker:     tableWalker{hhdmOffset: hhdm, allocFrame: allocFrame},
		l4PhysAddr: pmm.Frame(0).Address(),
	}
}

func TestMapMemoryRejectsDoubleMapping(t *testing.T) {
	m := newTestMapper(t)

	const virt = uintptr(0x20_0000)
	physA := pmm.Frame(5).Address()
	physB := pmm.Frame(6).Address()

	if err := m.MapMemory(virt, physA, DefaultMemoryFlags()); err != nil {
		t.Fatalf("first MapMemory failed: %v", err)
	}

	if err := m.MapMemory(virt, physB, DefaultMemoryFlags()); err != ErrAlreadyMapped {
		t.Fatalf("expected ErrAlreadyMapped on a second mapping, got %v", err)
	}

	got, err := m.Translate(virt)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != physA {
		t.Fatalf("expected the original mapping to survive the rejected overwrite, got %#x want %#x", got, physA)
	}
}

func TestMapMemoryAllowsRemapAfterUnmap(t *testing.T) {
	m := newTestMapper(t)

	const virt = uintptr(0x40_0000)
	physA := pmm.Frame(5).Address()
	physB := pmm.Frame(6).Address()

	if err := m.MapMemory(virt, physA, DefaultMemoryFlags()); err != nil {
		t.Fatalf("first MapMemory failed: %v", err)
	}
	if err := m.UnmapMemory(virt); err != nil {
		t.Fatalf("UnmapMemory failed: %v", err)
	}
	if err := m.MapMemory(virt, physB, DefaultMemoryFlags()); err != nil {
		t.Fatalf("expected remapping after unmap to succeed, got %v", err)
	}

	got, err := m.Translate(virt)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != physB {
		t.Fatalf("expected the new mapping, got %#x want %#x", got, physB)
	}
}
