package vmm

import (
	"nyxcore/kernel/mem/pmm"
)

const entriesPerTable = 512

// PageTable represents one level of the 4-level x86_64 page table
// hierarchy. It is always accessed through the HHDM offset, never through
// its physical address directly.
type PageTable struct {
	entries [entriesPerTable]pageTableEntry
}

// pageIndices decomposes a canonical virtual address into its L4, L3, L2 and
// L1 page table indices.
func pageIndices(virtAddr uintptr) (l4, l3, l2, l1 uint16) {
	l4 = uint16((virtAddr >> 39) & 0x1ff)
	l3 = uint16((virtAddr >> 30) & 0x1ff)
	l2 = uint16((virtAddr >> 21) & 0x1ff)
	l1 = uint16((virtAddr >> 12) & 0x1ff)
	return
}

// FrameAllocatorFunc allocates a single physical frame to back a new
// intermediate page table level, returning pmm.InvalidFrame on failure.
type FrameAllocatorFunc func() pmm.Frame

// tableWalker gives access to the physical-to-virtual translation needed to
// dereference the frame backing each page table level.
type tableWalker struct {
	// hhdmOffset is added to a physical address to obtain a virtual
	// address at which that physical page is directly mapped.
	hhdmOffset uintptr

	allocFrame FrameAllocatorFunc
}

func (w *tableWalker) tableAt(frame pmm.Frame) *PageTable {
	return (*PageTable)(unsafePointerAdd(frame.Address(), w.hhdmOffset))
}

// walk descends from the L4 table down to the L1 entry for virtAddr,
// invoking visit at each level. When allocate is true, missing intermediate
// tables are created using allocFrame; otherwise walk stops and returns nil
// the first time it encounters a not-present entry.
func (w *tableWalker) walk(l4Table *PageTable, virtAddr uintptr, allocate bool, visit func(level uint8, pte *pageTableEntry)) *pageTableEntry {
	idx := []uint16{0, 0, 0, 0}
	idx[0], idx[1], idx[2], idx[3] = pageIndices(virtAddr)

	table := l4Table
	for level := uint8(4); level >= 1; level-- {
		pte := &table.entries[idx[4-level]]

		if level == 1 {
			if visit != nil {
				visit(level, pte)
			}
			return pte
		}

		if !pte.HasFlags(FlagPresent) {
			if !allocate {
				return nil
			}

			frame := w.allocFrame()
			if !frame.Valid() {
				return nil
			}

			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(FlagPresent | FlagWritable | FlagUserAccessible)
			zeroTable(w.tableAt(frame))
		}

		if visit != nil {
			visit(level, pte)
		}

		table = w.tableAt(pte.Frame())
	}

	return nil
}

func zeroTable(t *PageTable) {
	for i := range t.entries {
		t.entries[i] = 0
	}
}
