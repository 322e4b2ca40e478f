package vmm

import "nyxcore/kernel/mem/pmm"

// CloneTable creates a new L4 table with the same entries as src at the top
// level, recursively duplicating intermediate levels down to (but not
// including) the final L1 entries, which keep pointing at the original
// physical frames. This gives the clone its own page table structure while
// still sharing the underlying mapped pages, the same way a fresh kernel
// thread's address space starts out as a structural copy of the boot
// mapping rather than a deep copy of every frame.
//
// allocFrame supplies the physical frames backing each freshly cloned
// intermediate table. CloneTable returns pmm.InvalidFrame if the allocator
// runs out partway through.
func CloneTable(walker *tableWalker, src *PageTable, allocFrame FrameAllocatorFunc) pmm.Frame {
	return cloneLevel(walker, src, allocFrame, 4)
}

func cloneLevel(walker *tableWalker, src *PageTable, allocFrame FrameAllocatorFunc, level uint8) pmm.Frame {
	frame := allocFrame()
	if !frame.Valid() {
		return pmm.InvalidFrame
	}

	dst := walker.tableAt(frame)
	zeroTable(dst)

	for i := 0; i < entriesPerTable; i++ {
		srcPte := src.entries[i]
		if !srcPte.HasFlags(FlagPresent) {
			continue
		}

		if level == 1 {
			dst.entries[i] = srcPte
			continue
		}

		childFrame := cloneLevel(walker, walker.tableAt(srcPte.Frame()), allocFrame, level-1)
		if !childFrame.Valid() {
			return pmm.InvalidFrame
		}

		dst.entries[i] = srcPte
		dst.entries[i].SetFrame(childFrame)
	}

	return frame
}
