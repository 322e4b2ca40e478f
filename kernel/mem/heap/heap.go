package heap

import (
	"unsafe"

	"nyxcore/kernel"
	"nyxcore/kernel/mem"
	"nyxcore/kernel/mem/pmm"
	"nyxcore/kernel/mem/vmm"
	"nyxcore/kernel/sync"
)

var (
	// ErrInitialSizeTooSmall is returned by Init when initialSize cannot
	// fit even one Node header.
	ErrInitialSizeTooSmall = &kernel.Error{Module: "heap", Message: "initial heap size must fit at least one node"}

	// ErrInitialSizeExceedsMax is returned by Init when initialSize is
	// larger than maxSize.
	ErrInitialSizeExceedsMax = &kernel.Error{Module: "heap", Message: "initial heap size must not exceed the maximum heap size"}

	// ErrOutOfFrames is returned when growing the heap ran out of
	// physical frames to back new pages with.
	ErrOutOfFrames = &kernel.Error{Module: "heap", Message: "no physical frames left to grow the heap"}
)

// FrameSource is the subset of the frame allocator the heap needs in order
// to back new pages.
type FrameSource interface {
	RequestPage() pmm.Frame
}

// Heap is a first-fit, intrusive free-list allocator over a single
// contiguous virtual address range. Growth happens page-by-page: new
// physical frames are requested from alloc and mapped into the next
// unused pages of the range by mapper.
//
// The heap is guarded by its own spinlock; callers never need to take it
// directly. Allocate holds it across heap growth, which calls into the
// mapper and the frame allocator, so the heap's lock is always taken before
// the frame allocator's, per the lock order serial < heap < mapper < frame
// allocator. The mapper has no lock of its own.
type Heap struct {
	lock sync.Spinlock

	start            uintptr
	currentSizePages uintptr
	maxSizePages     uintptr

	lastNode *Node

	alloc  FrameSource
	mapper vmm.MemoryMap
}

// Init reserves a contiguous virtual region [start, start+maxSize) for the
// heap, maps and formats its first initialSize bytes as a single free node,
// and returns the ready-to-use Heap. initialSize must be greater than the
// Node header size and no greater than maxSize.
func Init(start uintptr, maxSize, initialSize mem.Size, alloc FrameSource, mapper vmm.MemoryMap) (*Heap, *kernel.Error) {
	if uintptr(initialSize) <= nodeSize {
		return nil, ErrInitialSizeTooSmall
	}
	if initialSize > maxSize {
		return nil, ErrInitialSizeExceedsMax
	}

	h := &Heap{
		start:        start,
		maxSizePages: uintptr(maxSize.Pages()),
		alloc:        alloc,
		mapper:       mapper,
	}

	initialPages := initialSize.Pages()
	for page := uint32(0); page < initialPages; page++ {
		frame := alloc.RequestPage()
		if !frame.Valid() {
			return nil, ErrOutOfFrames
		}

		virt := start + uintptr(page)*uintptr(mem.PageSize)
		if err := mapper.MapMemory(virt, frame.Address(), vmm.DefaultMemoryFlags()); err != nil {
			return nil, err
		}
	}
	h.currentSizePages = uintptr(initialPages)

	root := (*Node)(unsafe.Pointer(start))
	*root = Node{length: uintptr(initialSize) - nodeSize}
	h.lastNode = root

	return h, nil
}

func (h *Heap) root() *Node {
	return (*Node)(unsafe.Pointer(h.start))
}

// expandHeap grows the heap by at least amount bytes, mapping fresh pages
// and either extending the current tail node (if it is free) or appending a
// new free node after it. It returns false if growth would exceed maxSize
// or the frame allocator is exhausted (or a mapping fails) partway through —
// in the latter case the pages successfully mapped before the failure are
// unmapped again; the frames behind them are not returned to the frame
// allocator.
func (h *Heap) expandHeap(amount uintptr) bool {
	amount = roundBlockLength(amount)
	growthPages := uintptr(mem.Size(amount).Pages())
	newSizePages := h.currentSizePages + growthPages
	if newSizePages > h.maxSizePages {
		return false
	}

	mapped := make([]uintptr, 0, growthPages)
	for page := h.currentSizePages; page < newSizePages; page++ {
		frame := h.alloc.RequestPage()
		if !frame.Valid() {
			h.unmapPages(mapped)
			return false
		}

		virt := h.start + page*uintptr(mem.PageSize)
		if err := h.mapper.MapMemory(virt, frame.Address(), vmm.DefaultMemoryFlags()); err != nil {
			h.unmapPages(mapped)
			return false
		}
		mapped = append(mapped, virt)
	}
	h.currentSizePages = newSizePages

	if h.lastNode.inUse {
		newNode := (*Node)(unsafe.Pointer(h.lastNode.dataAddress() + h.lastNode.length))
		*newNode = Node{length: amount - nodeSize, last: h.lastNode}
		h.lastNode.next = newNode
		h.lastNode = newNode
	} else {
		h.lastNode.length += amount
	}

	return true
}

func (h *Heap) unmapPages(virts []uintptr) {
	for _, v := range virts {
		h.mapper.UnmapMemory(v)
	}
}

// Allocate returns a pointer to a block of at least size bytes satisfying
// the requested alignment, growing the heap if no existing free block fits.
// align is rounded up to 16 (the smallest alignment this allocator ever
// hands out) and size is padded up to that alignment before being rounded
// to the next power of two, so the returned block's length is always a
// multiple of its own starting alignment. It returns nil if the heap cannot
// grow any further.
func (h *Heap) Allocate(size, align uintptr) unsafe.Pointer {
	h.lock.Acquire()
	defer h.lock.Release()

	if align < 16 {
		align = 16
	}
	size = padUp(size, align)
	size = roundBlockLength(size)

	node := h.root()
	for {
		if !node.inUse {
			if node.next != nil && !node.next.inUse {
				node.combineForward()
				continue
			}
			if node.length == size {
				node.inUse = true
				return node.dataPointer()
			}
			if node.length > size+nodeSize {
				node.split(size)
				if node.next.next == nil {
					h.lastNode = node.next
				}
				node.inUse = true
				return node.dataPointer()
			}
		}

		if node.next != nil {
			node = node.next
			continue
		}

		if !h.expandHeap(size) {
			return nil
		}
		node = h.root()
	}
}

// Free releases a block previously returned by Allocate, coalescing it with
// an immediately adjacent free neighbor on either side.
func (h *Heap) Free(p unsafe.Pointer) {
	h.lock.Acquire()
	defer h.lock.Release()

	node := nodeFromDataPointer(p)
	node.inUse = false

	if node.last != nil && !node.last.inUse {
		node.last.combineForward()
		node = node.last
	}
	if node.next != nil && !node.next.inUse {
		node.combineForward()
	}
	if node.next == nil {
		h.lastNode = node
	}
}
