package heap

import (
	"testing"
	"unsafe"

	"nyxcore/kernel"
	"nyxcore/kernel/mem"
	"nyxcore/kernel/mem/pmm"
	"nyxcore/kernel/mem/vmm"
)

// fakeFrameSource hands out a new fake frame on every call; it never runs
// out inside the bounds used by these tests.
type fakeFrameSource struct{ next pmm.Frame }

func (f *fakeFrameSource) RequestPage() pmm.Frame {
	f.next++
	return f.next
}

// exhaustedFrameSource always fails, used to exercise the ErrOutOfFrames /
// expandHeap failure paths.
type exhaustedFrameSource struct{}

func (exhaustedFrameSource) RequestPage() pmm.Frame { return pmm.InvalidFrame }

// limitedFrameSource succeeds exactly budget times before it starts
// reporting exhaustion, modeling a frame allocator that runs dry partway
// through a heap's lifetime.
type limitedFrameSource struct {
	budget int
	next   pmm.Frame
}

func (f *limitedFrameSource) RequestPage() pmm.Frame {
	if f.budget <= 0 {
		return pmm.InvalidFrame
	}
	f.budget--
	f.next++
	return f.next
}

// noopMapper pretends every MapMemory call succeeds without touching real
// page tables; tests back the heap directly with host-allocated memory, so
// no actual translation is required.
type noopMapper struct{}

func (noopMapper) MapMemory(_, _ uintptr, _ vmm.MemoryFlag) *kernel.Error { return nil }
func (noopMapper) UnmapMemory(_ uintptr) *kernel.Error                    { return nil }
func (noopMapper) LoadMemoryMap()                                        {}

func newTestHeap(t *testing.T, maxSize, initialSize mem.Size) (*Heap, []byte) {
	t.Helper()
	buf := make([]byte, maxSize)
	start := uintptr(unsafe.Pointer(&buf[0]))

	h, err := Init(start, maxSize, initialSize, &fakeFrameSource{}, noopMapper{})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return h, buf
}

func TestInitRejectsUndersizedInitialSize(t *testing.T) {
	buf := make([]byte, 4096)
	start := uintptr(unsafe.Pointer(&buf[0]))

	if _, err := Init(start, 4096, 1, &fakeFrameSource{}, noopMapper{}); err != ErrInitialSizeTooSmall {
		t.Fatalf("expected ErrInitialSizeTooSmall, got %v", err)
	}
	if _, err := Init(start, 128, 4096, &fakeFrameSource{}, noopMapper{}); err != ErrInitialSizeExceedsMax {
		t.Fatalf("expected ErrInitialSizeExceedsMax, got %v", err)
	}
}

func TestAllocateAndFreeRoundTrip(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, 1<<17)

	var ptrs [100]unsafe.Pointer
	for i := range ptrs {
		p := h.Allocate(256, 16)
		if p == nil {
			t.Fatalf("allocation %d failed", i)
		}
		ptrs[i] = p
	}

	seen := make(map[unsafe.Pointer]bool)
	for _, p := range ptrs {
		if seen[p] {
			t.Fatal("allocator returned the same pointer twice while all blocks were live")
		}
		seen[p] = true
	}

	for _, p := range ptrs {
		h.Free(p)
	}

	// After freeing everything the free list should have coalesced back
	// down to a single node, so a fresh allocation as large as the whole
	// initial heap's payload should succeed.
	p := h.Allocate(1<<17-uintptr(nodeSize), 16)
	if p == nil {
		t.Fatal("expected allocation to succeed after freeing everything")
	}
}

func TestAllocateAcceptsRequestedAlignment(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, 1<<17)

	seen := make(map[unsafe.Pointer]bool)
	for _, align := range []uintptr{1, 8, 16, 64, 256} {
		p := h.Allocate(24, align)
		if p == nil {
			t.Fatalf("allocation with align=%d failed", align)
		}
		if seen[p] {
			t.Fatalf("align=%d: reused a still-live pointer", align)
		}
		seen[p] = true
	}
}

func TestAllocateGrowsHeapWhenExhausted(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, 4096)

	// Exhaust the initial region with small allocations, forcing a
	// subsequent allocation to trigger expandHeap.
	var last unsafe.Pointer
	for i := 0; i < 4096/64; i++ {
		p := h.Allocate(48, 16)
		if p == nil {
			break
		}
		last = p
	}
	if last == nil {
		t.Fatal("expected at least one allocation to succeed")
	}

	p := h.Allocate(2048, 16)
	if p == nil {
		t.Fatal("expected heap growth to satisfy a larger allocation")
	}
}

func TestExpandHeapFailsPastMaxSize(t *testing.T) {
	buf := make([]byte, 8192)
	start := uintptr(unsafe.Pointer(&buf[0]))

	h, err := Init(start, 8192, 4096, &fakeFrameSource{}, noopMapper{})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if h.expandHeap(1 << 20) {
		t.Fatal("expected expandHeap to fail when growth would exceed maxSize")
	}
}

func TestAllocateFailsWhenFramesExhausted(t *testing.T) {
	buf := make([]byte, 8192)
	start := uintptr(unsafe.Pointer(&buf[0]))

	h, err := Init(start, 8192, 4096, &limitedFrameSource{budget: 1}, noopMapper{})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// Take more than half of the initial node so a second request of the
	// same size cannot fit and must grow.
	p := h.Allocate(2048, 16)
	if p == nil {
		t.Fatal("expected the initial block to be allocatable")
	}

	if got := h.Allocate(2048, 16); got != nil {
		t.Fatal("expected allocation to fail once frames are exhausted and growth is required")
	}
}
