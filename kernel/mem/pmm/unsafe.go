package pmm

import "unsafe"

// unsafeBytesAt views the n bytes starting at addr as a byte slice, used to
// reach the bitmap's backing storage (carved directly out of managed
// physical memory) without a heap allocation.
func unsafeBytesAt(addr uintptr, n uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
