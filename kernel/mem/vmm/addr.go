package vmm

import "unsafe"

// unsafePointerAdd returns the PageTable found at physAddr+offset, viewed
// through the HHDM direct map.
func unsafePointerAdd(physAddr uintptr, offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(physAddr + offset)
}
