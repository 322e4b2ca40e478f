package apic

import (
	"testing"
	"unsafe"
)

func uintptrOf(page []uint32) uintptr {
	return uintptr(unsafe.Pointer(&page[0]))
}

func TestCoreIDBeforeInit(t *testing.T) {
	defer func() { virtBase = 0 }()
	virtBase = 0

	if got := CoreID(); got != 0 {
		t.Fatalf("expected CoreID() to default to 0 before Init, got %d", got)
	}
}

func TestCoreIDReadsMappedRegister(t *testing.T) {
	defer func() { virtBase = 0 }()

	page := make([]uint32, 16)
	// The LAPIC ID occupies the top 8 bits of the ID register.
	page[idRegisterOffset/4] = 3 << 24

	Init(uintptrOf(page))
	if got := CoreID(); got != 3 {
		t.Fatalf("expected CoreID() to return 3, got %d", got)
	}
}
