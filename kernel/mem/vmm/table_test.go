package vmm

import "testing"

func TestPageIndices(t *testing.T) {
	// 0x0000_0008_0400_1000 = l4:1 l3:1 l2:2 l1:1
	addr := uintptr(1)<<39 | uintptr(1)<<30 | uintptr(2)<<21 | uintptr(1)<<12

	l4, l3, l2, l1 := pageIndices(addr)
	if l4 != 1 || l3 != 1 || l2 != 2 || l1 != 1 {
		t.Fatalf("expected indices (1,1,2,1), got (%d,%d,%d,%d)", l4, l3, l2, l1)
	}
}

func TestPageIndicesZero(t *testing.T) {
	l4, l3, l2, l1 := pageIndices(0)
	if l4 != 0 || l3 != 0 || l2 != 0 || l1 != 0 {
		t.Fatalf("expected all-zero indices for address 0, got (%d,%d,%d,%d)", l4, l3, l2, l1)
	}
}

func TestMemoryFlagTranslation(t *testing.T) {
	flags := (FlagWritableMem | FlagNoExecuteMem).toEntryFlags()
	if flags&FlagWritable == 0 {
		t.Fatalf("expected WRITABLE bit to be set")
	}
	if flags&FlagNoExecute == 0 {
		t.Fatalf("expected NO_EXECUTE bit to be set")
	}
	if flags&FlagUserAccessible != 0 {
		t.Fatalf("expected USER_ACCESSIBLE bit to be unset")
	}
}

func TestDefaultMemoryFlagsIsWritableAndUserAccessible(t *testing.T) {
	flags := DefaultMemoryFlags().toEntryFlags()
	if flags&FlagWritable == 0 {
		t.Fatal("expected default heap mapping flags to include WRITABLE")
	}
	if flags&FlagUserAccessible == 0 {
		t.Fatal("expected default heap mapping flags to include USER_ACCESSIBLE")
	}
}
