package heap

import (
	"testing"
	"unsafe"
)

func TestRoundBlockLength(t *testing.T) {
	cases := map[uintptr]uintptr{
		0:   minBlockLength,
		1:   minBlockLength,
		15:  minBlockLength,
		16:  minBlockLength,
		17:  32,
		100: 128,
		256: 256,
	}
	for in, exp := range cases {
		if got := roundBlockLength(in); got != exp {
			t.Errorf("roundBlockLength(%d): expected %d, got %d", in, exp, got)
		}
	}
}

func TestPadUp(t *testing.T) {
	cases := []struct{ size, align, exp uintptr }{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{24, 64, 64},
		{100, 256, 256},
	}
	for _, c := range cases {
		if got := padUp(c.size, c.align); got != c.exp {
			t.Errorf("padUp(%d, %d): expected %d, got %d", c.size, c.align, c.exp, got)
		}
	}
}

func TestNodeSplitAndCombineForward(t *testing.T) {
	buf := make([]byte, 4096)
	root := (*Node)(unsafe.Pointer(&buf[0]))
	*root = Node{length: 4096 - nodeSize}

	root.split(64)

	if root.length != 64 {
		t.Fatalf("expected first half length 64, got %d", root.length)
	}
	if root.next == nil {
		t.Fatal("expected split to produce a successor node")
	}
	if root.next.last != root {
		t.Fatal("expected successor's last pointer to point back at root")
	}

	expRemainder := (4096 - nodeSize) - 64 - nodeSize
	if root.next.length != expRemainder {
		t.Fatalf("expected remainder length %d, got %d", expRemainder, root.next.length)
	}

	root.combineForward()
	if root.length != 4096-nodeSize {
		t.Fatalf("expected combineForward to restore original length, got %d", root.length)
	}
	if root.next != nil {
		t.Fatal("expected combineForward to remove the successor")
	}
}

func TestSplitPanicsOnInUseNode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected split on an in-use node to panic")
		}
	}()

	buf := make([]byte, 256)
	n := (*Node)(unsafe.Pointer(&buf[0]))
	*n = Node{length: 256 - nodeSize, inUse: true}
	n.split(32)
}
