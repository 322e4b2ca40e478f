package kernel

import (
	"bytes"
	"sync/atomic"

	"nyxcore/kernel/cpu"
	"nyxcore/kernel/hal"
	"testing"
)

type bufTerminal struct {
	bytes.Buffer
}

func (t *bufTerminal) WriteByte(b byte) { t.Buffer.WriteByte(b) }

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		disableInterruptsFn = cpu.DisableInterrupts
		framePointerFn = cpu.FramePointer
	}()

	var cpuHaltCalled, interruptsDisabled bool
	cpuHaltFn = func() {
		cpuHaltCalled = true
	}
	disableInterruptsFn = func() {
		interruptsDisabled = true
	}
	// A nil frame pointer means printStackTrace's walk is a no-op, keeping
	// the expected output deterministic.
	framePointerFn = func() uintptr { return 0 }

	t.Run("with error", func(t *testing.T) {
		atomic.StoreUint32(&panicking, 0)
		cpuHaltCalled, interruptsDisabled = false, false
		fb := mockTTY()
		err := &Error{Module: "test", Message: "panic test"}

		Panic(err)

		exp := "\n-----------------------------------\n[test] unrecoverable error: panic test\n*** kernel panic: system halted ***\n-----------------------------------\n"

		if got := fb.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
		if !interruptsDisabled {
			t.Fatal("expected interrupts to be disabled by Panic")
		}
	})

	t.Run("without error", func(t *testing.T) {
		atomic.StoreUint32(&panicking, 0)
		cpuHaltCalled, interruptsDisabled = false, false
		fb := mockTTY()

		Panic(nil)

		exp := "\n-----------------------------------\n*** kernel panic: system halted ***\n-----------------------------------\n"

		if got := fb.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})

	t.Run("re-entrant panic halts immediately", func(t *testing.T) {
		atomic.StoreUint32(&panicking, 1)
		cpuHaltCalled = false
		fb := mockTTY()

		Panic(&Error{Module: "test", Message: "second panic"})

		exp := "\n*** double panic: system halted ***\n"
		if got := fb.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}
		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called on re-entrant panic")
		}
	})
}

func mockTTY() *bufTerminal {
	fb := &bufTerminal{}
	hal.ActiveTerminal = fb
	return fb
}
