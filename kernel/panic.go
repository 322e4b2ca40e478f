package kernel

import (
	"sync/atomic"
	"unsafe"

	"nyxcore/kernel/cpu"
	"nyxcore/kernel/kfmt/early"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	// disableInterruptsFn is mocked by tests: CLI is a privileged
	// instruction and cannot run in a hosted test process.
	disableInterruptsFn = cpu.DisableInterrupts

	// framePointerFn is mocked by tests; production builds read the real
	// base pointer to walk the stack.
	framePointerFn = cpu.FramePointer

	// panicking guards against a second, re-entrant call to Panic (e.g. a
	// fault while already unwinding) printing over, or deadlocking behind,
	// the first one. 0 means no panic is in progress yet.
	panicking uint32

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) to the console and halts the
// CPU. Calls to Panic never return. Panic also works as a redirection target
// for calls to panic() (resolved via runtime.gopanic).
//
//go:redirect-from runtime.gopanic
func Panic(e interface{}) {
	disableInterruptsFn()

	if atomic.SwapUint32(&panicking, 1) != 0 {
		early.Printf("\n*** double panic: system halted ***\n")
		cpuHaltFn()
		return
	}

	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	early.Printf("\n-----------------------------------\n")
	if err != nil {
		early.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	printStackTrace()
	early.Printf("*** kernel panic: system halted ***")
	early.Printf("\n-----------------------------------\n")

	cpuHaltFn()
}

// printStackTrace walks the frame-pointer chain starting at the caller of
// Panic, printing each return address. It relies on the Go compiler's
// default amd64 frame-pointer chaining (every non-leaf frame pushes the
// caller's base pointer followed by the return address).
func printStackTrace() {
	bp := framePointerFn()
	for bp != 0 {
		retAddr := *(*uintptr)(unsafe.Pointer(bp + unsafe.Sizeof(bp)))
		if retAddr == 0 {
			break
		}

		early.Printf(" - <0x%x>\n", retAddr)
		bp = *(*uintptr)(unsafe.Pointer(bp))
	}
}
