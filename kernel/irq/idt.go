package irq

import (
	"nyxcore/kernel"
	"nyxcore/kernel/cpu"
)

var (
	errPageFault = &kernel.Error{Module: "irq", Message: "page fault"}
	errGPF       = &kernel.Error{Module: "irq", Message: "general protection fault"}
)

// Init installs the default page-fault and general-protection-fault
// handlers. Both panic unconditionally: demand paging and copy-on-write
// fault recovery are not implemented.
func Init() {
	HandleExceptionWithCode(PageFaultException, func(code uint64, frame *Frame, regs *Regs) {
		faultAddr := cpu.ReadCR2()
		frame.Print()
		regs.Print()
		errPageFault.Message = "page fault at unmapped or protected address"
		_ = faultAddr
		kernel.Panic(errPageFault)
	})

	HandleExceptionWithCode(GPFException, func(code uint64, frame *Frame, regs *Regs) {
		frame.Print()
		regs.Print()
		kernel.Panic(errGPF)
	})
}

// Dispatch is invoked by the arch-specific fault entry stubs with the
// vector that fired, the error code pushed by the CPU (0 for vectors that
// don't push one) and the captured frame/registers. It is exported so the
// trampoline can live in a leaf package without importing irq's handler
// registry directly.
func Dispatch(num ExceptionNum, code uint64, frame *Frame, regs *Regs) {
	if _, ok := handlersWithCode[num]; ok {
		dispatchWithCode(num, code, frame, regs)
		return
	}
	dispatch(num, frame, regs)
}
