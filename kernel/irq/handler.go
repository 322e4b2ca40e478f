package irq

// ExceptionNum identifies a CPU exception vector.
type ExceptionNum uint8

const (
	// DoubleFault occurs when an exception is unhandled, or when an
	// exception occurs while the CPU is trying to call an exception
	// handler.
	DoubleFault = ExceptionNum(8)

	// GPFException is raised when a general protection fault occurs.
	GPFException = ExceptionNum(13)

	// PageFaultException is raised when a page table entry is not
	// present, or a privilege/RW check fails while walking the tables.
	PageFaultException = ExceptionNum(14)
)

// ExceptionHandler handles an exception that does not push an error code.
type ExceptionHandler func(*Frame, *Regs)

// ExceptionHandlerWithCode handles an exception that pushes an error code.
type ExceptionHandlerWithCode func(code uint64, frame *Frame, regs *Regs)

var (
	handlers         = map[ExceptionNum]ExceptionHandler{}
	handlersWithCode = map[ExceptionNum]ExceptionHandlerWithCode{}
)

// HandleException registers an exception handler (without an error code)
// for the given vector, replacing any previously registered handler.
func HandleException(exceptionNum ExceptionNum, handler ExceptionHandler) {
	handlers[exceptionNum] = handler
}

// HandleExceptionWithCode registers an exception handler (with an error
// code) for the given vector, replacing any previously registered handler.
func HandleExceptionWithCode(exceptionNum ExceptionNum, handler ExceptionHandlerWithCode) {
	handlersWithCode[exceptionNum] = handler
}

// dispatch is called by Dispatch when a fault fires on a vector with no
// error-code handler. It looks up the registered handler and invokes it; if
// no handler is registered for the vector it does nothing. Init's default
// (panicking) handlers are ordinary registrations in these same maps.
func dispatch(num ExceptionNum, frame *Frame, regs *Regs) {
	if h, ok := handlers[num]; ok {
		h(frame, regs)
	}
}

func dispatchWithCode(num ExceptionNum, code uint64, frame *Frame, regs *Regs) {
	if h, ok := handlersWithCode[num]; ok {
		h(code, frame, regs)
	}
}
