package cpu

const (
	mainPICDataPort      = 0x00A0
	secondaryPICDataPort = 0x00A1

	qemuDebugExitPort = 0xF4
)

// DisablePIC masks off both legacy 8259 PICs so their interrupts never fire
// once the LAPIC is handling interrupt delivery.
func DisablePIC() {
	OutB(mainPICDataPort, 0xFF)
	OutB(secondaryPICDataPort, 0xFF)
}

// QemuExit writes code to QEMU's isa-debug-exit device, which terminates
// the emulator with status (code<<1)|1 when built and run under QEMU with
// that device attached. It is used by the test runner to report success or
// failure without needing a human at the console.
func QemuExit(code uint8) {
	OutB(qemuDebugExitPort, code)
}
