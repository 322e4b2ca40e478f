// Package hal provides the thin hardware-abstraction surface kmain uses to
// bring up output and parse the boot-time environment before the rest of
// the memory-management stack exists.
package hal

import "nyxcore/kernel/driver/serial"

// Terminal is the minimal output sink early.Printf and kernel.Panic write
// through. It is a narrow interface so tests can swap in an in-memory
// fake instead of talking to a real UART.
type Terminal interface {
	WriteByte(byte)
	Write([]byte) (int, error)
}

type serialTerminal struct{}

func (serialTerminal) WriteByte(b byte) { serial.WriteByte(b) }
func (serialTerminal) Write(p []byte) (int, error) {
	return serial.Write(p)
}

// ActiveTerminal is the terminal early.Printf and Panic write to. It
// defaults to the real serial port; tests replace it with a fake to
// capture output.
var ActiveTerminal Terminal = serialTerminal{}

// InitTerminal brings up the serial port so ActiveTerminal can be used.
func InitTerminal() {
	serial.Init()
}
