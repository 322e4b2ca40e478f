// Package serial drives the first 16550 UART (COM1), the kernel's only
// output device: there is no framebuffer console, so every Printf, panic
// message and test-runner result goes out over this port.
package serial

import "nyxcore/kernel/cpu"

const (
	dataPort            = 0x3F8
	interruptEnablePort = dataPort + 1
	fifoControlPort     = dataPort + 2
	lineControlPort     = dataPort + 3
	modemControlPort    = dataPort + 4
	lineStatusPort      = dataPort + 5
)

const lineStatusOutputEmpty = 1 << 5

var portOut = cpu.OutB
var portIn = cpu.InB

// Init brings the UART up at 38400 baud, 8 data bits, no parity, one stop
// bit, with the FIFOs enabled.
func Init() {
	portOut(lineControlPort, 0x80) // enable DLAB
	portOut(dataPort, 0x03)        // divisor low byte: 38400 bps
	portOut(interruptEnablePort, 0x00)
	portOut(lineControlPort, 0x03) // disable DLAB, 8 data bits
	portOut(fifoControlPort, 0xc7) // enable FIFO, clear, 14-byte threshold
	portOut(modemControlPort, 0x0b)
}

func outputReady() bool {
	return portIn(lineStatusPort)&lineStatusOutputEmpty != 0
}

// WriteByte sends a single byte, translating backspace into the
// backspace-space-backspace sequence a dumb terminal needs to actually
// erase the previous character.
func WriteByte(ch byte) {
	switch ch {
	case '\b', 0x7f:
		for !outputReady() {
		}
		portOut(dataPort, '\b')
		for !outputReady() {
		}
		portOut(dataPort, ' ')
		for !outputReady() {
		}
		portOut(dataPort, '\b')
	default:
		for !outputReady() {
		}
		portOut(dataPort, ch)
	}
}

// Write implements io.Writer over the serial port.
func Write(p []byte) (int, error) {
	for _, b := range p {
		WriteByte(b)
	}
	return len(p), nil
}
