package main

import "nyxcore/kernel/kmain"

// main is the only Go symbol visible from the rt0 initialization code. It
// works as a trampoline into the real kernel entrypoint (kmain.Kmain) and is
// intentionally defined this way to prevent the Go compiler from optimizing
// away kernel code it has no other static reference to.
//
// The rt0 assembly sets up the GDT, parses the Limine response structures
// into bootinfo, and prepares a minimal g0 struct before jumping here.
//
// main is not expected to return. If it does, the rt0 code halts the CPU.
func main() {
	kmain.Kmain()
}
