// Package config holds the small set of knobs the core takes at
// construction time. Nothing here is read from a file, flag, or
// environment variable; the host is responsible for sourcing values
// and passing an Options value in.
package config

// Options configures a nescore.Console at construction time.
type Options struct {
	// EmulateIndirectJMPBug reproduces the NMOS 6502 bug where
	// JMP (indirect) with an operand ending in $xxFF reads its
	// high byte from $xx00 instead of $(xx+1)00. Real cartridges
	// were authored against real silicon, so this defaults on.
	EmulateIndirectJMPBug bool

	// DisableNMI prevents the PPU's VBlank-start NMI from ever
	// reaching the CPU, regardless of PPUCTRL bit 7. Used by tests
	// that want deterministic frame timing without servicing an
	// interrupt mid-scanline.
	DisableNMI bool

	// TraceMemory routes every PPU register access through the
	// debug.Hooks attached to the console. Off by default; the
	// hooks themselves are no-ops unless something is attached.
	TraceMemory bool
}

// Default returns the options a bare console should boot with.
func Default() Options {
	return Options{EmulateIndirectJMPBug: true}
}
