// Package nescore assembles the CPU, PPU, and bus into one runnable
// console: the one constructor a host needs to call, and the small
// surface (Reset, Step, DrawFrame, LastFrame, controller wiring) that
// replaces the teacher's two incompatible "machine" constructors.
package nescore

import (
	"github.com/bdwalton/nescore/bus"
	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/debug"
	"github.com/bdwalton/nescore/mos6502"
	"github.com/bdwalton/nescore/ppu"
)

// Console wires a CPU, a PPU, and the bus connecting them to one
// cartridge.Mapper. Nothing here owns real-time pacing; a host drives
// it frame by frame (or instruction by instruction, for a debugger).
type Console struct {
	CPU    *mos6502.CPU
	PPU    *ppu.PPU
	Bus    *bus.Bus
	Mapper cartridge.Mapper
}

// New builds a fully wired Console over mapper. hooks may be nil, in
// which case every component uses debug.NopHooks.
func New(mapper cartridge.Mapper, opts config.Options, hooks debug.Hooks) *Console {
	if hooks == nil {
		hooks = debug.NopHooks{}
	}
	p := ppu.New(mapper, opts, hooks)
	b := bus.New(mapper, p)
	c := mos6502.New(b, opts, hooks)

	if !opts.DisableNMI {
		p.NMICallback = c.TriggerNMI
	}

	return &Console{CPU: c, PPU: p, Bus: b, Mapper: mapper}
}

// NewFromROM builds the one concrete mapper this core ships for an
// already parsed rom before wiring up a Console.
func NewFromROM(rom *cartridge.ROM, opts config.Options, hooks debug.Hooks) (*Console, error) {
	mapper, err := cartridge.NewFromROM(rom)
	if err != nil {
		return nil, err
	}
	return New(mapper, opts, hooks), nil
}

// Reset drives the CPU's reset sequence. The PPU has no equivalent
// hardware reset line modeled here; it simply keeps running from
// whatever scanline/cycle it was at.
func (c *Console) Reset() {
	c.CPU.Reset()
}

// SetController attaches a pad to port 0 or 1.
func (c *Console) SetController(port int, ctrl bus.Controller) {
	c.Bus.SetController(port, ctrl)
}

// Step executes exactly one CPU instruction (plus any OAM DMA stall
// it triggered) and the coincident PPU cycles — three PPU cycles per
// CPU cycle — returning the number of CPU cycles consumed. A return
// of 0 means debug.Hooks.MayContinue paused execution before the
// fetch.
func (c *Console) Step() int {
	cycles := c.CPU.Step()
	c.Bus.NoteCPUCycles(cycles)
	total := int(cycles) + c.Bus.StallCycles()

	for i := 0; i < total*3; i++ {
		c.PPU.Step()
	}
	return total
}

// DrawFrame runs Step until the PPU reports a completed frame, or
// until Step stops making progress because a debug hook has paused
// execution.
func (c *Console) DrawFrame() {
	for {
		if c.Step() == 0 {
			return
		}
		if c.PPU.FrameComplete() {
			return
		}
	}
}

// LastFrame returns the most recently rendered frame as packed RGBA
// bytes, row-major, 256x240. The backing array is reused across
// frames; copy it if the caller needs to retain it past the next
// DrawFrame call.
func (c *Console) LastFrame() []uint8 {
	return c.PPU.Frame()
}
