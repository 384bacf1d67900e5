// Package mos6502 implements the NMOS 6502 interpreter that drives an
// NES console: registers, flag algebra, the 256-entry opcode table,
// addressing modes, and interrupt handling. It knows nothing about
// PPU timing or cartridge layout; it only ever talks to a Bus.
package mos6502

import (
	"fmt"
	"reflect"

	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/debug"
)

// Status flag bit positions.
const (
	FlagCarry     uint8 = 1 << 0
	FlagZero      uint8 = 1 << 1
	FlagInterrupt uint8 = 1 << 2
	FlagDecimal   uint8 = 1 << 3
	FlagBreak     uint8 = 1 << 4
	FlagUnused    uint8 = 1 << 5
	FlagOverflow  uint8 = 1 << 6
	FlagNegative  uint8 = 1 << 7
)

const (
	stackBase    uint16 = 0x0100
	nmiVector    uint16 = 0xFFFA
	resetVector  uint16 = 0xFFFC
	irqVector    uint16 = 0xFFFE
)

// Bus is the address-space contract the CPU needs. Everything that
// isn't CPU register state lives behind it: RAM, PPU registers,
// controllers, and cartridge PRG.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// CPU is a single NMOS 6502 core, exported so host packages (bus,
// nescore) can hold a typed reference to it.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	Status  uint8

	bus   Bus
	hooks debug.Hooks
	opts  config.Options

	cycles                 uint64
	pendingNMI, pendingIRQ bool

	// addr, accMode, and pageCrossed are scratch state set by the
	// current instruction's addressing mode resolver and read by its
	// executor; all three are only valid during a single Step call.
	addr        uint16
	accMode     bool
	pageCrossed bool
}

// New builds a CPU wired to bus. hooks may be nil, in which case
// debug.NopHooks is used.
func New(bus Bus, opts config.Options, hooks debug.Hooks) *CPU {
	if hooks == nil {
		hooks = debug.NopHooks{}
	}
	c := &CPU{bus: bus, opts: opts, hooks: hooks}
	c.Reset()
	return c
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return hi<<8 | lo
}

// readIndirectBugged reproduces the NMOS page-wrap bug in JMP
// (indirect): when the low byte of the pointer is $FF, the high byte
// is fetched from the start of the same page rather than the next
// one.
func (c *CPU) readIndirectBugged(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hiAddr := addr + 1
	if addr&0x00FF == 0x00FF {
		hiAddr = addr & 0xFF00
	}
	hi := uint16(c.bus.Read(hiAddr))
	return hi<<8 | lo
}

// Reset sets the CPU to its post-reset state: PC loaded from the
// reset vector, SP set to $FD without ever touching memory, A, X, Y
// and the status register all zero.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.Status = 0
	c.PC = c.read16(resetVector)
	c.cycles = 7
}

// TriggerNMI latches a non-maskable interrupt to be serviced before
// the next instruction fetch.
func (c *CPU) TriggerNMI() { c.pendingNMI = true }

// TriggerIRQ latches a maskable interrupt; it is ignored if the
// interrupt-disable flag is set when it would be serviced.
func (c *CPU) TriggerIRQ() { c.pendingIRQ = true }

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.bus.Read(stackBase + uint16(c.SP))
}

func (c *CPU) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

func (c *CPU) setZN(v uint8) {
	c.setFlag(FlagZero, v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
}

func (c *CPU) setFlag(flag uint8, on bool) {
	if on {
		c.Status |= flag
	} else {
		c.Status &^= flag
	}
}

func (c *CPU) flagSet(flag uint8) bool { return c.Status&flag != 0 }

// serviceInterrupt pushes PC and status and jumps to vector. It never
// charges cycles itself: NMI and IRQ servicing in Step charge the
// fixed 7-cycle interrupt cost directly, while BRK's cost comes from
// its own opcode table entry (also 7 cycles, charged by Step's normal
// op.cycles accounting) so the cost is never counted twice.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.push16(c.PC)
	st := c.Status | FlagUnused
	if brk {
		st |= FlagBreak
	} else {
		st &^= FlagBreak
	}
	c.push(st)
	c.setFlag(FlagInterrupt, true)
	c.PC = c.read16(vector)
}

// Step services any pending interrupt, then fetches, decodes, and
// executes exactly one instruction, returning the number of cycles it
// consumed. It consults the attached debug.Hooks before the fetch;
// when MayContinue reports false, Step returns 0 without advancing
// the PC.
func (c *CPU) Step() uint8 {
	if !c.hooks.MayContinue(c.PC) {
		return 0
	}

	if c.pendingNMI {
		c.pendingNMI = false
		c.serviceInterrupt(nmiVector, false)
		c.cycles += 7
		return 7
	}
	if c.pendingIRQ {
		c.pendingIRQ = false
		if !c.flagSet(FlagInterrupt) {
			c.serviceInterrupt(irqVector, false)
			c.cycles += 7
			return 7
		}
	}

	start := c.cycles
	opByte := c.bus.Read(c.PC)
	op := opcodes[opByte]
	c.PC++

	c.accMode = op.mode == Accumulator
	c.pageCrossed = c.resolveOperand(op)

	c.execute(op)

	c.cycles += uint64(op.cycles)
	if op.pageCrossPenalty && c.pageCrossed {
		c.cycles++
	}
	return uint8(c.cycles - start)
}

// resolveOperand sets c.addr (or, for Accumulator/Implicit modes,
// leaves it unused) to the effective address for op and advances PC
// past the operand bytes. It reports whether an indexed/indirect
// resolution crossed a page boundary.
func (c *CPU) resolveOperand(op opcode) bool {
	switch op.mode {
	case Implicit, Accumulator:
		return false
	case Immediate:
		c.addr = c.PC
		c.PC++
		return false
	case ZeroPage:
		c.addr = uint16(c.bus.Read(c.PC))
		c.PC++
		return false
	case ZeroPageX:
		c.addr = uint16(c.bus.Read(c.PC)+c.X) & 0x00FF
		c.PC++
		return false
	case ZeroPageY:
		c.addr = uint16(c.bus.Read(c.PC)+c.Y) & 0x00FF
		c.PC++
		return false
	case Relative:
		off := int8(c.bus.Read(c.PC))
		c.PC++
		base := c.PC
		c.addr = uint16(int32(base) + int32(off))
		return base&0xFF00 != c.addr&0xFF00
	case Absolute:
		c.addr = c.read16(c.PC)
		c.PC += 2
		return false
	case AbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		c.addr = base + uint16(c.X)
		return base&0xFF00 != c.addr&0xFF00
	case AbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		c.addr = base + uint16(c.Y)
		return base&0xFF00 != c.addr&0xFF00
	case Indirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		if c.opts.EmulateIndirectJMPBug {
			c.addr = c.readIndirectBugged(ptr)
		} else {
			c.addr = c.read16(ptr)
		}
		return false
	case IndirectX:
		zp := c.bus.Read(c.PC) + c.X
		c.PC++
		lo := uint16(c.bus.Read(uint16(zp)))
		hi := uint16(c.bus.Read(uint16(zp + 1)))
		c.addr = hi<<8 | lo
		return false
	case IndirectY:
		zp := c.bus.Read(c.PC)
		c.PC++
		lo := uint16(c.bus.Read(uint16(zp)))
		hi := uint16(c.bus.Read(uint16(zp + 1)))
		base := hi<<8 | lo
		c.addr = base + uint16(c.Y)
		return base&0xFF00 != c.addr&0xFF00
	}
	panic(fmt.Sprintf("mos6502: unhandled addressing mode %d", op.mode))
}

// execute dispatches to the instruction handler named after op's
// mnemonic, using reflection the same way the instruction set was
// originally tabled: a flat map from opcode byte to {mnemonic, mode}
// plus one method per mnemonic keeps the table declarative and the
// execution logic colocated with its name.
func (c *CPU) execute(op opcode) {
	name := mnemonics[op.inst]
	m := reflect.ValueOf(c).MethodByName(name)
	if !m.IsValid() {
		panic(fmt.Sprintf("mos6502: no handler for instruction %s", name))
	}
	m.Call(nil)
}

func (c *CPU) operand() uint8 {
	if c.accMode {
		return c.A
	}
	return c.bus.Read(c.addr)
}

func (c *CPU) storeResult(v uint8) {
	if c.accMode {
		c.A = v
	} else {
		c.bus.Write(c.addr, v)
	}
}
