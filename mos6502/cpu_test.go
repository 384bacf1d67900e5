package mos6502

import (
	"testing"

	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/debug"
)

// flatBus is a 64KB RAM-backed Bus used to exercise the CPU in
// isolation, without a real cartridge or PPU wired in.
type flatBus struct {
	mem [65536]uint8
}

func (b *flatBus) Read(addr uint16) uint8       { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, val uint8) { b.mem[addr] = val }

func newTestCPU(program []uint8) (*CPU, *flatBus) {
	b := &flatBus{}
	copy(b.mem[0x8000:], program)
	b.mem[0xFFFC] = 0x00
	b.mem[0xFFFD] = 0x80
	return New(b, config.Default(), nil), b
}

func TestResetVector(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xEA})
	if c.PC != 0x8000 {
		t.Errorf("PC after reset = %#04x, want 0x8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("SP after reset = %#02x, want 0xFD", c.SP)
	}
	if c.Status != 0 {
		t.Errorf("status after reset = %08b, want 0", c.Status)
	}
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	tests := []struct {
		name       string
		val        uint8
		wantZero   bool
		wantNeg    bool
	}{
		{"positive", 0x42, false, false},
		{"zero", 0x00, true, false},
		{"negative", 0x80, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCPU([]uint8{0xA9, tt.val})
			c.Step()
			if c.A != tt.val {
				t.Errorf("A = %#02x, want %#02x", c.A, tt.val)
			}
			if c.flagSet(FlagZero) != tt.wantZero {
				t.Errorf("zero flag = %v, want %v", c.flagSet(FlagZero), tt.wantZero)
			}
			if c.flagSet(FlagNegative) != tt.wantNeg {
				t.Errorf("negative flag = %v, want %v", c.flagSet(FlagNegative), tt.wantNeg)
			}
		})
	}
}

func TestTAXCopiesAccumulator(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x07, 0xAA})
	c.Step()
	c.Step()
	if c.X != 0x07 {
		t.Errorf("X = %#02x, want 0x07", c.X)
	}
}

func TestINXWraps(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xE8})
	c.X = 0xFF
	c.Step()
	if c.X != 0x00 {
		t.Errorf("X = %#02x, want 0x00", c.X)
	}
	if !c.flagSet(FlagZero) {
		t.Errorf("zero flag not set after wraparound")
	}
}

func TestADCSetsCarryAndOverflow(t *testing.T) {
	// 0x50 + 0x50 = 0xA0: signed overflow (pos+pos=neg), no carry.
	c, _ := newTestCPU([]uint8{0xA9, 0x50, 0x69, 0x50})
	c.Step()
	c.Step()
	if c.A != 0xA0 {
		t.Errorf("A = %#02x, want 0xA0", c.A)
	}
	if !c.flagSet(FlagOverflow) {
		t.Errorf("overflow flag not set")
	}
	if c.flagSet(FlagCarry) {
		t.Errorf("carry flag unexpectedly set")
	}
}

func TestSBCBorrowViaInvertedOperand(t *testing.T) {
	// SEC; LDA #$05; SBC #$03 => A = 2, carry set (no borrow).
	c, _ := newTestCPU([]uint8{0x38, 0xA9, 0x05, 0xE9, 0x03})
	c.Step()
	c.Step()
	c.Step()
	if c.A != 0x02 {
		t.Errorf("A = %#02x, want 0x02", c.A)
	}
	if !c.flagSet(FlagCarry) {
		t.Errorf("carry flag should remain set (no borrow occurred)")
	}
}

func TestSBCBorrowClearsCarry(t *testing.T) {
	// SEC; LDA #$03; SBC #$05 => A = 0xFE, carry clear (borrow occurred).
	c, _ := newTestCPU([]uint8{0x38, 0xA9, 0x03, 0xE9, 0x05})
	c.Step()
	c.Step()
	c.Step()
	if c.A != 0xFE {
		t.Errorf("A = %#02x, want 0xFE", c.A)
	}
	if c.flagSet(FlagCarry) {
		t.Errorf("carry flag should be clear after a borrow")
	}
}

func TestORAIsInclusiveOr(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x0F, 0x09, 0xF0})
	c.Step()
	c.Step()
	if c.A != 0xFF {
		t.Errorf("A = %#02x, want 0xFF (ORA must be inclusive-or, not XOR)", c.A)
	}
}

func TestASLSetsCarryFromBit7(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x81, 0x0A})
	c.Step()
	c.Step()
	if c.A != 0x02 {
		t.Errorf("A = %#02x, want 0x02", c.A)
	}
	if !c.flagSet(FlagCarry) {
		t.Errorf("carry flag not set from shifted-out bit 7")
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	// JSR $8010; at $8010: RTS. Execution should land back at $8003.
	c, b := newTestCPU([]uint8{0x20, 0x10, 0x80})
	b.mem[0x8010] = 0x60
	c.Step() // JSR
	if c.PC != 0x8010 {
		t.Errorf("PC after JSR = %#04x, want 0x8010", c.PC)
	}
	c.Step() // RTS
	if c.PC != 0x8003 {
		t.Errorf("PC after RTS = %#04x, want 0x8003", c.PC)
	}
}

func TestOverflowFlagReadDirectlyFromStatusBit(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xEA})
	c.Status |= FlagOverflow
	if !c.flagSet(FlagOverflow) {
		t.Errorf("flagSet must read status bit 6 directly")
	}
	if c.Status&(1<<6) == 0 {
		t.Errorf("FlagOverflow constant must correspond to bit 6")
	}
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	c, b := newTestCPU([]uint8{0x6C, 0xFF, 0x20})
	b.mem[0x20FF] = 0x34
	b.mem[0x2000] = 0x12 // bugged read wraps to $2000, not $2100
	b.mem[0x2100] = 0xFF
	c.Step()
	if c.PC != 0x1234 {
		t.Errorf("PC = %#04x, want 0x1234 (bugged page-wrap read)", c.PC)
	}
}

func TestIndirectJMPBugDisabled(t *testing.T) {
	b := &flatBus{}
	b.mem[0xFFFC], b.mem[0xFFFD] = 0x00, 0x80
	copy(b.mem[0x8000:], []uint8{0x6C, 0xFF, 0x20})
	b.mem[0x20FF] = 0x34
	b.mem[0x2100] = 0x12
	opts := config.Default()
	opts.EmulateIndirectJMPBug = false
	c := New(b, opts, nil)
	c.Step()
	if c.PC != 0x1234 {
		t.Errorf("PC = %#04x, want 0x1234 (correct non-wrapping read)", c.PC)
	}
}

func TestBRKPushesBreakFlagAndJumpsToIRQVector(t *testing.T) {
	c, b := newTestCPU([]uint8{0x00})
	b.mem[0xFFFE] = 0x00
	b.mem[0xFFFF] = 0x90
	c.Step()
	if c.PC != 0x9000 {
		t.Errorf("PC = %#04x, want 0x9000", c.PC)
	}
	pushed := b.mem[stackBase+uint16(c.SP)+1]
	if pushed&FlagBreak == 0 {
		t.Errorf("status pushed by BRK must have the break flag set")
	}
}

func TestBRKChargesSevenCyclesNotFourteen(t *testing.T) {
	c, b := newTestCPU([]uint8{0x00})
	b.mem[0xFFFE] = 0x00
	b.mem[0xFFFF] = 0x90
	if got := c.Step(); got != 7 {
		t.Errorf("Step() = %d cycles for BRK, want 7", got)
	}
}

func TestNMIChargesSevenCycles(t *testing.T) {
	c, b := newTestCPU([]uint8{0xEA})
	b.mem[0xFFFA] = 0x00
	b.mem[0xFFFB] = 0x90
	c.TriggerNMI()
	if got := c.Step(); got != 7 {
		t.Errorf("Step() = %d cycles for a serviced NMI, want 7", got)
	}
}

func TestBranchTakenAcrossPageChargesFourCycles(t *testing.T) {
	// BNE at $80FC with operand +4: the following instruction would
	// be at $80FE, and $80FE+4 = $8102 lands on the next page.
	c, b := newTestCPU([]uint8{})
	c.PC = 0x80FC
	b.mem[0x80FC] = 0xD0 // BNE
	b.mem[0x80FD] = 0x04
	c.Status &^= FlagZero // ensure the branch is taken

	if got := c.Step(); got != 4 {
		t.Errorf("Step() = %d cycles for a page-crossing taken branch, want 4", got)
	}
	if c.PC != 0x8102 {
		t.Errorf("PC = %#04x, want 0x8102", c.PC)
	}
}

func TestBranchTakenSamePageChargesThreeCycles(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xD0, 0x02}) // BNE +2, stays on the same page
	c.Status &^= FlagZero

	if got := c.Step(); got != 3 {
		t.Errorf("Step() = %d cycles for a same-page taken branch, want 3", got)
	}
}

func TestBranchNotTakenChargesTwoCycles(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xD0, 0x02}) // BNE +2
	c.Status |= FlagZero                    // branch not taken

	if got := c.Step(); got != 2 {
		t.Errorf("Step() = %d cycles for a not-taken branch, want 2", got)
	}
}

func TestMayContinueHookPausesExecution(t *testing.T) {
	b := &flatBus{}
	b.mem[0xFFFC], b.mem[0xFFFD] = 0x00, 0x80
	copy(b.mem[0x8000:], []uint8{0xA9, 0x42})
	c := New(b, config.Default(), pausedHooks{})
	cycles := c.Step()
	if cycles != 0 {
		t.Errorf("Step() = %d cycles, want 0 when MayContinue reports false", cycles)
	}
	if c.PC != 0x8000 {
		t.Errorf("PC advanced to %#04x despite MayContinue reporting false", c.PC)
	}
}

type pausedHooks struct{}

func (pausedHooks) MayContinue(pc uint16) bool        { return false }
func (pausedHooks) OnMemoryAccess(a debug.Access) {}

var _ debug.Hooks = pausedHooks{}
