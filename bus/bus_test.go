package bus

import (
	"testing"

	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/ppu"
)

func newTestBus() *Bus {
	mapper := cartridge.NewNROM(make([]uint8, 16384), make([]uint8, 8192), cartridge.MirrorHorizontal)
	p := ppu.New(mapper, config.Default(), nil)
	return New(mapper, p)
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus()
	b.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := b.Read(mirror); got != 0x42 {
			t.Errorf("Read(%#04x) = %#02x, want 0x42 (RAM mirror)", mirror, got)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b := newTestBus()
	b.Write(0x2000, 0x80) // PPUCTRL: enable NMI
	b.Write(0x2008, 0x00) // mirror of $2000
	// PPUCTRL is write-only, so observe it through NMI generation over
	// one full frame of PPU cycles.
	fired := 0
	b.ppu.NMICallback = func() { fired++ }
	for i := 0; i < 262*341; i++ {
		b.ppu.Step()
	}
	if fired != 0 {
		t.Errorf("write to mirrored $2008 should have overwritten PPUCTRL")
	}
}

func TestControllerShiftsOutBitsInOrder(t *testing.T) {
	b := newTestBus()
	pad := &StaticController{}
	pad.SetButton(ButtonA, true)
	pad.SetButton(ButtonStart, true)
	b.SetController(0, pad)

	b.Write(ctrl1Reg, 1) // strobe high, latches
	b.Write(ctrl1Reg, 0) // strobe low, begin shifting

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		if got := b.readController(0); got != w {
			t.Errorf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestOAMDMAChargesStallCycles(t *testing.T) {
	b := newTestBus()
	b.cpuCycleCount = 2 // even
	b.Write(0x4014, 0x07)
	if got := b.StallCycles(); got != 512 {
		t.Errorf("StallCycles() = %d, want 512 on an even cycle", got)
	}

	b.cpuCycleCount = 3 // odd
	b.Write(0x4014, 0x07)
	if got := b.StallCycles(); got != 512 {
		t.Errorf("StallCycles() = %d, want 512 on an odd cycle too", got)
	}
}

func TestCartridgePRGIsReadThroughMapper(t *testing.T) {
	b := newTestBus()
	b.mapper = cartridge.NewNROM([]uint8{0xAB}, make([]uint8, 8192), cartridge.MirrorHorizontal)
	if got := b.Read(0x8000); got != 0xAB {
		t.Errorf("Read(0x8000) = %#02x, want 0xAB", got)
	}
}
