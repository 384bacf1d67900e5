// Package cartridge implements the external collaborator contract the
// core expects of a loaded NES cartridge: a Mapper that answers CPU
// and PPU reads/writes and reports its nametable mirroring mode. ROM
// loading and mapper bank-switching schemes beyond the simplest board
// (NROM) are out of the core's scope; this package carries just
// enough to exercise the bus and PPU against a real iNES file.
package cartridge

import "fmt"

// Mirroring describes how the PPU should fold its four logical
// nametables onto the two physical 1KB banks a cartridge without
// four-screen VRAM actually has.
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingleScreenLow
	MirrorSingleScreenHigh
	MirrorFourScreen
)

// Mapper is the interface the bus and PPU use to reach cartridge
// memory. CPU-side PRG accesses cover $4020-$FFFF; PPU-side CHR
// accesses cover $0000-$1FFF.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, val uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)
	Mirroring() Mirroring
}

// NROM implements mapper 0: a fixed 16KB or 32KB PRG window mirrored
// to fill $8000-$FFFF, and either CHR-ROM or a 8KB CHR-RAM fallback
// when the ROM declares zero CHR banks.
type NROM struct {
	prg  []uint8
	chr  []uint8
	mirr Mirroring
}

// NewNROM builds an NROM mapper directly from PRG/CHR banks and a
// mirroring mode, bypassing ROM file parsing entirely. Useful for
// tests and for any host that already has raw cartridge bytes.
func NewNROM(prg, chr []uint8, mirr Mirroring) *NROM {
	m := &NROM{prg: prg, mirr: mirr}
	if len(chr) == 0 {
		m.chr = make([]uint8, 8192)
	} else {
		m.chr = chr
	}
	return m
}

func (m *NROM) ReadPRG(addr uint16) uint8 {
	if addr < 0x8000 {
		return 0
	}
	return m.prg[int(addr-0x8000)%len(m.prg)]
}

func (m *NROM) WritePRG(addr uint16, val uint8) {
	// PRG-ROM is not writable on a plain NROM board.
}

func (m *NROM) ReadCHR(addr uint16) uint8 {
	return m.chr[addr%uint16(len(m.chr))]
}

func (m *NROM) WriteCHR(addr uint16, val uint8) {
	m.chr[addr%uint16(len(m.chr))] = val
}

func (m *NROM) Mirroring() Mirroring {
	return m.mirr
}

var _ Mapper = (*NROM)(nil)

// NewFromROM builds the one concrete mapper this package ships for a
// parsed ROM. Any mapper number other than 0 is reported as an error
// rather than silently falling back, since wiring additional banking
// schemes is explicitly left to an external project.
func NewFromROM(r *ROM) (Mapper, error) {
	if r.MapperID() != 0 {
		return nil, fmt.Errorf("cartridge: mapper %d not supported by this core; only NROM (mapper 0) is built in", r.MapperID())
	}
	return NewNROM(r.PRG(), r.CHR(), r.MirroringMode()), nil
}
