// Package ppu implements the 2C02 picture processing unit: the loopy
// v/t/x scroll state machine, OAM sprite evaluation, pattern/name/
// attribute/palette memory, and the scanline-driven pixel pipeline
// that produces one 256x240 RGBA frame every 89342 PPU cycles.
package ppu

import (
	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/debug"
)

// Register addresses, as exposed to the CPU at $2000-$2007 (mirrored
// every 8 bytes through $3FFF) and $4014.
const (
	RegCTRL   uint16 = 0x2000
	RegMASK   uint16 = 0x2001
	RegSTATUS uint16 = 0x2002
	RegOAMADDR uint16 = 0x2003
	RegOAMDATA uint16 = 0x2004
	RegSCROLL uint16 = 0x2005
	RegADDR   uint16 = 0x2006
	RegDATA   uint16 = 0x2007
	RegOAMDMA uint16 = 0x4014
)

const (
	ctrlNametableMask  = 0x03
	ctrlIncrement32    = 1 << 2
	ctrlSpritePattern  = 1 << 3
	ctrlBgPattern      = 1 << 4
	ctrlSpriteSize8x16 = 1 << 5
	ctrlNMIEnable      = 1 << 7

	maskGreyscale      = 1 << 0
	maskShowBgLeft     = 1 << 1
	maskShowSpriteLeft = 1 << 2
	maskShowBg         = 1 << 3
	maskShowSprites    = 1 << 4

	statusSpriteOverflow = 1 << 5
	statusSpriteZeroHit  = 1 << 6
	statusVBlank         = 1 << 7
)

// PPU is one 2C02 core. It owns its own cycle/scanline counters and
// frame buffer; it never touches the CPU directly, instead calling
// NMICallback when PPUCTRL bit 7 and vblank coincide, mirroring the
// "small bus each side borrows" decoupling the CPU uses.
type PPU struct {
	mapper cartridge.Mapper
	opts   config.Options
	hooks  debug.Hooks

	ctrl, mask, status uint8
	v, t               loopy
	fineX              uint8
	writeToggle        bool
	readBuffer         uint8

	nametables [2][1024]uint8
	paletteRAM [32]uint8
	oam        oam
	secondaryOAM []sprite

	scanline int
	cycle    int
	frameOdd bool

	bgShiftPatternLo, bgShiftPatternHi uint16
	bgShiftAttrLo, bgShiftAttrHi       uint16
	nextTileID, nextTileAttr           uint8
	nextTileLSB, nextTileMSB           uint8

	spriteShiftLo, spriteShiftHi [8]uint8
	spriteX                      [8]uint8
	spriteAttr                   [8]uint8
	spriteIsZero                 [8]bool
	visibleSprites               int
	spriteZeroOnLine             bool

	frame       [256 * 240 * 4]uint8
	frameDone   bool

	// NMICallback is invoked once per frame when vblank starts and
	// NMI generation is enabled. nescore wires this to CPU.TriggerNMI.
	NMICallback func()
}

// New builds a PPU reading cartridge CHR and nametables through
// mapper. hooks may be nil, in which case debug.NopHooks is used.
func New(mapper cartridge.Mapper, opts config.Options, hooks debug.Hooks) *PPU {
	if hooks == nil {
		hooks = debug.NopHooks{}
	}
	return &PPU{mapper: mapper, opts: opts, hooks: hooks}
}

// nametableIndex resolves a $2000-$2FFF address to one of the two
// physical 1KB banks according to the cartridge's mirroring mode.
func (p *PPU) nametableIndex(addr uint16) (bank int, offset uint16) {
	a := (addr - 0x2000) % 0x1000
	table := a / 0x0400
	offset = a % 0x0400

	switch p.mapper.Mirroring() {
	case cartridge.MirrorVertical:
		bank = int(table % 2)
	case cartridge.MirrorHorizontal:
		bank = int(table / 2)
	case cartridge.MirrorSingleScreenLow:
		bank = 0
	case cartridge.MirrorSingleScreenHigh:
		bank = 1
	default: // four-screen: fold onto two banks, best effort without extra VRAM
		bank = int(table % 2)
	}
	return bank, offset
}

func (p *PPU) readNametable(addr uint16) uint8 {
	bank, off := p.nametableIndex(addr)
	return p.nametables[bank][off]
}

func (p *PPU) writeNametable(addr uint16, v uint8) {
	bank, off := p.nametableIndex(addr)
	p.nametables[bank][off] = v
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.mapper.ReadCHR(addr)
	case addr < 0x3F00:
		return p.readNametable(addr)
	default:
		return p.paletteRAM[paletteMirror(addr)]
	}
}

func (p *PPU) writeVRAM(addr uint16, v uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.mapper.WriteCHR(addr, v)
	case addr < 0x3F00:
		p.writeNametable(addr, v)
	default:
		p.paletteRAM[paletteMirror(addr)] = v
	}
}

func (p *PPU) report(kind debug.AccessKind, reg uint16, val uint8) {
	if p.opts.TraceMemory {
		p.hooks.OnMemoryAccess(debug.Access{Kind: kind, Reg: reg, Value: val})
	}
}

// ReadRegister services a CPU read from $2000-$2007 (the caller is
// responsible for mirroring $2008-$3FFF down to this range).
func (p *PPU) ReadRegister(reg uint16) uint8 {
	var v uint8
	switch reg & 0x07 {
	case 2: // STATUS
		v = (p.status & 0xE0) | (p.readBuffer & 0x1F)
		p.status &^= statusVBlank
		p.writeToggle = false
	case 4: // OAMDATA
		v = p.oam.readData()
	case 7: // DATA
		if p.v.data >= 0x3F00 {
			v = p.readVRAM(p.v.data)
			p.readBuffer = p.readVRAM(p.v.data - 0x1000)
		} else {
			v = p.readBuffer
			p.readBuffer = p.readVRAM(p.v.data)
		}
		p.v.data += p.vramIncrement()
	}
	p.report(debug.Read, reg, v)
	return v
}

// WriteRegister services a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(reg uint16, val uint8) {
	defer p.report(debug.Write, reg, val)
	switch reg & 0x07 {
	case 0: // CTRL
		p.ctrl = val
		p.t.setNametableX(uint16(val) & 0x01)
		p.t.setNametableY((uint16(val) >> 1) & 0x01)
	case 1: // MASK
		p.mask = val
	case 3: // OAMADDR
		p.oam.writeAddr(val)
	case 4: // OAMDATA
		p.oam.writeData(val)
	case 5: // SCROLL
		if !p.writeToggle {
			p.fineX = val & 0x07
			p.t.setCoarseX(uint16(val) >> 3)
		} else {
			p.t.setFineY(uint16(val) & 0x07)
			p.t.setCoarseY(uint16(val) >> 3)
		}
		p.writeToggle = !p.writeToggle
	case 6: // ADDR
		if !p.writeToggle {
			p.t.data = (p.t.data & 0x00FF) | (uint16(val&0x3F) << 8)
		} else {
			p.t.data = (p.t.data & 0xFF00) | uint16(val)
			p.v = p.t
		}
		p.writeToggle = !p.writeToggle
	case 7: // DATA
		p.writeVRAM(p.v.data, val)
		p.v.data += p.vramIncrement()
	}
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&ctrlIncrement32 != 0 {
		return 32
	}
	return 1
}

// WriteOAMDMA loads a full CPU page into OAM, as triggered by a
// $4014 write. The 512-cycle CPU stall this causes is modeled by the
// bus, not here.
func (p *PPU) WriteOAMDMA(page [256]uint8) {
	p.oam.dmaLoad(page)
}

func (p *PPU) backgroundEnabled() bool { return p.mask&maskShowBg != 0 }
func (p *PPU) spritesEnabled() bool    { return p.mask&maskShowSprites != 0 }
func (p *PPU) renderingEnabled() bool  { return p.backgroundEnabled() || p.spritesEnabled() }

// Frame returns the most recently completed frame as packed RGBA
// bytes, row-major, 256x240.
func (p *PPU) Frame() []uint8 { return p.frame[:] }

// FrameComplete reports whether Step has just finished a frame,
// clearing the flag on read so callers see it exactly once per frame.
func (p *PPU) FrameComplete() bool {
	v := p.frameDone
	p.frameDone = false
	return v
}

func (p *PPU) setPixel(x, y int, rgb [3]uint8) {
	if x < 0 || x >= 256 || y < 0 || y >= 240 {
		return
	}
	i := (y*256 + x) * 4
	p.frame[i] = rgb[0]
	p.frame[i+1] = rgb[1]
	p.frame[i+2] = rgb[2]
	p.frame[i+3] = 0xFF
}

func (p *PPU) colorFor(paletteAddr uint16) [3]uint8 {
	idx := p.paletteRAM[paletteMirror(paletteAddr)] & 0x3F
	return systemPalette[idx]
}
