package ppu

// loopy is the 15-bit scroll/address register described by Loopy's
// famous scrolling writeup: a single packed value doubling as both
// the VRAM address and (in its "t" copy) the pending scroll position.
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll (0-31)
//	||| || +++++-------- coarse Y scroll (0-31)
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll (0-7)
type loopy struct {
	data uint16
}

const (
	maskCoarseX    = 0x001F
	maskCoarseY    = 0x03E0
	maskNametableX = 0x0400
	maskNametableY = 0x0800
	maskFineY      = 0x7000
)

func (l loopy) coarseX() uint16 { return l.data & maskCoarseX }
func (l *loopy) setCoarseX(v uint16) {
	l.data = l.data&^maskCoarseX | (v & 0x1F)
}

func (l loopy) coarseY() uint16 { return (l.data & maskCoarseY) >> 5 }
func (l *loopy) setCoarseY(v uint16) {
	l.data = l.data&^maskCoarseY | ((v & 0x1F) << 5)
}

func (l loopy) nametableX() uint16 { return (l.data & maskNametableX) >> 10 }
func (l *loopy) toggleNametableX()  { l.data ^= maskNametableX }
func (l *loopy) setNametableX(v uint16) {
	l.data = l.data&^maskNametableX | ((v & 1) << 10)
}

func (l loopy) nametableY() uint16 { return (l.data & maskNametableY) >> 11 }
func (l *loopy) toggleNametableY()  { l.data ^= maskNametableY }
func (l *loopy) setNametableY(v uint16) {
	l.data = l.data&^maskNametableY | ((v & 1) << 11)
}

func (l loopy) fineY() uint16 { return (l.data & maskFineY) >> 12 }
func (l *loopy) setFineY(v uint16) {
	l.data = l.data&^maskFineY | ((v & 0x7) << 12)
}

// incrementCoarseX advances by one tile, wrapping into the horizontal
// neighbor nametable at the 32-tile boundary.
func (l *loopy) incrementCoarseX() {
	if l.coarseX() == 31 {
		l.setCoarseX(0)
		l.toggleNametableX()
	} else {
		l.setCoarseX(l.coarseX() + 1)
	}
}

// incrementFineY advances the fine Y scroll, carrying into coarse Y
// and wrapping into the vertical neighbor nametable at the visible
// 30-row boundary (rows 30-31 of a nametable are the attribute area
// and are skipped, not wrapped into normally).
func (l *loopy) incrementFineY() {
	if l.fineY() < 7 {
		l.setFineY(l.fineY() + 1)
		return
	}
	l.setFineY(0)
	switch l.coarseY() {
	case 29:
		l.setCoarseY(0)
		l.toggleNametableY()
	case 31:
		l.setCoarseY(0)
	default:
		l.setCoarseY(l.coarseY() + 1)
	}
}

// nametableAddr returns the flat $2000-$2FFF address of the tile ID
// byte this register currently points at.
func (l loopy) nametableAddr() uint16 {
	return 0x2000 | (l.data & 0x0FFF)
}

// attributeAddr returns the $2000-$2FFF address of the attribute byte
// covering this register's current tile.
func (l loopy) attributeAddr() uint16 {
	return 0x23C0 |
		(l.data & maskNametableX) |
		(l.data & maskNametableY) |
		((l.coarseY() >> 2) << 3) |
		(l.coarseX() >> 2)
}
