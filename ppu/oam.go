package ppu

// priority distinguishes whether a sprite draws in front of or behind
// opaque background pixels.
type priority uint8

const (
	PriorityFront priority = iota
	PriorityBack
)

// sprite is one decoded entry from the 256-byte OAM table.
type sprite struct {
	y       uint8
	tileID  uint8
	palette uint8
	prio    priority
	flipV   bool
	flipH   bool
	x       uint8
	index   int // original OAM index, used for sprite-0 hit and evaluation order
}

// spriteFromBytes decodes the 4-byte OAM entry layout:
//
//	byte 0: Y position (delayed by one scanline on real hardware)
//	byte 1: tile index
//	byte 2: attributes (palette, priority, flip)
//	byte 3: X position
func spriteFromBytes(b [4]uint8, index int) sprite {
	attr := b[2]
	s := sprite{
		y:       b[0],
		tileID:  b[1],
		palette: attr & 0x03,
		x:       b[3],
		flipH:   attr&0x40 != 0,
		flipV:   attr&0x80 != 0,
		index:   index,
	}
	if attr&0x20 != 0 {
		s.prio = PriorityBack
	} else {
		s.prio = PriorityFront
	}
	return s
}

// oam is the PPU's 256-byte sprite attribute memory, addressable both
// as a flat byte array (via $2003/$2004/$4014) and as 64 decoded
// 4-byte sprites.
type oam struct {
	bytes [256]uint8
	addr  uint8
}

func (o *oam) readData() uint8 { return o.bytes[o.addr] }

func (o *oam) writeAddr(v uint8) { o.addr = v }

func (o *oam) writeData(v uint8) {
	o.bytes[o.addr] = v
	o.addr++
}

// dmaLoad copies a full 256-byte page into OAM starting at address 0,
// as triggered by a CPU write to $4014.
func (o *oam) dmaLoad(page [256]uint8) {
	o.bytes = page
	o.addr = 0
}

func (o *oam) sprite(i int) sprite {
	var b [4]uint8
	copy(b[:], o.bytes[i*4:i*4+4])
	return spriteFromBytes(b, i)
}

func (o *oam) spriteCount() int { return len(o.bytes) / 4 }
