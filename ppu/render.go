package ppu

// Step advances the PPU by exactly one PPU cycle (three per CPU
// cycle), following the standard 2C02 timing grid: 262 scanlines of
// 341 cycles each, visible scanlines 0-239, post-render 240,
// vblank 241-260, pre-render 261 (held in p.scanline as -1).
func (p *PPU) Step() {
	switch {
	case p.scanline >= -1 && p.scanline < 240:
		p.visibleOrPreRenderCycle()
	case p.scanline == 241 && p.cycle == 1:
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 && p.NMICallback != nil {
			p.NMICallback()
		}
	}

	p.cycle++
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frameOdd = !p.frameOdd
			p.frameDone = true
			// Odd-frame cycle skip on the pre-render line when
			// rendering is enabled.
			if p.frameOdd && p.renderingEnabled() {
				p.cycle = 1
			}
		}
	}
}

func (p *PPU) visibleOrPreRenderCycle() {
	if p.scanline == -1 && p.cycle == 1 {
		p.status &^= (statusVBlank | statusSpriteZeroHit | statusSpriteOverflow)
	}

	visibleFetch := (p.cycle >= 1 && p.cycle <= 256) || (p.cycle >= 321 && p.cycle <= 336)
	if p.renderingEnabled() && visibleFetch {
		p.shiftBackgroundRegisters()
		switch (p.cycle - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.nextTileID = p.readNametable(p.v.nametableAddr())
		case 2:
			attr := p.readNametable(p.v.attributeAddr())
			if p.v.coarseY()&0x02 != 0 {
				attr >>= 4
			}
			if p.v.coarseX()&0x02 != 0 {
				attr >>= 2
			}
			p.nextTileAttr = attr & 0x03
		case 4:
			p.nextTileLSB = p.fetchPatternByte(false)
		case 6:
			p.nextTileMSB = p.fetchPatternByte(true)
		case 7:
			p.v.incrementCoarseX()
		}
	}

	if p.renderingEnabled() && p.cycle == 256 {
		p.v.incrementFineY()
	}
	if p.renderingEnabled() && p.cycle == 257 {
		p.loadBackgroundShifters()
		p.v.setCoarseX(p.t.coarseX())
		p.v.setNametableX(p.t.nametableX())
	}
	if p.scanline == -1 && p.cycle >= 280 && p.cycle <= 304 && p.renderingEnabled() {
		p.v.setCoarseY(p.t.coarseY())
		p.v.setFineY(p.t.fineY())
		p.v.setNametableY(p.t.nametableY())
	}

	// Sprite evaluation for scanline N happens during scanline N-1,
	// so the pre-render line (-1) must evaluate here too: it is the
	// one that populates sprite state for visible scanline 0.
	if p.cycle == 257 && p.scanline >= -1 {
		p.evaluateSprites()
	}

	if p.scanline >= 0 && p.cycle >= 1 && p.cycle <= 256 {
		p.renderPixel()
	}
}

func (p *PPU) fetchPatternByte(high bool) uint8 {
	base := uint16(0)
	if p.ctrl&ctrlBgPattern != 0 {
		base = 0x1000
	}
	plane := uint16(0)
	if high {
		plane = 8
	}
	addr := base + uint16(p.nextTileID)*16 + p.v.fineY() + plane
	return p.mapper.ReadCHR(addr)
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShiftPatternLo = p.bgShiftPatternLo&0xFF00 | uint16(p.nextTileLSB)
	p.bgShiftPatternHi = p.bgShiftPatternHi&0xFF00 | uint16(p.nextTileMSB)

	attrLo, attrHi := uint16(0), uint16(0)
	if p.nextTileAttr&0x01 != 0 {
		attrLo = 0xFF
	}
	if p.nextTileAttr&0x02 != 0 {
		attrHi = 0xFF
	}
	p.bgShiftAttrLo = p.bgShiftAttrLo&0xFF00 | attrLo
	p.bgShiftAttrHi = p.bgShiftAttrHi&0xFF00 | attrHi
}

func (p *PPU) shiftBackgroundRegisters() {
	if !p.backgroundEnabled() {
		return
	}
	p.bgShiftPatternLo <<= 1
	p.bgShiftPatternHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}

// evaluateSprites scans all 64 OAM entries for ones that fall on the
// next scanline, keeping at most 8 in OAM index order and setting the
// sprite-overflow flag when a 9th would have matched. This matches
// how real hardware resolves the tie (lower index wins) without
// reproducing its namesake evaluation hardware bug.
func (p *PPU) evaluateSprites() {
	for i := range p.spriteShiftLo {
		p.spriteShiftLo[i] = 0
		p.spriteShiftHi[i] = 0
	}
	p.visibleSprites = 0
	p.spriteZeroOnLine = false

	height := 8
	if p.ctrl&ctrlSpriteSize8x16 != 0 {
		height = 16
	}

	nextLine := p.scanline + 1
	for i := 0; i < p.oam.spriteCount(); i++ {
		s := p.oam.sprite(i)
		row := nextLine - int(s.y)
		if row < 0 || row >= height {
			continue
		}
		if p.visibleSprites == 8 {
			p.status |= statusSpriteOverflow
			break
		}
		if s.index == 0 {
			p.spriteZeroOnLine = true
		}
		p.loadSpritePattern(p.visibleSprites, s, row, height)
		p.visibleSprites++
	}
}

func (p *PPU) loadSpritePattern(slot int, s sprite, row, height int) {
	if s.flipV {
		row = height - 1 - row
	}

	var base uint16
	tile := uint16(s.tileID)
	if height == 16 {
		base = (tile & 1) * 0x1000
		tile &^= 1
		if row >= 8 {
			tile++
			row -= 8
		}
	} else {
		if p.ctrl&ctrlSpritePattern != 0 {
			base = 0x1000
		}
	}

	lo := p.mapper.ReadCHR(base + tile*16 + uint16(row))
	hi := p.mapper.ReadCHR(base + tile*16 + uint16(row) + 8)
	if s.flipH {
		lo = reverseBits(lo)
		hi = reverseBits(hi)
	}

	p.spriteShiftLo[slot] = lo
	p.spriteShiftHi[slot] = hi
	p.spriteX[slot] = s.x
	attr := s.palette
	if s.prio == PriorityBack {
		attr |= 0x20
	}
	if s.flipH {
		attr |= 0x40
	}
	if s.flipV {
		attr |= 0x80
	}
	p.spriteAttr[slot] = attr
	p.spriteIsZero[slot] = s.index == 0 && p.spriteZeroOnLine
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

func (p *PPU) renderPixel() {
	x := p.cycle - 1
	bgPixel, bgPalette := p.backgroundPixel(x)
	spPixel, spPalette, spPriority, spIsZero := p.spritePixel(x)

	var finalPixel, finalPalette uint8
	switch {
	case bgPixel == 0 && spPixel == 0:
		finalPixel, finalPalette = 0, 0
	case bgPixel == 0 && spPixel != 0:
		finalPixel, finalPalette = spPixel, spPalette|0x10
	case bgPixel != 0 && spPixel == 0:
		finalPixel, finalPalette = bgPixel, bgPalette
	default:
		if spIsZero && x != 255 && p.backgroundEnabled() && p.spritesEnabled() {
			p.status |= statusSpriteZeroHit
		}
		if spPriority == PriorityFront {
			finalPixel, finalPalette = spPixel, spPalette|0x10
		} else {
			finalPixel, finalPalette = bgPixel, bgPalette
		}
	}

	addr := uint16(0x3F00) + uint16(finalPalette)*4 + uint16(finalPixel)
	if finalPixel == 0 {
		addr = 0x3F00
	}
	p.setPixel(x, p.scanline, p.colorFor(addr))
}

func (p *PPU) backgroundPixel(x int) (pixel, palette uint8) {
	if !p.backgroundEnabled() {
		return 0, 0
	}
	mux := uint16(0x8000) >> p.fineX
	lo := uint8(0)
	if p.bgShiftPatternLo&mux != 0 {
		lo = 1
	}
	hi := uint8(0)
	if p.bgShiftPatternHi&mux != 0 {
		hi = 1
	}
	pixel = hi<<1 | lo

	alo := uint8(0)
	if p.bgShiftAttrLo&mux != 0 {
		alo = 1
	}
	ahi := uint8(0)
	if p.bgShiftAttrHi&mux != 0 {
		ahi = 1
	}
	palette = ahi<<1 | alo
	return pixel, palette
}

func (p *PPU) spritePixel(x int) (pixel, palette uint8, prio priority, isZero bool) {
	if !p.spritesEnabled() {
		return 0, 0, PriorityFront, false
	}
	for i := 0; i < p.visibleSprites; i++ {
		offset := x - int(p.spriteX[i])
		if offset < 0 || offset > 7 {
			continue
		}
		lo := (p.spriteShiftLo[i] >> (7 - uint(offset))) & 1
		hi := (p.spriteShiftHi[i] >> (7 - uint(offset))) & 1
		px := hi<<1 | lo
		if px == 0 {
			continue
		}
		attr := p.spriteAttr[i]
		pal := attr & 0x03
		pr := PriorityFront
		if attr&0x20 != 0 {
			pr = PriorityBack
		}
		return px, pal, pr, p.spriteIsZero[i]
	}
	return 0, 0, PriorityFront, false
}
