package ppu

const (
	ATTRIBUTE_TABLE = BASE_NAMETABLE + ATTRIBUTE_OFFSET
	TILE_BYTES      = 16
	SPRITE_PALETTES = 0x10
)

// renderScanline draws the current visible line into the back
// buffer. The whole line is produced at once from the scroll state in
// v, which matches the hardware as long as games only change scroll
// registers between lines.
func (p *PPU) renderScanline() {
	y := int(p.scanline)
	line := p.back.Pix[y*NES_RES_WIDTH : (y+1)*NES_RES_WIDTH]

	// Palette offsets within palette RAM; 0 means transparent.
	var bg, fg [NES_RES_WIDTH]uint8
	var behind, zero [NES_RES_WIDTH]bool

	if p.mask&MASK_RENDER_BG > 0 {
		p.renderBackground(&bg)
	}
	if p.mask&MASK_RENDER_FG > 0 {
		p.renderSprites(y, &fg, &behind, &zero)
	}

	for x := 0; x < NES_RES_WIDTH; x++ {
		b, s := bg[x], fg[x]
		if x < 8 {
			if p.mask&MASK_SHOW_LEFT_TILES == 0 {
				b = 0
			}
			if p.mask&MASK_SHOW_LEFT_SPRITES == 0 {
				s = 0
			}
		}

		var idx uint8
		switch {
		case b == 0 && s == 0:
			idx = 0
		case b == 0:
			idx = s
		case s == 0:
			idx = b
		default:
			if zero[x] && x != NES_RES_WIDTH-1 {
				p.status |= STATUS_SPRITE_0_HIT
			}
			idx = s
			if behind[x] {
				idx = b
			}
		}

		c := p.paletteTable[paletteIndex(uint16(idx))] & 0x3F
		if p.mask&MASK_GREYSCALE > 0 {
			c &= 0x30
		}
		line[x] = c
	}
}

// renderBackground fills bg using a copy of v, so the real register
// is only moved by the per line increments in Tick.
func (p *PPU) renderBackground(bg *[NES_RES_WIDTH]uint8) {
	v := p.v
	fineX := uint16(p.x)
	table := p.backgroundTableID() * PATTERN_TABLE_1

	for px := 0; px < NES_RES_WIDTH; {
		tile := p.read(BASE_NAMETABLE | (v.get() & 0x0FFF))

		// Each attribute byte covers a 4x4 tile area, two bits
		// per 2x2 quadrant.
		attrAddr := ATTRIBUTE_TABLE | (v.get() & 0x0C00) | ((v.coarseY() >> 2) << 3) | (v.coarseX() >> 2)
		shift := ((v.coarseY() & 0x02) << 1) | (v.coarseX() & 0x02)
		pal := (p.read(attrAddr) >> shift) & 0x03

		addr := table + uint16(tile)*TILE_BYTES + v.fineY()
		lo, hi := p.read(addr), p.read(addr+8)

		for bit := fineX; bit < 8 && px < NES_RES_WIDTH; bit++ {
			if c := pixelAt(lo, hi, 7-bit); c != 0 {
				bg[px] = pal<<2 | c
			}
			px++
		}

		fineX = 0
		v.incrementX()
	}
}

// renderSprites evaluates OAM for line y, keeping the first eight
// sprites found. Lower numbered sprites win where they overlap.
func (p *PPU) renderSprites(y int, fg *[NES_RES_WIDTH]uint8, behind, zero *[NES_RES_WIDTH]bool) {
	height := p.spriteSize()
	found := 0

	for n := 0; n < NUM_SPRITES; n++ {
		s := p.sprite(n)
		row := y - (int(s.y) + 1)
		if row < 0 || row >= height {
			continue
		}

		found++
		if found > LINE_SPRITES {
			p.status |= STATUS_SPRITE_OVERFLOW
			break
		}

		lo, hi := p.spriteRow(s, row, height)
		for col := 0; col < 8; col++ {
			x := int(s.x) + col
			if x >= NES_RES_WIDTH {
				break
			}
			if fg[x] != 0 {
				continue
			}

			bit := uint16(7 - col)
			if s.flipH {
				bit = uint16(col)
			}
			c := pixelAt(lo, hi, bit)
			if c == 0 {
				continue
			}

			fg[x] = SPRITE_PALETTES | s.palette<<2 | c
			behind[x] = s.renderP == BACK
			zero[x] = n == 0
		}
	}
}

// spriteRow returns the two pattern bytes for row of sprite s.
func (p *PPU) spriteRow(s oam, row, height int) (uint8, uint8) {
	if s.flipV {
		row = height - 1 - row
	}

	var table, tile uint16
	if height == 16 {
		table = uint16(s.tileId&0x01) * PATTERN_TABLE_1
		tile = uint16(s.tileId & 0xFE)
		if row > 7 {
			tile++
			row -= 8
		}
	} else {
		table = p.spriteTableID() * PATTERN_TABLE_1
		tile = uint16(s.tileId)
	}

	addr := table + tile*TILE_BYTES + uint16(row)
	return p.read(addr), p.read(addr + 8)
}

// pixelAt combines bit n of the low and high pattern planes.
func pixelAt(lo, hi uint8, n uint16) uint8 {
	return (lo>>n)&0x01 | ((hi>>n)&0x01)<<1
}
