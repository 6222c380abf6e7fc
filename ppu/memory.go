package ppu

import "github.com/bdwalton/famicore/nesrom"

// Mirroring mode, as reported by the cartridge
const (
	MIRROR_HORIZONTAL  = nesrom.MIRROR_HORIZONTAL
	MIRROR_VERTICAL    = nesrom.MIRROR_VERTICAL
	MIRROR_FOUR_SCREEN = nesrom.MIRROR_FOUR_SCREEN
)

const (
	PATTERN_TABLE_0      = 0x0000
	PATTERN_TABLE_1      = 0x1000
	BASE_NAMETABLE       = 0x2000
	ATTRIBUTE_OFFSET     = 0x03C0 // each nametable has attribute data at the end of it
	NAMETABLE_0          = BASE_NAMETABLE
	NAMETABLE_1          = 0x2400
	NAMETABLE_2          = 0x2800
	NAMETABLE_3          = 0x2C00
	NAMETABLE_END        = 0x2FFF
	NAMETABLE_MIRROR     = 0x3000
	NAMETABLE_MIRROR_END = 0x3EFF
	PALETTE_RAM          = 0x3F00
	PALETTE_MIRROR       = 0x3F20
	NAMETABLE_SIZE       = 0x0400
	ADDR_MASK            = 0x3FFF
)

// tileMapAddr handles mirror mode mapping of addresses within
// 0x2000-0x3EFF. It takes the natural address and returns the offset
// into vram.
func (p *PPU) tileMapAddr(addr uint16) uint16 {
	a := (addr - BASE_NAMETABLE) & 0x0FFF
	// https://www.nesdev.org/wiki/Mirroring#Nametable_Mirroring
	switch p.cart.MirroringMode() {
	case MIRROR_FOUR_SCREEN:
		return a
	case MIRROR_VERTICAL:
		return a % (2 * NAMETABLE_SIZE)
	default:
		// Horizontal: $2000/$2400 share the first table,
		// $2800/$2C00 the second.
		return (a/(2*NAMETABLE_SIZE))*NAMETABLE_SIZE + a%NAMETABLE_SIZE
	}
}

// paletteIndex maps 0x3F00-0x3FFF to the 32 byte palette table. The
// sprite backdrop entries $3F10/$3F14/$3F18/$3F1C alias the
// background ones.
func paletteIndex(addr uint16) uint16 {
	i := addr % PALETTE_SIZE
	if i >= 0x10 && i%4 == 0 {
		i -= 0x10
	}
	return i
}

func (p *PPU) read(addr uint16) uint8 {
	a := addr & ADDR_MASK

	switch {
	case a < NAMETABLE_0:
		// Pattern Table 0 and 1 (upper: 0x0FFF, 0x1FFF)
		return p.cart.ChrRead(a)
	case a < PALETTE_RAM:
		return p.vram[p.tileMapAddr(a)]
	default:
		return p.paletteTable[paletteIndex(a)]
	}
}

func (p *PPU) write(addr uint16, val uint8) {
	a := addr & ADDR_MASK

	switch {
	case a < NAMETABLE_0:
		p.cart.ChrWrite(a, val)
	case a < PALETTE_RAM:
		p.vram[p.tileMapAddr(a)] = val
	default:
		p.paletteTable[paletteIndex(a)] = val
	}
}

// Peek reads PPU address space without touching any registers.
func (p *PPU) Peek(addr uint16) uint8 {
	return p.read(addr)
}
