package ppu

import "fmt"

type priority uint8

const (
	FRONT priority = iota
	BACK
)

const (
	OAM_ENTRY_SIZE = 4
	NUM_SPRITES    = OAM_SIZE / OAM_ENTRY_SIZE
	LINE_SPRITES   = 8
)

type oam struct {
	// Y position of top of sprite. Sprite data is delayed by one
	// scanline, so a sprite is first drawn on line y+1. Values
	// of $EF-$FF keep the sprite off screen.
	y uint8
	// For 8x8 sprites, this is the tile number of this sprite
	// within the pattern table selected in bit 3 of PPUCTRL
	// ($2000). For 8x16 sprites (bit 5 of PPUCTRL set), the PPU
	// ignores the pattern table selection and selects a pattern
	// table from bit 0 of this number.
	tileId uint8

	palette      uint8
	renderP      priority
	flipV, flipH bool

	// X position of left side of sprite. Sprites can't be
	// partially visible on the left edge; PPUMASK left clipping
	// is used instead.
	x uint8
}

func oamFromBytes(in []uint8) oam {
	// 76543210 -> in[2]
	// ||||||||
	// ||||||++- Palette (4 to 7) of sprite
	// |||+++--- Unimplemented (read 0)
	// ||+------ Priority (0: in front of background; 1: behind background)
	// |+------- Flip sprite horizontally
	// +-------- Flip sprite vertically
	return oam{
		y:       in[0],
		tileId:  in[1],
		palette: (in[2] & 0x03),
		renderP: priority((in[2] & 0x20) >> 5),
		flipH:   ((in[2] & 0x40) >> 6) == 1,
		flipV:   ((in[2] & 0x80) >> 7) == 1,
		x:       in[3],
	}
}

func (o oam) String() string {
	return fmt.Sprintf("x=%3d y=%3d tile=0x%02x attr=%08b", o.x, o.y, o.tileId, o.attributes())
}

func (o oam) attributes() uint8 {
	a := o.palette | uint8(o.renderP<<5)
	if o.flipH {
		a |= (1 << 6)
	}
	if o.flipV {
		a |= (1 << 7)
	}

	return a
}

// sprite returns entry n (0-63) from OAM.
func (p *PPU) sprite(n int) oam {
	i := (n % NUM_SPRITES) * OAM_ENTRY_SIZE
	return oamFromBytes(p.oamData[i : i+OAM_ENTRY_SIZE])
}

// OAMEntry describes sprite n for debugging output.
func (p *PPU) OAMEntry(n int) string {
	return p.sprite(n).String()
}
