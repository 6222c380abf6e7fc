// Package ppu implements the PPU hardware in the NES
package ppu

import (
	"fmt"
)

const (
	VRAM_SIZE    = 4096 // 2KB on the console, 4KB for four screen carts
	OAM_SIZE     = 256
	PALETTE_SIZE = 32
)

// Timing constants
const (
	DOTS_PER_LINE    = 341
	LINES_PER_FRAME  = 262
	PRE_RENDER_LINE  = -1
	POST_RENDER_LINE = 240
	VBLANK_LINE      = 241
	LAST_LINE        = 260
)

// Special Registers. These are the addresses on which they're exposed
// to the CPU. When we get calls to WriteReg from the Bus that's
// driving us, we'll get these values because that's all the CPU knows
const (
	PPUCTRL   = 0x2000
	PPUMASK   = 0x2001
	PPUSTATUS = 0x2002
	OAMADDR   = 0x2003
	OAMDATA   = 0x2004
	PPUSCROLL = 0x2005
	PPUADDR   = 0x2006
	PPUDATA   = 0x2007
	OAMDMA    = 0x4014
)

// PPUCTRL bit flags
// 7  bit  0
// ---- ----
// VPHB SINN
// |||| ||||
// |||| ||++- Base nametable address
// |||| ||    (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
// |||| |+--- VRAM address increment per CPU read/write of PPUDATA
// |||| |     (0: add 1, going across; 1: add 32, going down)
// |||| +---- Sprite pattern table address for 8x8 sprites
// ||||       (0: $0000; 1: $1000; ignored in 8x16 mode)
// |||+------ Background pattern table address (0: $0000; 1: $1000)
// ||+------- Sprite size (0: 8x8 pixels; 1: 8x16 pixels)
// |+-------- PPU master/slave select
// |          (0: read backdrop from EXT pins; 1: output color on EXT pins)
// +--------- Generate an NMI at the start of the
//
//	vertical blanking interval (0: off; 1: on)
const (
	CTRL_NAMETABLE1             = 1
	CTRL_NAMETABLE2             = 1 << 1
	CTRL_VRAM_ADD_INCREMENT     = 1 << 2
	CTRL_SPRITE_PATTERN_ADDR    = 1 << 3
	CTRL_BACKROUND_PATTERN_ADDR = 1 << 4
	CTRL_SPRITE_SIZE            = 1 << 5
	CTRL_MASTER_SLAVE_SELECT    = 1 << 6
	CTRL_GENERATE_NMI           = 1 << 7
)

// VRAM increment options
const (
	CTRL_INCR_ACROSS = 1
	CTRL_INCR_DOWN   = 32
)

// 7  bit  0
// ---- ----
// VSO. ....
// |||| ||||
// |||+-++++- PPU open bus. Returns stale PPU bus contents.
// ||+------- Sprite overflow. The intent was for this flag to be set
// ||         whenever more than eight sprites appear on a scanline, but a
// ||         hardware bug causes the actual behavior to be more complicated
// ||         and generate false positives as well as false negatives; see
// ||         PPU sprite evaluation. This flag is set during sprite
// ||         evaluation and cleared entering the pre-render line.
// |+-------- Sprite 0 Hit.  Set when a nonzero pixel of sprite 0 overlaps
// |          a nonzero background pixel; cleared entering the pre-render
// |          line.  Used for raster timing.
// +--------- Vertical blank has started (0: not in vblank; 1: in vblank).
//
//	Set at dot 1 of line 241 (the line *after* the post-render
//	line); cleared after reading $2002 and entering the
//	pre-render line.
const (
	STATUS_SPRITE_OVERFLOW = 1 << 5
	STATUS_SPRITE_0_HIT    = 1 << 6
	STATUS_VERTICAL_BLANK  = 1 << 7
)

// 7  bit  0
// ---- ----
// BGRs bMmG
// |||| ||||
// |||| |||+- Greyscale (0: normal color, 1: produce a greyscale display)
// |||| ||+-- 1: Show background in leftmost 8 pixels of screen, 0: Hide
// |||| |+--- 1: Show sprites in leftmost 8 pixels of screen, 0: Hide
// |||| +---- 1: Show background
// |||+------ 1: Show sprites
// ||+------- Emphasize red (green on PAL/Dendy)
// |+-------- Emphasize green (red on PAL/Dendy)
// +--------- Emphasize blue

// Mask flags
const (
	MASK_GREYSCALE         = 1 << 0
	MASK_SHOW_LEFT_TILES   = 1 << 1
	MASK_SHOW_LEFT_SPRITES = 1 << 2
	MASK_RENDER_BG         = 1 << 3
	MASK_RENDER_FG         = 1 << 4
	MASK_EMPHASIZE_RED     = 1 << 5
	MASK_EMPHASIZE_GREEN   = 1 << 6
	MASK_EMPHASIZE_BLUE    = 1 << 7
)

// Cartridge is the PPU side of the cartridge: pattern tables and the
// nametable mirroring arrangement.
type Cartridge interface {
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)
	MirroringMode() uint8
}

type PPU struct {
	cart         Cartridge
	ticks        uint64
	frames       uint64
	paletteTable [PALETTE_SIZE]uint8
	oamData      [OAM_SIZE]uint8
	oamaddr      uint8
	vram         [VRAM_SIZE]uint8

	// internal registers
	v, t   loopy // current vram addr, temp vram addr
	x      uint8 // fine x scroll, only 3 bits used
	wLatch uint8 // first or second write toggle; 1 bit

	// registers that maintain state not captured in v, t, etc.
	ctrl   uint8
	status uint8
	mask   uint8

	scanline int16 // -1 through 260 (0 - 239 are visible)
	scandot  int16 // 0 through 340 (1 - 256 are visible)

	// For reads from PPUDATA that are delayed by one access
	bufferData uint8
	// Last value driven onto the PPU data bus by a register write
	busLatch uint8

	nmiPending bool

	// back is drawn into, front is the last completed picture
	back, front *Frame
}

func New(c Cartridge) *PPU {
	p := &PPU{
		cart:  c,
		back:  &Frame{},
		front: &Frame{},
	}
	p.Reset()
	return p
}

// Reset puts the PPU at the start of the pre-render line with all
// registers cleared. Memory contents are kept.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.v, p.t = loopy{}, loopy{}
	p.x, p.wLatch = 0, 0
	p.oamaddr = 0
	p.bufferData, p.busLatch = 0, 0
	p.nmiPending = false
	p.scanline, p.scandot = PRE_RENDER_LINE, 0
	p.ticks, p.frames = 0, 0
}

func (p *PPU) String() string {
	return fmt.Sprintf("x=%d, y=%d, v=%s fineX=%03b (t=%s), ctrl=%08b,mask=%08b,status=%08b ", p.scandot, p.scanline, p.v.String(), p.x, p.t.String(), p.ctrl, p.mask, p.status)
}

// Scanline returns the current line, -1 through 260.
func (p *PPU) Scanline() int {
	return int(p.scanline)
}

// Dot returns the current position within the scanline.
func (p *PPU) Dot() int {
	return int(p.scandot)
}

// Ticks returns the number of dots executed since reset.
func (p *PPU) Ticks() uint64 {
	return p.ticks
}

// Frames returns the number of frames completed since reset.
func (p *PPU) Frames() uint64 {
	return p.frames
}

// Frame returns the last completed picture. It isn't modified until
// the next frame completes.
func (p *PPU) Frame() *Frame {
	return p.front
}

func (p *PPU) GetResolution() (int, int) {
	return NES_RES_WIDTH, NES_RES_HEIGHT
}

// WriteReg handles CPU writes to 0x2000-0x2007. Callers are expected
// to have folded the mirrors down already.
func (p *PPU) WriteReg(r uint16, val uint8) {
	p.busLatch = val

	switch r {
	case PPUCTRL:
		nmiWasOn := p.generateNMI()
		p.ctrl = val
		// we set loopy t's nametable x and y
		p.t.setNametableX(val)
		p.t.setNametableY(val >> 1)
		if !nmiWasOn && p.generateNMI() && p.inVBlank() {
			p.nmiPending = true
		}
	case PPUMASK:
		p.mask = val
	case OAMADDR:
		p.oamaddr = val
	case OAMDATA:
		p.oamData[p.oamaddr] = val
		p.oamaddr++
	case PPUSCROLL:
		if p.wLatch == 0 {
			p.t.setCoarseX(uint16(val) >> 3)
			p.x = (val & 0x07)
			p.wLatch = 1
		} else {
			// we set loopy t's coarse y and fine y
			p.t.setCoarseY(uint16(val) >> 3)
			p.t.setFineY(uint16(val) & 0x0007)
			p.wLatch = 0
		}
	case PPUADDR:
		if p.wLatch == 0 {
			p.t.set((uint16(val&0x3F) << 8) | (p.t.get() & 0x00FF))
			p.wLatch = 1
		} else {
			p.t.set((p.t.get() & 0xFF00) | uint16(val))
			p.v = p.t
			p.wLatch = 0
		}
	case PPUDATA:
		p.write(p.v.get(), val)
		p.vramIncrement()
	}
}

// ReadReg returns the current value of a register, applying any read
// side effects. Write only registers return the data bus latch.
func (p *PPU) ReadReg(r uint16) uint8 {
	ret := p.busLatch
	switch r {
	case PPUSTATUS:
		// Only the top 3 bits are real; the rest are whatever
		// was last on the data bus.
		ret = (p.status & 0xE0) | (p.busLatch & 0x1F)
		p.clearVBlank()
		p.wLatch = 0
	case OAMDATA:
		ret = p.oamData[p.oamaddr]
	case PPUDATA:
		addr := p.v.get() & ADDR_MASK
		if addr >= PALETTE_RAM {
			// Palette reads skip the buffer, which is
			// refilled from the nametable underneath.
			ret = p.read(addr)
			p.bufferData = p.read(addr - 0x1000)
		} else {
			ret = p.bufferData
			p.bufferData = p.read(addr)
		}
		p.vramIncrement()
	}

	return ret
}

// PeekReg returns what ReadReg would, without side effects.
func (p *PPU) PeekReg(r uint16) uint8 {
	switch r {
	case PPUSTATUS:
		return (p.status & 0xE0) | (p.busLatch & 0x1F)
	case OAMDATA:
		return p.oamData[p.oamaddr]
	case PPUDATA:
		if addr := p.v.get() & ADDR_MASK; addr >= PALETTE_RAM {
			return p.read(addr)
		}
		return p.bufferData
	}
	return p.busLatch
}

// WriteOAM stores val at the current OAM address and advances it, as
// a write to OAMDATA does. The bus uses this for DMA.
func (p *PPU) WriteOAM(val uint8) {
	p.oamData[p.oamaddr] = val
	p.oamaddr++
}

func (p *PPU) vramIncrement() {
	x := uint16(CTRL_INCR_ACROSS)
	if p.ctrl&CTRL_VRAM_ADD_INCREMENT > 0 {
		x = CTRL_INCR_DOWN
	}

	p.v.set(p.v.get() + x)
}

func (p *PPU) generateNMI() bool {
	return p.ctrl&CTRL_GENERATE_NMI > 0
}

func (p *PPU) backgroundTableID() uint16 {
	if p.ctrl&CTRL_BACKROUND_PATTERN_ADDR > 0 {
		return 1
	}
	return 0
}

func (p *PPU) spriteTableID() uint16 {
	if p.ctrl&CTRL_SPRITE_PATTERN_ADDR > 0 {
		return 1
	}
	return 0
}

func (p *PPU) spriteSize() int {
	if p.ctrl&CTRL_SPRITE_SIZE > 0 {
		return 16
	}
	return 8
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(MASK_RENDER_BG|MASK_RENDER_FG) > 0
}

func (p *PPU) inVBlank() bool {
	return p.status&STATUS_VERTICAL_BLANK > 0
}

func (p *PPU) clearVBlank() {
	p.status &^= STATUS_VERTICAL_BLANK
}

func (p *PPU) setVBlank() {
	p.status |= STATUS_VERTICAL_BLANK
}

// PollNMI reports whether an NMI edge has been raised since the last
// call, consuming it.
func (p *PPU) PollNMI() bool {
	n := p.nmiPending
	p.nmiPending = false
	return n
}

// Tick advances the PPU a single dot. It returns true when a frame
// has been completed, which happens once every 341*262 dots as the
// PPU wraps from the last vblank line to the pre-render line.
func (p *PPU) Tick() bool {
	p.ticks++
	p.scandot++
	if p.scandot == DOTS_PER_LINE {
		p.scandot = 0
		p.scanline++
		if p.scanline > LAST_LINE {
			p.scanline = PRE_RENDER_LINE
			p.status &^= STATUS_VERTICAL_BLANK | STATUS_SPRITE_0_HIT | STATUS_SPRITE_OVERFLOW
			p.back, p.front = p.front, p.back
			p.frames++
			return true
		}
	}

	switch {
	case p.scanline >= 0 && p.scanline < POST_RENDER_LINE:
		switch p.scandot {
		case NES_RES_WIDTH:
			p.renderScanline()
			if p.renderingEnabled() {
				p.v.incrementY()
			}
		case NES_RES_WIDTH + 1:
			if p.renderingEnabled() {
				p.v.copyX(p.t)
			}
		}
	case p.scanline == PRE_RENDER_LINE:
		if p.renderingEnabled() {
			switch p.scandot {
			case NES_RES_WIDTH + 1:
				p.v.copyX(p.t)
			case 304:
				p.v.copyY(p.t)
			}
		}
	case p.scanline == VBLANK_LINE && p.scandot == 1:
		p.setVBlank()
		if p.generateNMI() {
			p.nmiPending = true
		}
	}

	return false
}
