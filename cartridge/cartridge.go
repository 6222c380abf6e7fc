// Package cartridge joins a parsed ROM image to its mapper and
// presents the CPU and PPU sides of the cartridge connector.
package cartridge

import (
	"errors"
	"fmt"

	"github.com/bdwalton/famicore/logger"
	"github.com/bdwalton/famicore/mappers"
	"github.com/bdwalton/famicore/nesrom"
)

const (
	PRG_RAM_START = 0x6000
	PRG_RAM_SIZE  = 0x2000
	PRG_ROM_START = 0x8000
	CHR_RAM_SIZE  = 0x2000
)

var ErrIllegalWrite = errors.New("illegal write")

// LoadError reports why a cartridge couldn't be built from a ROM
// image.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("couldn't load cartridge: %v", e.Err)
	}
	return fmt.Sprintf("couldn't load cartridge %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// WriteFault describes a write the cartridge refused.
type WriteFault struct {
	Addr uint16
	Val  uint8
	Chr  bool // true for the PPU side
}

func (w *WriteFault) Error() string {
	side := "PRG"
	if w.Chr {
		side = "CHR"
	}
	return fmt.Sprintf("%v: 0x%02x to %s ROM at 0x%04x", ErrIllegalWrite, w.Val, side, w.Addr)
}

func (w *WriteFault) Unwrap() error {
	return ErrIllegalWrite
}

type Cartridge struct {
	rom    *nesrom.ROM
	mapper mappers.Mapper
	prgRAM [PRG_RAM_SIZE]uint8
	chr    []uint8
	chrRAM bool
}

// Load reads the iNES file at path and builds a cartridge from it.
func Load(path string) (*Cartridge, error) {
	r, err := nesrom.Load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	c, err := New(r)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return c, nil
}

// New builds a cartridge around r and the mapper it declares.
func New(r *nesrom.ROM) (*Cartridge, error) {
	if r.PrgBanks() == 0 {
		return nil, &LoadError{Path: r.Path(), Err: fmt.Errorf("no PRG ROM banks: %w", nesrom.ErrTruncated)}
	}

	m, err := mappers.Get(r)
	if err != nil {
		return nil, &LoadError{Path: r.Path(), Err: err}
	}

	return newWithMapper(r, m), nil
}

func newWithMapper(r *nesrom.ROM, m mappers.Mapper) *Cartridge {
	c := &Cartridge{rom: r, mapper: m, chr: r.Chr()}
	if r.ChrBanks() == 0 {
		c.chr = make([]uint8, CHR_RAM_SIZE)
		c.chrRAM = true
	}

	// A trainer is loaded into $7000-$71FF before execution starts.
	if t := r.Trainer(); len(t) > 0 {
		copy(c.prgRAM[0x1000:], t)
	}

	return c
}

func (c *Cartridge) String() string {
	return fmt.Sprintf("%s, mapper %s", c.rom, c.mapper.Name())
}

func (c *Cartridge) Mapper() mappers.Mapper {
	return c.mapper
}

func (c *Cartridge) MirroringMode() uint8 {
	return c.rom.MirroringMode()
}

// CpuRead services CPU reads in $4020-$FFFF. Unmapped addresses read
// as 0.
func (c *Cartridge) CpuRead(addr uint16) uint8 {
	switch {
	case addr >= PRG_ROM_START:
		if off, ok := c.mapper.MapPrg(addr); ok && off < len(c.rom.Prg()) {
			return c.rom.Prg()[off]
		}
	case addr >= PRG_RAM_START:
		return c.prgRAM[addr-PRG_RAM_START]
	}
	return 0
}

// CpuWrite services CPU writes in $4020-$FFFF. Writes into PRG ROM
// that the mapper doesn't consume leave state untouched and return a
// *WriteFault.
func (c *Cartridge) CpuWrite(addr uint16, val uint8) error {
	switch {
	case addr >= PRG_ROM_START:
		if c.mapper.Store(addr, val) {
			return nil
		}
		return c.fault(&WriteFault{Addr: addr, Val: val})
	case addr >= PRG_RAM_START:
		c.prgRAM[addr-PRG_RAM_START] = val
	}
	return nil
}

// ChrRead services PPU reads in $0000-$1FFF.
func (c *Cartridge) ChrRead(addr uint16) uint8 {
	if off := c.mapper.MapChr(addr); off < len(c.chr) {
		return c.chr[off]
	}
	return 0
}

// ChrWrite services PPU writes in $0000-$1FFF. Only CHR RAM accepts
// them.
func (c *Cartridge) ChrWrite(addr uint16, val uint8) {
	if !c.chrRAM {
		c.fault(&WriteFault{Addr: addr, Val: val, Chr: true})
		return
	}
	if off := c.mapper.MapChr(addr); off < len(c.chr) {
		c.chr[off] = val
	}
}

func (c *Cartridge) fault(w *WriteFault) error {
	logger.Log("cartridge", w.Error())
	return w
}
