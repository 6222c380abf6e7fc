// Package mappers implements and registers mappers that are
// referenced numerically by iNES and NES2.0 ROM files.
package mappers

import (
	"errors"
	"fmt"

	"github.com/bdwalton/famicore/nesrom"
)

var ErrUnsupportedMapper = errors.New("unsupported mapper")

// A Mapper translates CPU and PPU addresses into offsets within the
// cartridge's PRG and CHR data.
type Mapper interface {
	ID() uint8
	Name() string
	// MapPrg translates a CPU address in $8000-$FFFF into an
	// offset within PRG ROM. ok is false when nothing is mapped.
	MapPrg(addr uint16) (offset int, ok bool)
	// MapChr translates a PPU address in $0000-$1FFF into an
	// offset within CHR memory.
	MapChr(addr uint16) int
	// Store offers a CPU write in $8000-$FFFF to the mapper's bank
	// registers. It reports whether the mapper consumed it.
	Store(addr uint16, val uint8) bool
}

type newMapperFunc func(*nesrom.ROM) Mapper

// A global registry of mapper constructors, keyed by mapper id
var allMappers = map[uint8]newMapperFunc{}

// RegisterMapper makes a mapper implementation available to Get.
func RegisterMapper(id uint8, f newMapperFunc) {
	if _, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("mapper %d registered twice", id))
	}
	allMappers[id] = f
}

// Get returns a mapper instance for the ROM's mapper id.
func Get(r *nesrom.ROM) (Mapper, error) {
	f, ok := allMappers[r.MapperNum()]
	if !ok {
		return nil, fmt.Errorf("mapper %d: %w", r.MapperNum(), ErrUnsupportedMapper)
	}
	return f(r), nil
}

type baseMapper struct {
	id       uint8
	name     string
	prgBanks uint8
	chrBanks uint8
}

func newBaseMapper(id uint8, name string, r *nesrom.ROM) *baseMapper {
	return &baseMapper{id: id, name: name, prgBanks: r.PrgBanks(), chrBanks: r.ChrBanks()}
}

func (bm *baseMapper) ID() uint8 {
	return bm.id
}

func (bm *baseMapper) Name() string {
	return bm.name
}

func (bm *baseMapper) String() string {
	return fmt.Sprintf("%s (%d)", bm.name, bm.id)
}
