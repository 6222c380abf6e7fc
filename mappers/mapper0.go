package mappers

import (
	"github.com/bdwalton/famicore/nesrom"
)

func init() {
	RegisterMapper(0, newMapper0)
}

// mapper0 is NROM: 16KB or 32KB of fixed PRG and 8KB of fixed CHR.
// https://www.nesdev.org/wiki/NROM
type mapper0 struct {
	*baseMapper
	prgMask uint16
}

func newMapper0(r *nesrom.ROM) Mapper {
	m := &mapper0{baseMapper: newBaseMapper(0, "NROM", r), prgMask: 0x7FFF}
	// NROM-128 mirrors its single bank into $C000-$FFFF.
	if m.prgBanks == 1 {
		m.prgMask = 0x3FFF
	}
	return m
}

func (m *mapper0) MapPrg(addr uint16) (int, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	return int((addr - 0x8000) & m.prgMask), true
}

func (m *mapper0) MapChr(addr uint16) int {
	return int(addr & 0x1FFF)
}

// Store ignores writes; NROM has no bank registers.
func (m *mapper0) Store(addr uint16, val uint8) bool {
	return false
}
