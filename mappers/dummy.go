package mappers

// DummyMapper maps $8000-$FFFF linearly onto 32KB of PRG and records
// every store it is offered. It exists for tests that need a mapper
// with bank registers.
type DummyMapper struct {
	*baseMapper
	Stores map[uint16]uint8
}

func NewDummy() *DummyMapper {
	return &DummyMapper{
		baseMapper: &baseMapper{id: 0xFF, name: "dummy mapper", prgBanks: 2, chrBanks: 1},
		Stores:     map[uint16]uint8{},
	}
}

func (dm *DummyMapper) MapPrg(addr uint16) (int, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	return int(addr - 0x8000), true
}

func (dm *DummyMapper) MapChr(addr uint16) int {
	return int(addr & 0x1FFF)
}

func (dm *DummyMapper) Store(addr uint16, val uint8) bool {
	dm.Stores[addr] = val
	return true
}
