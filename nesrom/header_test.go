package nesrom

import (
	"reflect"
	"testing"
)

// rawHeader builds a 16 byte header from the bytes following the
// magic.
func rawHeader(rest ...uint8) []uint8 {
	h := make([]uint8, HEADER_SIZE)
	copy(h, MAGIC)
	copy(h[4:], rest)
	return h
}

func TestParseHeader(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  *header
	}{
		{rawHeader(2, 1, 0x01), &header{constant: MAGIC, prgSize: 2, chrSize: 1, flags6: 0x01}},
		{
			rawHeader(1, 0, 0x12, 0x08, 0x02, 0x01, 0x30, 0x00, 0x44, 0x44, 0x00, 0x21),
			&header{constant: MAGIC, prgSize: 1, flags6: 0x12, flags7: 0x08, flags8: 2, flags9: 1, flags10: 0x30, padding: [5]uint8{0, 0x44, 0x44, 0, 0x21}},
		},
		{
			[]byte("UNIF\x04\x02\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"),
			&header{constant: "UNIF", prgSize: 4, chrSize: 2},
		},
	}

	for i, tc := range cases {
		if h := parseHeader(tc.bytes); !reflect.DeepEqual(h, tc.want) {
			t.Errorf("%d: Got %s, want %s", i, h, tc.want)
		}
	}
}

func TestHeaderFormat(t *testing.T) {
	cases := []struct {
		bytes              []byte
		wantINES, wantNES2 bool
	}{
		{rawHeader(1, 1, 0, 0x08), true, true},
		{rawHeader(1, 1, 0, 0x0C), true, false},
		{rawHeader(1, 1, 0, 0x04), true, false},
		{rawHeader(1, 1, 0, 0x00), true, false},
		{[]byte("NES\x00\x01\x01\x00\x08\x00\x00\x00\x00\x00\x00\x00\x00"), false, false},
		{[]byte("FDS\x1A\x01\x01\x00\x08\x00\x00\x00\x00\x00\x00\x00\x00"), false, false},
	}

	for i, tc := range cases {
		h := parseHeader(tc.bytes)
		if h.isINesFormat() != tc.wantINES || h.isNES2Format() != tc.wantNES2 {
			t.Errorf("%d: ines = %t, want %t; nes2 = %t, want %t", i, h.isINesFormat(), tc.wantINES, h.isNES2Format(), tc.wantNES2)
		}
	}
}

func TestMapperNum(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  uint8
	}{
		{rawHeader(1, 1, 0x00, 0x00), 0},
		{rawHeader(1, 1, 0x10, 0x00), 1},
		{rawHeader(1, 1, 0x40, 0x40), 0x44},
		{rawHeader(1, 1, 0xEF, 0xF0), 0xFE},
		// "DiskDude!" style junk in bytes 12-15 hides the upper nibble.
		{[]byte("NES\x1A\x01\x01\x10\x44iskDude!"), 1},
		{rawHeader(1, 1, 0xC0, 0xB0, 0, 0, 0, 0, 1, 1, 1), 0x0C},
		// NES 2.0 headers use those bytes, so the upper nibble stays.
		{rawHeader(1, 1, 0xF0, 0xF8, 0, 0, 0, 0, 0, 1, 1), 0xFF},
		{rawHeader(1, 1, 0xA0, 0xD8), 0xDA},
	}

	for i, tc := range cases {
		if got := parseHeader(tc.bytes).mapperNum(); got != tc.want {
			t.Errorf("%d: Got %d, want %d", i, got, tc.want)
		}
	}
}

func TestHeaderFlags(t *testing.T) {
	cases := []struct {
		flags6, flags7, flags8, flags9 uint8
		wantMirror                     uint8
		wantTrainer, wantPC10, wantRAM bool
		wantRAMSize, wantTV            uint8
	}{
		{0x00, 0x00, 0, 0, MIRROR_HORIZONTAL, false, false, false, 0, NTSC},
		{0x01, 0x00, 0, 1, MIRROR_VERTICAL, false, false, false, 0, PAL},
		{0x08, 0x00, 0, 0, MIRROR_FOUR_SCREEN, false, false, false, 0, NTSC},
		{0x09, 0x02, 0, 0, MIRROR_FOUR_SCREEN, false, true, false, 0, NTSC},
		{0x04, 0x00, 0, 0, MIRROR_HORIZONTAL, true, false, false, 0, NTSC},
		{0x02, 0x00, 0, 0, MIRROR_HORIZONTAL, false, false, true, 1, NTSC},
		{0x02, 0x00, 4, 0, MIRROR_HORIZONTAL, false, false, true, 4, NTSC},
		// flags8 only counts with the battery bit set
		{0x00, 0x00, 4, 0, MIRROR_HORIZONTAL, false, false, false, 0, NTSC},
		{0xFF, 0xFF, 16, 0xFF, MIRROR_FOUR_SCREEN, true, true, true, 16, PAL},
	}

	for i, tc := range cases {
		h := parseHeader(rawHeader(1, 1, tc.flags6, tc.flags7, tc.flags8, tc.flags9))
		if got := h.mirroringMode(); got != tc.wantMirror {
			t.Errorf("%d: Got mirroring %d, want %d", i, got, tc.wantMirror)
		}
		if h.hasTrainer() != tc.wantTrainer || h.hasPlayChoice() != tc.wantPC10 {
			t.Errorf("%d: Got trainer %t, playchoice %t, want %t, %t", i, h.hasTrainer(), h.hasPlayChoice(), tc.wantTrainer, tc.wantPC10)
		}
		if h.hasPrgRAM() != tc.wantRAM || h.prgRAMSize() != tc.wantRAMSize {
			t.Errorf("%d: Got PRG RAM %t (%d), want %t (%d)", i, h.hasPrgRAM(), h.prgRAMSize(), tc.wantRAM, tc.wantRAMSize)
		}
		if got := h.tvSystem(); got != tc.wantTV {
			t.Errorf("%d: Got TV system %d, want %d", i, got, tc.wantTV)
		}
	}
}
