package ppu

import (
	"testing"
)

func TestOAMFromBytes(t *testing.T) {
	cases := []struct {
		in     []uint8
		want   oam
		wantS  string
		wantAt uint8
	}{
		{
			[]uint8{0x10, 0x22, 0b11100011, 0x30},
			oam{y: 0x10, tileId: 0x22, palette: 3, renderP: BACK, flipH: true, flipV: true, x: 0x30},
			"x= 48 y= 16 tile=0x22 attr=11100011", 0b11100011,
		},
		{
			// Bits 2-4 aren't stored.
			[]uint8{0xEF, 0x01, 0b00011110, 0x00},
			oam{y: 0xEF, tileId: 0x01, palette: 2, renderP: FRONT, x: 0},
			"x=  0 y=239 tile=0x01 attr=00000010", 0b00000010,
		},
		{
			[]uint8{0x00, 0xFF, 0b10100001, 0xF8},
			oam{y: 0, tileId: 0xFF, palette: 1, renderP: BACK, flipV: true, x: 0xF8},
			"x=248 y=  0 tile=0xff attr=10100001", 0b10100001,
		},
		{
			[]uint8{0x7F, 0x80, 0b01000000, 0x7F},
			oam{y: 0x7F, tileId: 0x80, renderP: FRONT, flipH: true, x: 0x7F},
			"x=127 y=127 tile=0x80 attr=01000000", 0b01000000,
		},
	}

	for i, tc := range cases {
		o := oamFromBytes(tc.in)
		if o != tc.want {
			t.Errorf("%d: Got %+v, want %+v", i, o, tc.want)
		}
		if s := o.String(); s != tc.wantS {
			t.Errorf("%d: Got %q, want %q", i, s, tc.wantS)
		}
		if a := o.attributes(); a != tc.wantAt {
			t.Errorf("%d: Got attributes %08b, want %08b", i, a, tc.wantAt)
		}
	}
}

func TestSpriteLookup(t *testing.T) {
	p := New(&testBus{})
	p.WriteReg(OAMADDR, 0xFC)
	for _, b := range []uint8{0x40, 0x05, 0x41, 0x90} {
		p.WriteReg(OAMDATA, b)
	}

	cases := []struct {
		n    int
		want string
	}{
		{63, "x=144 y= 64 tile=0x05 attr=01000001"},
		{127, "x=144 y= 64 tile=0x05 attr=01000001"},
		{0, "x=  0 y=  0 tile=0x00 attr=00000000"},
	}

	for i, tc := range cases {
		if got := p.OAMEntry(tc.n); got != tc.want {
			t.Errorf("%d: Got %q, want %q", i, got, tc.want)
		}
	}
}
