package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bdwalton/famicore/cartridge"
	"github.com/bdwalton/famicore/console"
	"github.com/bdwalton/famicore/nesrom"
	"github.com/hajimehoshi/ebiten/v2"
)

func pressing(ks ...ebiten.Key) func(ebiten.Key) bool {
	return func(k ebiten.Key) bool {
		for _, p := range ks {
			if p == k {
				return true
			}
		}
		return false
	}
}

// readPads strobes the pad, stores the first three reads at $00-$02
// and then spins.
var readPads = []uint8{
	// LDA #$01
	0xA9, 0x01,
	// STA $4016
	0x8D, 0x16, 0x40,
	// LDA #$00
	0xA9, 0x00,
	// STA $4016
	0x8D, 0x16, 0x40,
	// LDA $4016
	0xAD, 0x16, 0x40,
	// STA $00
	0x85, 0x00,
	// LDA $4016
	0xAD, 0x16, 0x40,
	// STA $01
	0x85, 0x01,
	// LDA $4016
	0xAD, 0x16, 0x40,
	// STA $02
	0x85, 0x02,
	// JMP $8019
	0x4C, 0x19, 0x80,
}

func newTestBus(t *testing.T) *console.Bus {
	t.Helper()

	img := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	bank := make([]byte, nesrom.PRG_BLOCK_SIZE)
	copy(bank, readPads)
	copy(bank[0x3FFA:], []byte{0x00, 0x80, 0x00, 0x80, 0x00, 0x80})
	img = append(img, bank...)
	img = append(img, make([]byte, nesrom.CHR_BLOCK_SIZE)...)

	rom, err := nesrom.New(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("nesrom.New() = %v", err)
	}
	c, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New() = %v", err)
	}
	return console.New(c)
}

func TestButtons(t *testing.T) {
	cases := []struct {
		keys []ebiten.Key
		want uint8
	}{
		{nil, 0},
		{[]ebiten.Key{ebiten.KeyA}, 0b00000001},
		{[]ebiten.Key{ebiten.KeyB, ebiten.KeyEnter}, 0b00001010},
		{[]ebiten.Key{ebiten.KeySpace, ebiten.KeyUp, ebiten.KeyRight}, 0b10010100},
		{[]ebiten.Key{ebiten.KeyDown, ebiten.KeyLeft, ebiten.KeyZ}, 0b01100000},
		{keys, 0xFF},
	}

	for i, tc := range cases {
		if got := buttons(pressing(tc.keys...)); got != tc.want {
			t.Errorf("%d: Got %08b, want %08b", i, got, tc.want)
		}
	}
}

func TestUpdate(t *testing.T) {
	b := newTestBus(t)
	g := New(b)
	g.pressed = pressing(ebiten.KeyA, ebiten.KeySpace)

	if err := g.Update(); err != nil {
		t.Fatalf("Update() = %v", err)
	}

	for i, want := range []uint8{1, 0, 1} {
		if got := b.Read(uint16(i)); got != want {
			t.Errorf("%d: Got %d, want %d", i, got, want)
		}
	}
	if got := b.Controller(0).Buttons(); got != 0b00000101 {
		t.Errorf("Got buttons %08b, want 00000101", got)
	}
}

func TestUpdateEscape(t *testing.T) {
	g := New(newTestBus(t))
	g.pressed = pressing(ebiten.KeyEscape)

	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Got %v, want ebiten.Termination", err)
	}
}

func TestLayout(t *testing.T) {
	g := New(newTestBus(t))
	if w, h := g.Layout(1024, 960); w != 256 || h != 240 {
		t.Errorf("Got %dx%d, want 256x240", w, h)
	}
}
