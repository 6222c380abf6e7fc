package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bdwalton/famicore/cartridge"
	"github.com/bdwalton/famicore/controller"
	"github.com/bdwalton/famicore/mos6502"
	"github.com/bdwalton/famicore/nesrom"
	"github.com/bdwalton/famicore/ppu"
)

// testImage builds a one bank NROM image with each program copied in
// at its CPU address. Reset goes to $8000, NMI to $9000 and IRQ to
// $9100.
func testImage(progs map[uint16][]uint8, mirror uint8) []byte {
	img := []byte{'N', 'E', 'S', 0x1A, 1, 1, mirror, 0, 0, 0, 0, 0, 0, 0, 0, 0}

	bank := make([]byte, nesrom.PRG_BLOCK_SIZE)
	for addr, p := range progs {
		copy(bank[(addr-0x8000)&0x3FFF:], p)
	}
	copy(bank[0x3FFA:], []byte{0x00, 0x90, 0x00, 0x80, 0x00, 0x91})

	img = append(img, bank...)
	return append(img, make([]byte, nesrom.CHR_BLOCK_SIZE)...)
}

func newTestBus(t *testing.T, progs map[uint16][]uint8, mirror uint8) *Bus {
	t.Helper()

	rom, err := nesrom.New(bytes.NewReader(testImage(progs, mirror)))
	if err != nil {
		t.Fatalf("nesrom.New() = %v", err)
	}
	c, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New() = %v", err)
	}
	return New(c)
}

// spin is an infinite loop at $8000.
var spin = map[uint16][]uint8{0x8000: {0x4C, 0x00, 0x80}}

func TestReset(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
	b.Write(0x0010, 0x42)
	b.Clock()
	b.Reset()

	r := b.cpu.Registers()
	if r.PC != 0x8000 || r.SP != 0xFD || r.P != 0x20 || b.CPUCycles() != 7 || b.PPUCycles() != 21 {
		t.Errorf("Got PC=%04x SP=%02x P=%02x cycles=%d/%d, want PC=8000 SP=FD P=20 cycles=7/21", r.PC, r.SP, r.P, b.CPUCycles(), b.PPUCycles())
	}
	if got := b.Read(0x0010); got != 0x42 {
		t.Errorf("Reset cleared RAM: Got 0x%02x, want 0x42", got)
	}
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)

	for i := 0; i < 10; i++ {
		b.Write(uint16(i), uint8(i+1))
	}

	for _, a := range []uint16{0, 0x800, 0x1000, 0x1800} {
		for i := 0; i < 10; i++ {
			if got := b.Read(a + uint16(i)); got != uint8(i+1) {
				t.Errorf("mem[%04x] = %02x, wanted %02x", a+uint16(i), got, i+1)
			}
		}
	}
}

// vramWrite stores val at addr in PPU space through the given
// register addresses.
func vramWrite(b *Bus, addrReg, dataReg, addr uint16, val uint8) {
	b.Write(addrReg, uint8(addr>>8))
	b.Write(addrReg, uint8(addr))
	b.Write(dataReg, val)
}

func vramRead(b *Bus, addr uint16) uint8 {
	b.Write(ppu.PPUADDR, uint8(addr>>8))
	b.Write(ppu.PPUADDR, uint8(addr))
	b.Read(ppu.PPUDATA)
	return b.Read(ppu.PPUDATA)
}

func TestPPURegisterMirroring(t *testing.T) {
	cases := []struct {
		addrReg, dataReg uint16
	}{
		{0x2006, 0x2007},
		{0x200E, 0x200F},
		{0x3FFE, 0x3FFF},
		{0x2A46, 0x3007},
	}

	for i, tc := range cases {
		b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
		vramWrite(b, tc.addrReg, tc.dataReg, 0x2100, uint8(0x50+i))
		if got := vramRead(b, 0x2100); got != uint8(0x50+i) {
			t.Errorf("%d: Got 0x%02x, want 0x%02x", i, got, 0x50+i)
		}
	}
}

func TestNameTableMirroring(t *testing.T) {
	cases := []struct {
		a      uint16 // address to write
		val    uint8  // value to write
		mm     uint8  // mirroring mode
		wantAp uint16 // address to validate for mirroring, in addition to original
	}{
		{0x2000, 0xF1, nesrom.MIRROR_VERTICAL, 0x2800},
		{0x20FF, 0x1F, nesrom.MIRROR_VERTICAL, 0x28FF},
		{0x2801, 0xE3, nesrom.MIRROR_VERTICAL, 0x2001},
		{0x240F, 0xD1, nesrom.MIRROR_VERTICAL, 0x2C0F},
		{0x2C1E, 0xCC, nesrom.MIRROR_VERTICAL, 0x241E},
		{0x2000, 0xF2, nesrom.MIRROR_HORIZONTAL, 0x2400},
		{0x2800, 0x32, nesrom.MIRROR_HORIZONTAL, 0x2C00},
		{0x2C00, 0x41, nesrom.MIRROR_HORIZONTAL, 0x2800},
		{0x2402, 0x56, nesrom.MIRROR_HORIZONTAL, 0x2002},
		{0x2CFF, 0x15, nesrom.MIRROR_HORIZONTAL, 0x28FF},
	}

	for i, tc := range cases {
		b := newTestBus(t, spin, tc.mm)
		vramWrite(b, ppu.PPUADDR, ppu.PPUDATA, tc.a, tc.val)
		if got, gotAp := vramRead(b, tc.a), vramRead(b, tc.wantAp); got != tc.val || gotAp != tc.val {
			t.Errorf("%d: %04x: %02x, %04x: %02x, wanted %02x", i, tc.a, got, tc.wantAp, gotAp, tc.val)
		}
	}
}

func TestPaletteMirroring(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
	vramWrite(b, ppu.PPUADDR, ppu.PPUDATA, 0x3F10, 0x2C)

	b.Write(ppu.PPUADDR, 0x3F)
	b.Write(ppu.PPUADDR, 0x00)
	if got := b.Read(ppu.PPUDATA); got != 0x2C {
		t.Errorf("Got 0x%02x, want 0x2C", got)
	}
}

func TestIORange(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
	for _, a := range []uint16{0x4000, 0x4013, 0x4015, 0x4018, 0x401F} {
		b.Write(a, 0xFF)
		if got := b.Read(a); got != 0 {
			t.Errorf("mem[%04x] = %02x, wanted 0", a, got)
		}
	}
}

func TestControllerPorts(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
	b.Controller(0).SetButtons(0b1000_0101)
	b.Controller(1).SetButton(controller.BUTTON_B, true)

	b.Write(JOYPAD1, 1)
	b.Write(JOYPAD1, 0)

	cases := []struct {
		port uint16
		want []uint8
	}{
		{JOYPAD1, []uint8{1, 0, 1, 0, 0, 0, 0, 1, 1, 1}},
		{JOYPAD2, []uint8{0, 1, 0, 0, 0, 0, 0, 0, 1, 1}},
	}

	for i, tc := range cases {
		for j, want := range tc.want {
			if got := b.Read(tc.port); got != want {
				t.Errorf("%d: read %d Got %d, want %d", i, j, got, want)
			}
		}
	}

	// $4017 writes belong to the APU and don't strobe
	b.Write(JOYPAD2, 1)
	if got := b.Read(JOYPAD2); got != 1 {
		t.Errorf("Got %d after $4017 write, want 1", got)
	}
}

func TestControllerLookup(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)

	cases := []struct {
		port uint
		want *controller.Controller
	}{
		{0, b.pads[0]},
		{1, b.pads[1]},
		{2, b.pads[0]},
		{3, b.pads[1]},
		{^uint(0), b.pads[1]},
	}

	for i, tc := range cases {
		if got := b.Controller(tc.port); got != tc.want {
			t.Errorf("%d: Controller(%d) returned the wrong pad", i, tc.port)
		}
	}
}

func TestCartridgeAccess(t *testing.T) {
	b := newTestBus(t, map[uint16][]uint8{0x8000: {0x4C, 0x00, 0x80}, 0x8123: {0x77}}, nesrom.MIRROR_HORIZONTAL)

	if lo, hi := b.Read(0x8123), b.Read(0xC123); lo != 0x77 || hi != 0x77 {
		t.Errorf("Got 0x%02x/0x%02x, want NROM-128 mirror 0x77/0x77", lo, hi)
	}

	b.Write(0x6000, 0x12)
	b.Write(0x7FFF, 0x34)
	if lo, hi := b.Read(0x6000), b.Read(0x7FFF); lo != 0x12 || hi != 0x34 {
		t.Errorf("PRG RAM Got 0x%02x/0x%02x, want 0x12/0x34", lo, hi)
	}

	b.Write(0x8123, 0x00)
	if got := b.Read(0x8123); got != 0x77 || b.Faults() != 1 {
		t.Errorf("ROM write: Got 0x%02x with %d faults, want 0x77 with 1 fault", got, b.Faults())
	}

	if got := b.Read(0x5000); got != 0 {
		t.Errorf("Unmapped read Got 0x%02x, want 0", got)
	}
}

func TestOAMDMA(t *testing.T) {
	// LDA #$10; STA $2003; LDA #$02; STA $4014
	b := newTestBus(t, map[uint16][]uint8{0x8000: {0xA9, 0x10, 0x8D, 0x03, 0x20, 0xA9, 0x02, 0x8D, 0x14, 0x40, 0x4C, 0x0A, 0x80}}, nesrom.MIRROR_HORIZONTAL)
	for i := 0; i < 256; i++ {
		b.Write(0x0200+uint16(i), uint8(i))
	}

	for i := 0; i < 3; i++ {
		b.Clock()
	}
	// 7 (reset) + 2 + 4 + 2 is odd, so the DMA takes the extra cycle
	n, err := b.Clock()
	if err != nil || n != 4+DMA_CYCLES+1 {
		t.Errorf("Got %d cycles (%v), want %d", n, err, 4+DMA_CYCLES+1)
	}
	if b.PPUCycles() != 3*b.CPUCycles() {
		t.Errorf("PPU cycles %d != 3 * CPU cycles %d", b.PPUCycles(), b.CPUCycles())
	}

	cases := []struct {
		oamaddr uint8
		want    uint8
	}{
		{0x10, 0x00},
		{0x11, 0x01},
		{0xFF, 0xEF},
		{0x0F, 0xFF}, // wrapped
	}
	for i, tc := range cases {
		b.Write(ppu.OAMADDR, tc.oamaddr)
		if got := b.Read(ppu.OAMDATA); got != tc.want {
			t.Errorf("%d: oam[%02x] = %02x, want %02x", i, tc.oamaddr, got, tc.want)
		}
	}
}

func TestCycleRatio(t *testing.T) {
	// INX, a page crossing load and an OAM DMA
	prog := []uint8{
		// INX
		0xE8,
		// LDA $02F0,X
		0xBD, 0xF0, 0x02,
		// BNE +5
		0xD0, 0x05,
		// LDA #$02
		0xA9, 0x02,
		// STA $4014
		0x8D, 0x14, 0x40,
		// JMP $8000
		0x4C, 0x00, 0x80,
	}
	b := newTestBus(t, map[uint16][]uint8{0x8000: prog}, nesrom.MIRROR_HORIZONTAL)

	for i := 0; i < 20000; i++ {
		if _, err := b.Clock(); err != nil {
			t.Fatalf("%d: Clock() = %v", i, err)
		}
		if b.PPUCycles() != 3*b.CPUCycles() {
			t.Fatalf("%d: PPU cycles %d != 3 * CPU cycles %d", i, b.PPUCycles(), b.CPUCycles())
		}
	}
}

func TestNMIDelivery(t *testing.T) {
	progs := map[uint16][]uint8{
		// LDA #$80; STA $2000; JMP $8005
		0x8000: {0xA9, 0x80, 0x8D, 0x00, 0x20, 0x4C, 0x05, 0x80},
		// INC $10; RTI
		0x9000: {0xE6, 0x10, 0x40},
	}
	b := newTestBus(t, progs, nesrom.MIRROR_HORIZONTAL)

	frames := 0
	b.OnFrame(func(f *ppu.Frame) {
		frames++
		if f != b.Frame() {
			t.Errorf("OnFrame got a frame other than the front buffer")
		}
	})

	if err := b.RunFrames(context.Background(), 3); err != nil {
		t.Fatalf("RunFrames() = %v", err)
	}
	if got := b.Read(0x0010); got != 3 || frames != 3 {
		t.Errorf("Got %d NMIs over %d frames, want 3 over 3", got, frames)
	}
	if b.PPUCycles() != 3*b.CPUCycles() {
		t.Errorf("PPU cycles %d != 3 * CPU cycles %d", b.PPUCycles(), b.CPUCycles())
	}
}

func TestNoNMIWhenDisabled(t *testing.T) {
	progs := map[uint16][]uint8{
		0x8000: {0x4C, 0x00, 0x80},
		0x9000: {0xE6, 0x10, 0x40},
	}
	b := newTestBus(t, progs, nesrom.MIRROR_HORIZONTAL)

	if err := b.RunFrames(context.Background(), 2); err != nil {
		t.Fatalf("RunFrames() = %v", err)
	}
	if got := b.Read(0x0010); got != 0 {
		t.Errorf("Got %d NMIs, want 0", got)
	}
}

func TestHalt(t *testing.T) {
	b := newTestBus(t, map[uint16][]uint8{0x8000: {0xEA, 0x02}}, nesrom.MIRROR_HORIZONTAL)

	if _, err := b.Clock(); err != nil {
		t.Fatalf("NOP: %v", err)
	}
	if _, err := b.Clock(); !errors.Is(err, mos6502.ErrHalted) {
		t.Errorf("Got %v, want ErrHalted", err)
	}
	if err := b.Run(context.Background(), nil); !errors.Is(err, mos6502.ErrHalted) {
		t.Errorf("Run() = %v, want ErrHalted", err)
	}
}

func TestRunBreakpoint(t *testing.T) {
	b := newTestBus(t, map[uint16][]uint8{0x8000: {0xEA, 0xEA, 0xEA, 0x4C, 0x00, 0x80}}, nesrom.MIRROR_HORIZONTAL)

	if err := b.Run(context.Background(), map[uint16]struct{}{0x8002: {}}); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if pc := b.cpu.PC(); pc != 0x8002 {
		t.Errorf("Got PC=%04x, want 8002", pc)
	}
}

func TestRunCancel(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if err := b.RunFrames(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("RunFrames() = %v, want context.Canceled", err)
	}
}

func TestSetTrace(t *testing.T) {
	// LDA #$01; TAX
	b := newTestBus(t, map[uint16][]uint8{0x8000: {0xA9, 0x01, 0xAA}}, nesrom.MIRROR_HORIZONTAL)
	var buf bytes.Buffer
	b.SetTrace(&buf)
	b.Clock()
	b.Clock()
	b.SetTrace(nil)
	b.Clock()

	want := []string{
		"8000  A9 01     LDA #$01                        A:00 X:00 Y:00 P:20 SP:FD PPU: -1, 21 CYC:7",
		"8002  AA        TAX                             A:01 X:00 Y:00 P:20 SP:FD PPU: -1, 27 CYC:9",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("Got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d:\nGot  %q\nwant %q", i, got[i], want[i])
		}
	}
}

func TestDumps(t *testing.T) {
	b := newTestBus(t, spin, nesrom.MIRROR_HORIZONTAL)
	b.Write(0x0000, 0xAB)
	b.Write(0x01FE, 0xCD)
	b.Write(0x01FF, 0xEF)

	var buf bytes.Buffer
	b.dumpMemory(&buf, 0x0000, 0x0001)
	if got := buf.String(); !strings.Contains(got, "0x0000: 0xab 0x0001: 0x00") {
		t.Errorf("dumpMemory: Got %q", got)
	}

	buf.Reset()
	b.dumpStack(&buf)
	if got := buf.String(); !strings.Contains(got, "0x01fe: 0xcd 0x01ff: 0xef") {
		t.Errorf("dumpStack: Got %q", got)
	}

	buf.Reset()
	b.dumpInstruction(&buf)
	if got := buf.String(); !strings.Contains(got, "JMP $8000") {
		t.Errorf("dumpInstruction: Got %q", got)
	}

	s := b.snapshot()
	if len(s.Stack) != 2 || s.Stack[0] != 0xCD || s.CPU.PC != 0x8000 {
		t.Errorf("snapshot: Got %+v", s)
	}

	buf.Reset()
	b.writeGraph(&buf)
	if !strings.Contains(buf.String(), "digraph") {
		t.Errorf("writeGraph: Got %q", buf.String())
	}
}
