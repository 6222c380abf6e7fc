// Package console wires the CPU, PPU, cartridge and controllers
// together behind the NES memory map.
package console

import (
	"context"
	"fmt"
	"io"

	"github.com/bdwalton/famicore/cartridge"
	"github.com/bdwalton/famicore/controller"
	"github.com/bdwalton/famicore/mos6502"
	"github.com/bdwalton/famicore/ppu"
)

const (
	RAM_SIZE            = 0x0800
	MAX_RAM_MIRRORED    = 0x1FFF
	MAX_IO_REG_MIRRORED = 0x4000
	MAX_IO_REG          = 0x4020
	PPU_REG_COUNT       = 8
	JOYPAD1             = 0x4016
	JOYPAD2             = 0x4017
	DMA_CYCLES          = 513
	PPU_TICKS_PER_CYCLE = 3
)

// Bus owns all of the hardware and implements the CPU's view of
// memory.
type Bus struct {
	ram  [RAM_SIZE]uint8
	cpu  *mos6502.CPU
	ppu  *ppu.PPU
	cart *cartridge.Cartridge
	pads [2]*controller.Controller

	cycles uint64 // CPU cycles, including DMA stalls
	stall  int    // DMA cycles accrued during the current Clock
	faults uint64

	trace    io.Writer
	onFrames []func(*ppu.Frame)
}

// New builds a console around c and presses reset.
func New(c *cartridge.Cartridge) *Bus {
	b := &Bus{
		cpu:  mos6502.New(),
		ppu:  ppu.New(c),
		cart: c,
		pads: [2]*controller.Controller{controller.New(), controller.New()},
	}
	b.Reset()

	return b
}

func (b *Bus) String() string {
	return fmt.Sprintf("%s\n%s", b.cpu, b.ppu)
}

// Reset presses the reset button. RAM keeps its contents. The CPU's
// reset sequence is charged to the PPU as well so the 3:1 ratio holds
// from the start.
func (b *Bus) Reset() {
	b.ppu.Reset()
	b.cpu.Reset(b)
	b.cycles = 0
	b.stall = 0
	b.tick(int(b.cpu.Cycles()))
}

// Read implements mos6502.Memory.
func (b *Bus) Read(addr uint16) uint8 {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_RAM_MIRRORED:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		return b.ram[addr%RAM_SIZE]
	case addr < MAX_IO_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		return b.ppu.ReadReg(ppuReg(addr))
	case addr == JOYPAD1:
		return b.pads[0].Read()
	case addr == JOYPAD2:
		return b.pads[1].Read()
	case addr < MAX_IO_REG:
		// APU and test registers aren't implemented
		return 0
	default:
		return b.cart.CpuRead(addr)
	}
}

// Write implements mos6502.Memory.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= MAX_RAM_MIRRORED:
		b.ram[addr%RAM_SIZE] = val
	case addr < MAX_IO_REG_MIRRORED:
		b.ppu.WriteReg(ppuReg(addr), val)
	case addr == ppu.OAMDMA:
		b.dma(val)
	case addr == JOYPAD1:
		// The strobe line is shared by both ports.
		b.pads[0].Write(val)
		b.pads[1].Write(val)
	case addr < MAX_IO_REG:
		// APU, including the frame counter at $4017
	default:
		// The cartridge logs the fault itself.
		if err := b.cart.CpuWrite(addr, val); err != nil {
			b.faults++
		}
	}
}

// Peek implements mos6502.Peeker, reading without side effects.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr <= MAX_RAM_MIRRORED:
		return b.ram[addr%RAM_SIZE]
	case addr < MAX_IO_REG_MIRRORED:
		return b.ppu.PeekReg(ppuReg(addr))
	case addr < MAX_IO_REG:
		return 0
	default:
		return b.cart.CpuRead(addr)
	}
}

func ppuReg(addr uint16) uint16 {
	return ppu.PPUCTRL + (addr-ppu.PPUCTRL)%PPU_REG_COUNT
}

// dma copies page into OAM, stalling the CPU for 513 cycles, or 514
// when it starts on an odd cycle.
func (b *Bus) dma(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < ppu.OAM_SIZE; i++ {
		b.ppu.WriteOAM(b.Read(base + uint16(i)))
	}

	b.stall += DMA_CYCLES
	if b.cycles%2 == 1 {
		b.stall++
	}
}

// tick advances the PPU three dots for each of n CPU cycles and fires
// frame handlers as frames complete.
func (b *Bus) tick(n int) {
	b.cycles += uint64(n)
	for i := 0; i < n*PPU_TICKS_PER_CYCLE; i++ {
		if b.ppu.Tick() {
			for _, f := range b.onFrames {
				f(b.ppu.Frame())
			}
		}
	}
}

// Clock executes a single instruction, along with any DMA it
// triggers and an NMI if the PPU raised one, and returns the CPU
// cycles consumed.
func (b *Bus) Clock() (int, error) {
	if b.trace != nil {
		fmt.Fprintln(b.trace, b.Trace())
	}

	b.stall = 0
	n, err := b.cpu.Step(b)
	n += b.stall
	b.tick(n)
	if err != nil {
		return n, err
	}

	if b.ppu.PollNMI() {
		c := b.cpu.NMI(b)
		b.tick(c)
		n += c
	}

	return n, nil
}

// Run clocks the machine until ctx is cancelled, the CPU halts or PC
// lands on one of breaks.
func (b *Bus) Run(ctx context.Context, breaks map[uint16]struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := b.Clock(); err != nil {
			return err
		}
		if _, ok := breaks[b.cpu.PC()]; ok {
			return nil
		}
	}
}

// RunFrames clocks the machine until n more frames have completed.
func (b *Bus) RunFrames(ctx context.Context, n int) error {
	target := b.ppu.Frames() + uint64(n)
	for b.ppu.Frames() < target {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := b.Clock(); err != nil {
			return err
		}
	}
	return nil
}

// OnFrame registers f to be called with each completed frame.
func (b *Bus) OnFrame(f func(*ppu.Frame)) {
	b.onFrames = append(b.onFrames, f)
}

// Frame returns the last completed frame.
func (b *Bus) Frame() *ppu.Frame {
	return b.ppu.Frame()
}

// Controller returns the pad plugged into port (0 or 1). Higher port
// numbers wrap.
func (b *Bus) Controller(port uint) *controller.Controller {
	return b.pads[port%uint(len(b.pads))]
}

// SetTrace makes Clock write a trace line for every instruction to w.
// A nil w turns tracing off.
func (b *Bus) SetTrace(w io.Writer) {
	b.trace = w
}

// Trace describes the next instruction along with the PPU position and
// cycle count, as nestest.log does.
func (b *Bus) Trace() string {
	return fmt.Sprintf("%s PPU:%3d,%3d CYC:%d", b.cpu.Trace(b), b.ppu.Scanline(), b.ppu.Dot(), b.cycles)
}

func (b *Bus) CPUCycles() uint64 {
	return b.cycles
}

func (b *Bus) PPUCycles() uint64 {
	return b.ppu.Ticks()
}

// Faults returns the number of writes the cartridge refused.
func (b *Bus) Faults() uint64 {
	return b.faults
}
