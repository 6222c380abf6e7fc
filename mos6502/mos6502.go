// package mos6502 implements the MOS Technologies 6502 processor as
// found in the NES's 2A03: no decimal mode, plus the stable
// undocumented opcodes that NES software relies on.
package mos6502

import (
	"errors"
	"fmt"
)

// Memory is the CPU's view of the address bus. The CPU keeps no
// reference to it between calls.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// Status register bits
// 7  bit  0
// ---- ----
// NV1B DIZC
// |||| ||||
// |||| |||+- Carry
// |||| ||+-- Zero
// |||| |+--- Interrupt Disable
// |||| +---- Decimal
// |||+------ Break, only ever seen in pushed copies
// ||+------- Unused, always reads as 1
// |+-------- Overflow
// +--------- Negative
const (
	STATUS_FLAG_CARRY = 1 << iota
	STATUS_FLAG_ZERO
	STATUS_FLAG_INTERRUPT_DISABLE
	STATUS_FLAG_DECIMAL
	STATUS_FLAG_BREAK
	STATUS_FLAG_UNUSED
	STATUS_FLAG_OVERFLOW
	STATUS_FLAG_NEGATIVE
)

const (
	NMI_VECTOR   = 0xFFFA
	RESET_VECTOR = 0xFFFC
	IRQ_VECTOR   = 0xFFFE
)

const (
	RESET_CYCLES = 7
	NMI_CYCLES   = 8
	IRQ_CYCLES   = 7
)

var ErrHalted = errors.New("processor halted")

// CPU implements all of the machine state for the 6502
type CPU struct {
	acc    uint8  // main register
	x, y   uint8  // index registers
	status uint8  // a register for storing various status bits
	sp     uint8  // stack pointer - stack is 0x0100-0x01FF so only 8 bits needed
	pc     uint16 // the program counter
	cycles uint64 // cycles consumed since power on
	halted bool

	extra int // cycles added by the executing instruction, eg taken branches
}

// Registers is a snapshot of the programmer visible state.
type Registers struct {
	A, X, Y, SP, P uint8
	PC             uint16
}

func New() *CPU {
	return &CPU{sp: 0xFD, status: STATUS_FLAG_UNUSED}
}

func (c *CPU) String() string {
	return fmt.Sprintf("PC: 0x%04x, SP: 0x%02x, ACC: 0x%02x, X: 0x%02x, Y: 0x%02x, Status: %s (0x%02x), Cycles: %d", c.pc, c.sp, c.acc, c.x, c.y, c.flagString(), c.status, c.cycles)
}

func (c *CPU) flagString() string {
	const names = "CZIDBUVN"
	b := []byte("--------")
	for i := 0; i < 8; i++ {
		if c.status&(1<<i) != 0 {
			b[7-i] = names[i]
		}
	}
	return string(b)
}

// Reset loads PC from the reset vector and reinitialises the
// registers. The reset sequence takes 7 cycles.
func (c *CPU) Reset(m Memory) {
	c.acc, c.x, c.y = 0, 0, 0
	c.sp = 0xFD
	c.status = STATUS_FLAG_UNUSED
	c.pc = c.read16(m, RESET_VECTOR)
	c.cycles = RESET_CYCLES
	c.halted = false
}

func (c *CPU) Cycles() uint64 {
	return c.cycles
}

func (c *CPU) Halted() bool {
	return c.halted
}

func (c *CPU) PC() uint16 {
	return c.pc
}

func (c *CPU) SetPC(pc uint16) {
	c.pc = pc
}

func (c *CPU) Registers() Registers {
	return Registers{A: c.acc, X: c.x, Y: c.y, SP: c.sp, P: c.status, PC: c.pc}
}

// SetRegisters overwrites the programmer visible state. The unused
// status bit is forced on.
func (c *CPU) SetRegisters(r Registers) {
	c.acc, c.x, c.y, c.sp, c.pc = r.A, r.X, r.Y, r.SP, r.PC
	c.status = r.P | STATUS_FLAG_UNUSED
}

// Step executes one instruction and returns the number of cycles it
// took. An error is only returned once the CPU has executed an opcode
// that jams it.
func (c *CPU) Step(m Memory) (int, error) {
	if c.halted {
		return 0, fmt.Errorf("at 0x%04x: %w", c.pc, ErrHalted)
	}

	start := c.pc
	op := opcodes[m.Read(c.pc)]
	c.pc++

	addr, crossed := c.operandAddr(m, op.mode)
	c.extra = 0
	dispatch[op.inst](c, m, addr, op.mode)

	n := int(op.cycles) + c.extra
	if crossed && op.pagePenalty() {
		n++
	}
	c.cycles += uint64(n)

	if c.halted {
		c.pc = start
		return n, fmt.Errorf("opcode 0x%02x (%s) at 0x%04x: %w", m.Read(start), op.name, start, ErrHalted)
	}

	return n, nil
}

// NMI pushes the return state and jumps through the NMI vector.
func (c *CPU) NMI(m Memory) int {
	c.interrupt(m, NMI_VECTOR)
	c.cycles += NMI_CYCLES
	return NMI_CYCLES
}

// IRQ services a maskable interrupt. It does nothing and returns 0
// while interrupts are disabled.
func (c *CPU) IRQ(m Memory) int {
	if c.flagOn(STATUS_FLAG_INTERRUPT_DISABLE) {
		return 0
	}
	c.interrupt(m, IRQ_VECTOR)
	c.cycles += IRQ_CYCLES
	return IRQ_CYCLES
}

func (c *CPU) interrupt(m Memory, vector uint16) {
	c.push16(m, c.pc)
	c.push(m, (c.status&^STATUS_FLAG_BREAK)|STATUS_FLAG_UNUSED)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.pc = c.read16(m, vector)
}

func (c *CPU) read16(m Memory, addr uint16) uint16 {
	lsb := uint16(m.Read(addr))
	msb := uint16(m.Read(addr + 1))
	return msb<<8 | lsb
}

// read16ZeroPage reads a pointer stored in page 0. The high byte of
// a pointer at 0xFF comes from 0x00.
func (c *CPU) read16ZeroPage(m Memory, zp uint8) uint16 {
	lsb := uint16(m.Read(uint16(zp)))
	msb := uint16(m.Read(uint16(zp + 1)))
	return msb<<8 | lsb
}

// read16Bug reproduces the JMP ($xxFF) bug: the high byte is fetched
// from the start of the same page, not the next one.
func (c *CPU) read16Bug(m Memory, addr uint16) uint16 {
	lsb := uint16(m.Read(addr))
	msb := uint16(m.Read(addr&0xFF00 | uint16(uint8(addr)+1)))
	return msb<<8 | lsb
}

func (c *CPU) stackAddr() uint16 {
	return STACK_PAGE + uint16(c.sp)
}

func (c *CPU) push(m Memory, val uint8) {
	m.Write(c.stackAddr(), val)
	c.sp--
}

func (c *CPU) push16(m Memory, val uint16) {
	c.push(m, uint8(val>>8))
	c.push(m, uint8(val))
}

func (c *CPU) pull(m Memory) uint8 {
	c.sp++
	return m.Read(c.stackAddr())
}

func (c *CPU) pull16(m Memory) uint16 {
	lsb := uint16(c.pull(m))
	msb := uint16(c.pull(m))
	return msb<<8 | lsb
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// operandAddr consumes the operand bytes at PC and returns the
// effective address for mode, along with whether indexing crossed a
// page boundary.
func (c *CPU) operandAddr(m Memory, mode uint8) (uint16, bool) {
	switch mode {
	case IMPLICIT, ACCUMULATOR:
		return 0, false
	case IMMEDIATE:
		c.pc++
		return c.pc - 1, false
	case ZERO_PAGE:
		c.pc++
		return uint16(m.Read(c.pc - 1)), false
	case ZERO_PAGE_X:
		c.pc++
		return uint16(m.Read(c.pc-1) + c.x), false
	case ZERO_PAGE_Y:
		c.pc++
		return uint16(m.Read(c.pc-1) + c.y), false
	case RELATIVE:
		off := int8(m.Read(c.pc))
		c.pc++
		addr := c.pc + uint16(off)
		return addr, pageCrossed(c.pc, addr)
	case ABSOLUTE:
		c.pc += 2
		return c.read16(m, c.pc-2), false
	case ABSOLUTE_X:
		c.pc += 2
		base := c.read16(m, c.pc-2)
		addr := base + uint16(c.x)
		return addr, pageCrossed(base, addr)
	case ABSOLUTE_Y:
		c.pc += 2
		base := c.read16(m, c.pc-2)
		addr := base + uint16(c.y)
		return addr, pageCrossed(base, addr)
	case INDIRECT:
		c.pc += 2
		return c.read16Bug(m, c.read16(m, c.pc-2)), false
	case INDIRECT_X:
		c.pc++
		return c.read16ZeroPage(m, m.Read(c.pc-1)+c.x), false
	case INDIRECT_Y:
		c.pc++
		base := c.read16ZeroPage(m, m.Read(c.pc-1))
		addr := base + uint16(c.y)
		return addr, pageCrossed(base, addr)
	}

	panic(fmt.Sprintf("invalid addressing mode %d", mode))
}

func (c *CPU) flagOn(flag uint8) bool {
	return c.status&flag != 0
}

func (c *CPU) flagsOn(mask uint8) {
	c.status |= mask
}

func (c *CPU) flagsOff(mask uint8) {
	c.status &^= mask
}

func (c *CPU) setFlag(flag uint8, on bool) {
	if on {
		c.flagsOn(flag)
	} else {
		c.flagsOff(flag)
	}
}

func (c *CPU) setNegativeAndZeroFlags(n uint8) {
	c.setFlag(STATUS_FLAG_ZERO, n == 0)
	c.setFlag(STATUS_FLAG_NEGATIVE, n&0x80 != 0)
}
