package mos6502

import (
	"fmt"
	"strings"
)

// Peeker is implemented by memories that can be read without side
// effects, such as a bus fronting PPU registers.
type Peeker interface {
	Peek(addr uint16) uint8
}

func peek(m Memory, addr uint16) uint8 {
	if p, ok := m.(Peeker); ok {
		return p.Peek(addr)
	}
	return m.Read(addr)
}

func peek16(m Memory, addr uint16) uint16 {
	return uint16(peek(m, addr+1))<<8 | uint16(peek(m, addr))
}

// Trace describes the instruction at PC and the current register
// state in the layout of nestest.log, eg:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD
//
// Memory is only peeked.
func (c *CPU) Trace(m Memory) string {
	op := opcodes[peek(m, c.pc)]

	raw := make([]string, op.bytes)
	for i := range raw {
		raw[i] = fmt.Sprintf("%02X", peek(m, c.pc+uint16(i)))
	}

	marker := ' '
	if op.unofficial {
		marker = '*'
	}

	return fmt.Sprintf("%04X  %-8s %c%s %-28sA:%02X X:%02X Y:%02X P:%02X SP:%02X",
		c.pc, strings.Join(raw, " "), marker, op.name, c.operandText(m, c.pc, op, true),
		c.acc, c.x, c.y, c.status, c.sp)
}

// Disassemble returns the instruction at addr in assembler syntax and
// its length in bytes.
func (c *CPU) Disassemble(m Memory, addr uint16) (string, int) {
	op := opcodes[peek(m, addr)]
	s := op.name
	if ot := c.operandText(m, addr, op, false); ot != "" {
		s += " " + ot
	}
	if op.unofficial {
		s = "*" + s
	}
	return s, int(op.bytes)
}

// operandText renders the operand of op at pc. With values set the
// effective address and the memory it holds are appended the way
// nestest.log shows them; that uses the live X and Y registers.
func (c *CPU) operandText(m Memory, pc uint16, op opcode, values bool) string {
	b1 := peek(m, pc+1)
	w := peek16(m, pc+1)

	var s, v string
	switch op.mode {
	case IMPLICIT:
	case ACCUMULATOR:
		s = "A"
	case IMMEDIATE:
		s = fmt.Sprintf("#$%02X", b1)
	case ZERO_PAGE:
		s = fmt.Sprintf("$%02X", b1)
		v = fmt.Sprintf(" = %02X", peek(m, uint16(b1)))
	case ZERO_PAGE_X:
		a := b1 + c.x
		s = fmt.Sprintf("$%02X,X", b1)
		v = fmt.Sprintf(" @ %02X = %02X", a, peek(m, uint16(a)))
	case ZERO_PAGE_Y:
		a := b1 + c.y
		s = fmt.Sprintf("$%02X,Y", b1)
		v = fmt.Sprintf(" @ %02X = %02X", a, peek(m, uint16(a)))
	case RELATIVE:
		s = fmt.Sprintf("$%04X", pc+2+uint16(int8(b1)))
	case ABSOLUTE:
		s = fmt.Sprintf("$%04X", w)
		if op.inst != JMP && op.inst != JSR {
			v = fmt.Sprintf(" = %02X", peek(m, w))
		}
	case ABSOLUTE_X:
		a := w + uint16(c.x)
		s = fmt.Sprintf("$%04X,X", w)
		v = fmt.Sprintf(" @ %04X = %02X", a, peek(m, a))
	case ABSOLUTE_Y:
		a := w + uint16(c.y)
		s = fmt.Sprintf("$%04X,Y", w)
		v = fmt.Sprintf(" @ %04X = %02X", a, peek(m, a))
	case INDIRECT:
		s = fmt.Sprintf("($%04X)", w)
		v = fmt.Sprintf(" = %04X", uint16(peek(m, w&0xFF00|uint16(uint8(w)+1)))<<8|uint16(peek(m, w)))
	case INDIRECT_X:
		zp := b1 + c.x
		a := uint16(peek(m, uint16(zp+1)))<<8 | uint16(peek(m, uint16(zp)))
		s = fmt.Sprintf("($%02X,X)", b1)
		v = fmt.Sprintf(" @ %02X = %04X = %02X", zp, a, peek(m, a))
	case INDIRECT_Y:
		base := uint16(peek(m, uint16(b1+1)))<<8 | uint16(peek(m, uint16(b1)))
		a := base + uint16(c.y)
		s = fmt.Sprintf("($%02X),Y", b1)
		v = fmt.Sprintf(" = %04X @ %04X = %02X", base, a, peek(m, a))
	}

	if values {
		return s + v
	}
	return s
}
