package mos6502

import (
	"fmt"
)

// 6502 Addressing Modes
// https://www.nesdev.org/obelisk-6502-guide/addressing.html
const (
	IMPLICIT = iota
	ACCUMULATOR
	IMMEDIATE
	ZERO_PAGE
	ZERO_PAGE_X
	ZERO_PAGE_Y
	RELATIVE
	ABSOLUTE
	ABSOLUTE_X
	ABSOLUTE_Y
	INDIRECT
	INDIRECT_X // Indexed Indirect
	INDIRECT_Y // Indirect Indexed
)

const STACK_PAGE = 0x0100

var modenames = map[uint8]string{IMPLICIT: "IMPLICIT", ACCUMULATOR: "ACCUMULATOR", IMMEDIATE: "IMMEDIATE", ZERO_PAGE: "ZERO_PAGE", ZERO_PAGE_X: "ZERO_PAGE_X", ZERO_PAGE_Y: "ZERO_PAGE_Y", RELATIVE: "RELATIVE", ABSOLUTE: "ABSOLUTE", ABSOLUTE_X: "ABSOLUTE_X", ABSOLUTE_Y: "ABSOLUTE_Y", INDIRECT: "INDIRECT", INDIRECT_X: "INDIRECT_X", INDIRECT_Y: "INDIRECT_Y"}

// 6502 Instructions
// https://www.nesdev.org/obelisk-6502-guide/instructions.html
// https://www.nesdev.org/obelisk-6502-guide/reference.html
// https://www.nesdev.org/wiki/CPU_unofficial_opcodes
const (
	ADC = iota // ADD with Carry
	AND        // Logical AND
	ASL        // Arithmetic Shift Left
	BCC        // Branch if Carry Clear
	BCS        // Branch if Carry Set
	BEQ        // Branch if Equal
	BIT        // Bit Test
	BMI        // Branch if Minus
	BNE        // Branch if Not Equal
	BPL        // Branch if Positive
	BRK        // Force Interrupt
	BVC        // Branch if Overflow Clear
	BVS        // Branch if Overflow Set
	CLC        // Clear Carry Flag
	CLD        // Clear Decimal Mode
	CLI        // Clear Interrupt Disable
	CLV        // Clear Overflow Flag
	CMP        // Compare
	CPX        // Compare X Register
	CPY        // compare Y Regsiter
	DEC        // Decrement Memory
	DEX        // Decrement X Register
	DEY        // Decrement Y Register
	EOR        // Exclusive OR
	INC        // Increment Memory
	INX        // Increment X Register
	INY        // Increment Y Register
	JMP        // Jump
	JSR        // Jump to Subroutine
	LDA        // Load Accumulator
	LDX        // Load X Register
	LDY        // Load Y Register
	LSR        // Logical Shift Right
	NOP        // No Operation
	ORA        // Logical Inclusive OR
	PHA        // Push Accumulator
	PHP        // Push Processor Status
	PLA        // Pull Accumulator
	PLP        // Pull Processor Status
	ROL        // Rotate Left
	ROR        // Rotate Right
	RTI        // Return from Interrupt
	RTS        // Return from Subroutine
	SBC        // Subtract With Carry
	SEC        // Set Carry Flag
	SED        // Set Decimal Flag
	SEI        // Set Interrupt Disable
	STA        // Store Accumulator
	STX        // Store X Register
	STY        // Store Y Register
	TAX        // Transfer Accumulator to X
	TAY        // Transfer Accumulator to Y
	TSX        // Transfer Stack Pointer to X
	TXA        // Transfer X to Accumulator
	TXS        // Transfer X to Stack Pointer
	TYA        // Transfer Y to Accumulator
	LAX        // Load ACC and X from memory, undocumented
	SAX        // m = ACC & X, undocumented
	DCP        // m--; cmp acc w/m, undocumented
	ISB        // m++; acc - m, undocumented
	SLO        // m <<= 1; acc |= m, undocumented
	RLA        // rotate m left; acc &= m, undocumented
	SRE        // m >>= 1; acc ^= m, undocumented
	RRA        // rotate m right; acc += m, undocumented
	ANC        // acc &= imm; C = N, undocumented
	ALR        // acc &= imm; LSR acc, undocumented
	ARR        // acc &= imm; ROR acc with odd flags, undocumented
	AXS        // X = (ACC & X) - imm, undocumented
	LAS        // ACC = X = SP = m & SP, undocumented
	KIL        // Halt the processor, undocumented
	XAA        // unstable, undocumented
	AHX        // unstable, undocumented
	TAS        // unstable, undocumented
	SHY        // unstable, undocumented
	SHX        // unstable, undocumented
	NUM_INSTRUCTIONS
)

type opcode struct {
	inst       uint8 // The instruction id
	name       string
	mode       uint8 // The memory addressing mode to use
	bytes      uint8 // The number of bytes consumed by the opcode and operands
	cycles     uint8 // The base number of cycles consumed by the instruction
	unofficial bool
}

func (o opcode) String() string {
	return fmt.Sprintf("{%s, %s}", o.name, modenames[o.mode])
}

// pagePenalty reports whether the instruction costs an extra cycle
// when its effective address crosses a page. Only instructions that
// just read their operand pay it; stores and read-modify-write
// instructions always take the slow path. Branches account for page
// crossings themselves.
func (o opcode) pagePenalty() bool {
	switch o.inst {
	case ADC, AND, CMP, EOR, LDA, LDX, LDY, ORA, SBC, LAX, LAS, NOP:
		return true
	}
	return false
}

var opcodes = [256]opcode{
	0x00: {BRK, "BRK", IMPLICIT, 2, 7, false},
	0x01: {ORA, "ORA", INDIRECT_X, 2, 6, false},
	0x02: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x03: {SLO, "SLO", INDIRECT_X, 2, 8, true},
	0x04: {NOP, "NOP", ZERO_PAGE, 2, 3, true},
	0x05: {ORA, "ORA", ZERO_PAGE, 2, 3, false},
	0x06: {ASL, "ASL", ZERO_PAGE, 2, 5, false},
	0x07: {SLO, "SLO", ZERO_PAGE, 2, 5, true},
	0x08: {PHP, "PHP", IMPLICIT, 1, 3, false},
	0x09: {ORA, "ORA", IMMEDIATE, 2, 2, false},
	0x0A: {ASL, "ASL", ACCUMULATOR, 1, 2, false},
	0x0B: {ANC, "ANC", IMMEDIATE, 2, 2, true},
	0x0C: {NOP, "NOP", ABSOLUTE, 3, 4, true},
	0x0D: {ORA, "ORA", ABSOLUTE, 3, 4, false},
	0x0E: {ASL, "ASL", ABSOLUTE, 3, 6, false},
	0x0F: {SLO, "SLO", ABSOLUTE, 3, 6, true},
	0x10: {BPL, "BPL", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0x11: {ORA, "ORA", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0x12: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x13: {SLO, "SLO", INDIRECT_Y, 2, 8, true},
	0x14: {NOP, "NOP", ZERO_PAGE_X, 2, 4, true},
	0x15: {ORA, "ORA", ZERO_PAGE_X, 2, 4, false},
	0x16: {ASL, "ASL", ZERO_PAGE_X, 2, 6, false},
	0x17: {SLO, "SLO", ZERO_PAGE_X, 2, 6, true},
	0x18: {CLC, "CLC", IMPLICIT, 1, 2, false},
	0x19: {ORA, "ORA", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0x1A: {NOP, "NOP", IMPLICIT, 1, 2, true},
	0x1B: {SLO, "SLO", ABSOLUTE_Y, 3, 7, true},
	0x1C: {NOP, "NOP", ABSOLUTE_X, 3, 4, true},  // +1 if page crossed
	0x1D: {ORA, "ORA", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0x1E: {ASL, "ASL", ABSOLUTE_X, 3, 7, false},
	0x1F: {SLO, "SLO", ABSOLUTE_X, 3, 7, true},
	0x20: {JSR, "JSR", ABSOLUTE, 3, 6, false},
	0x21: {AND, "AND", INDIRECT_X, 2, 6, false},
	0x22: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x23: {RLA, "RLA", INDIRECT_X, 2, 8, true},
	0x24: {BIT, "BIT", ZERO_PAGE, 2, 3, false},
	0x25: {AND, "AND", ZERO_PAGE, 2, 3, false},
	0x26: {ROL, "ROL", ZERO_PAGE, 2, 5, false},
	0x27: {RLA, "RLA", ZERO_PAGE, 2, 5, true},
	0x28: {PLP, "PLP", IMPLICIT, 1, 4, false},
	0x29: {AND, "AND", IMMEDIATE, 2, 2, false},
	0x2A: {ROL, "ROL", ACCUMULATOR, 1, 2, false},
	0x2B: {ANC, "ANC", IMMEDIATE, 2, 2, true},
	0x2C: {BIT, "BIT", ABSOLUTE, 3, 4, false},
	0x2D: {AND, "AND", ABSOLUTE, 3, 4, false},
	0x2E: {ROL, "ROL", ABSOLUTE, 3, 6, false},
	0x2F: {RLA, "RLA", ABSOLUTE, 3, 6, true},
	0x30: {BMI, "BMI", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0x31: {AND, "AND", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0x32: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x33: {RLA, "RLA", INDIRECT_Y, 2, 8, true},
	0x34: {NOP, "NOP", ZERO_PAGE_X, 2, 4, true},
	0x35: {AND, "AND", ZERO_PAGE_X, 2, 4, false},
	0x36: {ROL, "ROL", ZERO_PAGE_X, 2, 6, false},
	0x37: {RLA, "RLA", ZERO_PAGE_X, 2, 6, true},
	0x38: {SEC, "SEC", IMPLICIT, 1, 2, false},
	0x39: {AND, "AND", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0x3A: {NOP, "NOP", IMPLICIT, 1, 2, true},
	0x3B: {RLA, "RLA", ABSOLUTE_Y, 3, 7, true},
	0x3C: {NOP, "NOP", ABSOLUTE_X, 3, 4, true},  // +1 if page crossed
	0x3D: {AND, "AND", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0x3E: {ROL, "ROL", ABSOLUTE_X, 3, 7, false},
	0x3F: {RLA, "RLA", ABSOLUTE_X, 3, 7, true},
	0x40: {RTI, "RTI", IMPLICIT, 1, 6, false},
	0x41: {EOR, "EOR", INDIRECT_X, 2, 6, false},
	0x42: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x43: {SRE, "SRE", INDIRECT_X, 2, 8, true},
	0x44: {NOP, "NOP", ZERO_PAGE, 2, 3, true},
	0x45: {EOR, "EOR", ZERO_PAGE, 2, 3, false},
	0x46: {LSR, "LSR", ZERO_PAGE, 2, 5, false},
	0x47: {SRE, "SRE", ZERO_PAGE, 2, 5, true},
	0x48: {PHA, "PHA", IMPLICIT, 1, 3, false},
	0x49: {EOR, "EOR", IMMEDIATE, 2, 2, false},
	0x4A: {LSR, "LSR", ACCUMULATOR, 1, 2, false},
	0x4B: {ALR, "ALR", IMMEDIATE, 2, 2, true},
	0x4C: {JMP, "JMP", ABSOLUTE, 3, 3, false},
	0x4D: {EOR, "EOR", ABSOLUTE, 3, 4, false},
	0x4E: {LSR, "LSR", ABSOLUTE, 3, 6, false},
	0x4F: {SRE, "SRE", ABSOLUTE, 3, 6, true},
	0x50: {BVC, "BVC", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0x51: {EOR, "EOR", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0x52: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x53: {SRE, "SRE", INDIRECT_Y, 2, 8, true},
	0x54: {NOP, "NOP", ZERO_PAGE_X, 2, 4, true},
	0x55: {EOR, "EOR", ZERO_PAGE_X, 2, 4, false},
	0x56: {LSR, "LSR", ZERO_PAGE_X, 2, 6, false},
	0x57: {SRE, "SRE", ZERO_PAGE_X, 2, 6, true},
	0x58: {CLI, "CLI", IMPLICIT, 1, 2, false},
	0x59: {EOR, "EOR", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0x5A: {NOP, "NOP", IMPLICIT, 1, 2, true},
	0x5B: {SRE, "SRE", ABSOLUTE_Y, 3, 7, true},
	0x5C: {NOP, "NOP", ABSOLUTE_X, 3, 4, true},  // +1 if page crossed
	0x5D: {EOR, "EOR", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0x5E: {LSR, "LSR", ABSOLUTE_X, 3, 7, false},
	0x5F: {SRE, "SRE", ABSOLUTE_X, 3, 7, true},
	0x60: {RTS, "RTS", IMPLICIT, 1, 6, false},
	0x61: {ADC, "ADC", INDIRECT_X, 2, 6, false},
	0x62: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x63: {RRA, "RRA", INDIRECT_X, 2, 8, true},
	0x64: {NOP, "NOP", ZERO_PAGE, 2, 3, true},
	0x65: {ADC, "ADC", ZERO_PAGE, 2, 3, false},
	0x66: {ROR, "ROR", ZERO_PAGE, 2, 5, false},
	0x67: {RRA, "RRA", ZERO_PAGE, 2, 5, true},
	0x68: {PLA, "PLA", IMPLICIT, 1, 4, false},
	0x69: {ADC, "ADC", IMMEDIATE, 2, 2, false},
	0x6A: {ROR, "ROR", ACCUMULATOR, 1, 2, false},
	0x6B: {ARR, "ARR", IMMEDIATE, 2, 2, true},
	0x6C: {JMP, "JMP", INDIRECT, 3, 5, false},
	0x6D: {ADC, "ADC", ABSOLUTE, 3, 4, false},
	0x6E: {ROR, "ROR", ABSOLUTE, 3, 6, false},
	0x6F: {RRA, "RRA", ABSOLUTE, 3, 6, true},
	0x70: {BVS, "BVS", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0x71: {ADC, "ADC", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0x72: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x73: {RRA, "RRA", INDIRECT_Y, 2, 8, true},
	0x74: {NOP, "NOP", ZERO_PAGE_X, 2, 4, true},
	0x75: {ADC, "ADC", ZERO_PAGE_X, 2, 4, false},
	0x76: {ROR, "ROR", ZERO_PAGE_X, 2, 6, false},
	0x77: {RRA, "RRA", ZERO_PAGE_X, 2, 6, true},
	0x78: {SEI, "SEI", IMPLICIT, 1, 2, false},
	0x79: {ADC, "ADC", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0x7A: {NOP, "NOP", IMPLICIT, 1, 2, true},
	0x7B: {RRA, "RRA", ABSOLUTE_Y, 3, 7, true},
	0x7C: {NOP, "NOP", ABSOLUTE_X, 3, 4, true},  // +1 if page crossed
	0x7D: {ADC, "ADC", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0x7E: {ROR, "ROR", ABSOLUTE_X, 3, 7, false},
	0x7F: {RRA, "RRA", ABSOLUTE_X, 3, 7, true},
	0x80: {NOP, "NOP", IMMEDIATE, 2, 2, true},
	0x81: {STA, "STA", INDIRECT_X, 2, 6, false},
	0x82: {NOP, "NOP", IMMEDIATE, 2, 2, true},
	0x83: {SAX, "SAX", INDIRECT_X, 2, 6, true},
	0x84: {STY, "STY", ZERO_PAGE, 2, 3, false},
	0x85: {STA, "STA", ZERO_PAGE, 2, 3, false},
	0x86: {STX, "STX", ZERO_PAGE, 2, 3, false},
	0x87: {SAX, "SAX", ZERO_PAGE, 2, 3, true},
	0x88: {DEY, "DEY", IMPLICIT, 1, 2, false},
	0x89: {NOP, "NOP", IMMEDIATE, 2, 2, true},
	0x8A: {TXA, "TXA", IMPLICIT, 1, 2, false},
	0x8B: {XAA, "XAA", IMMEDIATE, 2, 2, true},
	0x8C: {STY, "STY", ABSOLUTE, 3, 4, false},
	0x8D: {STA, "STA", ABSOLUTE, 3, 4, false},
	0x8E: {STX, "STX", ABSOLUTE, 3, 4, false},
	0x8F: {SAX, "SAX", ABSOLUTE, 3, 4, true},
	0x90: {BCC, "BCC", RELATIVE, 2, 2, false}, // +1 if branch succeeds +2 if to a new page
	0x91: {STA, "STA", INDIRECT_Y, 2, 6, false},
	0x92: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0x93: {AHX, "AHX", INDIRECT_Y, 2, 6, true},
	0x94: {STY, "STY", ZERO_PAGE_X, 2, 4, false},
	0x95: {STA, "STA", ZERO_PAGE_X, 2, 4, false},
	0x96: {STX, "STX", ZERO_PAGE_Y, 2, 4, false},
	0x97: {SAX, "SAX", ZERO_PAGE_Y, 2, 4, true},
	0x98: {TYA, "TYA", IMPLICIT, 1, 2, false},
	0x99: {STA, "STA", ABSOLUTE_Y, 3, 5, false},
	0x9A: {TXS, "TXS", IMPLICIT, 1, 2, false},
	0x9B: {TAS, "TAS", ABSOLUTE_Y, 3, 5, true},
	0x9C: {SHY, "SHY", ABSOLUTE_X, 3, 5, true},
	0x9D: {STA, "STA", ABSOLUTE_X, 3, 5, false},
	0x9E: {SHX, "SHX", ABSOLUTE_Y, 3, 5, true},
	0x9F: {AHX, "AHX", ABSOLUTE_Y, 3, 5, true},
	0xA0: {LDY, "LDY", IMMEDIATE, 2, 2, false},
	0xA1: {LDA, "LDA", INDIRECT_X, 2, 6, false},
	0xA2: {LDX, "LDX", IMMEDIATE, 2, 2, false},
	0xA3: {LAX, "LAX", INDIRECT_X, 2, 6, true},
	0xA4: {LDY, "LDY", ZERO_PAGE, 2, 3, false},
	0xA5: {LDA, "LDA", ZERO_PAGE, 2, 3, false},
	0xA6: {LDX, "LDX", ZERO_PAGE, 2, 3, false},
	0xA7: {LAX, "LAX", ZERO_PAGE, 2, 3, true},
	0xA8: {TAY, "TAY", IMPLICIT, 1, 2, false},
	0xA9: {LDA, "LDA", IMMEDIATE, 2, 2, false},
	0xAA: {TAX, "TAX", IMPLICIT, 1, 2, false},
	0xAB: {LAX, "LAX", IMMEDIATE, 2, 2, true},
	0xAC: {LDY, "LDY", ABSOLUTE, 3, 4, false},
	0xAD: {LDA, "LDA", ABSOLUTE, 3, 4, false},
	0xAE: {LDX, "LDX", ABSOLUTE, 3, 4, false},
	0xAF: {LAX, "LAX", ABSOLUTE, 3, 4, true},
	0xB0: {BCS, "BCS", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0xB1: {LDA, "LDA", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0xB2: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0xB3: {LAX, "LAX", INDIRECT_Y, 2, 5, true}, // +1 if page crossed
	0xB4: {LDY, "LDY", ZERO_PAGE_X, 2, 4, false},
	0xB5: {LDA, "LDA", ZERO_PAGE_X, 2, 4, false},
	0xB6: {LDX, "LDX", ZERO_PAGE_Y, 2, 4, false},
	0xB7: {LAX, "LAX", ZERO_PAGE_Y, 2, 4, true},
	0xB8: {CLV, "CLV", IMPLICIT, 1, 2, false},
	0xB9: {LDA, "LDA", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0xBA: {TSX, "TSX", IMPLICIT, 1, 2, false},
	0xBB: {LAS, "LAS", ABSOLUTE_Y, 3, 4, true},  // +1 if page crossed
	0xBC: {LDY, "LDY", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0xBD: {LDA, "LDA", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0xBE: {LDX, "LDX", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0xBF: {LAX, "LAX", ABSOLUTE_Y, 3, 4, true},  // +1 if page crossed
	0xC0: {CPY, "CPY", IMMEDIATE, 2, 2, false},
	0xC1: {CMP, "CMP", INDIRECT_X, 2, 6, false},
	0xC2: {NOP, "NOP", IMMEDIATE, 2, 2, true},
	0xC3: {DCP, "DCP", INDIRECT_X, 2, 8, true},
	0xC4: {CPY, "CPY", ZERO_PAGE, 2, 3, false},
	0xC5: {CMP, "CMP", ZERO_PAGE, 2, 3, false},
	0xC6: {DEC, "DEC", ZERO_PAGE, 2, 5, false},
	0xC7: {DCP, "DCP", ZERO_PAGE, 2, 5, true},
	0xC8: {INY, "INY", IMPLICIT, 1, 2, false},
	0xC9: {CMP, "CMP", IMMEDIATE, 2, 2, false},
	0xCA: {DEX, "DEX", IMPLICIT, 1, 2, false},
	0xCB: {AXS, "AXS", IMMEDIATE, 2, 2, true},
	0xCC: {CPY, "CPY", ABSOLUTE, 3, 4, false},
	0xCD: {CMP, "CMP", ABSOLUTE, 3, 4, false},
	0xCE: {DEC, "DEC", ABSOLUTE, 3, 6, false},
	0xCF: {DCP, "DCP", ABSOLUTE, 3, 6, true},
	0xD0: {BNE, "BNE", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0xD1: {CMP, "CMP", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0xD2: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0xD3: {DCP, "DCP", INDIRECT_Y, 2, 8, true},
	0xD4: {NOP, "NOP", ZERO_PAGE_X, 2, 4, true},
	0xD5: {CMP, "CMP", ZERO_PAGE_X, 2, 4, false},
	0xD6: {DEC, "DEC", ZERO_PAGE_X, 2, 6, false},
	0xD7: {DCP, "DCP", ZERO_PAGE_X, 2, 6, true},
	0xD8: {CLD, "CLD", IMPLICIT, 1, 2, false},
	0xD9: {CMP, "CMP", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0xDA: {NOP, "NOP", IMPLICIT, 1, 2, true},
	0xDB: {DCP, "DCP", ABSOLUTE_Y, 3, 7, true},
	0xDC: {NOP, "NOP", ABSOLUTE_X, 3, 4, true},  // +1 if page crossed
	0xDD: {CMP, "CMP", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0xDE: {DEC, "DEC", ABSOLUTE_X, 3, 7, false},
	0xDF: {DCP, "DCP", ABSOLUTE_X, 3, 7, true},
	0xE0: {CPX, "CPX", IMMEDIATE, 2, 2, false},
	0xE1: {SBC, "SBC", INDIRECT_X, 2, 6, false},
	0xE2: {NOP, "NOP", IMMEDIATE, 2, 2, true},
	0xE3: {ISB, "ISB", INDIRECT_X, 2, 8, true},
	0xE4: {CPX, "CPX", ZERO_PAGE, 2, 3, false},
	0xE5: {SBC, "SBC", ZERO_PAGE, 2, 3, false},
	0xE6: {INC, "INC", ZERO_PAGE, 2, 5, false},
	0xE7: {ISB, "ISB", ZERO_PAGE, 2, 5, true},
	0xE8: {INX, "INX", IMPLICIT, 1, 2, false},
	0xE9: {SBC, "SBC", IMMEDIATE, 2, 2, false},
	0xEA: {NOP, "NOP", IMPLICIT, 1, 2, false},
	0xEB: {SBC, "SBC", IMMEDIATE, 2, 2, true},
	0xEC: {CPX, "CPX", ABSOLUTE, 3, 4, false},
	0xED: {SBC, "SBC", ABSOLUTE, 3, 4, false},
	0xEE: {INC, "INC", ABSOLUTE, 3, 6, false},
	0xEF: {ISB, "ISB", ABSOLUTE, 3, 6, true},
	0xF0: {BEQ, "BEQ", RELATIVE, 2, 2, false},   // +1 if branch succeeds +2 if to a new page
	0xF1: {SBC, "SBC", INDIRECT_Y, 2, 5, false}, // +1 if page crossed
	0xF2: {KIL, "KIL", IMPLICIT, 1, 2, true},
	0xF3: {ISB, "ISB", INDIRECT_Y, 2, 8, true},
	0xF4: {NOP, "NOP", ZERO_PAGE_X, 2, 4, true},
	0xF5: {SBC, "SBC", ZERO_PAGE_X, 2, 4, false},
	0xF6: {INC, "INC", ZERO_PAGE_X, 2, 6, false},
	0xF7: {ISB, "ISB", ZERO_PAGE_X, 2, 6, true},
	0xF8: {SED, "SED", IMPLICIT, 1, 2, false},
	0xF9: {SBC, "SBC", ABSOLUTE_Y, 3, 4, false}, // +1 if page crossed
	0xFA: {NOP, "NOP", IMPLICIT, 1, 2, true},
	0xFB: {ISB, "ISB", ABSOLUTE_Y, 3, 7, true},
	0xFC: {NOP, "NOP", ABSOLUTE_X, 3, 4, true},  // +1 if page crossed
	0xFD: {SBC, "SBC", ABSOLUTE_X, 3, 4, false}, // +1 if page crossed
	0xFE: {INC, "INC", ABSOLUTE_X, 3, 7, false},
	0xFF: {ISB, "ISB", ABSOLUTE_X, 3, 7, true},
}
