package mos6502

type instFunc func(c *CPU, m Memory, addr uint16, mode uint8)

var dispatch = [NUM_INSTRUCTIONS]instFunc{
	ADC: (*CPU).opADC,
	AND: (*CPU).opAND,
	ASL: (*CPU).opASL,
	BCC: (*CPU).opBCC,
	BCS: (*CPU).opBCS,
	BEQ: (*CPU).opBEQ,
	BIT: (*CPU).opBIT,
	BMI: (*CPU).opBMI,
	BNE: (*CPU).opBNE,
	BPL: (*CPU).opBPL,
	BRK: (*CPU).opBRK,
	BVC: (*CPU).opBVC,
	BVS: (*CPU).opBVS,
	CLC: (*CPU).opCLC,
	CLD: (*CPU).opCLD,
	CLI: (*CPU).opCLI,
	CLV: (*CPU).opCLV,
	CMP: (*CPU).opCMP,
	CPX: (*CPU).opCPX,
	CPY: (*CPU).opCPY,
	DEC: (*CPU).opDEC,
	DEX: (*CPU).opDEX,
	DEY: (*CPU).opDEY,
	EOR: (*CPU).opEOR,
	INC: (*CPU).opINC,
	INX: (*CPU).opINX,
	INY: (*CPU).opINY,
	JMP: (*CPU).opJMP,
	JSR: (*CPU).opJSR,
	LDA: (*CPU).opLDA,
	LDX: (*CPU).opLDX,
	LDY: (*CPU).opLDY,
	LSR: (*CPU).opLSR,
	NOP: (*CPU).opNOP,
	ORA: (*CPU).opORA,
	PHA: (*CPU).opPHA,
	PHP: (*CPU).opPHP,
	PLA: (*CPU).opPLA,
	PLP: (*CPU).opPLP,
	ROL: (*CPU).opROL,
	ROR: (*CPU).opROR,
	RTI: (*CPU).opRTI,
	RTS: (*CPU).opRTS,
	SBC: (*CPU).opSBC,
	SEC: (*CPU).opSEC,
	SED: (*CPU).opSED,
	SEI: (*CPU).opSEI,
	STA: (*CPU).opSTA,
	STX: (*CPU).opSTX,
	STY: (*CPU).opSTY,
	TAX: (*CPU).opTAX,
	TAY: (*CPU).opTAY,
	TSX: (*CPU).opTSX,
	TXA: (*CPU).opTXA,
	TXS: (*CPU).opTXS,
	TYA: (*CPU).opTYA,
	LAX: (*CPU).opLAX,
	SAX: (*CPU).opSAX,
	DCP: (*CPU).opDCP,
	ISB: (*CPU).opISB,
	SLO: (*CPU).opSLO,
	RLA: (*CPU).opRLA,
	SRE: (*CPU).opSRE,
	RRA: (*CPU).opRRA,
	ANC: (*CPU).opANC,
	ALR: (*CPU).opALR,
	ARR: (*CPU).opARR,
	AXS: (*CPU).opAXS,
	LAS: (*CPU).opLAS,
	KIL: (*CPU).opHalt,
	XAA: (*CPU).opHalt,
	AHX: (*CPU).opHalt,
	TAS: (*CPU).opHalt,
	SHY: (*CPU).opHalt,
	SHX: (*CPU).opHalt,
}

// operand fetches the value an instruction works on.
func (c *CPU) operand(m Memory, addr uint16, mode uint8) uint8 {
	if mode == ACCUMULATOR {
		return c.acc
	}
	return m.Read(addr)
}

// store writes an instruction's result back where its operand came
// from.
func (c *CPU) store(m Memory, addr uint16, mode uint8, val uint8) {
	if mode == ACCUMULATOR {
		c.acc = val
		return
	}
	m.Write(addr, val)
}

// addWithCarry is the binary adder shared by ADC and SBC. The 2A03
// has no decimal mode so the D flag is ignored.
func (c *CPU) addWithCarry(val uint8) {
	sum := uint16(c.acc) + uint16(val) + uint16(c.status&STATUS_FLAG_CARRY)
	res := uint8(sum)

	c.setFlag(STATUS_FLAG_CARRY, sum > 0xFF)
	c.setFlag(STATUS_FLAG_OVERFLOW, (c.acc^res)&(val^res)&0x80 != 0)
	c.acc = res
	c.setNegativeAndZeroFlags(res)
}

func (c *CPU) compare(reg, val uint8) {
	c.setFlag(STATUS_FLAG_CARRY, reg >= val)
	c.setNegativeAndZeroFlags(reg - val)
}

func (c *CPU) branch(cond bool, addr uint16) {
	if !cond {
		return
	}
	c.extra++
	if pageCrossed(c.pc, addr) {
		c.extra++
	}
	c.pc = addr
}

func (c *CPU) opADC(m Memory, addr uint16, mode uint8) {
	c.addWithCarry(c.operand(m, addr, mode))
}

func (c *CPU) opSBC(m Memory, addr uint16, mode uint8) {
	c.addWithCarry(^c.operand(m, addr, mode))
}

func (c *CPU) opAND(m Memory, addr uint16, mode uint8) {
	c.acc &= c.operand(m, addr, mode)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opORA(m Memory, addr uint16, mode uint8) {
	c.acc |= c.operand(m, addr, mode)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opEOR(m Memory, addr uint16, mode uint8) {
	c.acc ^= c.operand(m, addr, mode)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) shiftLeft(m Memory, addr uint16, mode uint8, carryIn bool) uint8 {
	v := c.operand(m, addr, mode)
	res := v << 1
	if carryIn {
		res |= 0x01
	}
	c.setFlag(STATUS_FLAG_CARRY, v&0x80 != 0)
	c.store(m, addr, mode, res)
	c.setNegativeAndZeroFlags(res)
	return res
}

func (c *CPU) shiftRight(m Memory, addr uint16, mode uint8, carryIn bool) uint8 {
	v := c.operand(m, addr, mode)
	res := v >> 1
	if carryIn {
		res |= 0x80
	}
	c.setFlag(STATUS_FLAG_CARRY, v&0x01 != 0)
	c.store(m, addr, mode, res)
	c.setNegativeAndZeroFlags(res)
	return res
}

func (c *CPU) opASL(m Memory, addr uint16, mode uint8) {
	c.shiftLeft(m, addr, mode, false)
}

func (c *CPU) opLSR(m Memory, addr uint16, mode uint8) {
	c.shiftRight(m, addr, mode, false)
}

func (c *CPU) opROL(m Memory, addr uint16, mode uint8) {
	c.shiftLeft(m, addr, mode, c.flagOn(STATUS_FLAG_CARRY))
}

func (c *CPU) opROR(m Memory, addr uint16, mode uint8) {
	c.shiftRight(m, addr, mode, c.flagOn(STATUS_FLAG_CARRY))
}

func (c *CPU) opBIT(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr)
	c.setFlag(STATUS_FLAG_ZERO, c.acc&v == 0)
	c.setFlag(STATUS_FLAG_OVERFLOW, v&STATUS_FLAG_OVERFLOW != 0)
	c.setFlag(STATUS_FLAG_NEGATIVE, v&STATUS_FLAG_NEGATIVE != 0)
}

func (c *CPU) opBCC(m Memory, addr uint16, mode uint8) {
	c.branch(!c.flagOn(STATUS_FLAG_CARRY), addr)
}

func (c *CPU) opBCS(m Memory, addr uint16, mode uint8) {
	c.branch(c.flagOn(STATUS_FLAG_CARRY), addr)
}

func (c *CPU) opBEQ(m Memory, addr uint16, mode uint8) {
	c.branch(c.flagOn(STATUS_FLAG_ZERO), addr)
}

func (c *CPU) opBNE(m Memory, addr uint16, mode uint8) {
	c.branch(!c.flagOn(STATUS_FLAG_ZERO), addr)
}

func (c *CPU) opBMI(m Memory, addr uint16, mode uint8) {
	c.branch(c.flagOn(STATUS_FLAG_NEGATIVE), addr)
}

func (c *CPU) opBPL(m Memory, addr uint16, mode uint8) {
	c.branch(!c.flagOn(STATUS_FLAG_NEGATIVE), addr)
}

func (c *CPU) opBVC(m Memory, addr uint16, mode uint8) {
	c.branch(!c.flagOn(STATUS_FLAG_OVERFLOW), addr)
}

func (c *CPU) opBVS(m Memory, addr uint16, mode uint8) {
	c.branch(c.flagOn(STATUS_FLAG_OVERFLOW), addr)
}

// opBRK skips the padding byte after the opcode, pushes the return
// state with the break bit set and jumps through the IRQ vector.
func (c *CPU) opBRK(m Memory, addr uint16, mode uint8) {
	c.push16(m, c.pc+1)
	c.push(m, c.status|STATUS_FLAG_BREAK|STATUS_FLAG_UNUSED)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.pc = c.read16(m, IRQ_VECTOR)
}

func (c *CPU) opCLC(m Memory, addr uint16, mode uint8) {
	c.flagsOff(STATUS_FLAG_CARRY)
}

func (c *CPU) opCLD(m Memory, addr uint16, mode uint8) {
	c.flagsOff(STATUS_FLAG_DECIMAL)
}

func (c *CPU) opCLI(m Memory, addr uint16, mode uint8) {
	c.flagsOff(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) opCLV(m Memory, addr uint16, mode uint8) {
	c.flagsOff(STATUS_FLAG_OVERFLOW)
}

func (c *CPU) opSEC(m Memory, addr uint16, mode uint8) {
	c.flagsOn(STATUS_FLAG_CARRY)
}

func (c *CPU) opSED(m Memory, addr uint16, mode uint8) {
	c.flagsOn(STATUS_FLAG_DECIMAL)
}

func (c *CPU) opSEI(m Memory, addr uint16, mode uint8) {
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) opCMP(m Memory, addr uint16, mode uint8) {
	c.compare(c.acc, m.Read(addr))
}

func (c *CPU) opCPX(m Memory, addr uint16, mode uint8) {
	c.compare(c.x, m.Read(addr))
}

func (c *CPU) opCPY(m Memory, addr uint16, mode uint8) {
	c.compare(c.y, m.Read(addr))
}

func (c *CPU) opDEC(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr) - 1
	m.Write(addr, v)
	c.setNegativeAndZeroFlags(v)
}

func (c *CPU) opINC(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr) + 1
	m.Write(addr, v)
	c.setNegativeAndZeroFlags(v)
}

func (c *CPU) opDEX(m Memory, addr uint16, mode uint8) {
	c.x--
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) opDEY(m Memory, addr uint16, mode uint8) {
	c.y--
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) opINX(m Memory, addr uint16, mode uint8) {
	c.x++
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) opINY(m Memory, addr uint16, mode uint8) {
	c.y++
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) opJMP(m Memory, addr uint16, mode uint8) {
	c.pc = addr
}

// opJSR pushes the address of the last byte of the JSR instruction.
func (c *CPU) opJSR(m Memory, addr uint16, mode uint8) {
	c.push16(m, c.pc-1)
	c.pc = addr
}

func (c *CPU) opRTS(m Memory, addr uint16, mode uint8) {
	c.pc = c.pull16(m) + 1
}

func (c *CPU) opRTI(m Memory, addr uint16, mode uint8) {
	c.status = c.pull(m)&^STATUS_FLAG_BREAK | STATUS_FLAG_UNUSED
	c.pc = c.pull16(m)
}

func (c *CPU) opLDA(m Memory, addr uint16, mode uint8) {
	c.acc = m.Read(addr)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opLDX(m Memory, addr uint16, mode uint8) {
	c.x = m.Read(addr)
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) opLDY(m Memory, addr uint16, mode uint8) {
	c.y = m.Read(addr)
	c.setNegativeAndZeroFlags(c.y)
}

// opNOP covers the official NOP and the undocumented SKB/IGN
// variants. The latter still perform their operand read.
func (c *CPU) opNOP(m Memory, addr uint16, mode uint8) {
	if mode != IMPLICIT && mode != IMMEDIATE {
		m.Read(addr)
	}
}

func (c *CPU) opPHA(m Memory, addr uint16, mode uint8) {
	c.push(m, c.acc)
}

// opPHP always pushes with the break and unused bits set.
func (c *CPU) opPHP(m Memory, addr uint16, mode uint8) {
	c.push(m, c.status|STATUS_FLAG_BREAK|STATUS_FLAG_UNUSED)
}

func (c *CPU) opPLA(m Memory, addr uint16, mode uint8) {
	c.acc = c.pull(m)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opPLP(m Memory, addr uint16, mode uint8) {
	c.status = c.pull(m)&^STATUS_FLAG_BREAK | STATUS_FLAG_UNUSED
}

func (c *CPU) opSTA(m Memory, addr uint16, mode uint8) {
	m.Write(addr, c.acc)
}

func (c *CPU) opSTX(m Memory, addr uint16, mode uint8) {
	m.Write(addr, c.x)
}

func (c *CPU) opSTY(m Memory, addr uint16, mode uint8) {
	m.Write(addr, c.y)
}

func (c *CPU) opTAX(m Memory, addr uint16, mode uint8) {
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) opTAY(m Memory, addr uint16, mode uint8) {
	c.y = c.acc
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) opTSX(m Memory, addr uint16, mode uint8) {
	c.x = c.sp
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) opTXA(m Memory, addr uint16, mode uint8) {
	c.acc = c.x
	c.setNegativeAndZeroFlags(c.acc)
}

// opTXS is the only transfer that leaves the flags alone.
func (c *CPU) opTXS(m Memory, addr uint16, mode uint8) {
	c.sp = c.x
}

func (c *CPU) opTYA(m Memory, addr uint16, mode uint8) {
	c.acc = c.y
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opLAX(m Memory, addr uint16, mode uint8) {
	c.acc = m.Read(addr)
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opSAX(m Memory, addr uint16, mode uint8) {
	m.Write(addr, c.acc&c.x)
}

func (c *CPU) opDCP(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr) - 1
	m.Write(addr, v)
	c.compare(c.acc, v)
}

func (c *CPU) opISB(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr) + 1
	m.Write(addr, v)
	c.addWithCarry(^v)
}

func (c *CPU) opSLO(m Memory, addr uint16, mode uint8) {
	c.acc |= c.shiftLeft(m, addr, mode, false)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opRLA(m Memory, addr uint16, mode uint8) {
	c.acc &= c.shiftLeft(m, addr, mode, c.flagOn(STATUS_FLAG_CARRY))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opSRE(m Memory, addr uint16, mode uint8) {
	c.acc ^= c.shiftRight(m, addr, mode, false)
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) opRRA(m Memory, addr uint16, mode uint8) {
	c.addWithCarry(c.shiftRight(m, addr, mode, c.flagOn(STATUS_FLAG_CARRY)))
}

func (c *CPU) opANC(m Memory, addr uint16, mode uint8) {
	c.acc &= m.Read(addr)
	c.setNegativeAndZeroFlags(c.acc)
	c.setFlag(STATUS_FLAG_CARRY, c.acc&0x80 != 0)
}

func (c *CPU) opALR(m Memory, addr uint16, mode uint8) {
	c.acc &= m.Read(addr)
	c.shiftRight(m, addr, ACCUMULATOR, false)
}

// opARR is AND followed by ROR A, except C comes from bit 6 of the
// result and V from bit 6 xor bit 5.
func (c *CPU) opARR(m Memory, addr uint16, mode uint8) {
	v := c.acc & m.Read(addr)
	c.acc = v >> 1
	if c.flagOn(STATUS_FLAG_CARRY) {
		c.acc |= 0x80
	}
	c.setNegativeAndZeroFlags(c.acc)
	c.setFlag(STATUS_FLAG_CARRY, c.acc&0x40 != 0)
	c.setFlag(STATUS_FLAG_OVERFLOW, (c.acc>>6^c.acc>>5)&0x01 != 0)
}

func (c *CPU) opAXS(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr)
	ax := c.acc & c.x
	c.x = ax - v
	c.setFlag(STATUS_FLAG_CARRY, ax >= v)
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) opLAS(m Memory, addr uint16, mode uint8) {
	v := m.Read(addr) & c.sp
	c.acc, c.x, c.sp = v, v, v
	c.setNegativeAndZeroFlags(v)
}

// opHalt covers the opcodes that jam the processor and the unstable
// ones whose results depend on the individual chip.
func (c *CPU) opHalt(m Memory, addr uint16, mode uint8) {
	c.halted = true
}
