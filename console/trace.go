package console

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/bdwalton/famicore/mos6502"
)

// NESTEST_START is the entry point nestest.nes uses when run without
// a PPU, as nestest.log was recorded.
const NESTEST_START = 0xC000

// TraceMismatch reports the first difference between the machine and
// a golden log.
type TraceMismatch struct {
	Line       int
	Field      string
	Want, Got  uint64
	WantRecord string
	GotRecord  string
}

func (e *TraceMismatch) Error() string {
	return fmt.Sprintf("line %d: %s = %X, want %X\n\twant: %s\n\tgot:  %s", e.Line, e.Field, e.Got, e.Want, e.WantRecord, e.GotRecord)
}

type traceState struct {
	pc             uint16
	a, x, y, p, sp uint8
	cyc            uint64
}

var traceLine = regexp.MustCompile(`^([0-9A-F]{4}) .*A:([0-9A-F]{2}) X:([0-9A-F]{2}) Y:([0-9A-F]{2}) P:([0-9A-F]{2}) SP:([0-9A-F]{2}).*CYC:(\d+)`)

func parseTraceLine(line string) (traceState, error) {
	m := traceLine.FindStringSubmatch(line)
	if m == nil {
		return traceState{}, fmt.Errorf("unrecognised trace line %q", line)
	}

	var vals [6]uint64
	for i := range vals {
		v, err := strconv.ParseUint(m[i+1], 16, 16)
		if err != nil {
			return traceState{}, fmt.Errorf("field %d of %q: %w", i, line, err)
		}
		vals[i] = v
	}
	cyc, err := strconv.ParseUint(m[7], 10, 64)
	if err != nil {
		return traceState{}, fmt.Errorf("cycle count of %q: %w", line, err)
	}

	return traceState{
		pc:  uint16(vals[0]),
		a:   uint8(vals[1]),
		x:   uint8(vals[2]),
		y:   uint8(vals[3]),
		p:   uint8(vals[4]),
		sp:  uint8(vals[5]),
		cyc: cyc,
	}, nil
}

func (b *Bus) traceState() traceState {
	r := b.cpu.Registers()
	return traceState{pc: r.PC, a: r.A, x: r.X, y: r.Y, p: r.P, sp: r.SP, cyc: b.cycles}
}

// VerifyTrace resets the machine, starts it at NESTEST_START and
// compares it against golden, one instruction per line, for at most
// limit lines (0 means all). It returns the number of lines that
// matched.
func (b *Bus) VerifyTrace(golden io.Reader, limit int) (int, error) {
	b.Reset()
	b.cpu.SetRegisters(mos6502.Registers{PC: NESTEST_START, P: 0x24, SP: 0xFD})

	s := bufio.NewScanner(golden)
	n := 0
	for s.Scan() {
		if limit > 0 && n >= limit {
			break
		}
		line := s.Text()
		if line == "" {
			continue
		}

		want, err := parseTraceLine(line)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", n+1, err)
		}

		got := b.traceState()
		fields := []struct {
			name      string
			want, got uint64
		}{
			{"PC", uint64(want.pc), uint64(got.pc)},
			{"A", uint64(want.a), uint64(got.a)},
			{"X", uint64(want.x), uint64(got.x)},
			{"Y", uint64(want.y), uint64(got.y)},
			{"P", uint64(want.p), uint64(got.p)},
			{"SP", uint64(want.sp), uint64(got.sp)},
			{"CYC", want.cyc, got.cyc},
		}
		for _, f := range fields {
			if f.want != f.got {
				return n, &TraceMismatch{Line: n + 1, Field: f.name, Want: f.want, Got: f.got, WantRecord: line, GotRecord: b.Trace()}
			}
		}

		n++
		if _, err := b.Clock(); err != nil {
			return n, fmt.Errorf("line %d: %w", n, err)
		}
	}

	return n, s.Err()
}
