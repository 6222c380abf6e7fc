package console

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdwalton/famicore/logger"
	"github.com/bdwalton/famicore/mos6502"
	"github.com/bradleyjkemp/memviz"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

const STACK_PAGE = 0x0100

// terminal reads single key presses from in when it's a tty and falls
// back to line input otherwise.
type terminal struct {
	in                  *os.File
	canAttr, cbreakAttr unix.Termios
	cbreak              bool
}

func newTerminal(in *os.File) *terminal {
	t := &terminal{in: in}
	if err := termios.Tcgetattr(in.Fd(), &t.canAttr); err == nil {
		t.cbreakAttr = t.canAttr
		termios.Cfmakecbreak(&t.cbreakAttr)
		t.cbreak = true
	}
	return t
}

func (t *terminal) readKey() (rune, error) {
	if t.cbreak {
		termios.Tcsetattr(t.in.Fd(), termios.TCSANOW, &t.cbreakAttr)
		defer termios.Tcsetattr(t.in.Fd(), termios.TCSANOW, &t.canAttr)
	}

	var buf [1]byte
	for {
		if _, err := t.in.Read(buf[:]); err != nil {
			return 0, err
		}
		if buf[0] != '\n' {
			return rune(buf[0]), nil
		}
	}
}

func (t *terminal) readAddress(prompt string) (uint16, error) {
	fmt.Print(prompt)
	var a uint16
	_, err := fmt.Fscanf(t.in, "%x\n", &a)
	return a, err
}

// snapshot is the machine state written out by the dump command.
type snapshot struct {
	CPU      mos6502.Registers
	Cycles   uint64
	Scanline int
	Dot      int
	Frames   uint64
	Pads     [2]uint8
	Stack    []uint8
	Faults   uint64
}

func (b *Bus) snapshot() *snapshot {
	r := b.cpu.Registers()
	s := &snapshot{
		CPU:      r,
		Cycles:   b.cycles,
		Scanline: b.ppu.Scanline(),
		Dot:      b.ppu.Dot(),
		Frames:   b.ppu.Frames(),
		Pads:     [2]uint8{b.pads[0].Buttons(), b.pads[1].Buttons()},
		Faults:   b.faults,
	}
	for a := uint16(r.SP) + 1; a <= 0xFF; a++ {
		s.Stack = append(s.Stack, b.Peek(STACK_PAGE+a))
	}
	return s
}

// writeGraph renders the current snapshot as a graphviz digraph.
func (b *Bus) writeGraph(w io.Writer) {
	memviz.Map(w, b.snapshot())
}

func (b *Bus) dumpMemory(w io.Writer, low, high uint16) {
	x := 1
	i := low
	for {
		fmt.Fprintf(w, "0x%04x: 0x%02x ", i, b.Peek(i))
		if x%5 == 0 {
			fmt.Fprintln(w)
		}
		if i == high || i == math.MaxUint16 {
			break
		}
		x += 1
		i += 1
	}
	fmt.Fprintf(w, "\n\n")
}

// dumpStack shows up to the top 3 items on the stack.
func (b *Bus) dumpStack(w io.Writer) {
	sp := b.cpu.Registers().SP
	for i := 1; i <= 3 && int(sp)+i <= 0xFF; i++ {
		m := STACK_PAGE + uint16(sp) + uint16(i)
		fmt.Fprintf(w, "0x%04x: 0x%02x ", m, b.Peek(m))
	}
	fmt.Fprintf(w, "\n\n")
}

func (b *Bus) dumpInstruction(w io.Writer) {
	pc := b.cpu.PC()
	s, n := b.cpu.Disassemble(b, pc)
	for i := 0; i < n; i++ {
		m := pc + uint16(i)
		fmt.Fprintf(w, "0x%04x: 0x%02x ", m, b.Peek(m))
	}
	fmt.Fprintf(w, " %s\n\n", s)
}

// BIOS runs an interactive monitor on stdin/stdout until the user
// quits or ctx is done.
func (b *Bus) BIOS(ctx context.Context) {
	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigQuit)

	term := newTerminal(os.Stdin)
	breaks := make(map[uint16]struct{})

	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Printf("%s\n%s\n\n", b, b.Trace())
		fmt.Println("(B)reak - add breakpoint")
		fmt.Println("(C)lear - clear breakpoints")
		fmt.Println("(R)un - run to completion")
		fmt.Println("(S)step - step the cpu one instruction")
		fmt.Println("R(e)set - hit the reset button")
		fmt.Println("(M)memory - select a memory range to display")
		fmt.Println("S(t)ack - show last 3 items on the stack")
		fmt.Println("(I)instruction - show instruction memory locations")
		fmt.Println("(O)AM - show the first 8 sprites")
		fmt.Println("(P)C - set program counter")
		fmt.Println("(D)ump - write a graph of the machine state")
		fmt.Println("(L)og - show recent log entries")
		fmt.Println("(Q)uit - shutdown the famicore")
		fmt.Printf("Choice: ")

		in, err := term.readKey()
		if err != nil {
			return
		}
		fmt.Println()

		switch in {
		case 'b', 'B':
			if a, err := term.readAddress("Breakpoint (eg: ff15): "); err == nil {
				breaks[a] = struct{}{}
			}
		case 'c', 'C':
			breaks = make(map[uint16]struct{})
		case 'p', 'P':
			if a, err := term.readAddress("Set PC to what address (eg: 0400)?: "); err == nil {
				b.cpu.SetPC(a)
			}
		case 'q', 'Q':
			return
		case 'r', 'R':
			cctx, cancel := context.WithCancel(ctx)
			go func(ctx context.Context) {
				for {
					select {
					case <-sigQuit:
						cancel()
					case <-ctx.Done():
						return
					}
				}
			}(cctx)
			if err := b.Run(cctx, breaks); err != nil {
				fmt.Printf("Stopped: %v\n\n", err)
			}
			cancel()
		case 's', 'S':
			if _, err := b.Clock(); err != nil {
				fmt.Printf("%v\n\n", err)
			}
		case 't', 'T':
			b.dumpStack(os.Stdout)
		case 'i', 'I':
			b.dumpInstruction(os.Stdout)
		case 'o', 'O':
			for n := 0; n < 8; n++ {
				fmt.Printf("%d: %s\n", n, b.ppu.OAMEntry(n))
			}
			fmt.Println()
		case 'e', 'E':
			b.Reset()
		case 'm', 'M':
			low, err := term.readAddress("Low address (eg f00d): ")
			if err != nil {
				break
			}
			high, err := term.readAddress("High address (eg beef): ")
			if err != nil {
				break
			}
			fmt.Println()
			b.dumpMemory(os.Stdout, low, high)
		case 'd', 'D':
			fn := fmt.Sprintf("famicore-%d.dot", b.cycles)
			f, err := os.Create(fn)
			if err != nil {
				fmt.Printf("%v\n\n", err)
				break
			}
			b.writeGraph(f)
			f.Close()
			fmt.Printf("Wrote %s\n\n", fn)
		case 'l', 'L':
			logger.Tail(os.Stdout, 20)
			fmt.Println()
		}
	}
}
