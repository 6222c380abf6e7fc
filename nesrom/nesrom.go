// package nesrom implements support for the NES (iNES, NES2) ROM
// format. https://www.nesdev.org/wiki/INES
package nesrom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrBadMagic  = errors.New("missing iNES magic bytes")
	ErrTruncated = errors.New("ROM image is truncated")
)

type ROM struct {
	path      string
	h         *header
	trainer   []byte // if present
	prg       []byte // 16384 * x bytes; x from header
	chr       []byte // 8192 * y bytes; y from header
	pcInstRom []byte // if present
	pcPROM    []byte // if present; often missing - see PC10 ROM-Images
}

const (
	TRAINER_SIZE   = 512
	PRG_BLOCK_SIZE = 16384
	CHR_BLOCK_SIZE = 8192
	PC_INST_SIZE   = 8192
	PC_PROM_SIZE   = 32
)

// Load reads and parses the iNES file at path.
func Load(path string) (*ROM, error) {
	rf, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open ROM file %q: %w", path, err)
	}
	defer rf.Close()

	r, err := New(rf)
	if err != nil {
		return nil, err
	}
	r.path = path

	return r, nil
}

// readBlock fills a fresh n byte slice from r, reporting short reads
// as ErrTruncated.
func readBlock(r io.Reader, n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if got, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("error reading %s (read %d, wanted %d): %w", what, got, n, ErrTruncated)
		}
		return nil, fmt.Errorf("error reading %s: %w", what, err)
	}
	return b, nil
}

// New parses an iNES image from r.
func New(r io.Reader) (*ROM, error) {
	hbytes, err := readBlock(r, HEADER_SIZE, "header")
	if err != nil {
		return nil, err
	}

	i := &ROM{h: parseHeader(hbytes)}
	if !i.h.isINesFormat() {
		return nil, fmt.Errorf("header starts with %q: %w", i.h.constant, ErrBadMagic)
	}

	if i.h.hasTrainer() {
		if i.trainer, err = readBlock(r, TRAINER_SIZE, "trainer data"); err != nil {
			return nil, err
		}
	}

	if i.prg, err = readBlock(r, PRG_BLOCK_SIZE*int(i.h.prgSize), "PRG ROM"); err != nil {
		return nil, err
	}

	if i.chr, err = readBlock(r, CHR_BLOCK_SIZE*int(i.h.chrSize), "CHR ROM"); err != nil {
		return nil, err
	}

	if i.h.hasPlayChoice() {
		if i.pcInstRom, err = readBlock(r, PC_INST_SIZE, "PlayChoice INST ROM"); err != nil {
			return nil, err
		}

		// Some old dumps lack the PROM entirely, so a missing one
		// isn't fatal.
		if pc, err := readBlock(r, PC_PROM_SIZE, "PlayChoice PROM"); err == nil {
			i.pcPROM = pc
		}
	}

	return i, nil
}

func (r *ROM) String() string {
	var sb strings.Builder

	if r.path != "" {
		sb.WriteString(fmt.Sprintf("%s: ", r.path))
	}
	sb.WriteString(r.h.String())
	if r.h.hasTrainer() {
		sb.WriteString(", trainer")
	}

	return sb.String()
}

func (r *ROM) Path() string {
	return r.path
}

// PrgBanks is the number of 16KB PRG ROM banks.
func (r *ROM) PrgBanks() uint8 {
	return r.h.prgSize
}

// ChrBanks is the number of 8KB CHR ROM banks. Zero means the board
// carries CHR RAM instead.
func (r *ROM) ChrBanks() uint8 {
	return r.h.chrSize
}

func (r *ROM) Prg() []byte {
	return r.prg
}

func (r *ROM) Chr() []byte {
	return r.chr
}

func (r *ROM) Trainer() []byte {
	return r.trainer
}

func (r *ROM) MapperNum() uint8 {
	return r.h.mapperNum()
}

func (r *ROM) MirroringMode() uint8 {
	return r.h.mirroringMode()
}

func (r *ROM) HasTrainer() bool {
	return r.h.hasTrainer()
}

func (r *ROM) HasSaveRAM() bool {
	return r.h.hasPrgRAM()
}

func (r *ROM) PrgRAMSize() uint8 {
	return r.h.prgRAMSize()
}

func (r *ROM) TVSystem() uint8 {
	return r.h.tvSystem()
}

func (r *ROM) IsNES2() bool {
	return r.h.isNES2Format()
}
