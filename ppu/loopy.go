package ppu

import "fmt"

// loopy struct will store v and t (loopy registers) and allow
// extracting and setting the various components as described below:
// yyy NN YYYYY XXXXX
// ||| || ||||| +++++-- coarse X scroll
// ||| || +++++-------- coarse Y scroll
// ||| ++-------------- nametable select
// +++----------------- fine Y scroll
type loopy struct {
	data uint16 // only 15 bits used
}

func (l *loopy) String() string {
	return fmt.Sprintf("%03b %01b%01b %05b %05b", l.fineY(), l.nametableY(), l.nametableX(), l.coarseY(), l.coarseX())
}

func (l *loopy) get() uint16 {
	return l.data
}

func (l *loopy) set(n uint16) {
	l.data = n & 0x7FFF
}

func (l *loopy) coarseX() uint16 {
	return l.data & 0x001F
}

func (l *loopy) setCoarseX(n uint16) {
	l.data = (l.data & 0xFFE0) | (n & 0x001F)
}

// incrementCoarseX wraps within the 5 bit field.
func (l *loopy) incrementCoarseX() {
	l.setCoarseX(l.coarseX() + 1)
}

func (l *loopy) coarseY() uint16 {
	return (l.data & 0x03E0) >> 5
}

func (l *loopy) incrementCoarseY() {
	l.setCoarseY(l.coarseY() + 1)
}

func (l *loopy) setCoarseY(n uint16) {
	l.data = (l.data & 0xFC1F) | ((n & 0x001F) << 5)
}

func (l *loopy) nametableX() uint16 {
	return (l.data & 0x0400) >> 10
}

// setNametableX takes bit 0 of n.
func (l *loopy) setNametableX(n uint8) {
	l.data = (l.data &^ 0x0400) | (uint16(n&0x01) << 10)
}

func (l *loopy) toggleNametableX() {
	l.data ^= 0x0400
}

func (l *loopy) nametableY() uint16 {
	return (l.data & 0x0800) >> 11
}

// setNametableY takes bit 0 of n.
func (l *loopy) setNametableY(n uint8) {
	l.data = (l.data &^ 0x0800) | (uint16(n&0x01) << 11)
}

func (l *loopy) toggleNametableY() {
	l.data ^= 0x0800
}

func (l *loopy) fineY() uint16 {
	return (l.data & 0x7000) >> 12
}

func (l *loopy) incrementFineY() {
	l.setFineY(l.fineY() + 1)
}

func (l *loopy) setFineY(n uint16) {
	l.data = (l.data & 0x0FFF) | ((n & 0x0007) << 12)
}

// incrementX moves to the next tile horizontally, switching
// horizontal nametable when the coarse X wraps.
func (l *loopy) incrementX() {
	if l.coarseX() == 31 {
		l.setCoarseX(0)
		l.toggleNametableX()
		return
	}
	l.incrementCoarseX()
}

// incrementY moves to the next pixel row. Row 29 is the last row of
// tiles in a nametable; rows 30 and 31 hold attribute data and wrap
// without switching nametable.
func (l *loopy) incrementY() {
	if l.fineY() < 7 {
		l.incrementFineY()
		return
	}

	l.setFineY(0)
	switch y := l.coarseY(); y {
	case 29:
		l.setCoarseY(0)
		l.toggleNametableY()
	case 31:
		l.setCoarseY(0)
	default:
		l.setCoarseY(y + 1)
	}
}

// copyX copies the horizontal position bits from o.
func (l *loopy) copyX(o loopy) {
	l.data = (l.data &^ 0x041F) | (o.data & 0x041F)
}

// copyY copies the vertical position bits from o.
func (l *loopy) copyY(o loopy) {
	l.data = (l.data &^ 0x7BE0) | (o.data & 0x7BE0)
}
