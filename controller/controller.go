// Package controller models the standard NES joypad: an 8 bit shift
// register read one button at a time through $4016/$4017.
// https://www.nesdev.org/wiki/Standard_controller
package controller

type Button uint8

// Buttons, as bits:
// 0 - A
// 1 - B
// 2 - Select
// 3 - Start
// 4 - Up
// 5 - Down
// 6 - Left
// 7 - Right
const (
	BUTTON_A Button = 1 << iota
	BUTTON_B
	BUTTON_SELECT
	BUTTON_START
	BUTTON_UP
	BUTTON_DOWN
	BUTTON_LEFT
	BUTTON_RIGHT
)

type Controller struct {
	strobe  bool
	buttons uint8
	idx     uint8
}

func New() *Controller {
	return &Controller{}
}

// Write latches the strobe from bit 0. While strobe is high the shift
// register keeps reloading, so the read index stays at button A.
func (c *Controller) Write(val uint8) {
	c.strobe = val&0x01 == 1
	if c.strobe {
		c.idx = 0
	}
}

// Read returns the next button state in bit 0. After all 8 buttons
// have been shifted out, reads return 1.
func (c *Controller) Read() uint8 {
	if c.strobe {
		return c.buttons & 0x01
	}

	if c.idx > 7 {
		return 1
	}

	ret := (c.buttons >> c.idx) & 0x01
	c.idx++
	return ret
}

func (c *Controller) SetButton(b Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(b)
	} else {
		c.buttons &^= uint8(b)
	}
}

// SetButtons replaces the state of all 8 buttons at once.
func (c *Controller) SetButtons(b uint8) {
	c.buttons = b
}

func (c *Controller) Buttons() uint8 {
	return c.buttons
}
