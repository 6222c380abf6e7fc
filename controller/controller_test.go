package controller

import (
	"testing"
)

func TestReadSequence(t *testing.T) {
	cases := []struct {
		buttons uint8
		want    []uint8
	}{
		{0x00, []uint8{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1}},
		{0xFF, []uint8{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{uint8(BUTTON_A | BUTTON_START), []uint8{1, 0, 0, 1, 0, 0, 0, 0, 1}},
		{uint8(BUTTON_RIGHT | BUTTON_B), []uint8{0, 1, 0, 0, 0, 0, 0, 1, 1, 1}},
	}

	for i, tc := range cases {
		c := New()
		c.SetButtons(tc.buttons)
		c.Write(1)
		c.Write(0)
		for j, want := range tc.want {
			if got := c.Read(); got != want {
				t.Errorf("%d: read %d: Got %d, want %d", i, j, got, want)
			}
		}
	}
}

func TestStrobeHeld(t *testing.T) {
	c := New()
	c.SetButton(BUTTON_A, true)
	c.SetButton(BUTTON_B, true)
	c.Write(1)

	for i := 0; i < 10; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("%d: Got %d while strobed, want button A (1)", i, got)
		}
	}

	c.SetButton(BUTTON_A, false)
	if got := c.Read(); got != 0 {
		t.Errorf("Got %d after releasing A, want 0", got)
	}
}

func TestRestrobe(t *testing.T) {
	c := New()
	c.SetButtons(uint8(BUTTON_SELECT))
	c.Write(1)
	c.Write(0)
	for i := 0; i < 12; i++ {
		c.Read()
	}

	c.Write(1)
	c.Write(0)
	want := []uint8{0, 0, 1, 0}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Errorf("%d: Got %d, want %d", i, got, w)
		}
	}
}

func TestSetButton(t *testing.T) {
	c := New()
	c.SetButton(BUTTON_UP, true)
	c.SetButton(BUTTON_LEFT, true)
	c.SetButton(BUTTON_UP, false)
	if got, want := c.Buttons(), uint8(BUTTON_LEFT); got != want {
		t.Errorf("Got 0x%02x, want 0x%02x", got, want)
	}
}
