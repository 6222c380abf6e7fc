package logger

import (
	"bytes"
	"fmt"
	"testing"
)

func TestLogger(t *testing.T) {
	l := newRing(3)

	cases := []struct {
		tag, detail string
		want        string
	}{
		{"bus", "write to ROM", "bus: write to ROM\n"},
		{"bus", "write to ROM", "bus: write to ROM (repeat x2)\n"},
		{"ppu", "odd", "bus: write to ROM (repeat x2)\nppu: odd\n"},
		{"a", "1", "bus: write to ROM (repeat x2)\nppu: odd\na: 1\n"},
		{"b", "2", "ppu: odd\na: 1\nb: 2\n"},
		{"c", "multi\nline", "a: 1\nb: 2\nc: multiline\n"},
	}

	for i, tc := range cases {
		l.add(tc.tag, tc.detail)
		out := &bytes.Buffer{}
		l.tail(out, -1)
		if got := out.String(); got != tc.want {
			t.Errorf("%d: Got %q, want %q", i, got, tc.want)
		}
	}
}

func TestTail(t *testing.T) {
	l := newRing(10)
	for i := 0; i < 5; i++ {
		l.add("tag", fmt.Sprintf("%d", i))
	}

	cases := []struct {
		n    int
		want string
	}{
		{0, ""},
		{2, "tag: 3\ntag: 4\n"},
		{100, "tag: 0\ntag: 1\ntag: 2\ntag: 3\ntag: 4\n"},
	}

	for i, tc := range cases {
		out := &bytes.Buffer{}
		l.tail(out, tc.n)
		if got := out.String(); got != tc.want {
			t.Errorf("%d: Got %q, want %q", i, got, tc.want)
		}
	}
}

func TestCentral(t *testing.T) {
	Clear()
	echo := &bytes.Buffer{}
	SetEcho(echo)
	defer SetEcho(nil)

	Logf("cart", "illegal write 0x%02x to 0x%04x", 0x12, 0x8000)

	out := &bytes.Buffer{}
	Write(out)
	want := "cart: illegal write 0x12 to 0x8000\n"
	if out.String() != want || echo.String() != want {
		t.Errorf("Got log %q and echo %q, want %q", out.String(), echo.String(), want)
	}

	Clear()
	out.Reset()
	Tail(out, 10)
	if out.Len() != 0 {
		t.Errorf("Got %q after Clear(), want nothing", out.String())
	}
}

func TestRingWrap(t *testing.T) {
	l := newRing(2)

	cases := []struct {
		tag, detail string
		want        string
	}{
		{"ppu", "a", "ppu: a\n"},
		{"ppu", "b", "ppu: a\nppu: b\n"},
		{"ppu", "c", "ppu: b\nppu: c\n"},
		// a repeat of the newest entry after wrapping folds in place
		{"ppu", "c", "ppu: b\nppu: c (repeat x2)\n"},
		{"bus", "d", "ppu: c (repeat x2)\nbus: d\n"},
		{"bus", "e", "bus: d\nbus: e\n"},
	}

	for i, tc := range cases {
		l.add(tc.tag, tc.detail)
		out := &bytes.Buffer{}
		l.tail(out, -1)
		if got := out.String(); got != tc.want {
			t.Errorf("%d: Got %q, want %q", i, got, tc.want)
		}
	}

	l.clear()
	l.add("x", "y")
	out := &bytes.Buffer{}
	l.tail(out, -1)
	if got := out.String(); got != "x: y\n" {
		t.Errorf("After clear(): Got %q, want %q", got, "x: y\n")
	}
}
