// Package ui shows the console's frames in a window with ebiten and
// feeds the keyboard into controller 1.
package ui

import (
	"context"

	"github.com/bdwalton/famicore/console"
	"github.com/bdwalton/famicore/controller"
	"github.com/bdwalton/famicore/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

const TITLE = "famicore"

// Buttons, as bits:
// 0 - A
// 1 - B
// 2 - Select
// 3 - Start
// 4 - Up
// 5 - Down
// 6 - Left
// 7 - Right
var keys = []ebiten.Key{
	ebiten.KeyA,     // A
	ebiten.KeyB,     // B
	ebiten.KeySpace, // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,    // Up
	ebiten.KeyDown,  // Down
	ebiten.KeyLeft,  // Left
	ebiten.KeyRight, // Right
}

// buttons packs the state of keys into the controller's bit layout.
func buttons(pressed func(ebiten.Key) bool) uint8 {
	var b uint8
	for i, key := range keys {
		if pressed(key) {
			b |= 1 << i
		}
	}
	return b
}

// Game implements ebiten.Game, running one NES frame per update.
type Game struct {
	bus     *console.Bus
	pad     *controller.Controller
	pix     []uint8
	pressed func(ebiten.Key) bool
}

func New(b *console.Bus) *Game {
	return &Game{
		bus:     b,
		pad:     b.Controller(0),
		pix:     make([]uint8, 4*ppu.NES_RES_WIDTH*ppu.NES_RES_HEIGHT),
		pressed: ebiten.IsKeyPressed,
	}
}

func (g *Game) Update() error {
	if g.pressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.pad.SetButtons(buttons(g.pressed))
	return g.bus.RunFrames(context.Background(), 1)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.bus.Frame().Draw(g.pix)
	screen.WritePixels(g.pix)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.NES_RES_WIDTH, ppu.NES_RES_HEIGHT
}

// Run opens a window scale times the NES resolution and blocks until
// it's closed or the console stops.
func Run(b *console.Bus, scale int) error {
	if scale < 1 {
		scale = 1
	}
	ebiten.SetWindowSize(ppu.NES_RES_WIDTH*scale, ppu.NES_RES_HEIGHT*scale)
	ebiten.SetWindowTitle(TITLE)
	ebiten.SetTPS(60)

	return ebiten.RunGame(New(b))
}
