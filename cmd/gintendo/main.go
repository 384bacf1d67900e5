// Command gintendo is the ebiten-backed presenter: it loads an iNES
// ROM, wires it into a nescore.Console, and pumps one emulated frame
// per ebiten Update call, polling the keyboard into a pad each tick.
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/bdwalton/nescore/bus"
	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/nescore"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

// game adapts a *nescore.Console to ebiten.Game.
type game struct {
	console *nescore.Console
	pad1    *bus.StaticController
	img     *ebiten.Image
}

func newGame(console *nescore.Console) *game {
	g := &game{
		console: console,
		pad1:    &bus.StaticController{},
		img:     ebiten.NewImage(screenWidth, screenHeight),
	}
	console.SetController(0, g.pad1)
	return g
}

var keyBindings = map[ebiten.Key]uint8{
	ebiten.KeyA:     bus.ButtonA,
	ebiten.KeyB:     bus.ButtonB,
	ebiten.KeySpace: bus.ButtonSelect,
	ebiten.KeyEnter: bus.ButtonStart,
	ebiten.KeyUp:    bus.ButtonUp,
	ebiten.KeyDown:  bus.ButtonDown,
	ebiten.KeyLeft:  bus.ButtonLeft,
	ebiten.KeyRight: bus.ButtonRight,
}

func (g *game) pollInput() {
	for key, button := range keyBindings {
		g.pad1.SetButton(button, ebiten.IsKeyPressed(key))
	}
}

func (g *game) Update() error {
	g.pollInput()
	g.console.DrawFrame()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	frame := g.console.LastFrame()
	g.img.WritePixels(frame)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

var _ ebiten.Game = (*game)(nil)

func loadConsole(romPath string) (*nescore.Console, error) {
	rom, err := cartridge.Load(romPath)
	if err != nil {
		return nil, err
	}
	return nescore.NewFromROM(rom, config.Default(), nil)
}

func main() {
	romPath := flag.String("rom", "", "path to an iNES ROM file")
	flag.Parse()

	if *romPath == "" {
		glog.Fatalf("gintendo: -rom is required")
	}

	console, err := loadConsole(*romPath)
	if err != nil {
		glog.Fatalf("gintendo: loading %q: %v", *romPath, err)
	}

	ebiten.SetWindowSize(screenWidth*3, screenHeight*3)
	ebiten.SetWindowTitle("gintendo")
	if err := ebiten.RunGame(newGame(console)); err != nil {
		glog.Fatalf("gintendo: %v", err)
	}
}
