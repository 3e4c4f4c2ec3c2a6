package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"

	"github.com/milk9111/possess/sim"
	"github.com/milk9111/possess/source/ebitendev"
)

var errQuit = errors.New("quit")

type game struct {
	sim     *sim.Sim
	dev     *ebitendev.Device
	log     *zap.Logger
	reloads <-chan string

	player string
	// debug is the override controller F2 pins input on; pinned is the
	// actor it holds.
	debug         string
	pinned        string
	width, height int
	camX          float64

	menu      *ebitenui.UI
	paused    bool
	quit      bool
	clipboard bool
}

func newGame(s *sim.Sim, dev *ebitendev.Device, player, debug string, width, height int, reloads <-chan string, log *zap.Logger) *game {
	g := &game{
		sim:     s,
		dev:     dev,
		log:     log,
		reloads: reloads,
		player:  player,
		debug:   debug,
		width:   width,
		height:  height,
	}
	g.menu = newPossessUI(g)
	if err := clipboard.Init(); err != nil {
		log.Warn("clipboard unavailable", zap.Error(err))
	} else {
		g.clipboard = true
	}
	return g
}

func (g *game) Update() error {
	if g.quit {
		return errQuit
	}
	for drained := false; !drained; {
		select {
		case path := <-g.reloads:
			reload(g.sim, path, g.log)
		default:
			drained = true
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.menu.Update()
		return nil
	}

	g.dev.Poll()
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.possessNext()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.togglePin()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.copyReport()
	}
	g.sim.Step()
	return nil
}

// possessNext hands the player controller to the actor after the one it
// drives now, in scene order.
func (g *game) possessNext() {
	actors := g.sim.Actors()
	if len(actors) == 0 {
		return
	}
	next := 0
	for i, v := range actors {
		if v.Controller == g.player {
			next = (i + 1) % len(actors)
			break
		}
	}
	g.possess(actors[next].Name)
}

// possess hands the player controller to actor and points the AI at it.
func (g *game) possess(actor string) {
	if err := g.sim.RequestHandOff(sim.HandOff{Actor: actor, Controller: g.player}); err != nil {
		g.log.Warn("possess failed", zap.String("actor", actor), zap.Error(err))
		return
	}
	if g.pinned == actor {
		g.pinned = ""
	}
	if n, err := g.sim.Retarget(actor); err == nil && n > 0 {
		g.log.Debug("ai retargeted", zap.String("target", actor), zap.Int("sources", n))
	}
}

// togglePin freezes the player's actor on its current input through the
// debug override, or hands a pinned actor back to the player.
func (g *game) togglePin() {
	if g.pinned != "" {
		g.possess(g.pinned)
		return
	}
	for _, v := range g.sim.Actors() {
		if v.Controller != g.player {
			continue
		}
		if err := g.sim.Pin(v.Name, g.debug); err != nil {
			g.log.Warn("pin failed", zap.String("actor", v.Name), zap.Error(err))
			return
		}
		g.pinned = v.Name
		return
	}
}

// copyReport puts the controller and actor tables on the clipboard.
func (g *game) copyReport() {
	if !g.clipboard {
		return
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tick %d\n\n", g.sim.Tick())
	printControllers(&buf, g.sim)
	buf.WriteString("\n")
	printActors(&buf, g.sim)
	clipboard.Write(clipboard.FmtText, buf.Bytes())
	g.log.Info("scene report copied", zap.Uint64("tick", g.sim.Tick()))
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	actors := g.sim.Actors()
	for _, v := range actors {
		if v.Controller == g.player || v.Name == g.pinned {
			g.camX = v.Position.X - float64(g.width)/2
		}
	}

	if ground := g.sim.Ground(); ground > 0 {
		vector.StrokeLine(screen, 0, float32(ground), float32(g.width), float32(ground), 2, colornames.Lightgrey, false)
	}

	for _, v := range actors {
		x := v.Position.X - v.Size.X/2 - g.camX
		y := v.Position.Y - v.Size.Y/2
		vector.FillRect(screen, float32(x), float32(y), float32(v.Size.X), float32(v.Size.Y), v.Body.Color, false)
		if v.Controller == g.player {
			vector.StrokeRect(screen, float32(x)-2, float32(y)-2, float32(v.Size.X)+4, float32(v.Size.Y)+4, 1, colornames.White, false)
		}
		label := v.Name
		if v.Controller != "" {
			label += " [" + v.Controller + "]"
		}
		ebitenutil.DebugPrintAt(screen, label, int(x), int(y)-16)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Tick: %d    FPS: %.2f\nTab: next actor    F2: pin input    F5: copy report    Esc: menu", g.sim.Tick(), ebiten.ActualFPS()))

	if g.paused {
		g.menu.Draw(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
