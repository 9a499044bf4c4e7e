// Command viewer shows a scene in a desktop window. Ctrl+wheel zooms around
// the cursor; 0 resets the view.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/panzoom"
	"github.com/panzoom/panzoom/internal/reactive"
	"github.com/panzoom/panzoom/internal/scene"
	"github.com/panzoom/panzoom/internal/viewbox"
	"github.com/panzoom/panzoom/internal/viewstate"
)

// wheelPixels converts one ebiten wheel step to a DOM deltaY in pixels.
const wheelPixels = 100

type Game struct {
	scene atomic.Pointer[scene.Scene]
	state *reactive.Mutable[viewstate.ViewState]
	box   *viewstate.Box
	zoom  *panzoom.Controller[viewstate.ViewState, *viewstate.ViewState]
	opts  []panzoom.Option

	width, height int
}

func NewGame(s *scene.Scene, opts ...panzoom.Option) *Game {
	g := &Game{
		state: reactive.New(viewstate.New()),
		opts:  opts,
	}
	g.scene.Store(s)
	return g
}

// resize lays the box out over the whole window.
func (g *Game) resize(w, h int) {
	layout := geom.MustViewPortRect(0, 0, float64(w), float64(h))
	g.box = viewstate.NewBox(layout, g.state.Get)
	g.zoom = panzoom.NewController(g.state, g.box, g.opts...)
	g.width, g.height = w, h
}

func (g *Game) Update() error {
	if g.zoom == nil {
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.Key0) {
		g.state.Set(viewstate.New())
	}

	_, dy := ebiten.Wheel()
	if dy == 0 {
		return nil
	}
	mx, my := ebiten.CursorPosition()
	ev := dom.Wheel{
		At:    geom.Pos(float64(mx), float64(my)),
		Delta: -dy * wheelPixels,
		Ctrl:  ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta),
	}
	if err := g.zoom.HandleWheel(ev); err != nil && !errors.Is(err, panzoom.ErrPanUnsupported) {
		slog.Warn("zoom failed", "position", ev.At, "error", err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.White)
	if g.box == nil {
		return
	}

	s := g.scene.Load()
	ctm, err := g.box.ScreenCTM()
	if err != nil {
		return
	}
	// Content is fitted into the window before the view state applies.
	bounds := s.BoundingBox()
	if !bounds.IsEmpty() {
		layout := geom.MustViewPortRect(0, 0, float64(g.width), float64(g.height))
		ctm = ctm.Multiply(viewbox.New(bounds, bounds).MeetTransform(layout))

		tl := ctm.Apply(bounds.TopLeft)
		br := ctm.Apply(bounds.BottomRight())
		vector.StrokeRect(screen, float32(tl.X), float32(tl.Y), float32(br.X-tl.X), float32(br.Y-tl.Y), 1, colornames.Crimson, true)
	}

	for _, c := range s.Circles {
		p := ctm.Apply(geom.Pt(c.CX, c.CY))
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(c.R*ctm.A), fill(c.Fill), true)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("scale %.3f   ctrl+wheel: zoom   0: reset", g.state.Get().Scale()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func fill(name string) color.Color {
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c
	}
	return colornames.Gray
}

func main() {
	scenePath := flag.String("scene", "", "scene YAML file (default: built-in sample)")
	speed := flag.Float64("speed", panzoom.DefaultZoomSpeedFactor, "zoom speed factor")
	flag.Parse()

	s := scene.Sample()
	if *scenePath != "" {
		loaded, err := scene.Load(*scenePath)
		if err != nil {
			slog.Error("load scene", "file", *scenePath, "error", err)
			os.Exit(1)
		}
		s = loaded
	}

	g := NewGame(s, panzoom.WithZoomSpeed(*speed))

	if *scenePath != "" {
		watcher, err := scene.NewWatcher(*scenePath, scene.DefaultWatchDebounce, func(s *scene.Scene) {
			g.scene.Store(s)
		}, func(err error) {
			slog.Warn("scene reload failed", "file", *scenePath, "error", err)
		})
		if err != nil {
			slog.Error("watch scene", "file", *scenePath, "error", err)
			os.Exit(1)
		}
		watcher.Start()
		defer watcher.Stop()
	}

	ebiten.SetWindowSize(800, 600)
	ebiten.SetWindowTitle("panzoom viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		slog.Error("run viewer", "error", err)
		os.Exit(1)
	}
}
