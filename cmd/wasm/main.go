//go:build js && wasm

package main

import (
	"errors"
	"log/slog"
	"strconv"
	"syscall/js"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/engine"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/panzoom"
	"github.com/panzoom/panzoom/internal/scene"
	"github.com/panzoom/panzoom/internal/viewbox"
)

var (
	eng     *engine.Engine
	svg     *svgElement
	onWheel js.Func
)

func main() {
	// Create the engine API object
	panzoomEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	panzoomEngine.Set("mount", js.FuncOf(mount))
	panzoomEngine.Set("loadScene", js.FuncOf(loadScene))
	panzoomEngine.Set("loadSampleScene", js.FuncOf(loadSampleScene))

	// --- Queries (frontend ← engine) ---
	panzoomEngine.Set("render", js.FuncOf(render))
	panzoomEngine.Set("getState", js.FuncOf(getState))
	panzoomEngine.Set("getScene", js.FuncOf(getScene))
	panzoomEngine.Set("getScale", js.FuncOf(getScale))

	// Register on global scope
	js.Global().Set("panzoomEngine", panzoomEngine)

	// Signal that WASM is ready
	js.Global().Set("panzoomWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- DOM bindings ---

// svgElement is the rendered <svg> the engine drives. Re-rendering the
// scene replaces the DOM node, so the value is looked up again after every
// mount.
type svgElement struct {
	container js.Value
	v         js.Value
}

func (s *svgElement) mount(markup string) {
	s.container.Set("innerHTML", markup)
	s.v = js.Global().Get("document").Call("getElementById", scene.ElementID)
	s.v.Call("addEventListener", "wheel", onWheel, map[string]interface{}{"passive": false})
}

func (s *svgElement) BoundingRect() (geom.ViewPortRect, error) {
	return domRect(s.v.Call("getBoundingClientRect"))
}

func (s *svgElement) ScreenCTM() (geom.AffineTransform, error) {
	m := s.v.Call("getScreenCTM")
	if m.IsNull() || m.IsUndefined() {
		return geom.AffineTransform{}, dom.ErrNoTransform
	}
	return geom.AffineTransform{
		A: m.Get("a").Float(), B: m.Get("b").Float(),
		C: m.Get("c").Float(), D: m.Get("d").Float(),
		E: m.Get("e").Float(), F: m.Get("f").Float(),
	}, nil
}

func (s *svgElement) PreserveAspectRatio() string {
	attr := s.v.Call("getAttribute", "preserveAspectRatio")
	if attr.IsNull() {
		return ""
	}
	return attr.String()
}

// show updates the rendered view box and its outline in place.
func (s *svgElement) show(vb viewbox.ViewBox) {
	s.v.Call("setAttribute", "viewBox", vb.Attr())
	outline := s.v.Call("querySelector", "rect")
	if outline.IsNull() {
		return
	}
	r := vb.Rect()
	outline.Call("setAttribute", "x", formatFloat(r.Left()))
	outline.Call("setAttribute", "y", formatFloat(r.Top()))
	outline.Call("setAttribute", "width", formatFloat(r.Width()))
	outline.Call("setAttribute", "height", formatFloat(r.Height()))
}

type jsPositioned struct{ v js.Value }

func (p jsPositioned) BoundingRect() (geom.ViewPortRect, error) {
	return domRect(p.v.Call("getBoundingClientRect"))
}

type windowPositioned struct{}

func (windowPositioned) BoundingRect() (geom.ViewPortRect, error) {
	w := js.Global()
	return geom.NewViewPortRect(geom.Origin(), w.Get("innerWidth").Float(), w.Get("innerHeight").Float())
}

func domRect(r js.Value) (geom.ViewPortRect, error) {
	return geom.NewViewPortRect(geom.Pos(r.Get("x").Float(), r.Get("y").Float()), r.Get("width").Float(), r.Get("height").Float())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// targetOf resolves a wheel event's target to something positioned.
func targetOf(target js.Value) (dom.Target, error) {
	name := target.Get("constructor").Get("name").String()
	description := js.Global().Get("String").Invoke(target).String()

	var p dom.Positioned
	switch {
	case name == "Window":
		p = windowPositioned{}
	case target.Get("getBoundingClientRect").Type() == js.TypeFunction:
		p = jsPositioned{v: target}
	case target.Get("documentElement").Truthy():
		p = jsPositioned{v: target.Get("documentElement")}
	}
	return dom.ResolveTarget(name, description, p)
}

// afterRedraw runs fn once the browser has laid out and painted the
// current change: the first frame callback precedes the repaint, the
// second follows it.
func afterRedraw(fn func()) {
	var first, second js.Func
	second = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		second.Release()
		fn()
		return nil
	})
	first = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		first.Release()
		js.Global().Call("requestAnimationFrame", second)
		return nil
	})
	js.Global().Call("requestAnimationFrame", first)
}

func handleWheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || eng == nil {
		return nil
	}
	event := args[0]

	if _, err := targetOf(event.Get("target")); err != nil {
		slog.Warn("ignoring wheel event", "error", err)
		return nil
	}

	ev := dom.Wheel{
		At:    geom.Pos(event.Get("clientX").Float(), event.Get("clientY").Float()),
		Delta: event.Get("deltaY").Float(),
		Ctrl:  event.Get("ctrlKey").Bool(),
	}
	if ev.Ctrl {
		// Keep the browser from zooming the whole page.
		event.Call("preventDefault")
	}

	err := eng.HandleWheel(ev)
	switch {
	case err == nil:
	case errors.Is(err, panzoom.ErrPanUnsupported):
		slog.Debug("wheel without ctrl", "delta_y", ev.Delta)
	default:
		slog.Error("zoom failed", "position", ev.At, "error", err)
	}
	return nil
}

// --- Command Handlers ---

func mount(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing container id"})
	}

	container := js.Global().Get("document").Call("getElementById", args[0].String())
	if container.IsNull() {
		return js.ValueOf(map[string]interface{}{"error": "container not found"})
	}

	if onWheel.IsUndefined() {
		onWheel = js.FuncOf(handleWheel)
	}

	svg = &svgElement{container: container}
	svg.mount(scene.RenderSVG(scene.Sample(), viewbox.Default()))

	e, err := engine.NewEngine(svg,
		panzoom.WithAfterRedraw(afterRedraw),
		panzoom.WithConsistencyCheck(func(err error) {
			slog.Warn("zoom drifted", "error", err)
		}),
	)
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	eng = e
	eng.Subscribe(svg.show)
	svg.mount(eng.Render())

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadScene(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return js.ValueOf(map[string]interface{}{"error": "engine not mounted"})
	}
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing scene YAML"})
	}

	if err := eng.LoadScene(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	svg.mount(eng.Render())

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleScene(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return js.ValueOf(map[string]interface{}{"error": "engine not mounted"})
	}
	eng.LoadSampleScene()
	svg.mount(eng.Render())
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.Render())
}

func getState(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(eng.GetState())
}

func getScene(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(eng.GetScene())
}

func getScale(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(eng.Scale())
}
