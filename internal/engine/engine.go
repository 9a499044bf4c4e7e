package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/panzoom"
	"github.com/panzoom/panzoom/internal/reactive"
	"github.com/panzoom/panzoom/internal/scene"
	"github.com/panzoom/panzoom/internal/viewbox"
)

// ErrNotVirtual is returned by Resize for engines bound to a rendered
// element, which resizes itself.
var ErrNotVirtual = errors.New("engine is bound to a rendered element")

// Engine owns one zoomable view: the scene drawn into an <svg> element and
// the view box that element shows. Commands come from the frontend (wheel
// events, scene changes); queries return JSON or SVG for rendering.
type Engine struct {
	mu sync.Mutex

	viewBox *reactive.Mutable[viewbox.ViewBox]
	scene   *scene.Scene

	element  dom.Element
	viewport *viewbox.Viewport // nil when bound to a rendered element
	zoom     *panzoom.Controller[viewbox.ViewBox, *viewbox.ViewBox]
	opts     []panzoom.Option
}

// NewEngine binds an engine to a rendered <svg> element showing the sample
// scene. The element must keep the default preserveAspectRatio.
func NewEngine(el dom.SVGElement, opts ...panzoom.Option) (*Engine, error) {
	if err := dom.CheckSVG(el); err != nil {
		return nil, err
	}
	e := newEngine(opts)
	e.element = el
	e.zoom = panzoom.NewController(e.viewBox, el, opts...)
	return e, nil
}

// NewVirtual creates an engine whose element is a virtual <svg> occupying
// rect, for views that are rendered elsewhere.
func NewVirtual(rect geom.ViewPortRect, opts ...panzoom.Option) *Engine {
	e := newEngine(opts)
	e.bindViewport(rect)
	return e
}

func newEngine(opts []panzoom.Option) *Engine {
	s := scene.Sample()
	return &Engine{
		viewBox: reactive.New(fit(s)),
		scene:   s,
		opts:    opts,
	}
}

func (e *Engine) bindViewport(rect geom.ViewPortRect) {
	e.viewport = viewbox.NewViewport(rect, e.viewBox.Get)
	e.element = e.viewport
	e.zoom = panzoom.NewController(e.viewBox, e.viewport, e.opts...)
}

// fit returns a view box showing exactly the content of s.
func fit(s *scene.Scene) viewbox.ViewBox {
	box := s.BoundingBox()
	if box.IsEmpty() {
		return viewbox.Default()
	}
	return viewbox.New(box, box)
}

// --- Commands (frontend → engine) ---

// LoadScene parses a YAML scene and shows all of it.
func (e *Engine) LoadScene(yamlData string) error {
	s, err := scene.Parse([]byte(yamlData))
	if err != nil {
		return err
	}
	e.SetScene(s)
	return nil
}

// LoadSampleScene shows the built-in sample scene.
func (e *Engine) LoadSampleScene() {
	e.SetScene(scene.Sample())
}

// SetScene replaces the scene and resets the view to show all of it.
func (e *Engine) SetScene(s *scene.Scene) {
	e.mu.Lock()
	e.scene = s
	e.mu.Unlock()
	e.viewBox.Set(fit(s))
}

// UpdateScene replaces the scene while preserving the zoom factor and the
// position of the view. Used when the scene file changes during viewing.
func (e *Engine) UpdateScene(s *scene.Scene) {
	e.mu.Lock()
	e.scene = s
	e.mu.Unlock()

	box := s.BoundingBox()
	_ = e.viewBox.Update(func(vb *viewbox.ViewBox) error {
		scale := vb.Scale()
		vb.SetContentBox(box)
		if err := vb.SetScale(scale); err != nil {
			// Content without extent: keep the visible rect as it is.
			slog.Debug("keeping view box for content update", "content_box", box, "error", err)
		}
		return nil
	})
}

// HandleWheel applies a wheel event to the view. Events are handled one at
// a time.
func (e *Engine) HandleWheel(ev dom.WheelEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom.HandleWheel(ev)
}

// Resize moves a virtual element to rect. The view box is unchanged; the
// screen transform follows from the new rect.
func (e *Engine) Resize(rect geom.ViewPortRect) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.viewport == nil {
		return ErrNotVirtual
	}
	e.bindViewport(rect)
	return nil
}

// Subscribe calls fn with every new view box. fn must not issue engine
// commands.
func (e *Engine) Subscribe(fn func(viewbox.ViewBox)) (cancel func()) {
	return e.viewBox.Subscribe(fn)
}

// --- Queries (engine → frontend) ---

// ViewBox returns the current view box.
func (e *Engine) ViewBox() viewbox.ViewBox {
	return e.viewBox.Get()
}

// Scale returns the current zoom factor.
func (e *Engine) Scale() float64 {
	return e.viewBox.Get().Scale()
}

// Scene returns the current scene.
func (e *Engine) Scene() *scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

// Render returns the scene as an <svg> document for the current view box.
func (e *Engine) Render() string {
	return scene.RenderSVG(e.Scene(), e.ViewBox())
}

// State is the JSON form of an engine's view.
type State struct {
	SceneID  string             `json:"sceneId"`
	ViewBox  viewbox.ViewBox    `json:"viewBox"`
	Viewport *geom.ViewPortRect `json:"viewport,omitempty"`
	CTM      []float64          `json:"ctm,omitempty"`
}

// Snapshot returns the current view state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := State{SceneID: e.scene.ID, ViewBox: e.viewBox.Get()}
	if e.viewport != nil {
		rect, _ := e.viewport.BoundingRect()
		st.Viewport = &rect
	}
	if ctm, err := e.element.ScreenCTM(); err == nil {
		st.CTM = ctm.Slice()
	}
	return st
}

// GetState returns Snapshot as JSON.
func (e *Engine) GetState() string {
	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}

// GetScene returns the current scene as JSON.
func (e *Engine) GetScene() string {
	data, _ := json.Marshal(e.Scene())
	return string(data)
}
