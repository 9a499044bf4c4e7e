package engine

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/panzoom"
	"github.com/panzoom/panzoom/internal/scene"
	"github.com/panzoom/panzoom/internal/viewbox"
)

func TestNewVirtualShowsSample(t *testing.T) {
	e := NewVirtual(geom.MustViewPortRect(0, 0, 400, 400))
	if e.ViewBox() != viewbox.Default() {
		t.Errorf("ViewBox() = %v, want default", e.ViewBox())
	}
	if e.Scale() != 1 {
		t.Errorf("Scale() = %v, want 1", e.Scale())
	}
	if !strings.Contains(e.Render(), `viewBox="-100 -100 200 200"`) {
		t.Errorf("Render() lacks the view box attribute")
	}
}

func TestHandleWheel(t *testing.T) {
	var checkErrs []error
	e := NewVirtual(geom.MustViewPortRect(0, 0, 400, 400),
		panzoom.WithConsistencyCheck(func(err error) { checkErrs = append(checkErrs, err) }))

	var seen []viewbox.ViewBox
	cancel := e.Subscribe(func(vb viewbox.ViewBox) { seen = append(seen, vb) })
	defer cancel()

	if err := e.HandleWheel(dom.Wheel{At: geom.Pos(200, 200), Delta: -100, Ctrl: true}); err != nil {
		t.Fatal(err)
	}
	if math.Abs(e.Scale()-1.05) > 1e-12 {
		t.Errorf("Scale() = %v, want 1.05", e.Scale())
	}
	if len(seen) != 1 || seen[0] != e.ViewBox() {
		t.Errorf("subscriber saw %v", seen)
	}
	for _, err := range checkErrs {
		if err != nil {
			t.Error(err)
		}
	}

	if err := e.HandleWheel(dom.Wheel{At: geom.Pos(1, 1), Delta: -100}); !errors.Is(err, panzoom.ErrPanUnsupported) {
		t.Errorf("error = %v, want ErrPanUnsupported", err)
	}
}

func TestResize(t *testing.T) {
	e := NewVirtual(geom.MustViewPortRect(0, 0, 400, 400))
	if err := e.Resize(geom.MustViewPortRect(0, 0, 800, 400)); err != nil {
		t.Fatal(err)
	}
	st := e.Snapshot()
	if st.Viewport == nil || st.Viewport.Width() != 800 {
		t.Fatalf("Viewport = %v", st.Viewport)
	}
	want := []float64{2, 0, 0, 2, 400, 200}
	for i := range want {
		if st.CTM[i] != want[i] {
			t.Fatalf("CTM = %v, want %v", st.CTM, want)
		}
	}

	if err := e.Resize(geom.MustViewPortRect(0, 0, 400, 0)); err != nil {
		t.Fatal(err)
	}
	err := e.HandleWheel(dom.Wheel{At: geom.Pos(1, 0), Delta: -100, Ctrl: true})
	if !errors.Is(err, geom.ErrNonInvertibleTransform) {
		t.Errorf("zoom on collapsed viewport: error = %v", err)
	}
}

type fakeSVG struct {
	par string
}

func (f fakeSVG) BoundingRect() (geom.ViewPortRect, error) {
	return geom.MustViewPortRect(0, 0, 100, 100), nil
}
func (f fakeSVG) ScreenCTM() (geom.AffineTransform, error) { return geom.Scale(0.5, 0.5), nil }
func (f fakeSVG) PreserveAspectRatio() string              { return f.par }

func TestNewEngine(t *testing.T) {
	if _, err := NewEngine(fakeSVG{par: "none"}); !errors.Is(err, dom.ErrUnsupportedAspectRatio) {
		t.Errorf("error = %v, want ErrUnsupportedAspectRatio", err)
	}
	e, err := NewEngine(fakeSVG{})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Resize(geom.MustViewPortRect(0, 0, 1, 1)); !errors.Is(err, ErrNotVirtual) {
		t.Errorf("Resize error = %v, want ErrNotVirtual", err)
	}
}

func TestLoadScene(t *testing.T) {
	e := NewVirtual(geom.MustViewPortRect(0, 0, 400, 400))
	err := e.LoadScene("name: one\ncircles:\n  - {cx: 0, cy: 0, r: 50, fill: gold}\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.ViewBox().Rect(); got != geom.MustRect(-50, -50, 100, 100) {
		t.Errorf("view box = %v, want the circle's bounds", got)
	}
	if e.Scene().Name != "one" {
		t.Errorf("scene name = %q", e.Scene().Name)
	}
	if err := e.LoadScene("circles: [{r: -1, fill: gold}]"); !errors.Is(err, scene.ErrInvalidScene) {
		t.Errorf("error = %v, want ErrInvalidScene", err)
	}

	e.LoadSampleScene()
	if e.ViewBox() != viewbox.Default() {
		t.Errorf("ViewBox() = %v after loading the sample", e.ViewBox())
	}
}

func TestUpdateScenePreservesZoom(t *testing.T) {
	e := NewVirtual(geom.MustViewPortRect(0, 0, 400, 400))
	if err := e.HandleWheel(dom.Wheel{At: geom.Pos(100, 300), Delta: -400, Ctrl: true}); err != nil {
		t.Fatal(err)
	}
	scale := e.Scale()
	topLeft := e.ViewBox().TopLeft()

	s := scene.Sample()
	bounds := geom.MustRect(-100, -100, 400, 100)
	s.Bounds = &bounds
	e.UpdateScene(s)

	vb := e.ViewBox()
	if math.Abs(vb.Scale()-scale) > 1e-12 {
		t.Errorf("Scale() = %v, want %v", vb.Scale(), scale)
	}
	if vb.TopLeft() != topLeft {
		t.Errorf("TopLeft() = %v, want %v", vb.TopLeft(), topLeft)
	}
	if vb.ContentBox() != bounds {
		t.Errorf("ContentBox() = %v", vb.ContentBox())
	}
}

func TestGetState(t *testing.T) {
	e := NewVirtual(geom.MustViewPortRect(0, 0, 400, 400))
	var st struct {
		SceneID string `json:"sceneId"`
		ViewBox struct {
			Attr string `json:"attr"`
		} `json:"viewBox"`
		CTM []float64 `json:"ctm"`
	}
	if err := json.Unmarshal([]byte(e.GetState()), &st); err != nil {
		t.Fatal(err)
	}
	if st.SceneID != e.Scene().ID || st.ViewBox.Attr != "-100 -100 200 200" || len(st.CTM) != 6 {
		t.Errorf("state = %+v", st)
	}
}
