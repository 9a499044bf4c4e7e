package viewbox

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestDefaultScaleIsOne(t *testing.T) {
	vb := New(geom.MustRect(-100, -100, 200, 200), geom.MustRect(-100, -100, 200, 200))
	if got := vb.Scale(); got != 1.0 {
		t.Errorf("Scale() = %v, want 1", got)
	}
	if Default() != vb {
		t.Errorf("Default() = %v", Default())
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		name    string
		view    geom.Rect
		content geom.Rect
		want    float64
	}{
		{"zoomed in", geom.MustRect(0, 0, 50, 50), geom.MustRect(0, 0, 100, 100), 2},
		{"zoomed out", geom.MustRect(0, 0, 400, 400), geom.MustRect(0, 0, 100, 100), 0.25},
		{"width dominates", geom.MustRect(0, 0, 50, 100), geom.MustRect(0, 0, 100, 100), 2},
		{"height dominates", geom.MustRect(0, 0, 100, 20), geom.MustRect(0, 0, 100, 100), 5},
		{"zero content width", geom.MustRect(0, 0, 7, 50), geom.MustRect(0, 0, 0, 100), 2},
		{"zero content height", geom.MustRect(0, 0, 25, 7), geom.MustRect(0, 0, 100, 0), 4},
		{"no content extent", geom.MustRect(0, 0, 25, 7), geom.MustRect(3, 3, 0, 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.view, tt.content).Scale(); !approxEqual(got, tt.want, epsilon) {
				t.Errorf("Scale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetScaleReproducesScale(t *testing.T) {
	contents := []geom.Rect{
		geom.MustRect(-100, -100, 200, 200),
		geom.MustRect(-40, -40, 80, 60),
		geom.MustRect(0, 0, 1e6, 3),
		geom.MustRect(5, 5, 0, 10),
		geom.MustRect(5, 5, 10, 0),
	}
	scales := []float64{1e-6, 0.05, 0.5, 1, 1.05, 2, 3.3333, 1234.5}

	for _, content := range contents {
		for _, s := range scales {
			vb := New(content, content)
			if err := vb.SetScale(s); err != nil {
				t.Fatalf("SetScale(%v) on %v: %v", s, content, err)
			}
			if got := vb.Scale(); math.Abs(got-s) > 1e-12*math.Max(1, s) {
				t.Errorf("content %v: Scale() = %v after SetScale(%v)", content, got, s)
			}
			if vb.TopLeft() != content.TopLeft {
				t.Errorf("SetScale moved the top left to %v", vb.TopLeft())
			}
		}
	}
}

func TestSetScaleRejects(t *testing.T) {
	tests := []struct {
		name    string
		content geom.Rect
		scale   float64
	}{
		{"zero", geom.MustRect(0, 0, 10, 10), 0},
		{"negative", geom.MustRect(0, 0, 10, 10), -1},
		{"nan", geom.MustRect(0, 0, 10, 10), math.NaN()},
		{"infinite", geom.MustRect(0, 0, 10, 10), math.Inf(1)},
		{"no content extent", geom.MustRect(0, 0, 0, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vb := New(geom.MustRect(0, 0, 10, 10), tt.content)
			before := vb
			if err := vb.SetScale(tt.scale); !errors.Is(err, geom.ErrInvalidScale) {
				t.Errorf("SetScale(%v) error = %v, want ErrInvalidScale", tt.scale, err)
			}
			if vb != before {
				t.Errorf("view box changed to %v", vb)
			}
		})
	}
}

func TestAttr(t *testing.T) {
	vb := Default()
	if got := vb.Attr(); got != "-100 -100 200 200" {
		t.Errorf("Attr() = %q", got)
	}
	if got := vb.String(); got != "ViewBox {-100 -100 200 200}" {
		t.Errorf("String() = %q", got)
	}
	vb.SetTopLeft(geom.Pt(-50, -25.5))
	if got := vb.Attr(); !strings.HasPrefix(got, "-50 -25.5 ") {
		t.Errorf("Attr() after SetTopLeft = %q", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Default())
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Scale float64 `json:"scale"`
		Attr  string  `json:"attr"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Scale != 1 || got.Attr != "-100 -100 200 200" {
		t.Errorf("decoded %+v from %s", got, data)
	}
}

func TestMeetTransform(t *testing.T) {
	vb := Default()
	tests := []struct {
		name     string
		viewport geom.ViewPortRect
		want     geom.AffineTransform
	}{
		{"square", geom.MustViewPortRect(0, 0, 400, 400), geom.AffineTransform{A: 2, D: 2, E: 200, F: 200}},
		{"wide", geom.MustViewPortRect(0, 0, 800, 400), geom.AffineTransform{A: 2, D: 2, E: 400, F: 200}},
		{"tall offset", geom.MustViewPortRect(10, 20, 200, 600), geom.AffineTransform{A: 1, D: 1, E: 110, F: 320}},
		{"zero height", geom.MustViewPortRect(0, 0, 400, 0), geom.AffineTransform{A: 0, D: 0, E: 200, F: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vb.MeetTransform(tt.viewport); got != tt.want {
				t.Errorf("MeetTransform = %v, want %v", got, tt.want)
			}
		})
	}
}

func newViewport(vb *ViewBox, rect geom.ViewPortRect) *Viewport {
	return NewViewport(rect, func() ViewBox { return *vb })
}

func TestZoomAroundCenter(t *testing.T) {
	vb := Default()
	el := newViewport(&vb, geom.MustViewPortRect(0, 0, 400, 400))
	center := geom.Pos(200, 200)

	if err := vb.ZoomAround(el, center, 2); err != nil {
		t.Fatal(err)
	}
	if !approxEqual(vb.Width(), 100, epsilon) || !approxEqual(vb.Height(), 100, epsilon) {
		t.Errorf("dimensions = %v × %v, want 100 × 100", vb.Width(), vb.Height())
	}
	if tl := vb.TopLeft(); !approxEqual(tl.X, -50, epsilon) || !approxEqual(tl.Y, -50, epsilon) {
		t.Errorf("TopLeft() = %v, want (-50, -50)", tl)
	}
	ctm, _ := el.ScreenCTM()
	if got := ctm.Apply(geom.Pt(0, 0)); !approxEqual(got.X, 200, epsilon) || !approxEqual(got.Y, 200, epsilon) {
		t.Errorf("content origin maps to %v, want (200, 200)", got)
	}
}

func TestZoomAroundKeepsFixPoint(t *testing.T) {
	viewports := []geom.ViewPortRect{
		geom.MustViewPortRect(0, 0, 400, 400),
		geom.MustViewPortRect(37, 12, 800, 300),
		geom.MustViewPortRect(-20, 50, 250, 900),
	}
	fixes := []geom.ViewPortPos{geom.Pos(100, 100), geom.Pos(50, 250), geom.Pos(299, 13)}
	scales := []float64{0.1, 0.95, 1.05, 3, 40}

	for _, rect := range viewports {
		for _, fix := range fixes {
			for _, s := range scales {
				vb := New(geom.MustRect(-130, -65, 260, 130), geom.MustRect(-100, -50, 200, 100))
				el := newViewport(&vb, rect)

				before, _ := el.ScreenCTM()
				fixContent, err := before.ApplyInverse(fix)
				if err != nil {
					t.Fatal(err)
				}
				relBefore := relativeOffset(t, &vb, el, fix)
				unscaledW, unscaledH, _ := vb.UnscaledDimensions(el)

				if err := vb.ZoomAround(el, fix, s); err != nil {
					t.Fatalf("ZoomAround(%v, %v): %v", fix, s, err)
				}
				if got := vb.Scale(); math.Abs(got-s) > 1e-12*math.Max(1, s) {
					t.Errorf("Scale() = %v, want %v", got, s)
				}

				after, _ := el.ScreenCTM()
				got := after.Apply(fixContent)
				tol := 1e-9 * math.Max(1, math.Max(math.Abs(fix.X), math.Abs(fix.Y)))
				if !approxEqual(got.X, fix.X, tol) || !approxEqual(got.Y, fix.Y, tol) {
					t.Errorf("viewport %v scale %v: fix point %v moved to %v", rect, s, fix, got)
				}

				relAfter := relativeOffset(t, &vb, el, fix)
				if !geom.NearlyEqual(relAfter.X, relBefore.X, geom.Float32Epsilon) ||
					!geom.NearlyEqual(relAfter.Y, relBefore.Y, geom.Float32Epsilon) {
					t.Errorf("relative offset changed from %v to %v", relBefore, relAfter)
				}

				w, h, _ := vb.UnscaledDimensions(el)
				if !geom.NearlyEqual(w, unscaledW, geom.Float32Epsilon) || !geom.NearlyEqual(h, unscaledH, geom.Float32Epsilon) {
					t.Errorf("unscaled dimensions changed from %v×%v to %v×%v", unscaledW, unscaledH, w, h)
				}
			}
		}
	}
}

func relativeOffset(t *testing.T, vb *ViewBox, el dom.Element, fix geom.ViewPortPos) geom.ViewPortVector {
	t.Helper()
	r, err := vb.ViewPortRect(el)
	if err != nil {
		t.Fatal(err)
	}
	return r.RelativeOffset(fix)
}

func TestZoomAroundZeroHeightElement(t *testing.T) {
	vb := Default()
	before := vb
	el := newViewport(&vb, geom.MustViewPortRect(0, 0, 400, 0))

	err := vb.ZoomAround(el, geom.Pos(10, 0), 2)
	if !errors.Is(err, geom.ErrNonInvertibleTransform) {
		t.Fatalf("error = %v, want ErrNonInvertibleTransform", err)
	}
	if vb != before {
		t.Errorf("view box changed to %v", vb)
	}
}

type noCTM struct{}

func (noCTM) BoundingRect() (geom.ViewPortRect, error) { return geom.MustViewPortRect(0, 0, 1, 1), nil }
func (noCTM) ScreenCTM() (geom.AffineTransform, error) { return geom.AffineTransform{}, dom.ErrNoTransform }

func TestZoomAroundWithoutTransform(t *testing.T) {
	vb := Default()
	if err := vb.ZoomAround(noCTM{}, geom.Origin(), 2); !errors.Is(err, dom.ErrNoTransform) {
		t.Errorf("error = %v, want ErrNoTransform", err)
	}
	if _, err := vb.ViewPortRect(noCTM{}); !errors.Is(err, dom.ErrNoTransform) {
		t.Errorf("ViewPortRect error = %v, want ErrNoTransform", err)
	}
}

func TestZoomAroundRejectsZeroScale(t *testing.T) {
	vb := Default()
	el := newViewport(&vb, geom.MustViewPortRect(0, 0, 400, 400))
	if err := vb.ZoomAround(el, geom.Pos(1, 1), 0); !errors.Is(err, geom.ErrInvalidScale) {
		t.Errorf("error = %v, want ErrInvalidScale", err)
	}
	if vb != Default() {
		t.Errorf("view box changed to %v", vb)
	}
}

func TestViewPortRect(t *testing.T) {
	vb := Default()
	el := newViewport(&vb, geom.MustViewPortRect(0, 0, 800, 400))
	r, err := vb.ViewPortRect(el)
	if err != nil {
		t.Fatal(err)
	}
	if r != geom.MustViewPortRect(200, 0, 400, 400) {
		t.Errorf("ViewPortRect() = %v", r)
	}
	tl, err := vb.ViewPortTopLeft(el)
	if err != nil || tl != geom.Pos(200, 0) {
		t.Errorf("ViewPortTopLeft() = %v, %v", tl, err)
	}
	var _ dom.SVGElement = el
	if err := dom.CheckSVG(el); err != nil {
		t.Error(err)
	}
}
