package dom

import (
	"errors"
	"testing"

	"github.com/panzoom/panzoom/internal/geom"
)

type fakeSVG struct {
	rect   geom.ViewPortRect
	ctm    geom.AffineTransform
	ctmErr error
	par    string
	reads  int
}

func (f *fakeSVG) BoundingRect() (geom.ViewPortRect, error) {
	f.reads++
	return f.rect, nil
}

func (f *fakeSVG) ScreenCTM() (geom.AffineTransform, error) {
	f.reads++
	return f.ctm, f.ctmErr
}

func (f *fakeSVG) PreserveAspectRatio() string { return f.par }

func TestCheckSVG(t *testing.T) {
	tests := []struct {
		par string
		ok  bool
	}{
		{"", true},
		{"xMidYMid", true},
		{"xMidYMid meet", true},
		{"  xMidYMid   meet ", true},
		{"xMidYMid slice", false},
		{"none", false},
		{"xMinYMin meet", false},
	}
	for _, tt := range tests {
		t.Run(tt.par, func(t *testing.T) {
			err := CheckSVG(&fakeSVG{par: tt.par})
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrUnsupportedAspectRatio) {
				t.Errorf("error = %v, want ErrUnsupportedAspectRatio", err)
			}
		})
	}
}

func TestSnapshotReadsOnce(t *testing.T) {
	el := &fakeSVG{rect: geom.MustViewPortRect(10, 20, 30, 40), ctm: geom.Scale(2, 2)}
	snap := Take(el)
	el.rect = geom.MustViewPortRect(0, 0, 1, 1)
	el.ctm = geom.Identity()

	r, err := snap.BoundingRect()
	if err != nil || r != geom.MustViewPortRect(10, 20, 30, 40) {
		t.Errorf("BoundingRect() = %v, %v", r, err)
	}
	m, err := snap.ScreenCTM()
	if err != nil || m != geom.Scale(2, 2) {
		t.Errorf("ScreenCTM() = %v, %v", m, err)
	}
	if el.reads != 2 {
		t.Errorf("element read %d times, want 2", el.reads)
	}

	pos, err := TopLeft(snap)
	if err != nil || pos != geom.Pos(10, 20) {
		t.Errorf("TopLeft() = %v, %v", pos, err)
	}
}

func TestSnapshotKeepsTransformError(t *testing.T) {
	snap := Take(&fakeSVG{ctmErr: ErrNoTransform})
	if _, err := snap.ScreenCTM(); !errors.Is(err, ErrNoTransform) {
		t.Errorf("ScreenCTM error = %v, want ErrNoTransform", err)
	}
}

func TestResolveTarget(t *testing.T) {
	el := &fakeSVG{}
	tests := []struct {
		name string
		kind TargetKind
	}{
		{"Window", TargetWindow},
		{"HTMLDocument", TargetDocument},
		{"Document", TargetDocument},
		{"SVGSVGElement", TargetElement},
		{"HTMLDivElement", TargetElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ResolveTarget(tt.name, tt.name, el)
			if err != nil {
				t.Fatal(err)
			}
			if target.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", target.Kind, tt.kind)
			}
		})
	}
}

func TestResolveTargetUnsupported(t *testing.T) {
	for _, name := range []string{"XMLHttpRequest", "DocumentFragment", "AudioContext", "Text"} {
		_, err := ResolveTarget(name, "[object "+name+"]", &fakeSVG{})
		var target *UnsupportedTargetError
		if !errors.As(err, &target) {
			t.Fatalf("%s: error = %v, want *UnsupportedTargetError", name, err)
		}
		if target.Description != "[object "+name+"]" {
			t.Errorf("Description = %q", target.Description)
		}
	}
}

func TestWheel(t *testing.T) {
	var ev WheelEvent = Wheel{At: geom.Pos(1, 2), Delta: -100, Ctrl: true}
	if ev.Position() != geom.Pos(1, 2) || ev.DeltaY() != -100 || !ev.CtrlPressed() {
		t.Errorf("Wheel accessors = %v %v %v", ev.Position(), ev.DeltaY(), ev.CtrlPressed())
	}
}
