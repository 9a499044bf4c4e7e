package panzoom

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/invariant"
	"github.com/panzoom/panzoom/internal/reactive"
)

// DefaultZoomSpeedFactor converts wheel delta to a zoom percentage.
const DefaultZoomSpeedFactor = 0.05

// ErrPanUnsupported is returned for wheel events without ctrl, which would
// pan instead of zoom.
var ErrPanUnsupported = errors.New("panning by wheel is not supported")

// Option configures a Controller.
type Option func(*options)

type options struct {
	zoomSpeed   float64
	afterRedraw func(func())
	onCheck     func(error)
}

func defaultOptions() options {
	return options{
		zoomSpeed:   DefaultZoomSpeedFactor,
		afterRedraw: func(f func()) { f() },
	}
}

// WithZoomSpeed sets the factor converting wheel delta to a zoom percentage.
// Non-positive values are ignored.
func WithZoomSpeed(factor float64) Option {
	return func(o *options) {
		if factor > 0 {
			o.zoomSpeed = factor
		}
	}
}

// WithAfterRedraw defers the consistency check until schedule runs its
// argument, typically after the rendering layer has redrawn twice. By
// default the check runs right after the state is committed.
func WithAfterRedraw(schedule func(func())) Option {
	return func(o *options) {
		if schedule != nil {
			o.afterRedraw = schedule
		}
	}
}

// WithConsistencyCheck runs the post-zoom consistency check in every build
// and passes its outcome (nil when consistent) to report. Without it the
// check only runs in verification builds, where a failure panics.
func WithConsistencyCheck(report func(error)) Option {
	return func(o *options) {
		o.onCheck = report
	}
}

// Controller zooms the state held in a reactive.Mutable when wheel events
// arrive for element. M is the pointer type of T implementing State and is
// inferred by NewController.
type Controller[T any, M interface {
	*T
	State
}] struct {
	state   *reactive.Mutable[T]
	element dom.Element
	opts    options
}

// NewController binds state to element.
func NewController[T any, M interface {
	*T
	State
}](state *reactive.Mutable[T], element dom.Element, opts ...Option) *Controller[T, M] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller[T, M]{state: state, element: element, opts: o}
}

// ZoomSpeed returns the configured zoom speed factor.
func (c *Controller[T, M]) ZoomSpeed() float64 { return c.opts.zoomSpeed }

// ZoomAmount returns the zoom percentage for a wheel delta. Scrolling up
// (negative delta) zooms in.
func (c *Controller[T, M]) ZoomAmount(deltaY float64) float64 {
	return -deltaY * c.opts.zoomSpeed
}

// HandleWheel zooms around the event position when ctrl is pressed. Without
// ctrl it returns ErrPanUnsupported and leaves the state alone; callers may
// ignore that error. Element geometry is read once for the whole event.
func (c *Controller[T, M]) HandleWheel(ev dom.WheelEvent) error {
	if !ev.CtrlPressed() {
		return ErrPanUnsupported
	}
	amount := c.ZoomAmount(ev.DeltaY())
	if amount == 0 {
		return nil
	}
	fix := ev.Position()
	snap := dom.Take(c.element)
	check := c.opts.onCheck != nil || invariant.Enabled

	var before Measurement
	var measureErr error
	if check {
		current := c.state.Get()
		before, measureErr = Measure(M(&current), snap, fix)
	}

	var oldScale, newScale float64
	err := c.state.Update(func(t *T) error {
		s := M(t)
		oldScale = s.Scale()
		newScale = math.Max(oldScale*(1+amount/100), 0)
		return s.ZoomAround(snap, fix, newScale)
	})
	if err != nil {
		return fmt.Errorf("zoom by %g%% at %v: %w", amount, fix, err)
	}
	slog.Debug("zoomed", "percent", amount, "fix_point", fix, "from", oldScale, "to", newScale)

	if check {
		c.opts.afterRedraw(func() {
			c.report(c.verify(before, measureErr, fix))
		})
	}
	return nil
}

func (c *Controller[T, M]) verify(before Measurement, measureErr error, fix geom.ViewPortPos) error {
	if measureErr != nil {
		return fmt.Errorf("measure before zoom: %w", measureErr)
	}
	current := c.state.Get()
	after, err := Measure(M(&current), c.element, fix)
	if err != nil {
		return fmt.Errorf("measure after zoom at %v: %w", fix, err)
	}
	return CheckConsistency(before, after)
}

func (c *Controller[T, M]) report(err error) {
	if c.opts.onCheck != nil {
		c.opts.onCheck(err)
		return
	}
	invariant.NoError(err)
}
