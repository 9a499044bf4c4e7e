// Package scene holds the content drawn on the SVG canvas: a set of filled
// circles, loaded from YAML files.
package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/typeid"
)

// ErrInvalidScene is returned by Validate.
var ErrInvalidScene = errors.New("invalid scene")

type Scene struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Circles []Circle `yaml:"circles" json:"circles"`
	// Bounds overrides the content box derived from the circles.
	Bounds *geom.Rect `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

type Circle struct {
	ID   string  `yaml:"id" json:"id"`
	CX   float64 `yaml:"cx" json:"cx"`
	CY   float64 `yaml:"cy" json:"cy"`
	R    float64 `yaml:"r" json:"r"`
	Fill string  `yaml:"fill" json:"fill"`
}

// Sample returns four circles around the origin inside a 200×200 content
// box.
func Sample() *Scene {
	bounds := geom.MustRect(-100, -100, 200, 200)
	return &Scene{
		ID:   typeid.NewSceneID(),
		Name: "Four circles",
		Circles: []Circle{
			{ID: typeid.NewCircleID(), CX: -30, CY: -30, R: 10, Fill: "cadetblue"},
			{ID: typeid.NewCircleID(), CX: 30, CY: 30, R: 10, Fill: "steelblue"},
			{ID: typeid.NewCircleID(), CX: 30, CY: -30, R: 10, Fill: "lightblue"},
			{ID: typeid.NewCircleID(), CX: -30, CY: 30, R: 10, Fill: "cornflowerblue"},
		},
		Bounds: &bounds,
	}
}

// Bounds returns the bounding box of the circle.
func (c Circle) Bounds() geom.Rect {
	return geom.Rect{TopLeft: geom.Pt(c.CX-c.R, c.CY-c.R), Dimensions: geom.Vec(2*c.R, 2*c.R)}
}

// BoundingBox returns the content box of the scene: Bounds if set, otherwise
// the union of all circles. An empty scene has an empty box at the origin.
func (s *Scene) BoundingBox() geom.Rect {
	if s.Bounds != nil {
		return *s.Bounds
	}
	if len(s.Circles) == 0 {
		return geom.Rect{}
	}
	box := s.Circles[0].Bounds()
	for _, c := range s.Circles[1:] {
		box = box.Union(c.Bounds())
	}
	return box
}

// Validate checks radii, fills and bounds. Fills must be SVG color keywords.
func (s *Scene) Validate() error {
	var problems []string
	for i, c := range s.Circles {
		if !(c.R >= 0) {
			problems = append(problems, fmt.Sprintf("circle %d: negative radius %g", i, c.R))
		}
		if _, ok := colornames.Map[strings.ToLower(c.Fill)]; !ok {
			problems = append(problems, fmt.Sprintf("circle %d: unknown fill %q", i, c.Fill))
		}
	}
	if s.Bounds != nil {
		if _, err := geom.NewRect(s.Bounds.TopLeft, s.Bounds.Dimensions); err != nil {
			problems = append(problems, fmt.Sprintf("bounds: %v", err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidScene, s.Name, strings.Join(problems, "; "))
	}
	return nil
}

// Parse decodes and validates a YAML scene. Missing IDs are generated.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = typeid.NewSceneID()
	}
	for i := range s.Circles {
		if s.Circles[i].ID == "" {
			s.Circles[i].ID = typeid.NewCircleID()
		}
	}
	return &s, nil
}

// Load reads a scene from a YAML file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

// Save writes the scene to a YAML file.
func Save(s *Scene, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
