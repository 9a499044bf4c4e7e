package view

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/panzoom/panzoom/internal/engine"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/panzoom"
	"github.com/panzoom/panzoom/internal/scene"
	"github.com/panzoom/panzoom/internal/typeid"
)

var ErrNotFound = errors.New("view not found")

// Service keeps the views served by this process. Every view shows the
// same scene through its own virtual element and view box.
type Service struct {
	mu       sync.RWMutex
	views    map[string]*View
	scene    *scene.Scene
	viewport geom.ViewPortRect
	opts     []panzoom.Option
}

// NewService creates an empty registry. Views created without a viewport
// get defaultViewport.
func NewService(defaultViewport geom.ViewPortRect, opts ...panzoom.Option) *Service {
	return &Service{
		views:    make(map[string]*View),
		scene:    scene.Sample(),
		viewport: defaultViewport,
		opts:     opts,
	}
}

type View struct {
	ID        string
	CreatedAt time.Time
	Engine    *engine.Engine
}

// Info is the JSON form of a view.
type Info struct {
	ID        string       `json:"id"`
	CreatedAt string       `json:"createdAt"`
	State     engine.State `json:"state"`
}

func (v *View) Info() Info {
	return Info{
		ID:        v.ID,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		State:     v.Engine.Snapshot(),
	}
}

// Create adds a view showing the current scene. A nil viewport selects the
// service default.
func (s *Service) Create(viewport *geom.ViewPortRect) *View {
	rect := s.viewport
	if viewport != nil {
		rect = *viewport
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := engine.NewVirtual(rect, s.opts...)
	e.SetScene(s.scene)
	v := &View{
		ID:        typeid.NewViewID(),
		CreatedAt: time.Now(),
		Engine:    e,
	}
	s.views[v.ID] = v

	slog.Info("view created", "view", v.ID, "viewport", rect)
	return v
}

func (s *Service) Get(id string) (*View, error) {
	if err := typeid.Validate(id, typeid.PrefixView); err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.views[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.views[id]; !ok {
		return ErrNotFound
	}
	delete(s.views, id)

	slog.Info("view deleted", "view", id)
	return nil
}

// List returns all views, oldest first.
func (s *Service) List() []*View {
	s.mu.RLock()
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views
}

// Scene returns the scene new views start with.
func (s *Service) Scene() *scene.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

// SetScene replaces the scene of every view. Existing views keep their zoom
// factor and position.
func (s *Service) SetScene(sc *scene.Scene) {
	s.mu.Lock()
	s.scene = sc
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		v.Engine.UpdateScene(sc)
	}
	slog.Info("scene updated", "scene", sc.ID, "views", len(views))
}
