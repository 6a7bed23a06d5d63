// Package match maintains named correspondences between an edge on one canvas
// and an edge on the other.
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/shape"
)

var (
	// ErrDuplicateName is returned when a correspondence name is already in use.
	ErrDuplicateName = errors.New("correspondence name already exists")
	// ErrNoEdge is returned when a canvas has no selected edge.
	ErrNoEdge = errors.New("no edge selected")
	// ErrEmptyName is returned for blank correspondence names.
	ErrEmptyName = errors.New("correspondence name is empty")
	// ErrUnknownName is returned when a name is not registered.
	ErrUnknownName = errors.New("unknown correspondence")
)

// Registry tracks correspondences between exactly two canvases.
type Registry struct {
	canvases [2]*canvas.Canvas
	names    []string
}

// New binds a registry to a pair of canvases. Deleting a shape from either
// canvas removes the correspondences it took part in.
func New(a, b *canvas.Canvas) *Registry {
	r := &Registry{canvases: [2]*canvas.Canvas{a, b}}
	for _, c := range r.canvases {
		c.On(canvas.EventShapeRemoved, func(_ *canvas.Canvas, data interface{}) {
			if s, ok := data.(*shape.Shape); ok && s.Closed {
				r.Forget(s)
			}
		})
	}
	return r
}

// Names returns the registered names in creation order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.index(name) >= 0
}

func (r *Registry) index(name string) int {
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Ready reports whether both canvases have a selected edge.
func (r *Registry) Ready() bool {
	return r.canvases[0].Selection().HasEdge() && r.canvases[1].Selection().HasEdge()
}

// Create links the edges currently selected on both canvases under name.
func (r *Registry) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	var sel [2]canvas.Selection
	for i, c := range r.canvases {
		if c.Mode() != canvas.ModeMatch {
			return fmt.Errorf("create %q: canvas %d is in %s mode: %w", name, i, c.Mode(), canvas.ErrInvalidOperation)
		}
		sel[i] = c.Selection()
		if !sel[i].HasEdge() {
			return fmt.Errorf("create %q on canvas %d: %w", name, i, ErrNoEdge)
		}
	}
	if r.Has(name) {
		return fmt.Errorf("create %q: %w", name, ErrDuplicateName)
	}
	for i, s := range sel {
		if other, ok := s.Shape.NameForEdge(s.Edge); ok {
			return fmt.Errorf("create %q: canvas %d edge %d already linked as %q: %w", name, i, s.Edge, other, shape.ErrEdgeLinked)
		}
	}
	if err := sel[0].Shape.Link(name, sel[0].Edge); err != nil {
		return err
	}
	if err := sel[1].Shape.Link(name, sel[1].Edge); err != nil {
		sel[0].Shape.Unlink(name)
		return err
	}
	r.names = append(r.names, name)
	return nil
}

// Remove drops name from the registry and from whichever shape on each
// canvas holds it.
func (r *Registry) Remove(name string) error {
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", name, ErrUnknownName)
	}
	r.names = append(r.names[:i], r.names[i+1:]...)
	for _, c := range r.canvases {
		shapes := c.Shapes()
		for j := len(shapes) - 1; j >= 0; j-- {
			if shapes[j].Unlink(name) {
				break
			}
		}
	}
	return nil
}

// SelectByName selects the linked edge on both canvases.
func (r *Registry) SelectByName(name string) error {
	if !r.Has(name) {
		return fmt.Errorf("select %q: %w", name, ErrUnknownName)
	}
	for i, c := range r.canvases {
		s, edge, ok := c.FindEdgeByName(name)
		if !ok {
			return fmt.Errorf("select %q: not found on canvas %d: %w", name, i, ErrUnknownName)
		}
		if err := c.SelectEdge(s, edge); err != nil {
			return err
		}
	}
	return nil
}

// Forget removes every correspondence s took part in, on both canvases.
func (r *Registry) Forget(s *shape.Shape) {
	for name := range s.Correspondence {
		_ = r.Remove(name)
		s.Unlink(name)
	}
}

// Restore replaces the registry contents with names and binds the per-shape
// entries in byID to shapes on either canvas. Names whose entries are not
// found on both canvases are dropped and returned.
func (r *Registry) Restore(names []string, byID map[string]map[string]int) []string {
	r.names = nil
	for _, c := range r.canvases {
		for _, s := range c.Shapes() {
			entries, ok := byID[s.ID]
			if !ok {
				continue
			}
			s.Correspondence = make(map[string]int, len(entries))
			for name, edge := range entries {
				if edge >= 0 && edge < s.EdgeCount() {
					s.Correspondence[name] = edge
				}
			}
		}
	}
	var dropped []string
	for _, name := range names {
		_, _, okA := r.canvases[0].FindEdgeByName(name)
		_, _, okB := r.canvases[1].FindEdgeByName(name)
		if !okA || !okB || r.Has(name) {
			dropped = append(dropped, name)
			continue
		}
		r.names = append(r.names, name)
	}
	for _, name := range dropped {
		if r.Has(name) {
			continue
		}
		for _, c := range r.canvases {
			for _, s := range c.Shapes() {
				s.Unlink(name)
			}
		}
	}
	return dropped
}

// Reset forgets all names without touching shapes.
func (r *Registry) Reset() {
	r.names = nil
}
