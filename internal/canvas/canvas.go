// Package canvas holds the polygon set for one image view and implements the
// interactive editing rules: drawing, closing, hit-testing, selection and
// vertex or shape moves.
package canvas

import (
	"errors"
	"fmt"

	"github.com/example/pairlabel/internal/imagefile"
	"github.com/example/pairlabel/internal/shape"
)

const (
	// DefaultEpsilon is the hit-test tolerance in screen pixels.
	DefaultEpsilon = 11.0
	// DuplicateOffset is how far a duplicated shape is shifted on both axes.
	DuplicateOffset = 2.0
)

// ErrInvalidOperation reports an editing call made in the wrong state.
var ErrInvalidOperation = errors.New("invalid canvas operation")

// Event identifies a canvas notification.
type Event int

const (
	EventSelectionChanged Event = iota
	EventShapeAdded
	EventShapeRemoved
	EventModified
	EventDrawingChanged
	EventModeChanged
)

// Listener receives canvas notifications. data depends on the event: the
// affected *shape.Shape for add/remove, Selection for selection changes, bool
// for drawing changes and Mode for mode changes.
type Listener func(c *Canvas, data interface{})

// Selection describes the current selection. Edge and Vertex are -1 when the
// selection does not name one.
type Selection struct {
	Shape  *shape.Shape
	Edge   int
	Vertex int
}

// HasEdge reports whether a specific edge is selected.
func (s Selection) HasEdge() bool {
	return s.Shape != nil && s.Edge >= 0
}

// HasVertex reports whether a specific vertex is selected.
func (s Selection) HasVertex() bool {
	return s.Shape != nil && s.Vertex >= 0
}

var noSelection = Selection{Edge: -1, Vertex: -1}

// Hit is the result of a nearest vertex or edge query.
type Hit struct {
	Shape    *shape.Shape
	Index    int
	Distance float64
}

// Canvas is one independently edited image and its shapes.
type Canvas struct {
	Image *imagefile.Image
	// Scale is the current view zoom; hit tolerances are divided by it so they
	// stay constant on screen.
	Scale   float64
	Epsilon float64

	mode      Mode
	shapes    []*shape.Shape
	current   *shape.Shape
	selection Selection
	hidden    map[string]bool
	listeners map[Event][]Listener
}

// New creates an empty canvas in edit mode.
func New() *Canvas {
	return &Canvas{
		Scale:     1,
		Epsilon:   DefaultEpsilon,
		mode:      ModeEdit,
		selection: noSelection,
		hidden:    make(map[string]bool),
		listeners: make(map[Event][]Listener),
	}
}

// On registers a listener for event.
func (c *Canvas) On(event Event, fn Listener) {
	c.listeners[event] = append(c.listeners[event], fn)
}

func (c *Canvas) emit(event Event, data interface{}) {
	for _, fn := range c.listeners[event] {
		fn(c, data)
	}
}

func invalid(op, reason string) error {
	return fmt.Errorf("%s: %s: %w", op, reason, ErrInvalidOperation)
}

// Mode returns the current edit mode.
func (c *Canvas) Mode() Mode { return c.mode }

// Shapes returns the shapes in insertion order.
func (c *Canvas) Shapes() []*shape.Shape {
	out := make([]*shape.Shape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// Len returns the number of finalized shapes.
func (c *Canvas) Len() int { return len(c.shapes) }

// Shape looks up a shape by id.
func (c *Canvas) Shape(id string) *shape.Shape {
	if i := c.Index(id); i >= 0 {
		return c.shapes[i]
	}
	return nil
}

// Index returns the insertion position of the shape with id, or -1.
func (c *Canvas) Index(id string) int {
	for i, s := range c.shapes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the in-progress shape, if any.
func (c *Canvas) Current() *shape.Shape { return c.current }

// Drawing reports whether a polygon is being drawn.
func (c *Canvas) Drawing() bool { return c.current != nil }

// Selection returns the current selection.
func (c *Canvas) Selection() Selection { return c.selection }

// LoadImage attaches the image being annotated.
func (c *Canvas) LoadImage(img *imagefile.Image) {
	c.Image = img
}

func (c *Canvas) tolerance(eps float64) float64 {
	if c.Scale > 0 {
		return eps / c.Scale
	}
	return eps
}

// AddPoint appends p to the in-progress shape, starting one when needed.
func (c *Canvas) AddPoint(p shape.Point) error {
	if c.mode != ModeCreate {
		return invalid("add point", "canvas is in "+c.mode.String()+" mode")
	}
	started := false
	if c.current == nil {
		c.current = shape.New("")
		started = true
	}
	if err := c.current.AddPoint(p); err != nil {
		return err
	}
	if started {
		c.emit(EventDrawingChanged, true)
	}
	return nil
}

// CanCloseAt reports whether clicking p should close the in-progress shape:
// it has enough points and p is within tolerance of the first vertex.
func (c *Canvas) CanCloseAt(p shape.Point) bool {
	if c.current == nil || c.current.Len() < shape.MinPoints {
		return false
	}
	return c.current.Points[0].Distance(p) <= c.tolerance(c.Epsilon)
}

// CloseShape finalizes the in-progress shape and appends it to the canvas.
func (c *Canvas) CloseShape() (*shape.Shape, error) {
	if c.mode != ModeCreate || c.current == nil {
		return nil, invalid("close shape", "not drawing")
	}
	if err := c.current.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	s := c.current
	s.ID = shape.NewID()
	c.current = nil
	c.shapes = append(c.shapes, s)
	c.emit(EventDrawingChanged, false)
	c.emit(EventShapeAdded, s)
	c.emit(EventModified, s)
	return s, nil
}

// RetractLast reopens the most recently closed shape for further drawing.
// It backs out a closed polygon whose label prompt was cancelled.
func (c *Canvas) RetractLast() (*shape.Shape, error) {
	if c.mode != ModeCreate || c.current != nil || len(c.shapes) == 0 {
		return nil, invalid("retract shape", "nothing to retract")
	}
	s := c.shapes[len(c.shapes)-1]
	c.shapes = c.shapes[:len(c.shapes)-1]
	if c.selection.Shape == s {
		c.selection = noSelection
	}
	s.Closed = false
	c.current = s
	c.emit(EventShapeRemoved, s)
	c.emit(EventDrawingChanged, true)
	return s, nil
}

// UndoLastLine removes the most recently added point of the in-progress
// shape, abandoning the shape once it is empty. It is a no-op when not drawing.
func (c *Canvas) UndoLastLine() {
	if c.current == nil {
		return
	}
	c.current.PopPoint()
	if c.current.Len() == 0 {
		c.current = nil
		c.emit(EventDrawingChanged, false)
	}
}

// NearestVertex finds the closest vertex within eps screen pixels of p.
func (c *Canvas) NearestVertex(p shape.Point, eps float64) (Hit, bool) {
	tol := c.tolerance(eps)
	var best Hit
	found := false
	for _, s := range c.shapes {
		if c.hidden[s.ID] {
			continue
		}
		i, d := s.NearestVertex(p, tol)
		if i < 0 {
			continue
		}
		// Later shapes are drawn on top, so they win exact ties.
		if !found || d <= best.Distance {
			best = Hit{Shape: s, Index: i, Distance: d}
			found = true
		}
	}
	return best, found
}

// NearestEdge finds the closest edge within eps screen pixels of p.
func (c *Canvas) NearestEdge(p shape.Point, eps float64) (Hit, bool) {
	tol := c.tolerance(eps)
	var best Hit
	found := false
	for _, s := range c.shapes {
		if c.hidden[s.ID] {
			continue
		}
		i, d := s.NearestEdge(p, tol)
		if i < 0 {
			continue
		}
		if !found || d <= best.Distance {
			best = Hit{Shape: s, Index: i, Distance: d}
			found = true
		}
	}
	return best, found
}

func (c *Canvas) setSelection(sel Selection) {
	c.selection = sel
	c.emit(EventSelectionChanged, sel)
}

// SelectShapeAt selects the topmost shape containing p or lying within the
// hit tolerance of its boundary. It returns nil when nothing is hit.
func (c *Canvas) SelectShapeAt(p shape.Point) (*shape.Shape, error) {
	if c.current != nil {
		return nil, invalid("select shape", "drawing in progress")
	}
	tol := c.tolerance(c.Epsilon)
	for i := len(c.shapes) - 1; i >= 0; i-- {
		s := c.shapes[i]
		if c.hidden[s.ID] {
			continue
		}
		if s.Hit(p, tol) {
			c.setSelection(Selection{Shape: s, Edge: -1, Vertex: -1})
			return s, nil
		}
	}
	c.setSelection(noSelection)
	return nil, nil
}

// SelectVertexAt selects the nearest vertex to p within tolerance.
func (c *Canvas) SelectVertexAt(p shape.Point) (Hit, bool) {
	hit, ok := c.NearestVertex(p, c.Epsilon)
	if ok {
		c.setSelection(Selection{Shape: hit.Shape, Edge: -1, Vertex: hit.Index})
	}
	return hit, ok
}

// SelectEdgeAt selects the nearest edge to p within tolerance. Used by match
// mode to pick correspondence endpoints.
func (c *Canvas) SelectEdgeAt(p shape.Point) (Hit, bool) {
	hit, ok := c.NearestEdge(p, c.Epsilon)
	if ok {
		c.setSelection(Selection{Shape: hit.Shape, Edge: hit.Index, Vertex: -1})
	}
	return hit, ok
}

// SelectShape selects s, which must belong to the canvas.
func (c *Canvas) SelectShape(s *shape.Shape) error {
	if s == nil || c.Index(s.ID) < 0 {
		return invalid("select shape", "shape not on canvas")
	}
	c.setSelection(Selection{Shape: s, Edge: -1, Vertex: -1})
	return nil
}

// SelectEdge selects edge of shape s.
func (c *Canvas) SelectEdge(s *shape.Shape, edge int) error {
	if s == nil || c.Index(s.ID) < 0 {
		return invalid("select edge", "shape not on canvas")
	}
	if edge < 0 || edge >= s.EdgeCount() {
		return invalid("select edge", fmt.Sprintf("edge %d out of range", edge))
	}
	c.setSelection(Selection{Shape: s, Edge: edge, Vertex: -1})
	return nil
}

// DeselectShape clears the selection.
func (c *Canvas) DeselectShape() {
	if c.selection.Shape == nil {
		return
	}
	c.setSelection(noSelection)
}

// MoveSelectedVertex moves the selected vertex to p.
func (c *Canvas) MoveSelectedVertex(p shape.Point) error {
	if !c.selection.HasVertex() {
		return invalid("move vertex", "no vertex selected")
	}
	if err := c.selection.Shape.MoveVertex(c.selection.Vertex, p); err != nil {
		return err
	}
	c.emit(EventModified, c.selection.Shape)
	return nil
}

// MoveSelectedShape translates the selected shape by delta.
func (c *Canvas) MoveSelectedShape(delta shape.Point) error {
	if c.selection.Shape == nil {
		return invalid("move shape", "no shape selected")
	}
	c.selection.Shape.Translate(delta)
	c.emit(EventModified, c.selection.Shape)
	return nil
}

// DeleteSelected removes the selected shape and returns it. Listeners of
// EventShapeRemoved drop any correspondences that referenced it.
func (c *Canvas) DeleteSelected() (*shape.Shape, error) {
	s := c.selection.Shape
	if s == nil {
		return nil, invalid("delete", "no shape selected")
	}
	i := c.Index(s.ID)
	c.shapes = append(c.shapes[:i], c.shapes[i+1:]...)
	delete(c.hidden, s.ID)
	c.setSelection(noSelection)
	c.emit(EventShapeRemoved, s)
	c.emit(EventModified, s)
	return s, nil
}

// DuplicateSelected inserts an offset copy of the selected shape, selects it
// and returns it.
func (c *Canvas) DuplicateSelected() (*shape.Shape, error) {
	if c.selection.Shape == nil {
		return nil, invalid("duplicate", "no shape selected")
	}
	dup := c.selection.Shape.Copy()
	dup.Translate(shape.Pt(DuplicateOffset, DuplicateOffset))
	c.shapes = append(c.shapes, dup)
	c.emit(EventShapeAdded, dup)
	c.setSelection(Selection{Shape: dup, Edge: -1, Vertex: -1})
	c.emit(EventModified, dup)
	return dup, nil
}

// SetEditing switches mode. Leaving create mode discards a partially drawn
// shape; any selection is cleared.
func (c *Canvas) SetEditing(mode Mode) {
	if mode == c.mode {
		return
	}
	if c.current != nil {
		c.current = nil
		c.emit(EventDrawingChanged, false)
	}
	c.mode = mode
	c.DeselectShape()
	c.emit(EventModeChanged, mode)
}

// SetLastLabel labels the most recently added shape and returns it.
func (c *Canvas) SetLastLabel(label string) (*shape.Shape, error) {
	if len(c.shapes) == 0 {
		return nil, invalid("set label", "no shapes")
	}
	s := c.shapes[len(c.shapes)-1]
	s.Label = label
	c.emit(EventModified, s)
	return s, nil
}

// LoadShapes replaces the shape collection.
func (c *Canvas) LoadShapes(shapes []*shape.Shape) {
	c.shapes = append([]*shape.Shape(nil), shapes...)
	c.current = nil
	c.hidden = make(map[string]bool)
	c.selection = noSelection
	for _, s := range c.shapes {
		c.emit(EventShapeAdded, s)
	}
}

// Reset discards the image, all shapes and any selection.
func (c *Canvas) Reset() {
	c.Image = nil
	c.shapes = nil
	c.current = nil
	c.hidden = make(map[string]bool)
	c.selection = noSelection
}

// FindEdgeByName returns the shape and edge carrying the named correspondence.
func (c *Canvas) FindEdgeByName(name string) (*shape.Shape, int, bool) {
	for _, s := range c.shapes {
		if e, ok := s.LinkedEdge(name); ok {
			return s, e, true
		}
	}
	return nil, -1, false
}

// SetShapeVisible hides or shows a shape. Hidden shapes are skipped by
// hit-testing.
func (c *Canvas) SetShapeVisible(s *shape.Shape, visible bool) {
	if visible {
		delete(c.hidden, s.ID)
		return
	}
	c.hidden[s.ID] = true
	if c.selection.Shape == s {
		c.DeselectShape()
	}
}

// Visible reports whether s is shown.
func (c *Canvas) Visible(s *shape.Shape) bool {
	return !c.hidden[s.ID]
}
