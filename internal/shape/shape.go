// Package shape models a labelled polygon and answers the geometric queries
// needed while it is drawn and edited.
package shape

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/google/uuid"
)

// MinPoints is the smallest number of vertices a closed polygon may have.
const MinPoints = 3

var (
	// ErrTooFewPoints is returned when closing a polygon with fewer than MinPoints vertices.
	ErrTooFewPoints = errors.New("polygon needs at least 3 points")
	// ErrClosed is returned when adding points to a finalized polygon.
	ErrClosed = errors.New("polygon is already closed")
	// ErrEdgeRange is returned for edge or vertex indices outside the polygon.
	ErrEdgeRange = errors.New("index out of range")
	// ErrEdgeLinked is returned when an edge already carries a correspondence.
	ErrEdgeLinked = errors.New("edge already linked")
)

// Point is a 2D position in image coordinates.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Shape is an ordered polygon with a text label. Edge i joins point i and
// point (i+1) mod N once the shape is closed.
type Shape struct {
	ID     string
	Label  string
	Points []Point
	// LineColor and FillColor override the document defaults when non-nil.
	LineColor *color.RGBA
	FillColor *color.RGBA
	Closed    bool
	// Correspondence maps a correspondence name to one of this shape's edges.
	Correspondence map[string]int
}

// NewID returns a fresh shape identifier.
func NewID() string {
	return uuid.NewString()
}

// New creates an open shape with a fresh id.
func New(label string) *Shape {
	return WithID(NewID(), label)
}

// WithID creates an open shape carrying a previously stored id. An empty id
// is replaced with a fresh one.
func WithID(id, label string) *Shape {
	if id == "" {
		id = NewID()
	}
	return &Shape{
		ID:             id,
		Label:          label,
		Correspondence: make(map[string]int),
	}
}

// Len reports the number of vertices.
func (s *Shape) Len() int {
	return len(s.Points)
}

// AddPoint appends p to an open shape.
func (s *Shape) AddPoint(p Point) error {
	if s.Closed {
		return ErrClosed
	}
	s.Points = append(s.Points, p)
	return nil
}

// PopPoint removes the most recently added vertex.
func (s *Shape) PopPoint() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	last := s.Points[len(s.Points)-1]
	s.Points = s.Points[:len(s.Points)-1]
	return last, true
}

// Close finalizes the polygon boundary.
func (s *Shape) Close() error {
	if len(s.Points) < MinPoints {
		return fmt.Errorf("close shape with %d points: %w", len(s.Points), ErrTooFewPoints)
	}
	s.Closed = true
	return nil
}

// EdgeCount returns the number of addressable edges. An open shape only has
// the segments drawn so far.
func (s *Shape) EdgeCount() int {
	n := len(s.Points)
	if s.Closed {
		return n
	}
	if n < 2 {
		return 0
	}
	return n - 1
}

// Edge returns the endpoints of edge i.
func (s *Shape) Edge(i int) (Point, Point, bool) {
	if i < 0 || i >= s.EdgeCount() {
		return Point{}, Point{}, false
	}
	n := len(s.Points)
	return s.Points[i], s.Points[(i+1)%n], true
}

// NearestVertex returns the index of the closest vertex within eps of p, or
// -1 when none qualifies.
func (s *Shape) NearestVertex(p Point, eps float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, v := range s.Points {
		d := v.Distance(p)
		if d <= eps && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// NearestEdge returns the index of the closest edge whose segment distance to
// p is within eps, or -1 when none qualifies.
func (s *Shape) NearestEdge(p Point, eps float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i := 0; i < s.EdgeCount(); i++ {
		a, b, _ := s.Edge(i)
		d := SegmentDistance(p, a, b)
		if d <= eps && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// Contains reports whether p lies inside the closed polygon (even-odd rule).
func (s *Shape) Contains(p Point) bool {
	if !s.Closed || len(s.Points) < MinPoints {
		return false
	}
	inside := false
	n := len(s.Points)
	for i := 0; i < n; i++ {
		a, b := s.Points[i], s.Points[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Hit reports whether p is inside the polygon or within eps of its boundary.
func (s *Shape) Hit(p Point, eps float64) bool {
	if s.Contains(p) {
		return true
	}
	i, _ := s.NearestEdge(p, eps)
	return i >= 0
}

// MoveVertex sets vertex i to p.
func (s *Shape) MoveVertex(i int, p Point) error {
	if i < 0 || i >= len(s.Points) {
		return fmt.Errorf("move vertex %d of %d: %w", i, len(s.Points), ErrEdgeRange)
	}
	s.Points[i] = p
	return nil
}

// Translate moves every vertex by d.
func (s *Shape) Translate(d Point) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(d)
	}
}

// Copy returns a deep copy with a fresh id and no correspondences.
func (s *Shape) Copy() *Shape {
	c := New(s.Label)
	c.Points = append([]Point(nil), s.Points...)
	c.Closed = s.Closed
	if s.LineColor != nil {
		lc := *s.LineColor
		c.LineColor = &lc
	}
	if s.FillColor != nil {
		fc := *s.FillColor
		c.FillColor = &fc
	}
	return c
}

// BoundingBox returns the top-left and bottom-right corners of the shape.
func (s *Shape) BoundingBox() (Point, Point) {
	if len(s.Points) == 0 {
		return Point{}, Point{}
	}
	lo, hi := s.Points[0], s.Points[0]
	for _, p := range s.Points[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// Link records that edge participates in the named correspondence. An edge
// carries at most one name.
func (s *Shape) Link(name string, edge int) error {
	if edge < 0 || edge >= s.EdgeCount() {
		return fmt.Errorf("link %q to edge %d: %w", name, edge, ErrEdgeRange)
	}
	if other, ok := s.NameForEdge(edge); ok && other != name {
		return fmt.Errorf("link %q to edge %d (held by %q): %w", name, edge, other, ErrEdgeLinked)
	}
	if s.Correspondence == nil {
		s.Correspondence = make(map[string]int)
	}
	s.Correspondence[name] = edge
	return nil
}

// Unlink removes the named correspondence and reports whether it existed.
func (s *Shape) Unlink(name string) bool {
	if _, ok := s.Correspondence[name]; !ok {
		return false
	}
	delete(s.Correspondence, name)
	return true
}

// LinkedEdge returns the edge recorded under name.
func (s *Shape) LinkedEdge(name string) (int, bool) {
	e, ok := s.Correspondence[name]
	return e, ok
}

// NameForEdge returns the correspondence name attached to edge, if any.
func (s *Shape) NameForEdge(edge int) (string, bool) {
	for name, e := range s.Correspondence {
		if e == edge {
			return name, true
		}
	}
	return "", false
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
