package shape

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) *Shape {
	t.Helper()
	s := New("cat")
	for _, p := range []Point{Pt(0, 0), Pt(10, 0), Pt(5, 10)} {
		require.NoError(t, s.AddPoint(p))
	}
	require.NoError(t, s.Close())
	return s
}

func TestClose(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		for n := 0; n < MinPoints; n++ {
			s := New("")
			for i := 0; i < n; i++ {
				require.NoError(t, s.AddPoint(Pt(float64(i), 0)))
			}
			err := s.Close()
			assert.ErrorIs(t, err, ErrTooFewPoints)
			assert.False(t, s.Closed)
			assert.Equal(t, n, s.Len())
		}
	})
	t.Run("keeps order", func(t *testing.T) {
		s := triangle(t)
		assert.True(t, s.Closed)
		assert.Equal(t, []Point{Pt(0, 0), Pt(10, 0), Pt(5, 10)}, s.Points)
		assert.ErrorIs(t, s.AddPoint(Pt(1, 1)), ErrClosed)
	})
}

func TestEdgeIndexing(t *testing.T) {
	s := New("")
	pts := []Point{Pt(0, 0), Pt(4, 0), Pt(4, 4), Pt(0, 4), Pt(-2, 2)}
	for _, p := range pts {
		require.NoError(t, s.AddPoint(p))
	}
	assert.Equal(t, 4, s.EdgeCount(), "open shape exposes drawn segments only")
	require.NoError(t, s.Close())
	require.Equal(t, len(pts), s.EdgeCount())
	for i := range pts {
		a, b, ok := s.Edge(i)
		require.True(t, ok)
		assert.Equal(t, pts[i], a)
		assert.Equal(t, pts[(i+1)%len(pts)], b)
	}
	_, _, ok := s.Edge(len(pts))
	assert.False(t, ok)
	_, _, ok = s.Edge(-1)
	assert.False(t, ok)
}

func TestNearestQueries(t *testing.T) {
	s := triangle(t)

	i, d := s.NearestVertex(Pt(9, 1), 3)
	assert.Equal(t, 1, i)
	assert.InDelta(t, 1.414, d, 0.01)

	i, _ = s.NearestVertex(Pt(50, 50), 3)
	assert.Equal(t, -1, i)

	i, d = s.NearestEdge(Pt(5, -1), 2)
	assert.Equal(t, 0, i)
	assert.InDelta(t, 1.0, d, 1e-9)

	i, _ = s.NearestEdge(Pt(5, 5), 0.5)
	assert.Equal(t, -1, i)
}

func TestContainsAndHit(t *testing.T) {
	s := triangle(t)
	assert.True(t, s.Contains(Pt(5, 3)))
	assert.False(t, s.Contains(Pt(20, 3)))
	assert.False(t, s.Contains(Pt(5, -1)))
	assert.True(t, s.Hit(Pt(5, -1), 2))

	open := New("")
	require.NoError(t, open.AddPoint(Pt(0, 0)))
	assert.False(t, open.Contains(Pt(0, 0)))
}

func TestMoveTranslateCopy(t *testing.T) {
	s := triangle(t)
	red := color.RGBA{R: 255, A: 255}
	s.LineColor = &red
	require.NoError(t, s.Link("c1", 0))

	require.NoError(t, s.MoveVertex(2, Pt(5, 12)))
	assert.Equal(t, Pt(5, 12), s.Points[2])
	assert.ErrorIs(t, s.MoveVertex(3, Pt(0, 0)), ErrEdgeRange)

	s.Translate(Pt(1, 2))
	assert.Equal(t, Pt(1, 2), s.Points[0])
	assert.Equal(t, 3, s.Len())

	c := s.Copy()
	assert.NotEqual(t, s.ID, c.ID)
	assert.Equal(t, s.Points, c.Points)
	assert.Equal(t, s.Label, c.Label)
	assert.Empty(t, c.Correspondence)
	require.NotNil(t, c.LineColor)
	assert.Equal(t, red, *c.LineColor)
	c.Points[0] = Pt(100, 100)
	assert.Equal(t, Pt(1, 2), s.Points[0], "copy must not alias points")
	c.LineColor.G = 9
	assert.Equal(t, uint8(0), s.LineColor.G)
}

func TestLink(t *testing.T) {
	s := triangle(t)
	require.NoError(t, s.Link("c1", 0))
	assert.ErrorIs(t, s.Link("c2", 0), ErrEdgeLinked)
	assert.ErrorIs(t, s.Link("c2", 3), ErrEdgeRange)
	require.NoError(t, s.Link("c2", 1))

	e, ok := s.LinkedEdge("c2")
	assert.True(t, ok)
	assert.Equal(t, 1, e)

	name, ok := s.NameForEdge(0)
	assert.True(t, ok)
	assert.Equal(t, "c1", name)

	assert.True(t, s.Unlink("c1"))
	assert.False(t, s.Unlink("c1"))
	assert.Equal(t, map[string]int{"c2": 1}, s.Correspondence)
}

func TestWithIDKeepsStoredID(t *testing.T) {
	s := WithID("abc", "dog")
	assert.Equal(t, "abc", s.ID)
	assert.NotEmpty(t, WithID("", "dog").ID)
	assert.NotEqual(t, New("").ID, New("").ID)
}

func TestBoundingBox(t *testing.T) {
	s := triangle(t)
	lo, hi := s.BoundingBox()
	assert.Equal(t, Pt(0, 0), lo)
	assert.Equal(t, Pt(10, 10), hi)
}
