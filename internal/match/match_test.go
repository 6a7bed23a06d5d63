package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/shape"
)

func triangle(t *testing.T, c *canvas.Canvas, dx float64) *shape.Shape {
	t.Helper()
	c.SetEditing(canvas.ModeCreate)
	for _, p := range []shape.Point{shape.Pt(0, 0), shape.Pt(10, 0), shape.Pt(5, 10)} {
		require.NoError(t, c.AddPoint(p.Add(shape.Pt(dx, 0))))
	}
	s, err := c.CloseShape()
	require.NoError(t, err)
	return s
}

func setup(t *testing.T) (*Registry, *canvas.Canvas, *canvas.Canvas, *shape.Shape, *shape.Shape) {
	t.Helper()
	a, b := canvas.New(), canvas.New()
	sa, sb := triangle(t, a, 0), triangle(t, b, 100)
	a.SetEditing(canvas.ModeMatch)
	b.SetEditing(canvas.ModeMatch)
	return New(a, b), a, b, sa, sb
}

func TestCreate(t *testing.T) {
	r, a, b, sa, sb := setup(t)
	assert.False(t, r.Ready())
	assert.ErrorIs(t, r.Create("c1"), ErrNoEdge)

	require.NoError(t, a.SelectEdge(sa, 0))
	require.NoError(t, b.SelectEdge(sb, 2))
	assert.True(t, r.Ready())
	require.NoError(t, r.Create(" c1 "))

	assert.Equal(t, []string{"c1"}, r.Names())
	assert.Equal(t, map[string]int{"c1": 0}, sa.Correspondence)
	assert.Equal(t, map[string]int{"c1": 2}, sb.Correspondence)
}

func TestCreateRejections(t *testing.T) {
	r, a, b, sa, sb := setup(t)
	require.NoError(t, a.SelectEdge(sa, 0))
	require.NoError(t, b.SelectEdge(sb, 0))
	assert.ErrorIs(t, r.Create("   "), ErrEmptyName)
	require.NoError(t, r.Create("c1"))

	require.NoError(t, a.SelectEdge(sa, 1))
	require.NoError(t, b.SelectEdge(sb, 1))
	assert.ErrorIs(t, r.Create("c1"), ErrDuplicateName)

	require.NoError(t, b.SelectEdge(sb, 0))
	assert.ErrorIs(t, r.Create("c2"), shape.ErrEdgeLinked)
	assert.NotContains(t, sa.Correspondence, "c2")
	assert.Equal(t, []string{"c1"}, r.Names())

	b.SetEditing(canvas.ModeEdit)
	assert.ErrorIs(t, r.Create("c3"), canvas.ErrInvalidOperation)
}

func TestRemove(t *testing.T) {
	r, a, b, sa, sb := setup(t)
	require.NoError(t, a.SelectEdge(sa, 1))
	require.NoError(t, b.SelectEdge(sb, 1))
	require.NoError(t, r.Create("c1"))

	require.NoError(t, r.Remove("c1"))
	assert.Empty(t, r.Names())
	assert.Empty(t, sa.Correspondence)
	assert.Empty(t, sb.Correspondence)
	assert.ErrorIs(t, r.Remove("c1"), ErrUnknownName)
}

func TestSelectByName(t *testing.T) {
	r, a, b, sa, sb := setup(t)
	require.NoError(t, a.SelectEdge(sa, 2))
	require.NoError(t, b.SelectEdge(sb, 1))
	require.NoError(t, r.Create("c1"))
	a.DeselectShape()
	b.DeselectShape()

	require.NoError(t, r.SelectByName("c1"))
	assert.Equal(t, canvas.Selection{Shape: sa, Edge: 2, Vertex: -1}, a.Selection())
	assert.Equal(t, canvas.Selection{Shape: sb, Edge: 1, Vertex: -1}, b.Selection())
	assert.ErrorIs(t, r.SelectByName("nope"), ErrUnknownName)
}

func TestDeletingShapeDropsCorrespondence(t *testing.T) {
	r, a, b, sa, sb := setup(t)
	require.NoError(t, a.SelectEdge(sa, 0))
	require.NoError(t, b.SelectEdge(sb, 0))
	require.NoError(t, r.Create("c1"))

	a.SetEditing(canvas.ModeEdit)
	require.NoError(t, a.SelectShape(sa))
	_, err := a.DeleteSelected()
	require.NoError(t, err)

	assert.Empty(t, r.Names())
	assert.Empty(t, sb.Correspondence)
	assert.Empty(t, sa.Correspondence)
}

func TestRestore(t *testing.T) {
	r, _, _, sa, sb := setup(t)
	dropped := r.Restore([]string{"c1", "orphan"}, map[string]map[string]int{
		sa.ID:     {"c1": 1, "orphan": 0},
		sb.ID:     {"c1": 2, "bad": 9},
		"missing": {"c1": 0},
	})
	assert.Equal(t, []string{"orphan"}, dropped)
	assert.Equal(t, []string{"c1"}, r.Names())
	assert.Equal(t, map[string]int{"c1": 1}, sa.Correspondence)
	assert.Equal(t, map[string]int{"c1": 2}, sb.Correspondence)

	r.Reset()
	assert.Empty(t, r.Names())
	assert.Equal(t, map[string]int{"c1": 1}, sa.Correspondence)
}
