package input

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/shape"
)

type labeller struct{ text string }

func (l labeller) PromptLabel(string) (string, bool) { return l.text, l.text != "" }

type yes struct{}

func (yes) Confirm(string) bool { return true }

func click(t *testing.T, d *Dispatcher, x, y float32) {
	t.Helper()
	require.NoError(t, d.Mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress}))
	require.NoError(t, d.Mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}))
}

func press(t *testing.T, d *Dispatcher, code key.Code, mods key.Modifiers) {
	t.Helper()
	require.NoError(t, d.Key(key.Event{Code: code, Modifiers: mods, Direction: key.DirPress}))
}

func TestClickToDrawAndClose(t *testing.T) {
	app := appstate.New(appstate.WithPrompter(labeller{"cat"}))
	d := New(app)
	press(t, d, key.CodeN, key.ModControl)
	assert.Equal(t, canvas.ModeCreate, app.Mode())

	click(t, d, 0, 0)
	click(t, d, 100, 0)
	click(t, d, 50, 100)
	click(t, d, 2, 2)

	c := app.Canvases[0]
	require.Equal(t, 1, c.Len())
	s := c.Shapes()[0]
	assert.Equal(t, "cat", s.Label)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, canvas.ModeEdit, app.Mode())
}

func TestEscapeUndoesAndEnterCloses(t *testing.T) {
	app := appstate.New(appstate.WithPrompter(labeller{"x"}))
	d := New(app)
	app.SetMode(canvas.ModeCreate)
	click(t, d, 0, 0)
	click(t, d, 100, 0)
	click(t, d, 90, 90)
	press(t, d, key.CodeEscape, 0)
	assert.Equal(t, 2, app.Canvases[0].Current().Len())
	press(t, d, key.CodeReturnEnter, 0)
	assert.Equal(t, 0, app.Canvases[0].Len())

	click(t, d, 50, 100)
	press(t, d, key.CodeReturnEnter, 0)
	assert.Equal(t, 1, app.Canvases[0].Len())
}

func TestDragVertexAndShape(t *testing.T) {
	app := appstate.New()
	d := New(app)
	d.SetView(0, View{Bounds: image.Rect(10, 10, 410, 410), Scale: 2})
	s, err := app.DrawPolygon(0, []shape.Point{shape.Pt(0, 0), shape.Pt(100, 0), shape.Pt(50, 100)}, "t")
	require.NoError(t, err)
	assert.Equal(t, 2.0, app.Canvases[0].Scale)

	// screen (210,10) is image (100,0)
	require.NoError(t, d.Mouse(mouse.Event{X: 211, Y: 11, Button: mouse.ButtonLeft, Direction: mouse.DirPress}))
	require.NoError(t, d.Mouse(mouse.Event{X: 230, Y: 30, Direction: mouse.DirNone}))
	require.NoError(t, d.Mouse(mouse.Event{X: 230, Y: 30, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}))
	assert.Equal(t, shape.Pt(110, 10), s.Points[1])

	require.NoError(t, d.Mouse(mouse.Event{X: 110, Y: 50, Button: mouse.ButtonLeft, Direction: mouse.DirPress}))
	require.NoError(t, d.Mouse(mouse.Event{X: 120, Y: 50, Direction: mouse.DirNone}))
	require.NoError(t, d.Mouse(mouse.Event{X: 120, Y: 50, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}))
	assert.Equal(t, shape.Pt(5, 0), s.Points[0])

	// moves after release do nothing
	require.NoError(t, d.Mouse(mouse.Event{X: 300, Y: 300, Direction: mouse.DirNone}))
	assert.Equal(t, shape.Pt(5, 0), s.Points[0])
}

func TestDeleteAndDuplicateKeys(t *testing.T) {
	app := appstate.New(appstate.WithConfirmer(yes{}))
	d := New(app)
	_, err := app.DrawPolygon(0, []shape.Point{shape.Pt(0, 0), shape.Pt(100, 0), shape.Pt(50, 100)}, "t")
	require.NoError(t, err)
	click(t, d, 50, 30)
	require.NotNil(t, app.Canvases[0].Selection().Shape)

	press(t, d, key.CodeD, key.ModControl)
	assert.Equal(t, 2, app.Canvases[0].Len())
	press(t, d, key.CodeDeleteBackspace, 0)
	assert.Equal(t, 1, app.Canvases[0].Len())
}

func TestMatchByClicks(t *testing.T) {
	app := appstate.New(appstate.WithPrompter(labeller{"c1"}))
	d := New(app)
	d.SetView(0, View{Bounds: image.Rect(0, 0, 200, 200), Scale: 1})
	d.SetView(1, View{Bounds: image.Rect(200, 0, 400, 200), Scale: 1})
	tri := []shape.Point{shape.Pt(0, 0), shape.Pt(100, 0), shape.Pt(50, 100)}
	a, err := app.DrawPolygon(0, tri, "a")
	require.NoError(t, err)
	b, err := app.DrawPolygon(1, tri, "b")
	require.NoError(t, err)

	press(t, d, key.CodeM, key.ModControl)
	click(t, d, 50, 1)
	assert.Equal(t, 0, d.Active())
	click(t, d, 250, 1)
	assert.Equal(t, 1, d.Active())
	press(t, d, key.CodeReturnEnter, 0)

	assert.Equal(t, map[string]int{"c1": 0}, a.Correspondence)
	assert.Equal(t, map[string]int{"c1": 0}, b.Correspondence)

	press(t, d, key.CodeTab, 0)
	assert.Equal(t, 0, d.Active())
	press(t, d, key.CodeEscape, 0)
	assert.Nil(t, app.Canvases[0].Selection().Shape)
}
