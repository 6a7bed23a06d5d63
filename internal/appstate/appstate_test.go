package appstate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/crspdcfile"
	"github.com/example/pairlabel/internal/labelfile"
	"github.com/example/pairlabel/internal/match"
	"github.com/example/pairlabel/internal/shape"
)

type answers struct {
	labels   []string
	colors   []color.RGBA
	confirm  bool
	asked    []string
	saved    []string
	loaded   []string
	chooseTo string
}

func (f *answers) PromptLabel(string) (string, bool) {
	if len(f.labels) == 0 {
		return "", false
	}
	l := f.labels[0]
	f.labels = f.labels[1:]
	return l, true
}

func (f *answers) PickColor(_, _ color.RGBA, title string) (color.RGBA, bool) {
	if len(f.colors) == 0 {
		return color.RGBA{}, false
	}
	c := f.colors[0]
	f.colors = f.colors[1:]
	return c, true
}

func (f *answers) Confirm(q string) bool {
	f.asked = append(f.asked, q)
	return f.confirm
}

func (f *answers) ChooseFile(string, string) (string, bool) {
	return f.chooseTo, f.chooseTo != ""
}

func (f *answers) Save(path string) { f.saved = append(f.saved, path) }
func (f *answers) Load(path string) { f.loaded = append(f.loaded, path) }

func newState(f *answers, opts ...Option) *AppState {
	base := []Option{WithPrompter(f), WithColorPicker(f), WithConfirmer(f), WithFileChooser(f), WithNotifier(f)}
	return New(append(base, opts...)...)
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 20))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

var tri = []shape.Point{shape.Pt(0, 0), shape.Pt(10, 0), shape.Pt(5, 10)}

func drawClicks(t *testing.T, a *AppState, i int, pts []shape.Point) {
	t.Helper()
	a.SetMode(canvas.ModeCreate)
	for _, p := range pts {
		require.NoError(t, a.Canvases[i].AddPoint(p))
	}
}

func TestCatScenario(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "cat.png")
	writePNG(t, img)

	f := &answers{labels: []string{"cat"}}
	a := newState(f)
	require.NoError(t, a.LoadFile(0, img))
	assert.Equal(t, 0, a.Canvases[0].Len())
	assert.Equal(t, filepath.Join(dir, "cat.json"), a.LabelPath(0))

	drawClicks(t, a, 0, tri)
	s, err := a.FinishShape(0)
	require.NoError(t, err)
	assert.Equal(t, "cat", s.Label)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, canvas.ModeEdit, a.Mode())
	assert.True(t, a.Dirty())

	written, err := a.Save()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "cat.json")}, written)
	assert.False(t, a.Dirty())
	assert.Equal(t, written, f.saved)

	b := newState(&answers{})
	require.NoError(t, b.LoadFile(0, img))
	assert.Equal(t, filepath.Join(dir, "cat.json"), b.Source(0))
	assert.Equal(t, img, b.ImagePath(0))
	got := b.Canvases[0].Shapes()
	require.Len(t, got, 1)
	assert.Equal(t, "cat", got[0].Label)
	assert.Equal(t, tri, got[0].Points)
	assert.Equal(t, s.ID, got[0].ID)
}

func TestFinishShapeCancelReopens(t *testing.T) {
	a := newState(&answers{})
	drawClicks(t, a, 0, tri)
	_, err := a.FinishShape(0)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, a.Canvases[0].Len())
	assert.True(t, a.Canvases[0].Drawing())
	assert.Empty(t, a.Rows(0))
}

func TestFinishShapeKeepsOtherCanvasDrawing(t *testing.T) {
	a := newState(&answers{labels: []string{"left", "right"}})
	drawClicks(t, a, 1, tri[:2])
	for _, p := range tri {
		require.NoError(t, a.Canvases[0].AddPoint(p))
	}
	_, err := a.FinishShape(0)
	require.NoError(t, err)

	require.True(t, a.Canvases[1].Drawing())
	assert.Equal(t, 2, a.Canvases[1].Current().Len())
	assert.Equal(t, canvas.ModeCreate, a.Canvases[1].Mode())

	require.NoError(t, a.Canvases[1].AddPoint(tri[2]))
	_, err = a.FinishShape(1)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Canvases[1].Len())
	assert.Equal(t, canvas.ModeEdit, a.Mode())
}

func TestSaveAsSubdirectoryKeepsRelativeImage(t *testing.T) {
	dir := t.TempDir()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	writePNG(t, "cat.png")
	require.NoError(t, os.Mkdir("out", 0o755))

	a := newState(&answers{})
	require.NoError(t, a.LoadFile(0, "cat.png"))
	_, err := a.DrawPolygon(0, tri, "cat")
	require.NoError(t, err)
	path, err := a.SaveAs(0, filepath.Join("out", "cat.json"))
	require.NoError(t, err)

	lf, err := labelfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "../cat.png", filepath.ToSlash(lf.ImagePath))

	b := newState(&answers{})
	require.NoError(t, b.LoadFile(0, path))
	assert.Equal(t, "cat.png", b.ImagePath(0))
	_, err = os.Stat(b.ImagePath(0))
	assert.NoError(t, err)
}

func TestRelativeToSiblingWithDotPrefix(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "..foo.png", relativeTo(filepath.Join(dir, "a.json"), filepath.Join(dir, "..foo.png")))
}

func TestLoadFailureLeavesState(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.png")
	writePNG(t, img)
	a := newState(&answers{labels: []string{"x"}})
	require.NoError(t, a.LoadFile(0, img))
	_, err := a.DrawPolygon(0, tri, "x")
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"shapes":`), 0o644))
	a.dirty = false
	err = a.LoadFile(0, bad)
	assert.ErrorIs(t, err, labelfile.ErrFormat)
	assert.Contains(t, err.Error(), bad)
	assert.Equal(t, 1, a.Canvases[0].Len())
	assert.Equal(t, img, a.ImagePath(0))
}

func TestLoadAsksBeforeDiscarding(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.png")
	writePNG(t, img)
	f := &answers{}
	a := newState(f)
	a.MarkDirty()
	assert.ErrorIs(t, a.LoadFile(0, img), ErrCancelled)
	assert.Len(t, f.asked, 1)

	f.confirm = true
	require.NoError(t, a.LoadFile(0, img))
	assert.Equal(t, []string{img}, f.loaded)
}

func TestRowsFollowShapes(t *testing.T) {
	a := newState(&answers{})
	first, err := a.DrawPolygon(0, tri, "one")
	require.NoError(t, err)
	second, err := a.DrawPolygon(0, tri, "two")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, a.Rows(0))

	got, err := a.SelectRow(0, 0)
	require.NoError(t, err)
	assert.Same(t, first, got)

	a.confirmer = &answers{confirm: true}
	_, err = a.DeleteSelected(0)
	require.NoError(t, err)
	row, ok := a.Row(0, second.ID)
	require.True(t, ok)
	assert.Equal(t, 0, row)
	_, ok = a.ShapeAtRow(0, 1)
	assert.False(t, ok)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	a := newState(&answers{})
	s, err := a.DrawPolygon(0, tri, "x")
	require.NoError(t, err)
	require.NoError(t, a.Canvases[0].SelectShape(s))
	_, err = a.DeleteSelected(0)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 1, a.Canvases[0].Len())
}

func TestColors(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	f := &answers{colors: []color.RGBA{blue, white}}
	a := newState(f)
	s, err := a.DrawPolygon(0, tri, "x")
	require.NoError(t, err)
	assert.Equal(t, DefaultLineColor, a.LineColorOf(s))

	require.NoError(t, a.Canvases[0].SelectShape(s))
	require.NoError(t, a.SetShapeColors(0))
	assert.Equal(t, blue, a.LineColorOf(s))
	assert.Equal(t, white, a.FillColorOf(s))

	f.colors = []color.RGBA{white, blue}
	require.NoError(t, a.ChooseDefaultColors())
	assert.Equal(t, white, a.LineColor)
	assert.Equal(t, blue, a.FillColor)
	assert.ErrorIs(t, a.ChooseDefaultColors(), ErrCancelled)
}

func TestEditLabel(t *testing.T) {
	f := &answers{}
	a := newState(f)
	s, err := a.DrawPolygon(0, tri, "old")
	require.NoError(t, err)
	assert.ErrorIs(t, a.EditLabel(0), canvas.ErrInvalidOperation)
	require.NoError(t, a.Canvases[0].SelectShape(s))
	f.labels = []string{"new"}
	require.NoError(t, a.EditLabel(0))
	assert.Equal(t, "new", s.Label)
	assert.ErrorIs(t, a.EditLabel(0), ErrCancelled)
}

func TestCorrespondenceScenario(t *testing.T) {
	dir := t.TempDir()
	left, right := filepath.Join(dir, "left.png"), filepath.Join(dir, "right.png")
	writePNG(t, left)
	writePNG(t, right)

	f := &answers{labels: []string{"c1", "c1"}}
	a := newState(f)
	require.NoError(t, a.LoadFile(0, left))
	require.NoError(t, a.LoadFile(1, right))
	sa, err := a.DrawPolygon(0, tri, "l")
	require.NoError(t, err)
	sb, err := a.DrawPolygon(1, tri, "r")
	require.NoError(t, err)

	a.SetMode(canvas.ModeMatch)
	require.NoError(t, a.Canvases[0].SelectEdge(sa, 0))
	require.NoError(t, a.Canvases[1].SelectEdge(sb, 0))
	name, err := a.CreateCorrespondence()
	require.NoError(t, err)
	assert.Equal(t, "c1", name)
	assert.Equal(t, map[string]int{"c1": 0}, sa.Correspondence)
	assert.Equal(t, map[string]int{"c1": 0}, sb.Correspondence)

	require.NoError(t, a.Canvases[0].SelectEdge(sa, 1))
	require.NoError(t, a.Canvases[1].SelectEdge(sb, 1))
	_, err = a.CreateCorrespondence()
	assert.ErrorIs(t, err, match.ErrDuplicateName)
	assert.Equal(t, []string{"c1"}, a.Matches.Names())

	written, err := a.Save()
	require.NoError(t, err)
	crspdc := filepath.Join(dir, "left_right"+crspdcfile.Suffix)
	assert.Contains(t, written, crspdc)

	cf, err := crspdcfile.Load(crspdc)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, cf.ByName)
	assert.Equal(t, map[string]map[string]int{sa.ID: {"c1": 0}, sb.ID: {"c1": 0}}, cf.ByID)

	b := newState(&answers{})
	require.NoError(t, b.LoadFile(0, right))
	require.NoError(t, b.LoadFile(1, left))
	assert.Equal(t, []string{"c1"}, b.Matches.Names())
	require.NoError(t, b.SelectCorrespondence("c1"))
	assert.Equal(t, 0, b.Canvases[0].Selection().Edge)

	require.NoError(t, b.RemoveCorrespondence("c1"))
	assert.Empty(t, b.Canvases[0].Shapes()[0].Correspondence)
	assert.Empty(t, b.Canvases[1].Shapes()[0].Correspondence)
}

func TestSaveSkipsCorrespondencesWithOneImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "solo.png")
	writePNG(t, img)
	a := newState(&answers{})
	require.NoError(t, a.LoadFile(0, img))
	_, err := a.DrawPolygon(0, tri, "x")
	require.NoError(t, err)
	written, err := a.Save()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "solo.json")}, written)
	assert.Empty(t, a.CorrespondencePath())
}

func TestSaveAsAndOutput(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.png")
	writePNG(t, img)
	out := filepath.Join(dir, "out.json")
	a := newState(&answers{}, WithOutput(out), WithEpsilon(4))
	assert.Equal(t, 4.0, a.Canvases[1].Epsilon)
	require.NoError(t, a.LoadFile(0, img))
	_, err := a.DrawPolygon(0, tri, "x")
	require.NoError(t, err)
	written, err := a.Save()
	require.NoError(t, err)
	assert.Equal(t, []string{out}, written)

	lf, err := labelfile.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "a.png", lf.ImagePath)

	path, err := a.SaveAs(0, filepath.Join(dir, "copy"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "copy.json"), path)
	assert.Equal(t, path, a.LabelPath(0))

	_, err = a.SaveAs(0, "")
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestClose(t *testing.T) {
	f := &answers{}
	a := newState(f)
	_, err := a.DrawPolygon(0, tri, "x")
	require.NoError(t, err)
	assert.ErrorIs(t, a.Close(), ErrCancelled)
	f.confirm = true
	require.NoError(t, a.Close())
	assert.Equal(t, 0, a.Canvases[0].Len())
	assert.False(t, a.Dirty())
	assert.Empty(t, a.Rows(0))
}

func TestParseHelpers(t *testing.T) {
	p, err := ParsePoint(" 1.5, 2 ")
	require.NoError(t, err)
	assert.Equal(t, shape.Pt(1.5, 2), p)
	_, err = ParsePoint("1")
	assert.Error(t, err)

	row, edge, err := ParseEdgeRef("2:1")
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 1}, [2]int{row, edge})
	_, _, err = ParseEdgeRef("x:1")
	assert.Error(t, err)

	c, err := ParseColor("#00FF0080")
	require.NoError(t, err)
	assert.Equal(t, DefaultLineColor, c)
	c, err = ParseColor("red")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c)
	c, err = ParseColor("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, c)
	_, err = ParseColor("#12")
	assert.Error(t, err)
	assert.Equal(t, "#00FF0080", FormatColor(DefaultLineColor))
}

func TestRowHelpers(t *testing.T) {
	f := &answers{}
	a := newState(f)
	s, err := a.DrawPolygon(0, tri, "one")
	require.NoError(t, err)

	require.NoError(t, a.RenameRow(0, 0, "renamed"))
	assert.Equal(t, "renamed", s.Label)
	assert.ErrorIs(t, a.RenameRow(0, 3, "x"), canvas.ErrInvalidOperation)

	blue := color.RGBA{B: 255, A: 255}
	require.NoError(t, a.SetRowColors(0, 0, nil, &blue))
	assert.Nil(t, s.LineColor)
	assert.Equal(t, blue, *s.FillColor)

	dup, err := a.DuplicateRow(0, 0)
	require.NoError(t, err)
	assert.Equal(t, shape.Pt(canvas.DuplicateOffset, canvas.DuplicateOffset), dup.Points[0])
	assert.Equal(t, 2, a.Canvases[0].Len())

	deleted, err := a.DeleteRow(0, 0)
	require.NoError(t, err)
	assert.Same(t, s, deleted)
	assert.Empty(t, f.asked)
	assert.Equal(t, []string{dup.ID}, a.Rows(0))
}

func TestRowVisibility(t *testing.T) {
	a := newState(&answers{})
	s, err := a.DrawPolygon(0, tri, "one")
	require.NoError(t, err)
	c := a.Canvases[0]

	require.NoError(t, a.SetRowVisible(0, 0, false))
	assert.False(t, c.Visible(s))
	require.NoError(t, a.SetRowVisible(0, 0, true))
	assert.True(t, c.Visible(s))
	assert.ErrorIs(t, a.SetRowVisible(0, 4, false), canvas.ErrInvalidOperation)

	require.NoError(t, a.SetAllVisible(0, false))
	assert.False(t, c.Visible(s))
	require.NoError(t, a.SetAllVisible(0, true))
	assert.True(t, c.Visible(s))
	assert.Error(t, a.SetAllVisible(2, false))
}
