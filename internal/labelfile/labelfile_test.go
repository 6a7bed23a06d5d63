package labelfile

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

	"github.com/example/pairlabel/internal/imagefile"
	"github.com/example/pairlabel/internal/shape"
)

var (
	defLine = color.RGBA{G: 255, A: 128}
	defFill = color.RGBA{R: 255, A: 128}
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func triangle(label string) *shape.Shape {
	s := shape.New(label)
	s.Points = []shape.Point{shape.Pt(0, 0), shape.Pt(10, 0), shape.Pt(5, 10)}
	s.Closed = true
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.json")
	red := color.RGBA{R: 200, A: 255}
	a, b := triangle("cat"), triangle("dog")
	b.LineColor = &red
	same := defFill
	b.FillColor = &same

	f := &File{ImagePath: "cat.png", ImageData: pngBytes(t), LineColor: defLine, FillColor: defFill, Shapes: []*shape.Shape{a, b}}
	require.NoError(t, Save(path, f))
	assert.Equal(t, path, f.Path)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", got.ImagePath)
	assert.Equal(t, f.ImageData, got.ImageData)
	assert.Equal(t, defLine, got.LineColor)
	assert.Equal(t, defFill, got.FillColor)
	require.Len(t, got.Shapes, 2)
	assert.Equal(t, a.ID, got.Shapes[0].ID)
	assert.Equal(t, "cat", got.Shapes[0].Label)
	assert.Equal(t, a.Points, got.Shapes[0].Points)
	assert.True(t, got.Shapes[0].Closed)
	assert.Nil(t, got.Shapes[0].LineColor)
	assert.Equal(t, &red, got.Shapes[1].LineColor)
	// an override equal to the default is stored as null
	assert.Nil(t, got.Shapes[1].FillColor)
}

func TestNullColorIsWrittenAsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	require.NoError(t, Save(path, &File{ImageData: pngBytes(t), LineColor: defLine, FillColor: defFill, Shapes: []*shape.Shape{triangle("x")}}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"line_color": null`)
	assert.Contains(t, string(b), `"fill_color": null`)
	assert.Contains(t, string(b), `"lineColor": [`)
}

func TestParseFormatErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":       `{`,
		"no shapes":      `{"imagePath":"a.png","imageData":""}`,
		"no imagePath":   `{"shapes":[],"imageData":""}`,
		"no imageData":   `{"shapes":[],"imagePath":"a.png"}`,
		"bad base64":     `{"shapes":[],"imagePath":"a.png","imageData":"%%%"}`,
		"two points":     `{"shapes":[{"label":"a","points":[[0,0],[1,1]]}],"imagePath":"a.png","imageData":""}`,
		"bad color":      `{"shapes":[],"imagePath":"a.png","imageData":"","lineColor":[1,2]}`,
		"duplicate ids":  `{"shapes":[{"points":[[0,0],[1,0],[0,1]],"shape_id":"s"},{"points":[[0,0],[1,0],[0,1]],"shape_id":"s"}],"imagePath":"a.png","imageData":""}`,
		"color overflow": `{"shapes":[],"imagePath":"a.png","imageData":"","fillColor":[1,2,3,300]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestParseThreeComponentColor(t *testing.T) {
	f, err := Parse([]byte(`{"shapes":[{"label":"a","points":[[0,0],[1,0],[0,1]],"line_color":[1,2,3]}],"imagePath":"a.png","imageData":"","lineColor":[9,8,7,6]}`))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 9, G: 8, B: 7, A: 6}, f.LineColor)
	assert.Equal(t, &color.RGBA{R: 1, G: 2, B: 3, A: 255}, f.Shapes[0].LineColor)
	assert.NotEmpty(t, f.Shapes[0].ID)
}

func TestLoadBadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	require.NoError(t, Save(path, &File{ImageData: []byte("junk")}))
	_, err := Load(path)
	assert.ErrorIs(t, err, imagefile.ErrDecode)
}

func TestLoadFallsBackToImagePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cat.png"), pngBytes(t), 0o644))
	path := filepath.Join(dir, "cat.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shapes":[],"imagePath":"cat.png","imageData":""}`), 0o644))
	f, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, f.ImageData)
}

func TestNaming(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "cat.json"), PathFor(filepath.Join("a", "cat.png")))
	assert.True(t, IsLabelFile("cat.JSON"))
	assert.False(t, IsLabelFile("a_b.crspdc.json"))
	assert.False(t, IsLabelFile("cat.png"))
}
