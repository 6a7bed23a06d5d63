// Package labelfile reads and writes the JSON label document that stores one
// image's shapes alongside an embedded copy of the image.
package labelfile

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pairlabel/internal/imagefile"
	"github.com/example/pairlabel/internal/shape"
)

// Suffix is the extension of label files.
const Suffix = ".json"

var (
	// ErrFormat is returned when a label document is malformed or missing
	// required fields.
	ErrFormat = errors.New("invalid label file")
)

// File is one loaded or to-be-saved label document.
type File struct {
	Path      string
	ImagePath string
	ImageData []byte
	LineColor color.RGBA
	FillColor color.RGBA
	Shapes    []*shape.Shape
}

type document struct {
	Shapes    *[]shapeRecord `json:"shapes"`
	ImagePath *string        `json:"imagePath"`
	ImageData *string        `json:"imageData"`
	LineColor *Color         `json:"lineColor"`
	FillColor *Color         `json:"fillColor"`
}

type shapeRecord struct {
	Label     string       `json:"label"`
	Points    [][2]float64 `json:"points"`
	LineColor *Color       `json:"line_color"`
	FillColor *Color       `json:"fill_color"`
	ShapeID   string       `json:"shape_id"`
}

// Color is an RGBA value encoded as a 3 or 4 element JSON array.
type Color color.RGBA

// MarshalJSON encodes c as [r,g,b,a].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{int(c.R), int(c.G), int(c.B), int(c.A)})
}

// UnmarshalJSON accepts [r,g,b] or [r,g,b,a]. A missing alpha is opaque.
func (c *Color) UnmarshalJSON(b []byte) error {
	var v []int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if len(v) != 3 && len(v) != 4 {
		return fmt.Errorf("color needs 3 or 4 components, got %d", len(v))
	}
	if len(v) == 3 {
		v = append(v, 255)
	}
	for _, n := range v {
		if n < 0 || n > 255 {
			return fmt.Errorf("color component %d out of range", n)
		}
	}
	*c = Color{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2]), A: uint8(v[3])}
	return nil
}

// IsLabelFile reports whether path names a label document. Correspondence
// documents share the extension and are excluded.
func IsLabelFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, Suffix) && !strings.HasSuffix(lower, ".crspdc"+Suffix)
}

// PathFor returns the sibling label file for an image path.
func PathFor(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + Suffix
}

// Save writes f to path. Shape colors equal to the document defaults are
// stored as null.
func Save(path string, f *File) error {
	b, err := Marshal(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write label file: %w", err)
	}
	f.Path = path
	return nil
}

// Marshal encodes f the way Save writes it.
func Marshal(f *File) ([]byte, error) {
	records := make([]shapeRecord, 0, len(f.Shapes))
	for _, s := range f.Shapes {
		rec := shapeRecord{
			Label:   s.Label,
			Points:  make([][2]float64, len(s.Points)),
			ShapeID: s.ID,
		}
		for i, p := range s.Points {
			rec.Points[i] = [2]float64{p.X, p.Y}
		}
		rec.LineColor = override(s.LineColor, f.LineColor)
		rec.FillColor = override(s.FillColor, f.FillColor)
		records = append(records, rec)
	}
	data := base64.StdEncoding.EncodeToString(f.ImageData)
	lc, fc := Color(f.LineColor), Color(f.FillColor)
	doc := document{
		Shapes:    &records,
		ImagePath: &f.ImagePath,
		ImageData: &data,
		LineColor: &lc,
		FillColor: &fc,
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode label file: %w", err)
	}
	return b, nil
}

func override(c *color.RGBA, def color.RGBA) *Color {
	if c == nil || *c == def {
		return nil
	}
	v := Color(*c)
	return &v
}

// Load reads a label document. The embedded image must decode; when a
// document carries no image data the image is read from imagePath relative
// to the label file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	f.Path = path
	if len(f.ImageData) == 0 {
		if f.ImagePath == "" {
			return nil, fmt.Errorf("load %s: no image: %w", path, ErrFormat)
		}
		imgPath := f.ImagePath
		if !filepath.IsAbs(imgPath) {
			imgPath = filepath.Join(filepath.Dir(path), imgPath)
		}
		if f.ImageData, err = os.ReadFile(imgPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if _, err := imagefile.Decode(f.ImageData); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a label document without touching the filesystem.
func Parse(b []byte) (*File, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	switch {
	case doc.Shapes == nil:
		return nil, fmt.Errorf("%w: missing shapes", ErrFormat)
	case doc.ImagePath == nil:
		return nil, fmt.Errorf("%w: missing imagePath", ErrFormat)
	case doc.ImageData == nil:
		return nil, fmt.Errorf("%w: missing imageData", ErrFormat)
	}
	f := &File{ImagePath: *doc.ImagePath}
	if doc.LineColor != nil {
		f.LineColor = color.RGBA(*doc.LineColor)
	}
	if doc.FillColor != nil {
		f.FillColor = color.RGBA(*doc.FillColor)
	}
	data, err := base64.StdEncoding.DecodeString(*doc.ImageData)
	if err != nil {
		return nil, fmt.Errorf("%w: imageData: %w", ErrFormat, err)
	}
	f.ImageData = data

	seen := make(map[string]bool, len(*doc.Shapes))
	for i, rec := range *doc.Shapes {
		s := shape.WithID(rec.ShapeID, rec.Label)
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate shape_id %q", ErrFormat, s.ID)
		}
		seen[s.ID] = true
		for _, p := range rec.Points {
			s.Points = append(s.Points, shape.Pt(p[0], p[1]))
		}
		if err := s.Close(); err != nil {
			return nil, fmt.Errorf("%w: shape %d: %w", ErrFormat, i, err)
		}
		if rec.LineColor != nil {
			c := color.RGBA(*rec.LineColor)
			s.LineColor = &c
		}
		if rec.FillColor != nil {
			c := color.RGBA(*rec.FillColor)
			s.FillColor = &c
		}
		f.Shapes = append(f.Shapes, s)
	}
	return f, nil
}
