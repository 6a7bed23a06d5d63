// Package appstate is the application controller. It owns both canvases and
// the correspondence registry and drives every user flow through them.
package appstate

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/match"
	"github.com/example/pairlabel/internal/shape"
)

// NumCanvases is the number of side-by-side views.
const NumCanvases = 2

var (
	// DefaultLineColor is the outline color of shapes without an override.
	DefaultLineColor = color.RGBA{R: 0, G: 255, B: 0, A: 128}
	// DefaultFillColor is the fill color of shapes without an override.
	DefaultFillColor = color.RGBA{R: 255, G: 0, B: 0, A: 128}
)

// Prompter asks the user for a label. ok is false when the user cancels.
type Prompter interface {
	PromptLabel(initial string) (text string, ok bool)
}

// ColorPicker asks the user for a color. ok is false when the user cancels.
type ColorPicker interface {
	PickColor(current, def color.RGBA, title string) (c color.RGBA, ok bool)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// FileChooser asks the user for a path. ok is false when the user cancels.
type FileChooser interface {
	ChooseFile(title, initial string) (path string, ok bool)
}

// Notifier receives completed file operations.
type Notifier interface {
	Save(path string)
	Load(path string)
}

// document tracks where a canvas came from and where it is saved.
type document struct {
	source    string
	labelPath string
	imagePath string
}

// AppState holds both canvases and everything shared between them.
type AppState struct {
	Canvases [NumCanvases]*canvas.Canvas
	Matches  *match.Registry

	LineColor color.RGBA
	FillColor color.RGBA
	// Output overrides the label path of the first canvas on save.
	Output string

	docs  [NumCanvases]document
	rows  [NumCanvases]map[string]int
	dirty bool

	prompter  Prompter
	picker    ColorPicker
	confirmer Confirmer
	chooser   FileChooser
	notifier  Notifier
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithPrompter sets the label prompt.
func WithPrompter(p Prompter) Option { return func(a *AppState) { a.prompter = p } }

// WithColorPicker sets the color dialog.
func WithColorPicker(p ColorPicker) Option { return func(a *AppState) { a.picker = p } }

// WithConfirmer sets the yes/no prompt.
func WithConfirmer(c Confirmer) Option { return func(a *AppState) { a.confirmer = c } }

// WithFileChooser sets the file dialog used when a flow is given no path.
func WithFileChooser(c FileChooser) Option { return func(a *AppState) { a.chooser = c } }

// WithNotifier sets the receiver of save and load notifications.
func WithNotifier(n Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithLineColor sets the document default outline color.
func WithLineColor(c color.RGBA) Option { return func(a *AppState) { a.LineColor = c } }

// WithFillColor sets the document default fill color.
func WithFillColor(c color.RGBA) Option { return func(a *AppState) { a.FillColor = c } }

// WithEpsilon sets the hit tolerance of both canvases in screen pixels.
func WithEpsilon(eps float64) Option {
	return func(a *AppState) {
		if eps <= 0 {
			return
		}
		for _, c := range a.Canvases {
			c.Epsilon = eps
		}
	}
}

// WithOutput sets the label path used when saving the first canvas.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		LineColor: DefaultLineColor,
		FillColor: DefaultFillColor,
		prompter:  cancelAll{},
		picker:    cancelAll{},
		confirmer: cancelAll{},
		chooser:   cancelAll{},
	}
	for i := range a.Canvases {
		a.Canvases[i] = canvas.New()
		a.rows[i] = make(map[string]int)
		a.watch(i)
	}
	a.Matches = match.New(a.Canvases[0], a.Canvases[1])
	for _, o := range opts {
		o(a)
	}
	return a
}

// cancelAll is the collaborator used when none is configured. Every prompt is
// cancelled and every question answered no.
type cancelAll struct{}

func (cancelAll) PromptLabel(string) (string, bool)                          { return "", false }
func (cancelAll) PickColor(color.RGBA, color.RGBA, string) (color.RGBA, bool) { return color.RGBA{}, false }
func (cancelAll) Confirm(string) bool                                         { return false }
func (cancelAll) ChooseFile(string, string) (string, bool)                    { return "", false }

func (a *AppState) watch(i int) {
	c := a.Canvases[i]
	c.On(canvas.EventShapeAdded, func(_ *canvas.Canvas, data interface{}) {
		if s, ok := data.(*shape.Shape); ok {
			a.rows[i][s.ID] = len(a.rows[i])
		}
	})
	c.On(canvas.EventShapeRemoved, func(_ *canvas.Canvas, data interface{}) {
		if s, ok := data.(*shape.Shape); ok {
			a.removeRow(i, s.ID)
		}
	})
	c.On(canvas.EventModified, func(*canvas.Canvas, interface{}) {
		a.dirty = true
	})
}

func (a *AppState) removeRow(i int, id string) {
	row, ok := a.rows[i][id]
	if !ok {
		return
	}
	delete(a.rows[i], id)
	for k, r := range a.rows[i] {
		if r > row {
			a.rows[i][k] = r - 1
		}
	}
}

func (a *AppState) canvasAt(i int) (*canvas.Canvas, error) {
	if i < 0 || i >= NumCanvases {
		return nil, fmt.Errorf("canvas %d: %w", i, canvas.ErrInvalidOperation)
	}
	return a.Canvases[i], nil
}

// Row returns the display row of the shape with id on canvas i.
func (a *AppState) Row(i int, id string) (int, bool) {
	if i < 0 || i >= NumCanvases {
		return 0, false
	}
	r, ok := a.rows[i][id]
	return r, ok
}

// ShapeAtRow returns the shape shown at row on canvas i.
func (a *AppState) ShapeAtRow(i, row int) (*shape.Shape, bool) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, false
	}
	for id, r := range a.rows[i] {
		if r == row {
			s := c.Shape(id)
			return s, s != nil
		}
	}
	return nil, false
}

// Rows lists the shape ids of canvas i ordered by display row.
func (a *AppState) Rows(i int) []string {
	if i < 0 || i >= NumCanvases {
		return nil
	}
	ids := make([]string, 0, len(a.rows[i]))
	for id := range a.rows[i] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(x, y int) bool { return a.rows[i][ids[x]] < a.rows[i][ids[y]] })
	return ids
}

// Dirty reports whether there are unsaved changes.
func (a *AppState) Dirty() bool { return a.dirty }

// MarkDirty flags unsaved changes.
func (a *AppState) MarkDirty() { a.dirty = true }

// Source returns the path canvas i was loaded from.
func (a *AppState) Source(i int) string {
	if i < 0 || i >= NumCanvases {
		return ""
	}
	return a.docs[i].source
}

// ImagePath returns the path of the image shown on canvas i.
func (a *AppState) ImagePath(i int) string {
	if i < 0 || i >= NumCanvases {
		return ""
	}
	return a.docs[i].imagePath
}

// LabelPath returns where canvas i is saved.
func (a *AppState) LabelPath(i int) string {
	if i < 0 || i >= NumCanvases {
		return ""
	}
	return a.docs[i].labelPath
}

// LineColorOf returns the effective outline color of s.
func (a *AppState) LineColorOf(s *shape.Shape) color.RGBA {
	if s.LineColor != nil {
		return *s.LineColor
	}
	return a.LineColor
}

// FillColorOf returns the effective fill color of s.
func (a *AppState) FillColorOf(s *shape.Shape) color.RGBA {
	if s.FillColor != nil {
		return *s.FillColor
	}
	return a.FillColor
}

// SetMode switches both canvases to mode.
func (a *AppState) SetMode(mode canvas.Mode) {
	for _, c := range a.Canvases {
		c.SetEditing(mode)
	}
}

// Mode returns the mode shared by the canvases.
func (a *AppState) Mode() canvas.Mode {
	return a.Canvases[0].Mode()
}
