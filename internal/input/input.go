// Package input turns host mouse and keyboard events into controller calls.
package input

import (
	"errors"
	"image"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/shape"
)

// View places one canvas on screen.
type View struct {
	Bounds image.Rectangle
	Scale  float64
}

func (v View) toImage(x, y float32) shape.Point {
	s := v.Scale
	if s <= 0 {
		s = 1
	}
	return shape.Pt((float64(x)-float64(v.Bounds.Min.X))/s, (float64(y)-float64(v.Bounds.Min.Y))/s)
}

type dragKind int

const (
	dragNone dragKind = iota
	dragVertex
	dragShape
)

// Dispatcher routes events to the focused canvas.
type Dispatcher struct {
	app    *appstate.AppState
	views  [appstate.NumCanvases]View
	active int
	drag   dragKind
	last   shape.Point
}

// New creates a dispatcher for app. Views default to the image origin at
// scale 1.
func New(app *appstate.AppState) *Dispatcher {
	d := &Dispatcher{app: app}
	for i := range d.views {
		d.views[i].Scale = 1
	}
	return d
}

// SetView positions canvas i on screen and updates its zoom.
func (d *Dispatcher) SetView(i int, v View) {
	if i < 0 || i >= len(d.views) {
		return
	}
	if v.Scale <= 0 {
		v.Scale = 1
	}
	d.views[i] = v
	d.app.Canvases[i].Scale = v.Scale
}

// Active returns the focused canvas.
func (d *Dispatcher) Active() int { return d.active }

// Focus moves keyboard focus to canvas i.
func (d *Dispatcher) Focus(i int) {
	if i >= 0 && i < len(d.views) {
		d.active = i
		d.drag = dragNone
	}
}

func (d *Dispatcher) viewAt(x, y float32) int {
	p := image.Pt(int(x), int(y))
	for i, v := range d.views {
		if !v.Bounds.Empty() && p.In(v.Bounds) {
			return i
		}
	}
	return d.active
}

func ignoreCancel(err error) error {
	if errors.Is(err, appstate.ErrCancelled) {
		return nil
	}
	return err
}

// Mouse handles a pointer event.
func (d *Dispatcher) Mouse(e mouse.Event) error {
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return nil
		}
		d.Focus(d.viewAt(e.X, e.Y))
		return d.press(d.views[d.active].toImage(e.X, e.Y))
	case mouse.DirRelease:
		d.drag = dragNone
		return nil
	case mouse.DirNone:
		if d.drag == dragNone {
			return nil
		}
		return d.move(d.views[d.active].toImage(e.X, e.Y))
	}
	return nil
}

func (d *Dispatcher) press(p shape.Point) error {
	c := d.app.Canvases[d.active]
	switch c.Mode() {
	case canvas.ModeCreate:
		if c.CanCloseAt(p) {
			_, err := d.app.FinishShape(d.active)
			return ignoreCancel(err)
		}
		return c.AddPoint(p)
	case canvas.ModeEdit:
		if _, ok := c.SelectVertexAt(p); ok {
			d.drag, d.last = dragVertex, p
			return nil
		}
		s, err := c.SelectShapeAt(p)
		if err != nil {
			return err
		}
		if s != nil {
			d.drag, d.last = dragShape, p
		}
	case canvas.ModeMatch:
		if _, ok := c.SelectEdgeAt(p); !ok {
			c.DeselectShape()
		}
	}
	return nil
}

func (d *Dispatcher) move(p shape.Point) error {
	c := d.app.Canvases[d.active]
	switch d.drag {
	case dragVertex:
		return c.MoveSelectedVertex(p)
	case dragShape:
		delta := p.Sub(d.last)
		d.last = p
		return c.MoveSelectedShape(delta)
	}
	return nil
}

// Key handles a key press. Releases are ignored.
func (d *Dispatcher) Key(e key.Event) error {
	if e.Direction == key.DirRelease {
		return nil
	}
	c := d.app.Canvases[d.active]
	if e.Modifiers&key.ModControl != 0 {
		switch e.Code {
		case key.CodeN:
			d.app.SetMode(canvas.ModeCreate)
		case key.CodeJ:
			d.app.SetMode(canvas.ModeEdit)
		case key.CodeM:
			d.app.SetMode(canvas.ModeMatch)
		case key.CodeD:
			if c.Mode() == canvas.ModeEdit {
				_, err := d.app.DuplicateSelected(d.active)
				return err
			}
		case key.CodeE:
			return ignoreCancel(d.app.EditLabel(d.active))
		case key.CodeS:
			_, err := d.app.Save()
			return err
		}
		return nil
	}
	switch e.Code {
	case key.CodeTab:
		d.Focus((d.active + 1) % len(d.views))
	case key.CodeEscape:
		if c.Mode() == canvas.ModeCreate {
			c.UndoLastLine()
		} else {
			c.DeselectShape()
		}
	case key.CodeReturnEnter:
		switch c.Mode() {
		case canvas.ModeCreate:
			if cur := c.Current(); cur != nil && cur.Len() >= shape.MinPoints {
				_, err := d.app.FinishShape(d.active)
				return ignoreCancel(err)
			}
		case canvas.ModeMatch:
			if d.app.Matches.Ready() {
				_, err := d.app.CreateCorrespondence()
				return ignoreCancel(err)
			}
		}
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		if c.Mode() == canvas.ModeEdit && c.Selection().Shape != nil {
			_, err := d.app.DeleteSelected(d.active)
			return ignoreCancel(err)
		}
	}
	return nil
}
