package appstate

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/shape"
)

// ParsePoint parses "x,y" into a point.
func ParsePoint(s string) (shape.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return shape.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return shape.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return shape.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return shape.Pt(x, y), nil
}

// ParseEdgeRef parses "row:edge" where row is the display row of a shape.
func ParseEdgeRef(s string) (row, edge int, err error) {
	rs, es, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("edge %q: want row:edge", s)
	}
	if row, err = strconv.Atoi(rs); err != nil {
		return 0, 0, fmt.Errorf("edge %q: %w", s, err)
	}
	if edge, err = strconv.Atoi(es); err != nil {
		return 0, 0, fmt.Errorf("edge %q: %w", s, err)
	}
	return row, edge, nil
}

// DrawPolygon draws pts on canvas i and labels the result, the same way a
// sequence of clicks followed by the label prompt would.
func (a *AppState) DrawPolygon(i int, pts []shape.Point, label string) (*shape.Shape, error) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, err
	}
	if len(pts) < shape.MinPoints {
		return nil, fmt.Errorf("draw: %w", shape.ErrTooFewPoints)
	}
	a.SetMode(canvas.ModeCreate)
	for _, p := range pts {
		if err := c.AddPoint(p); err != nil {
			a.SetMode(canvas.ModeEdit)
			return nil, err
		}
	}
	var s *shape.Shape
	err = a.withAnswers(label, true, func() error {
		var err error
		s, err = a.FinishShape(i)
		return err
	})
	if err != nil {
		a.SetMode(canvas.ModeEdit)
		return nil, err
	}
	return s, nil
}

type fixedPrompt string

func (p fixedPrompt) PromptLabel(string) (string, bool) { return string(p), p != "" }

type fixedAnswer bool

func (y fixedAnswer) Confirm(string) bool { return bool(y) }

// withAnswers runs fn with every label prompt answered by text and every
// question answered by yes.
func (a *AppState) withAnswers(text string, yes bool, fn func() error) error {
	prompter, confirmer := a.prompter, a.confirmer
	a.prompter, a.confirmer = fixedPrompt(text), fixedAnswer(yes)
	defer func() { a.prompter, a.confirmer = prompter, confirmer }()
	return fn()
}

// SelectRow selects the shape at row on canvas i.
func (a *AppState) SelectRow(i, row int) (*shape.Shape, error) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, err
	}
	s, ok := a.ShapeAtRow(i, row)
	if !ok {
		return nil, fmt.Errorf("canvas %d has no shape at row %d: %w", i, row, canvas.ErrInvalidOperation)
	}
	return s, c.SelectShape(s)
}

// Link selects the referenced edges and creates a correspondence between
// them under name.
func (a *AppState) Link(name string, refs [NumCanvases][2]int) error {
	a.SetMode(canvas.ModeMatch)
	for i, ref := range refs {
		s, ok := a.ShapeAtRow(i, ref[0])
		if !ok {
			return fmt.Errorf("canvas %d has no shape at row %d: %w", i, ref[0], canvas.ErrInvalidOperation)
		}
		if err := a.Canvases[i].SelectEdge(s, ref[1]); err != nil {
			return err
		}
	}
	return a.withAnswers(name, true, func() error {
		_, err := a.CreateCorrespondence()
		return err
	})
}

// RenameRow replaces the label of the shape at row on canvas i.
func (a *AppState) RenameRow(i, row int, label string) error {
	if _, err := a.SelectRow(i, row); err != nil {
		return err
	}
	return a.withAnswers(label, true, func() error { return a.EditLabel(i) })
}

// DeleteRow removes the shape at row on canvas i without asking.
func (a *AppState) DeleteRow(i, row int) (*shape.Shape, error) {
	if _, err := a.SelectRow(i, row); err != nil {
		return nil, err
	}
	var s *shape.Shape
	err := a.withAnswers("", true, func() error {
		var err error
		s, err = a.DeleteSelected(i)
		return err
	})
	return s, err
}

// DuplicateRow copies the shape at row on canvas i.
func (a *AppState) DuplicateRow(i, row int) (*shape.Shape, error) {
	if _, err := a.SelectRow(i, row); err != nil {
		return nil, err
	}
	return a.DuplicateSelected(i)
}

// SetRowColors overrides the colors of the shape at row on canvas i. A nil
// color is left unchanged.
func (a *AppState) SetRowColors(i, row int, line, fill *color.RGBA) error {
	s, ok := a.ShapeAtRow(i, row)
	if !ok {
		return fmt.Errorf("canvas %d has no shape at row %d: %w", i, row, canvas.ErrInvalidOperation)
	}
	if line != nil {
		c := *line
		s.LineColor = &c
	}
	if fill != nil {
		c := *fill
		s.FillColor = &c
	}
	a.dirty = true
	return nil
}

// SetRowVisible hides or shows the shape at row on canvas i. Visibility is
// view state and does not mark the document dirty.
func (a *AppState) SetRowVisible(i, row int, visible bool) error {
	c, err := a.canvasAt(i)
	if err != nil {
		return err
	}
	s, ok := a.ShapeAtRow(i, row)
	if !ok {
		return fmt.Errorf("canvas %d has no shape at row %d: %w", i, row, canvas.ErrInvalidOperation)
	}
	c.SetShapeVisible(s, visible)
	return nil
}

// SetAllVisible hides or shows every shape on canvas i.
func (a *AppState) SetAllVisible(i int, visible bool) error {
	c, err := a.canvasAt(i)
	if err != nil {
		return err
	}
	for _, s := range c.Shapes() {
		c.SetShapeVisible(s, visible)
	}
	return nil
}
