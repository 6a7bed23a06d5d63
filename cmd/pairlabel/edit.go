package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/shape"
)

// drawCmd adds a labelled polygon from a list of x,y vertices.
type drawCmd struct {
	cmdBase
	docs   docFlags
	label  string
	points []shape.Point
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	c := &drawCmd{cmdBase: newCmdBase(r, "draw")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.StringVar(&c.label, "label", "", "label of the new shape")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.label) == "" || c.fs.NArg() < shape.MinPoints {
		return nil, &UsageError{of: c}
	}
	for _, arg := range c.fs.Args() {
		p, err := appstate.ParsePoint(arg)
		if err != nil {
			return nil, err
		}
		c.points = append(c.points, p)
	}
	return c, nil
}

func (c *drawCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	s, err := state.DrawPolygon(c.docs.canvas, c.points, c.label)
	if err != nil {
		return err
	}
	row, _ := state.Row(c.docs.canvas, s.ID)
	fmt.Fprintf(c.stdout, "canvas %d row %d: %s (%s)\n", c.docs.canvas, row, s.Label, s.ID)
	return c.persist()
}

// labelCmd replaces the label of one shape.
type labelCmd struct {
	cmdBase
	docs  docFlags
	row   int
	label string
}

func parseLabelCmd(args []string, r *root) (*labelCmd, error) {
	c := &labelCmd{cmdBase: newCmdBase(r, "label")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.IntVar(&c.row, "row", -1, "row of the shape to relabel")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	c.label = strings.TrimSpace(strings.Join(c.fs.Args(), " "))
	if c.row < 0 || c.label == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *labelCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if err := state.RenameRow(c.docs.canvas, c.row, c.label); err != nil {
		return err
	}
	return c.persist()
}

// colorCmd overrides the colors of one shape, or the document defaults when
// no row is given.
type colorCmd struct {
	cmdBase
	docs       docFlags
	row        int
	line, fill *color.RGBA
}

func parseColorCmd(args []string, r *root) (*colorCmd, error) {
	c := &colorCmd{cmdBase: newCmdBase(r, "color")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.IntVar(&c.row, "row", -1, "row of the shape to recolor; omit to change the document defaults")
	var lineSpec, fillSpec string
	c.fs.StringVar(&lineSpec, "line", "", "line color: name, #RRGGBB[AA] or r,g,b[,a]")
	c.fs.StringVar(&fillSpec, "fill", "", "fill color: name, #RRGGBB[AA] or r,g,b[,a]")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if lineSpec == "" && fillSpec == "" {
		return nil, &UsageError{of: c}
	}
	for _, spec := range []struct {
		value string
		dst   **color.RGBA
	}{{lineSpec, &c.line}, {fillSpec, &c.fill}} {
		if spec.value == "" {
			continue
		}
		col, err := appstate.ParseColor(spec.value)
		if err != nil {
			return nil, err
		}
		*spec.dst = &col
	}
	return c, nil
}

func (c *colorCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if c.row < 0 {
		if c.line != nil {
			state.LineColor = *c.line
		}
		if c.fill != nil {
			state.FillColor = *c.fill
		}
		state.MarkDirty()
	} else if err := state.SetRowColors(c.docs.canvas, c.row, c.line, c.fill); err != nil {
		return err
	}
	return c.persist()
}

// rowCmd runs delete or duplicate on one shape.
type rowCmd struct {
	cmdBase
	docs docFlags
	row  int
	op   func(state *appstate.AppState, i, row int) (*shape.Shape, error)
}

func parseRowCmd(name string, args []string, r *root) (*rowCmd, error) {
	c := &rowCmd{cmdBase: newCmdBase(r, name)}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.IntVar(&c.row, "row", -1, "row of the shape")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.row < 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func parseDeleteCmd(args []string, r *root) (*rowCmd, error) {
	c, err := parseRowCmd("delete", args, r)
	if err != nil {
		return nil, err
	}
	c.op = (*appstate.AppState).DeleteRow
	return c, nil
}

func parseDuplicateCmd(args []string, r *root) (*rowCmd, error) {
	c, err := parseRowCmd("duplicate", args, r)
	if err != nil {
		return nil, err
	}
	c.op = (*appstate.AppState).DuplicateRow
	return c, nil
}

func (c *rowCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	s, err := c.op(state, c.docs.canvas, c.row)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s %s (%s)\n", c.fs.Name(), s.Label, s.ID)
	return c.persist()
}
