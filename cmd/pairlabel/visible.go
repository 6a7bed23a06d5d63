package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/pairlabel/internal/appstate"
)

// rowSelection is either every shape on a canvas or a list of rows.
type rowSelection struct {
	all  bool
	rows []int
}

// parseRowSelection reads "all" or row numbers, each argument optionally
// comma separated.
func parseRowSelection(args []string) (rowSelection, error) {
	var sel rowSelection
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case part == "all":
				sel.all = true
			default:
				n, err := strconv.Atoi(part)
				if err != nil || n < 0 {
					return sel, fmt.Errorf("row %q: want a row number or all", part)
				}
				sel.rows = append(sel.rows, n)
			}
		}
	}
	if !sel.all && len(sel.rows) == 0 {
		return sel, fmt.Errorf("no rows given")
	}
	return sel, nil
}

func (sel rowSelection) apply(state *appstate.AppState, i int, visible bool) error {
	if sel.all {
		return state.SetAllVisible(i, visible)
	}
	for _, row := range sel.rows {
		if err := state.SetRowVisible(i, row, visible); err != nil {
			return err
		}
	}
	return nil
}

// hideFor hides sel on each canvas in canvases and returns a func that puts
// the previous visibility back.
func hideFor(state *appstate.AppState, sel rowSelection, canvases ...int) (func(), error) {
	type saved struct {
		canvas int
		hidden []int
	}
	var prev []saved
	restore := func() {
		for _, p := range prev {
			_ = state.SetAllVisible(p.canvas, true)
			for _, row := range p.hidden {
				_ = state.SetRowVisible(p.canvas, row, false)
			}
		}
	}
	for _, i := range canvases {
		c := state.Canvases[i]
		p := saved{canvas: i}
		for row, id := range state.Rows(i) {
			if s := c.Shape(id); s != nil && !c.Visible(s) {
				p.hidden = append(p.hidden, row)
			}
		}
		prev = append(prev, p)
		if err := sel.apply(state, i, false); err != nil {
			restore()
			return func() {}, err
		}
	}
	return restore, nil
}

// visibilityCmd hides or shows shapes for the rest of an interactive session.
type visibilityCmd struct {
	cmdBase
	docs    docFlags
	visible bool
	sel     rowSelection
}

func parseVisibilityCmd(name string, visible bool, args []string, r *root) (*visibilityCmd, error) {
	c := &visibilityCmd{cmdBase: newCmdBase(r, name), visible: visible}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() == 0 {
		return nil, &UsageError{of: c}
	}
	sel, err := parseRowSelection(c.fs.Args())
	if err != nil {
		return nil, err
	}
	c.sel = sel
	return c, nil
}

func (c *visibilityCmd) Run() error {
	if !c.interactive {
		return fmt.Errorf("%s: visibility is not saved; use it inside interactive or pass -hide to render", c.fs.Name())
	}
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if err := c.sel.apply(state, c.docs.canvas, c.visible); err != nil {
		return err
	}
	return printShapes(c.stdout, state, c.docs.canvas)
}
