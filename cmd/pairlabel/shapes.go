package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/clipboard"
	"github.com/example/pairlabel/internal/labelfile"
)

var writeClipboardJSON = clipboard.WriteJSON

// shapesCmd lists the shapes of a canvas or prints its label document.
type shapesCmd struct {
	cmdBase
	docs   docFlags
	asJSON bool
	copy   bool
}

func parseShapesCmd(args []string, r *root) (*shapesCmd, error) {
	c := &shapesCmd{cmdBase: newCmdBase(r, "shapes")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.BoolVar(&c.asJSON, "json", false, "print the label document instead of a table")
	c.fs.BoolVar(&c.copy, "copy", false, "copy the label document to the clipboard")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *shapesCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if !c.asJSON && !c.copy {
		return printShapes(c.stdout, state, c.docs.canvas)
	}
	f, err := state.LabelFile(c.docs.canvas)
	if err != nil {
		return err
	}
	b, err := labelfile.Marshal(f)
	if err != nil {
		return err
	}
	if c.asJSON {
		fmt.Fprintln(c.stdout, string(b))
	}
	if c.copy {
		if err := writeClipboardJSON(b); err != nil {
			return fmt.Errorf("copy label document: %w", err)
		}
		c.notifyCopy("label document", nil)
	}
	return nil
}

func printSummary(w io.Writer, state *appstate.AppState) error {
	for i := range state.Canvases {
		if err := printShapes(w, state, i); err != nil {
			return err
		}
	}
	return printCorrespondences(w, state)
}

func printShapes(w io.Writer, state *appstate.AppState, i int) error {
	c := state.Canvases[i]
	src := state.Source(i)
	if src == "" {
		src = "(empty)"
	}
	fmt.Fprintf(w, "canvas %d: %s\n", i, src)
	for row, id := range state.Rows(i) {
		s := c.Shape(id)
		if s == nil {
			continue
		}
		names := make([]string, 0, len(s.Correspondence))
		for name, edge := range s.Correspondence {
			names = append(names, fmt.Sprintf("%s@%d", name, edge))
		}
		sort.Strings(names)
		fmt.Fprintf(w, "  %d\t%s\t%d points\t%s", row, s.Label, s.Len(), s.ID)
		if len(names) > 0 {
			fmt.Fprintf(w, "\t%s", strings.Join(names, ","))
		}
		if !c.Visible(s) {
			fmt.Fprint(w, "\thidden")
		}
		fmt.Fprintln(w)
	}
	return nil
}
