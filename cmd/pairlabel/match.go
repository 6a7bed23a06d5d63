package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/clipboard"
)

var writeClipboardText = clipboard.WriteText

// matchCmd links one edge on each canvas under a correspondence name.
type matchCmd struct {
	cmdBase
	docs docFlags
	name string
	refs [appstate.NumCanvases][2]int
}

func parseMatchCmd(args []string, r *root) (*matchCmd, error) {
	c := &matchCmd{cmdBase: newCmdBase(r, "match")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, false)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() != 3 {
		return nil, &UsageError{of: c}
	}
	c.name = strings.TrimSpace(c.fs.Arg(0))
	for i := range c.refs {
		row, edge, err := appstate.ParseEdgeRef(c.fs.Arg(i + 1))
		if err != nil {
			return nil, err
		}
		c.refs[i] = [2]int{row, edge}
	}
	return c, nil
}

func (c *matchCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if err := state.Link(c.name, c.refs); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "linked %s\n", c.name)
	return c.persist()
}

// unmatchCmd removes correspondences by name.
type unmatchCmd struct {
	cmdBase
	docs  docFlags
	names []string
}

func parseUnmatchCmd(args []string, r *root) (*unmatchCmd, error) {
	c := &unmatchCmd{cmdBase: newCmdBase(r, "unmatch")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, false)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	c.names = c.fs.Args()
	if len(c.names) == 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *unmatchCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	for _, name := range c.names {
		if err := state.RemoveCorrespondence(name); err != nil {
			return err
		}
	}
	return c.persist()
}

// correspondencesCmd lists the correspondences between the two canvases.
type correspondencesCmd struct {
	cmdBase
	docs docFlags
	copy bool
}

func parseCorrespondencesCmd(args []string, r *root) (*correspondencesCmd, error) {
	c := &correspondencesCmd{cmdBase: newCmdBase(r, "correspondences")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, false)
	c.fs.BoolVar(&c.copy, "copy", false, "copy the listing to the clipboard as text")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *correspondencesCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if !c.copy {
		return printCorrespondences(c.stdout, state)
	}
	var buf bytes.Buffer
	if err := printCorrespondences(io.MultiWriter(c.stdout, &buf), state); err != nil {
		return err
	}
	if err := writeClipboardText(buf.String()); err != nil {
		return fmt.Errorf("copy correspondences: %w", err)
	}
	c.notifyCopy("correspondences", nil)
	return nil
}

func printCorrespondences(w io.Writer, state *appstate.AppState) error {
	names := state.Matches.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "no correspondences")
		return nil
	}
	for _, name := range names {
		fmt.Fprint(w, name)
		for i, cv := range state.Canvases {
			s, edge, ok := cv.FindEdgeByName(name)
			if !ok {
				fmt.Fprintf(w, "\t%d:-", i)
				continue
			}
			row, _ := state.Row(i, s.ID)
			fmt.Fprintf(w, "\t%d:%d:%d", i, row, edge)
		}
		fmt.Fprintln(w)
	}
	return nil
}
