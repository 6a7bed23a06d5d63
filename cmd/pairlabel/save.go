package main

import (
	"fmt"
)

// saveCmd writes the label files and the correspondence file.
type saveCmd struct {
	cmdBase
	docs   docFlags
	output string
}

func parseSaveCmd(args []string, r *root) (*saveCmd, error) {
	c := &saveCmd{cmdBase: newCmdBase(r, "save")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.StringVar(&c.output, "output", "", "write the selected canvas to this label file instead")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *saveCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if c.output != "" {
		path, err := state.SaveAs(c.docs.canvas, c.output)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "saved %s\n", path)
		return nil
	}
	written, err := state.Save()
	for _, path := range written {
		fmt.Fprintf(c.stderr, "saved %s\n", path)
	}
	return err
}
