package main

import (
	"fmt"
	"image"

	"github.com/example/pairlabel/internal/clipboard"
	"github.com/example/pairlabel/internal/render"
)

var writeClipboardImage = clipboard.WriteImage

// renderCmd exports the annotated canvases as an image.
type renderCmd struct {
	cmdBase
	docs     docFlags
	output   string
	scale    float64
	both     bool
	copy     bool
	noLabels bool
	gap      int
	hide     string
	hidden   rowSelection
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	c := &renderCmd{cmdBase: newCmdBase(r, "render")}
	c.fs.Usage = usageFunc(c)
	c.docs.register(c.fs, true)
	c.fs.StringVar(&c.output, "output", "", "image file to write; the extension picks the format")
	c.fs.Float64Var(&c.scale, "scale", 1, "zoom factor applied to the image and shapes")
	c.fs.BoolVar(&c.both, "both", false, "render both canvases side by side")
	c.fs.BoolVar(&c.copy, "copy", false, "copy the rendered image to the clipboard")
	c.fs.BoolVar(&c.noLabels, "no-labels", false, "omit shape labels")
	c.fs.IntVar(&c.gap, "gap", 8, "pixels between canvases with -both")
	c.fs.StringVar(&c.hide, "hide", "", "rows to leave out of this render, comma separated, or all")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.hide != "" {
		sel, err := parseRowSelection([]string{c.hide})
		if err != nil {
			return nil, err
		}
		c.hidden = sel
	}
	if c.output == "" && !c.copy {
		return nil, &UsageError{of: c}
	}
	if c.scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", c.scale)
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	state, err := c.docs.open(c.root)
	if err != nil {
		return err
	}
	if c.hide != "" {
		canvases := []int{c.docs.canvas}
		if c.both {
			canvases = []int{0, 1}
		}
		restore, err := hideFor(state, c.hidden, canvases...)
		if err != nil {
			return err
		}
		defer restore()
	}
	opts := render.DefaultOptions()
	opts.Theme = c.currentTheme()
	opts.Labels = !c.noLabels

	frame := func(i int) *image.RGBA {
		cv := state.Canvases[i]
		sc := render.FromCanvas(cv, state.LineColor, state.FillColor)
		sc.Scale = c.scale
		return render.Render(sc, opts)
	}
	var img image.Image
	if c.both {
		img = render.SideBySide(c.gap, frame(0), frame(1))
	} else {
		img = frame(c.docs.canvas)
	}

	if c.output != "" {
		if err := render.Save(c.output, img); err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "saved %s\n", c.output)
		c.notifySave(c.output)
	}
	if c.copy {
		if err := writeClipboardImage(img); err != nil {
			return fmt.Errorf("copy rendered image: %w", err)
		}
		c.notifyCopy("rendered image", img)
	}
	return nil
}
