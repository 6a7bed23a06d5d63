package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/pairlabel/internal/clipboard"
	"github.com/example/pairlabel/internal/labelfile"
	"github.com/example/pairlabel/internal/render"
)

var (
	readClipboardText  = clipboard.ReadText
	readClipboardImage = clipboard.ReadImage
)

type openCmd struct {
	cmdBase
	output     string
	paste      string
	pasteImage string
	files      []string
}

func parseOpenCmd(args []string, r *root) (*openCmd, error) {
	c := &openCmd{cmdBase: newCmdBase(r, "open")}
	c.fs.Usage = usageFunc(c)
	c.fs.StringVar(&c.output, "output", "", "label file written for the first canvas on save")
	c.fs.StringVar(&c.paste, "paste", "", "write the label document on the clipboard to this path and open it")
	c.fs.StringVar(&c.pasteImage, "paste-image", "", "write the clipboard image to this path and open it")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	c.files = c.fs.Args()
	n := len(c.files)
	if c.paste != "" {
		n++
	}
	if c.pasteImage != "" {
		n++
	}
	if n < 1 || n > 2 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *openCmd) Run() error {
	files := append([]string(nil), c.files...)
	if c.paste != "" {
		path, err := pasteLabelFile(c.paste)
		if err != nil {
			return err
		}
		files = append(files, path)
	}
	if c.pasteImage != "" {
		if err := pasteImageFile(c.pasteImage); err != nil {
			return err
		}
		files = append(files, c.pasteImage)
	}

	state := c.ensureState()
	for i, path := range files {
		if err := state.LoadFile(i, path); err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
	}
	if err := printSummary(c.stdout, state); err != nil {
		return err
	}
	if c.output == "" {
		return nil
	}
	state.Output = c.output
	return c.persist()
}

// pasteLabelFile validates the label document on the clipboard and writes it
// to path.
func pasteLabelFile(path string) (string, error) {
	text, err := readClipboardText()
	if err != nil {
		return "", fmt.Errorf("paste label document: %w", err)
	}
	if _, err := labelfile.Parse([]byte(text)); err != nil {
		return "", fmt.Errorf("paste label document: %w", err)
	}
	if filepath.Ext(path) == "" {
		path += labelfile.Suffix
	}
	if !labelfile.IsLabelFile(path) {
		return "", fmt.Errorf("paste label document: %s is not a label file path", path)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func pasteImageFile(path string) error {
	img, err := readClipboardImage()
	if err != nil {
		return fmt.Errorf("paste image: %w", err)
	}
	return render.Save(path, img)
}
