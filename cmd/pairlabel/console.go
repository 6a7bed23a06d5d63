package main

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/example/pairlabel/internal/appstate"
)

// console answers controller prompts from a line-oriented terminal.
type console struct {
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewScanner(in), out: out}
}

func (c *console) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// PromptLabel keeps initial on an empty answer. With no initial label an
// empty answer cancels.
func (c *console) PromptLabel(initial string) (string, bool) {
	prompt := "label: "
	if initial != "" {
		prompt = fmt.Sprintf("label [%s]: ", initial)
	}
	text, ok := c.readLine(prompt)
	if !ok {
		return "", false
	}
	if text == "" {
		return initial, initial != ""
	}
	return text, true
}

func (c *console) Confirm(question string) bool {
	text, ok := c.readLine(question + " [y/N] ")
	return ok && strings.HasPrefix(strings.ToLower(text), "y")
}

// PickColor keeps current on an empty answer; "default" restores def.
func (c *console) PickColor(current, def color.RGBA, title string) (color.RGBA, bool) {
	for {
		text, ok := c.readLine(fmt.Sprintf("%s [%s]: ", title, appstate.FormatColor(current)))
		if !ok {
			return color.RGBA{}, false
		}
		switch strings.ToLower(text) {
		case "":
			return current, true
		case "default":
			return def, true
		}
		col, err := appstate.ParseColor(text)
		if err == nil {
			return col, true
		}
		fmt.Fprintln(c.out, err)
	}
}

func (c *console) ChooseFile(title, initial string) (string, bool) {
	prompt := title + ": "
	if initial != "" {
		prompt = fmt.Sprintf("%s [%s]: ", title, initial)
	}
	text, ok := c.readLine(prompt)
	if !ok {
		return "", false
	}
	if text == "" {
		text = initial
	}
	return text, text != ""
}
