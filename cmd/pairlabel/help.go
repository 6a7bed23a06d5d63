package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc prints the help template of h to its flag set's output.
func usageFunc(h HelpData) func() {
	return func() {
		out := h.FlagSet().Output()
		fmt.Fprint(out, (&UsageError{of: h}).Error())
	}
}

// cmdBase carries what every subcommand shares.
type cmdBase struct {
	*root
	fs *flag.FlagSet
}

func newCmdBase(r *root, name string) cmdBase {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if r != nil && r.stderr != nil {
		fs.SetOutput(r.stderr)
	}
	return cmdBase{root: r, fs: fs}
}

func (c cmdBase) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c cmdBase) Program() string {
	program := "pairlabel"
	if c.root != nil {
		program = c.root.Program()
	}
	return strings.TrimSpace(program + " " + c.fs.Name())
}

func (r *root) Template() string {
	return "root.txt"
}

func (c *openCmd) Template() string {
	return "open.txt"
}

func (c *shapesCmd) Template() string {
	return "shapes.txt"
}

func (c *drawCmd) Template() string {
	return "draw.txt"
}

func (c *labelCmd) Template() string {
	return "label.txt"
}

func (c *colorCmd) Template() string {
	return "color.txt"
}

func (c *rowCmd) Template() string {
	return "row.txt"
}

func (c *visibilityCmd) Template() string {
	return "visible.txt"
}

func (c *matchCmd) Template() string {
	return "match.txt"
}

func (c *unmatchCmd) Template() string {
	return "unmatch.txt"
}

func (c *correspondencesCmd) Template() string {
	return "correspondences.txt"
}

func (c *renderCmd) Template() string {
	return "render.txt"
}

func (c *saveCmd) Template() string {
	return "save.txt"
}

func (c *interactiveCmd) Template() string {
	return "interactive.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (v *versionCmd) Template() string {
	return "version.txt"
}
