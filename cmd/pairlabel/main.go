package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/config"
	"github.com/example/pairlabel/internal/notify"
	"github.com/example/pairlabel/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	state       *appstate.AppState
	notifier    *notify.Notifier
	config      *config.Config
	saveAlerts  bool
	loadAlerts  bool
	copyAlerts  bool
	themeName   string
	activeTheme *theme.Theme

	// console answers prompts in interactive mode. One-shot commands leave it
	// nil so every prompt is cancelled.
	console     *console
	interactive bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWith(cfg, notify.New(notify.LoadPreferences()))
}

func newRootWith(cfg *config.Config, notifier *notify.Notifier) *root {
	r := &root{
		fs:       flag.NewFlagSet("pairlabel", flag.ContinueOnError),
		program:  "pairlabel",
		notifier: notifier,
		config:   cfg,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.SetOutput(r.stderr)
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a file")
	r.fs.BoolVar(&r.loadAlerts, "notify-load", cfg.Notify.Load, "show a desktop notification after opening a file")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventLoad, r.loadAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "open":
		cmd, err = parseOpenCmd(subArgs, r)
	case "shapes":
		cmd, err = parseShapesCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "label":
		cmd, err = parseLabelCmd(subArgs, r)
	case "color":
		cmd, err = parseColorCmd(subArgs, r)
	case "delete":
		cmd, err = parseDeleteCmd(subArgs, r)
	case "duplicate":
		cmd, err = parseDuplicateCmd(subArgs, r)
	case "hide":
		cmd, err = parseVisibilityCmd("hide", false, subArgs, r)
	case "show":
		cmd, err = parseVisibilityCmd("show", true, subArgs, r)
	case "match":
		cmd, err = parseMatchCmd(subArgs, r)
	case "unmatch":
		cmd, err = parseUnmatchCmd(subArgs, r)
	case "correspondences":
		cmd, err = parseCorrespondencesCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "save":
		cmd, err = parseSaveCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the theme named on the command line, then in
// PAIRLABEL_THEME, then in the config file.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("PAIRLABEL_THEME")
	}
	if name == "" {
		name = r.config.Theme
	}
	if t, ok := r.config.Themes[name]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "default" {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

func (r *root) currentTheme() *theme.Theme {
	if r.activeTheme == nil {
		r.activeTheme = r.resolveTheme()
	}
	return r.activeTheme
}

// ensureState creates the shared controller on first use. Document default
// colors come from the config file when set, otherwise from the theme.
func (r *root) ensureState() *appstate.AppState {
	if r.state != nil {
		return r.state
	}
	t := r.currentTheme()
	line, fill := t.LineColor, t.FillColor
	if r.config.LineColor != nil {
		line = *r.config.LineColor
	}
	if r.config.FillColor != nil {
		fill = *r.config.FillColor
	}
	opts := []appstate.Option{appstate.WithLineColor(line), appstate.WithFillColor(fill)}
	if r.config.Epsilon > 0 {
		opts = append(opts, appstate.WithEpsilon(r.config.Epsilon))
	}
	if r.notifier != nil {
		opts = append(opts, appstate.WithNotifier(r.notifier))
	}
	if r.console != nil {
		opts = append(opts,
			appstate.WithPrompter(r.console),
			appstate.WithConfirmer(r.console),
			appstate.WithColorPicker(r.console),
			appstate.WithFileChooser(r.console),
		)
	}
	r.state = appstate.New(opts...)
	return r.state
}

// persist saves after a one-shot mutation. Interactive sessions save on
// request only.
func (r *root) persist() error {
	if r.interactive {
		return nil
	}
	written, err := r.state.Save()
	for _, path := range written {
		fmt.Fprintf(r.stderr, "saved %s\n", path)
	}
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Fprintln(r.stderr, "nothing saved: no canvas has both an image and shapes")
	}
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail, img)
}
