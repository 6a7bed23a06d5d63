package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pairlabel/internal/appstate"
	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/input"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd keeps both documents open across commands. Besides every
// subcommand it understands pointer and key input routed through the same
// dispatcher a window would use.
type interactiveCmd struct {
	cmdBase
	execs      commandList
	dispatcher *input.Dispatcher
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	c := &interactiveCmd{cmdBase: newCmdBase(r, "interactive")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *interactiveCmd) Run() error {
	c.interactive = true
	c.console = newConsole(c.stdin, c.stdout)
	c.state = nil
	c.ensureState()

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(c.stdout, "Enter commands (type 'exit' to quit)")
	for {
		line, ok := c.console.readLine("> ")
		if !ok {
			break
		}
		done, err := c.executeLine(line)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
		}
		if done {
			break
		}
	}
	return c.console.in.Err()
}

// executeLine runs one command. done reports that the session should end.
func (c *interactiveCmd) executeLine(line string) (done bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	state := c.ensureState()
	switch args[0] {
	case "exit", "quit":
		if err := state.Close(); errors.Is(err, appstate.ErrCancelled) {
			return false, nil
		}
		return true, nil
	case "interactive":
		return false, nil
	case "mode":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: mode create|edit|match")
		}
		m, err := canvas.ParseMode(args[1])
		if err != nil {
			return false, err
		}
		state.SetMode(m)
		return false, nil
	case "focus":
		i, err := canvasArg(args[1:])
		if err != nil {
			return false, err
		}
		c.dispatch().Focus(i)
		return false, nil
	case "click":
		return false, c.pointer(args[1:], false)
	case "drag":
		return false, c.pointer(args[1:], true)
	case "key":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: key [ctrl+]NAME")
		}
		e, err := parseKey(args[1])
		if err != nil {
			return false, err
		}
		return false, c.dispatch().Key(e)
	case "colors":
		return false, ignoreCancel(state.ChooseDefaultColors())
	case "recolor":
		i, err := canvasArg(args[1:])
		if err != nil {
			return false, err
		}
		return false, ignoreCancel(state.SetShapeColors(i))
	case "select":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: select NAME")
		}
		return false, state.SelectCorrespondence(args[1])
	case "load":
		if len(args) < 2 || len(args) > 3 {
			return false, fmt.Errorf("usage: load CANVAS [FILE]")
		}
		i, err := canvasArg(args[1:2])
		if err != nil {
			return false, err
		}
		path := ""
		if len(args) == 3 {
			path = args[2]
		}
		return false, ignoreCancel(state.LoadFile(i, path))
	}
	return false, c.root.Run(args)
}

func (c *interactiveCmd) dispatch() *input.Dispatcher {
	if c.dispatcher == nil {
		c.dispatcher = input.New(c.ensureState())
	}
	return c.dispatcher
}

// pointer presses at the first point, moves through the rest and releases
// at the last. Points are image coordinates on the focused canvas.
func (c *interactiveCmd) pointer(args []string, drag bool) error {
	fs := flag.NewFlagSet("click", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	target := fs.Int("canvas", -1, "canvas to click on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || (drag && fs.NArg() < 2) {
		return fmt.Errorf("usage: click|drag [-canvas N] x,y [x,y...]")
	}
	d := c.dispatch()
	if *target >= 0 {
		d.Focus(*target)
	}
	var pts []mouse.Event
	for _, arg := range fs.Args() {
		p, err := appstate.ParsePoint(arg)
		if err != nil {
			return err
		}
		pts = append(pts, mouse.Event{X: float32(p.X), Y: float32(p.Y), Button: mouse.ButtonLeft})
	}
	if !drag {
		for _, e := range pts {
			if err := press(d, e); err != nil {
				return err
			}
		}
		return nil
	}
	first, last := pts[0], pts[len(pts)-1]
	first.Direction = mouse.DirPress
	if err := d.Mouse(first); err != nil {
		return err
	}
	for _, e := range pts[1:] {
		e.Direction, e.Button = mouse.DirNone, mouse.ButtonNone
		if err := d.Mouse(e); err != nil {
			return err
		}
	}
	last.Direction = mouse.DirRelease
	return d.Mouse(last)
}

func press(d *input.Dispatcher, e mouse.Event) error {
	e.Direction = mouse.DirPress
	if err := d.Mouse(e); err != nil {
		return err
	}
	e.Direction = mouse.DirRelease
	return d.Mouse(e)
}

func canvasArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a canvas number")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= appstate.NumCanvases {
		return 0, fmt.Errorf("canvas must be 0 or 1, got %q", args[0])
	}
	return i, nil
}

var keyNames = map[string]key.Code{
	"enter":     key.CodeReturnEnter,
	"return":    key.CodeReturnEnter,
	"escape":    key.CodeEscape,
	"esc":       key.CodeEscape,
	"tab":       key.CodeTab,
	"delete":    key.CodeDeleteForward,
	"backspace": key.CodeDeleteBackspace,
}

// parseKey reads names such as "enter", "ctrl+n" or "shift+tab".
func parseKey(spec string) (key.Event, error) {
	e := key.Event{Direction: key.DirPress}
	parts := strings.Split(strings.ToLower(spec), "+")
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl", "control":
			e.Modifiers |= key.ModControl
		case "shift":
			e.Modifiers |= key.ModShift
		case "alt":
			e.Modifiers |= key.ModAlt
		default:
			return key.Event{}, fmt.Errorf("unknown modifier %q", mod)
		}
	}
	name := parts[len(parts)-1]
	if code, ok := keyNames[name]; ok {
		e.Code = code
		return e, nil
	}
	if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		e.Code = key.CodeA + key.Code(name[0]-'a')
		e.Rune = rune(name[0])
		return e, nil
	}
	return key.Event{}, fmt.Errorf("unknown key %q", spec)
}

func ignoreCancel(err error) error {
	if errors.Is(err, appstate.ErrCancelled) {
		return nil
	}
	return err
}
