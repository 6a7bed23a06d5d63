package main

import (
	"flag"
	"fmt"

	"github.com/example/pairlabel/internal/appstate"
)

// docFlags names the files loaded before a command runs. In interactive mode
// they may be omitted and the already open documents are used.
type docFlags struct {
	a      string
	b      string
	canvas int
}

func (d *docFlags) register(fs *flag.FlagSet, withCanvas bool) {
	fs.StringVar(&d.a, "a", "", "image or label file for the first canvas")
	fs.StringVar(&d.b, "b", "", "image or label file for the second canvas")
	if withCanvas {
		fs.IntVar(&d.canvas, "canvas", 0, "canvas to operate on (0 or 1)")
	}
}

func (d *docFlags) open(r *root) (*appstate.AppState, error) {
	if d.canvas < 0 || d.canvas >= appstate.NumCanvases {
		return nil, fmt.Errorf("canvas must be 0 or 1, got %d", d.canvas)
	}
	state := r.ensureState()
	for i, path := range []string{d.a, d.b} {
		if path == "" {
			continue
		}
		if err := state.LoadFile(i, path); err != nil {
			return nil, err
		}
	}
	return state, nil
}
