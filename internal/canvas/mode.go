package canvas

import (
	"fmt"
	"strings"
)

// Mode is the mutually exclusive editing mode of a canvas.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeMatch
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeMatch:
		return "match"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return ModeCreate, nil
	case "edit":
		return ModeEdit, nil
	case "match":
		return ModeMatch, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
