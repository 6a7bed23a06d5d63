package config

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/example/pairlabel/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Load bool
	Copy bool
}

// Config holds the application configuration.
type Config struct {
	Theme string
	// Epsilon is the hit-test tolerance in screen pixels; zero keeps the
	// built-in value.
	Epsilon float64
	// LineColor and FillColor override the theme's document defaults when set.
	LineColor *color.RGBA
	FillColor *color.RGBA
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Default to empty to allow fallback to Env/Default
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.Epsilon > 0 {
		fmt.Fprintf(&sb, "epsilon = %s\n", strconv.FormatFloat(c.Epsilon, 'g', -1, 64))
	}
	if c.LineColor != nil {
		fmt.Fprintf(&sb, "line_color = %s\n", theme.Hex(*c.LineColor))
	}
	if c.FillColor != nil {
		fmt.Fprintf(&sb, "fill_color = %s\n", theme.Hex(*c.FillColor))
	}
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "load = %v\n", c.Notify.Load)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_, _ = c.Themes[name].WriteTo(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}
