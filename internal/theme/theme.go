package theme

import (
	"image/color"
)

// Theme defines the colors used to draw annotations.
type Theme struct {
	Name string

	// Shapes without a per-shape override
	LineColor color.RGBA
	FillColor color.RGBA

	// Selection
	SelectLineColor color.RGBA
	SelectFillColor color.RGBA
	SelectedEdge    color.RGBA // Edge picked in match mode

	// Vertices
	VertexFill          color.RGBA
	HighlightVertexFill color.RGBA // Vertex under the pointer or being dragged

	// Correspondences
	MatchedEdge color.RGBA

	// Labels
	LabelText       color.RGBA
	LabelBackground color.RGBA

	// Glow drawn around the selected shape
	Glow color.RGBA
}

// Default returns the built-in theme.
func Default() *Theme {
	return &Theme{
		Name:                "Default",
		LineColor:           color.RGBA{0, 255, 0, 128},
		FillColor:           color.RGBA{255, 0, 0, 128},
		SelectLineColor:     color.RGBA{255, 255, 255, 255},
		SelectFillColor:     color.RGBA{0, 128, 255, 155},
		SelectedEdge:        color.RGBA{255, 255, 0, 255},
		VertexFill:          color.RGBA{0, 255, 0, 255},
		HighlightVertexFill: color.RGBA{255, 0, 0, 255},
		MatchedEdge:         color.RGBA{255, 0, 255, 255},
		LabelText:           color.RGBA{255, 255, 255, 255},
		LabelBackground:     color.RGBA{0, 0, 0, 160},
		Glow:                color.RGBA{255, 255, 255, 200},
	}
}
