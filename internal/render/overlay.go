// Package render draws a canvas and its shapes into a raster image.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/shape"
	"github.com/example/pairlabel/internal/theme"
)

// emptyMargin pads the output when there is no background image.
const emptyMargin = 10

// Scene is everything drawn for one canvas.
type Scene struct {
	Background image.Image
	Shapes     []*shape.Shape
	// Current is the shape being drawn. It is stroked as an open polyline.
	Current   *shape.Shape
	Selection canvas.Selection
	Scale     float64
	// LineColor and FillColor apply to shapes without their own colors. The
	// zero value falls back to the theme.
	LineColor color.RGBA
	FillColor color.RGBA
}

// FromCanvas collects the visible state of c.
func FromCanvas(c *canvas.Canvas, line, fill color.RGBA) Scene {
	sc := Scene{
		Current:   c.Current(),
		Selection: c.Selection(),
		Scale:     c.Scale,
		LineColor: line,
		FillColor: fill,
	}
	if c.Image != nil {
		sc.Background = c.Image.Bitmap
	}
	for _, s := range c.Shapes() {
		if c.Visible(s) {
			sc.Shapes = append(sc.Shapes, s)
		}
	}
	return sc
}

// Options controls stroke geometry and decorations.
type Options struct {
	Theme        *theme.Theme
	LineWidth    float64
	VertexRadius float64
	GlowRadius   int
	Labels       bool
}

// DefaultOptions returns the options used by the render command.
func DefaultOptions() Options {
	return Options{
		Theme:        theme.Default(),
		LineWidth:    2,
		VertexRadius: 3,
		GlowRadius:   4,
		Labels:       true,
	}
}

// Render draws sc onto a new image sized to the scaled background. Without a
// background the image is just large enough to hold the shapes.
func Render(sc Scene, opts Options) *image.RGBA {
	if opts.Theme == nil {
		opts.Theme = theme.Default()
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 1
	}
	scale := sc.Scale
	if scale <= 0 {
		scale = 1
	}
	if (sc.LineColor == color.RGBA{}) {
		sc.LineColor = opts.Theme.LineColor
	}
	if (sc.FillColor == color.RGBA{}) {
		sc.FillColor = opts.Theme.FillColor
	}

	dst := image.NewRGBA(image.Rectangle{Max: outputSize(sc, scale)})
	if sc.Background != nil {
		bg := sc.Background
		if scale != 1 {
			bg = imaging.Resize(bg, dst.Rect.Dx(), dst.Rect.Dy(), imaging.Lanczos)
		}
		draw.Draw(dst, dst.Rect, bg, bg.Bounds().Min, draw.Src)
	}

	p := painter{dst: dst, scale: scale, opts: opts}
	for _, s := range sc.Shapes {
		p.drawShape(sc, s)
	}
	if cur := sc.Current; cur != nil && cur.Len() > 0 {
		p.stroke(openSegments(cur.Points), opts.LineWidth, sc.LineColor)
		for _, pt := range cur.Points {
			p.disc(pt, opts.VertexRadius, opts.Theme.VertexFill)
		}
	}
	return dst
}

func outputSize(sc Scene, scale float64) image.Point {
	if sc.Background != nil {
		b := sc.Background.Bounds()
		return image.Pt(max(int(math.Round(float64(b.Dx())*scale)), 1), max(int(math.Round(float64(b.Dy())*scale)), 1))
	}
	var hi shape.Point
	grow := func(s *shape.Shape) {
		for _, pt := range s.Points {
			hi.X = math.Max(hi.X, pt.X)
			hi.Y = math.Max(hi.Y, pt.Y)
		}
	}
	for _, s := range sc.Shapes {
		grow(s)
	}
	if sc.Current != nil {
		grow(sc.Current)
	}
	return image.Pt(int(math.Ceil(hi.X*scale))+emptyMargin, int(math.Ceil(hi.Y*scale))+emptyMargin)
}

type painter struct {
	dst   *image.RGBA
	scale float64
	opts  Options
}

func (p painter) at(pt shape.Point) (float32, float32) {
	return float32(pt.X * p.scale), float32(pt.Y * p.scale)
}

func (p painter) rasterizer() *vector.Rasterizer {
	return vector.NewRasterizer(p.dst.Rect.Dx(), p.dst.Rect.Dy())
}

func (p painter) drawShape(sc Scene, s *shape.Shape) {
	th := p.opts.Theme
	selected := sc.Selection.Shape == s
	line, fill := sc.LineColor, sc.FillColor
	if s.LineColor != nil {
		line = *s.LineColor
	}
	if s.FillColor != nil {
		fill = *s.FillColor
	}
	if selected {
		line, fill = th.SelectLineColor, th.SelectFillColor
	}

	segs := closedSegments(s.Points)
	if !s.Closed {
		segs = openSegments(s.Points)
	}
	if selected && p.opts.GlowRadius > 0 {
		mask := image.NewAlpha(p.dst.Rect)
		z := p.rasterizer()
		addStrokes(z, p, segs, p.opts.LineWidth+float64(p.opts.GlowRadius))
		z.Draw(mask, mask.Rect, image.Opaque, image.Point{})
		glow(p.dst, mask, p.opts.GlowRadius, th.Glow)
	}
	if s.Closed && s.Len() >= shape.MinPoints {
		p.fill(s.Points, fill)
	}
	p.stroke(segs, p.opts.LineWidth, line)

	var matched [][2]shape.Point
	for _, edge := range s.Correspondence {
		if a, b, ok := s.Edge(edge); ok {
			matched = append(matched, [2]shape.Point{a, b})
		}
	}
	p.stroke(matched, p.opts.LineWidth*1.5, th.MatchedEdge)

	if selected && sc.Selection.HasEdge() {
		if a, b, ok := s.Edge(sc.Selection.Edge); ok {
			p.stroke([][2]shape.Point{{a, b}}, p.opts.LineWidth*2, th.SelectedEdge)
		}
	}
	if selected {
		for i, pt := range s.Points {
			c := th.VertexFill
			if sc.Selection.HasVertex() && sc.Selection.Vertex == i {
				c = th.HighlightVertexFill
			}
			p.disc(pt, p.opts.VertexRadius, c)
		}
	}
	if p.opts.Labels && s.Label != "" {
		lo, _ := s.BoundingBox()
		p.label(lo, s.Label)
	}
}

func (p painter) fill(pts []shape.Point, c color.RGBA) {
	if c.A == 0 {
		return
	}
	z := p.rasterizer()
	z.MoveTo(p.at(pts[0]))
	for _, pt := range pts[1:] {
		z.LineTo(p.at(pt))
	}
	z.ClosePath()
	z.Draw(p.dst, p.dst.Rect, image.NewUniform(c), image.Point{})
}

func (p painter) stroke(segs [][2]shape.Point, width float64, c color.RGBA) {
	if len(segs) == 0 || c.A == 0 {
		return
	}
	z := p.rasterizer()
	addStrokes(z, p, segs, width)
	z.Draw(p.dst, p.dst.Rect, image.NewUniform(c), image.Point{})
}

// addStrokes adds one quad per segment. All quads share a winding direction
// so overlaps at joints do not cancel.
func addStrokes(z *vector.Rasterizer, p painter, segs [][2]shape.Point, width float64) {
	half := width / 2
	for _, seg := range segs {
		ax, ay := seg[0].X*p.scale, seg[0].Y*p.scale
		bx, by := seg[1].X*p.scale, seg[1].Y*p.scale
		dx, dy := bx-ax, by-ay
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// extend the ends by half the width so corners meet
		ux, uy := dx/l*half, dy/l*half
		nx, ny := -uy, ux
		ax, ay, bx, by = ax-ux, ay-uy, bx+ux, by+uy
		z.MoveTo(float32(ax+nx), float32(ay+ny))
		z.LineTo(float32(bx+nx), float32(by+ny))
		z.LineTo(float32(bx-nx), float32(by-ny))
		z.LineTo(float32(ax-nx), float32(ay-ny))
		z.ClosePath()
	}
}

func (p painter) disc(center shape.Point, r float64, c color.RGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	const sides = 16
	cx, cy := center.X*p.scale, center.Y*p.scale
	z := p.rasterizer()
	z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / sides
		z.LineTo(float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a)))
	}
	z.ClosePath()
	z.Draw(p.dst, p.dst.Rect, image.NewUniform(c), image.Point{})
}

func (p painter) label(at shape.Point, text string) {
	th := p.opts.Theme
	face := basicfont.Face7x13
	x, y := int(at.X*p.scale), int(at.Y*p.scale)
	w := font.MeasureString(face, text).Ceil()
	box := image.Rect(x, y-face.Height-2, x+w+4, y)
	draw.Draw(p.dst, box, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
	d := &font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(th.LabelText),
		Face: face,
		Dot:  fixed.P(x+2, y-face.Descent-1),
	}
	d.DrawString(text)
}

func openSegments(pts []shape.Point) [][2]shape.Point {
	var segs [][2]shape.Point
	for i := 1; i < len(pts); i++ {
		segs = append(segs, [2]shape.Point{pts[i-1], pts[i]})
	}
	return segs
}

func closedSegments(pts []shape.Point) [][2]shape.Point {
	segs := openSegments(pts)
	if len(pts) > 2 {
		segs = append(segs, [2]shape.Point{pts[len(pts)-1], pts[0]})
	}
	return segs
}
