package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// SideBySide places images left to right with gap pixels between them. Nil
// entries are skipped.
func SideBySide(gap int, imgs ...image.Image) *image.NRGBA {
	w, h := 0, 0
	n := 0
	for _, img := range imgs {
		if img == nil {
			continue
		}
		b := img.Bounds()
		if n > 0 {
			w += gap
		}
		w += b.Dx()
		h = max(h, b.Dy())
		n++
	}
	out := imaging.New(max(w, 1), max(h, 1), color.NRGBA{})
	x := 0
	for _, img := range imgs {
		if img == nil {
			continue
		}
		out = imaging.Paste(out, img, image.Pt(x, 0))
		x += img.Bounds().Dx() + gap
	}
	return out
}

// Save writes img to path. The format follows the file extension.
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
