// Package imagefile decodes the source images that annotations are drawn on.
// The raw encoded bytes are kept next to the decoded bitmap so label files
// can embed the original image without re-encoding it.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode reports image bytes that no registered decoder accepts.
var ErrDecode = errors.New("image data could not be decoded")

// Extensions lists the file suffixes recognised as images.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Image pairs encoded bytes with their decoded bitmap.
type Image struct {
	Path   string
	Data   []byte
	Bitmap image.Image
	Format string
}

// Size returns the intrinsic pixel dimensions.
func (i *Image) Size() image.Point {
	if i == nil || i.Bitmap == nil {
		return image.Point{}
	}
	return i.Bitmap.Bounds().Size()
}

// Decode decodes data with any registered image decoder.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &Image{Data: data, Bitmap: img, Format: format}, nil
}

// Read loads and decodes the image stored at path.
func Read(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img.Path = path
	return img, nil
}

// IsImageFile reports whether path carries a known image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
