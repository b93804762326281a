package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce sync.Once
	fontsErr  error
	boldFont  *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// faceCache keeps one face per size. Faces are not safe for concurrent use
// and a Surface belongs to a single render.
type faceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func newFaceCache(f *opentype.Font) *faceCache {
	return &faceCache{font: f, faces: make(map[float64]font.Face)}
}

func (c *faceCache) face(size float64) (font.Face, error) {
	size = math.Round(size)
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %.0fpt: %w", size, err)
	}
	c.faces[size] = face
	return face, nil
}

func (c *faceCache) close() {
	for _, face := range c.faces {
		_ = face.Close()
	}
	clear(c.faces)
}

func drawString(dst *image.RGBA, face font.Face, col color.Color, x, baseline int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

func measure(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}
