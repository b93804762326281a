package canvas

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Layer is a scene image pre-scaled to cover the zoomed frame.
type Layer struct {
	img *image.RGBA
}

// Bounds returns the layer size.
func (l *Layer) Bounds() image.Rectangle { return l.img.Bounds() }

// Image exposes the layer pixels.
func (l *Layer) Image() *image.RGBA { return l.img }

func layerSize(width, height int, zoom float64) (int, int) {
	zoom = max(zoom, 1)
	return int(math.Ceil(float64(width) * zoom)), int(math.Ceil(float64(height) * zoom))
}

// NewLayer scales src to cover width*zoom by height*zoom, cropping the
// centre of whichever axis overflows.
func NewLayer(src image.Image, width, height int, zoom float64) *Layer {
	lw, lh := layerSize(width, height, zoom)
	dst := image.NewRGBA(image.Rect(0, 0, lw, lh))

	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	scale := max(float64(lw)/sw, float64(lh)/sh)
	cropW := min(sw, float64(lw)/scale)
	cropH := min(sh, float64(lh)/scale)
	x0 := sb.Min.X + int(math.Round((sw-cropW)/2))
	y0 := sb.Min.Y + int(math.Round((sh-cropH)/2))
	crop := image.Rect(x0, y0, x0+int(math.Round(cropW)), y0+int(math.Round(cropH)))

	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return &Layer{img: dst}
}

// SolidLayer returns a single-colour layer of the zoomed frame size.
func SolidLayer(fill color.Color, width, height int, zoom float64) *Layer {
	lw, lh := layerSize(width, height, zoom)
	dst := image.NewRGBA(image.Rect(0, 0, lw, lh))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{}, xdraw.Src)
	return &Layer{img: dst}
}
