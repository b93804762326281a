package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"

	"github.com/RaduRS/automan-sub000/internal/composition"
)

// Options sizes the surface and styles captions.
type Options struct {
	Width        int
	Height       int
	FontSize     float64
	MinFontSize  float64
	BottomMargin float64
	Highlight    color.RGBA
}

var (
	captionText     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	captionBackdrop = color.RGBA{A: 0x99}
)

// Surface is the frame buffer for one render.
type Surface struct {
	opts  Options
	frame *image.RGBA
	bold  *faceCache
}

// New allocates a surface.
func New(opts Options) (*Surface, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.FontSize <= 0 {
		return nil, errors.New("canvas: font size must be positive")
	}
	if opts.MinFontSize <= 0 || opts.MinFontSize > opts.FontSize {
		opts.MinFontSize = opts.FontSize
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("canvas: load fonts: %w", err)
	}
	return &Surface{
		opts:  opts,
		frame: image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		bold:  newFaceCache(boldFont),
	}, nil
}

// Frame returns the frame buffer. Its Pix slice is tightly packed RGBA.
func (s *Surface) Frame() *image.RGBA { return s.frame }

// Close releases cached font faces.
func (s *Surface) Close() { s.bold.close() }

// Placeholder builds the stand-in layer for scene index: a flat fill with a
// "Scene N" label.
func (s *Surface) Placeholder(index int, zoom float64) (*Layer, error) {
	layer := SolidLayer(PlaceholderColor, s.opts.Width, s.opts.Height, zoom)
	face, err := s.bold.face(s.opts.FontSize)
	if err != nil {
		return nil, err
	}
	label := fmt.Sprintf("Scene %d", index+1)
	b := layer.Bounds()
	x := (b.Dx() - measure(face, label)) / 2
	m := face.Metrics()
	baseline := b.Dy()/2 + (m.Ascent.Ceil()-m.Descent.Ceil())/2
	drawString(layer.img, face, captionText, x, baseline, label)
	return layer, nil
}

// Draw composes the frame for st. layers is indexed by scene.
func (s *Surface) Draw(st composition.State, layers []*Layer) error {
	if st.SceneIndex < 0 || st.SceneIndex >= len(layers) || layers[st.SceneIndex] == nil {
		return fmt.Errorf("canvas: no layer for scene %d", st.SceneIndex)
	}
	draw.Draw(s.frame, s.frame.Bounds(), image.Black, image.Point{}, draw.Src)

	cf := st.Crossfade
	if cf.Active && cf.PreviousScene >= 0 && cf.PreviousScene < len(layers) && layers[cf.PreviousScene] != nil {
		s.blend(layers[cf.PreviousScene], cf.PreviousOpacity, st.Pan)
		s.blend(layers[st.SceneIndex], cf.CurrentOpacity, st.Pan)
	} else {
		s.blend(layers[st.SceneIndex], 1, st.Pan)
	}

	if st.Caption.Visible() {
		return s.drawCaption(st.Caption)
	}
	return nil
}

func (s *Surface) panOrigin(layer *Layer, pan composition.Pan) image.Point {
	b := layer.Bounds()
	overflowX := max(b.Dx()-s.opts.Width, 0)
	overflowY := max(b.Dy()-s.opts.Height, 0)
	half := float64(overflowX) / 2
	x := int(math.Round(half + pan.Offset*half))
	return image.Pt(min(max(x, 0), overflowX), overflowY/2).Add(b.Min)
}

func (s *Surface) blend(layer *Layer, opacity float64, pan composition.Pan) {
	if opacity <= 0 {
		return
	}
	origin := s.panOrigin(layer, pan)
	if opacity >= 1 {
		draw.Draw(s.frame, s.frame.Bounds(), layer.img, origin, draw.Src)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 0xff))})
	draw.DrawMask(s.frame, s.frame.Bounds(), layer.img, origin, mask, image.Point{}, draw.Over)
}

func (s *Surface) drawCaption(c composition.Caption) error {
	lines := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		words := make([]string, len(line))
		for j, w := range line {
			words[j] = w.Text
		}
		lines[i] = strings.Join(words, " ")
	}

	maxWidth := int(float64(s.opts.Width) * 0.9)
	size := s.opts.FontSize
	face, err := s.bold.face(size)
	if err != nil {
		return err
	}
	for widest(face, lines) > maxWidth && size > s.opts.MinFontSize {
		size = max(size-2, s.opts.MinFontSize)
		if face, err = s.bold.face(size); err != nil {
			return err
		}
	}

	m := face.Metrics()
	lineHeight := int(math.Ceil(float64(m.Height.Ceil()) * 1.15))
	blockHeight := lineHeight * len(lines)
	bottom := s.opts.Height - int(s.opts.BottomMargin*float64(s.opts.Height))
	top := bottom - blockHeight
	pad := lineHeight / 4

	blockWidth := min(widest(face, lines), s.opts.Width)
	backdrop := image.Rect(
		(s.opts.Width-blockWidth)/2-pad, top-pad,
		(s.opts.Width+blockWidth)/2+pad, bottom+pad,
	).Intersect(s.frame.Bounds())
	draw.Draw(s.frame, backdrop, image.NewUniform(captionBackdrop), image.Point{}, draw.Over)

	space := measure(face, " ")
	for i, line := range c.Lines {
		x := (s.opts.Width - measure(face, lines[i])) / 2
		baseline := top + i*lineHeight + m.Ascent.Ceil()
		for _, w := range line {
			col := captionText
			if w.Highlighted {
				col = s.opts.Highlight
			}
			drawString(s.frame, face, col, x, baseline, w.Text)
			x += measure(face, w.Text) + space
		}
	}
	return nil
}

func widest(face font.Face, lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, measure(face, line))
	}
	return w
}
