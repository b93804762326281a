package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// PlaceholderColor fills scenes whose image could not be loaded.
var PlaceholderColor = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}

// ParseHex parses #rrggbb or #rrggbbaa.
func ParseHex(value string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", value)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", value, err)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}
