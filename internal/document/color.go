package document

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a straight (non-premultiplied) RGBA color.
type Color struct {
	R, G, B, A uint8
}

var (
	Black = Color{0, 0, 0, 255}
	White = Color{255, 255, 255, 255}
	Red   = Color{255, 0, 0, 255}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// WithAlpha returns c with its alpha channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Hex formats c as #AARRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

// CSS formats c as an rgba() string for canvas renderers.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B,
		strconv.FormatFloat(float64(c.A)/255, 'f', -1, 64))
}

// ParseColor accepts #RGB, #RRGGBB, #AARRGGBB and SVG color names.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		name := strings.ToLower(s)
		if name == "transparent" {
			return Color{}, nil
		}
		rgba, ok := colornames.Map[name]
		if !ok {
			return Color{}, fmt.Errorf("unknown color name %q", s)
		}
		return Color{rgba.R, rgba.G, rgba.B, rgba.A}, nil
	}

	hex := s[1:]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	switch len(hex) {
	case 3:
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return Color{r * 17, g * 17, b * 17, 255}, nil
	case 6:
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
	case 8:
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), uint8(v >> 24)}, nil
	}
	return Color{}, fmt.Errorf("color %q: want 3, 6 or 8 hex digits", s)
}

// Palette is the digit shortcut palette, indexed by digit.
var Palette = [10]Color{
	named("black"), named("white"), named("cyan"), named("gray"), named("red"),
	named("orange"), named("yellow"), named("green"), named("blue"), named("magenta"),
}

func named(name string) Color {
	c := colornames.Map[name]
	return Color{c.R, c.G, c.B, c.A}
}
