// Package textlayout measures text blocks with the Go font family so text
// shapes can be sized to their contents.
package textlayout

import (
	"log/slog"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/annotator/internal/document"
)

// DPI maps point sizes one to one onto scene units.
const DPI = 72

type faceKey struct {
	size   int
	bold   bool
	italic bool
}

// Measurer lays out text properties and caches one face per size and
// style. Font families other than Go fall back to the Go faces. Not safe
// for concurrent use.
type Measurer struct {
	regular    *opentype.Font
	bold       *opentype.Font
	italic     *opentype.Font
	boldItalic *opentype.Font
	cache      map[faceKey]font.Face
}

// NewMeasurer parses the embedded Go fonts. A font that fails to parse is
// replaced by the fixed 7x13 face.
func NewMeasurer() *Measurer {
	return &Measurer{
		regular:    parse("regular", goregular.TTF),
		bold:       parse("bold", gobold.TTF),
		italic:     parse("italic", goitalic.TTF),
		boldItalic: parse("bold italic", gobolditalic.TTF),
		cache:      map[faceKey]font.Face{},
	}
}

func parse(name string, ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		slog.Warn("parse go font", "face", name, "error", err)
		return nil
	}
	return f
}

func (m *Measurer) face(size int, bold, italic bool) font.Face {
	key := faceKey{size: max(size, 1), bold: bold, italic: italic}
	if f, ok := m.cache[key]; ok {
		return f
	}
	var base *opentype.Font
	switch {
	case bold && italic:
		base = m.boldItalic
	case bold:
		base = m.bold
	case italic:
		base = m.italic
	default:
		base = m.regular
	}
	if base == nil {
		return basicfont.Face7x13
	}
	f, err := opentype.NewFace(base, &opentype.FaceOptions{Size: float64(key.size), DPI: DPI, Hinting: font.HintingFull})
	if err != nil {
		slog.Warn("create font face", "size", key.size, "error", err)
		return basicfont.Face7x13
	}
	m.cache[key] = f
	return f
}

// Measure returns the width of the widest line and the total height of
// all lines. Empty text measures as one empty line.
func (m *Measurer) Measure(tp document.TextProperties) (width, height float64) {
	f := m.face(tp.Size, tp.Bold, tp.Italic)
	lines := strings.Split(tp.Text, "\n")

	var widest fixed.Int26_6
	for _, line := range lines {
		widest = max(widest, font.MeasureString(f, line))
	}
	lineHeight := f.Metrics().Height
	return fixedToFloat(widest), fixedToFloat(lineHeight) * float64(len(lines))
}

// Close releases the cached faces.
func (m *Measurer) Close() error {
	for k, f := range m.cache {
		f.Close()
		delete(m.cache, k)
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
