package scene

import "github.com/inamate/annotator/internal/document"

// Tool is the shape kind authored by presses on empty space.
type Tool = document.Kind

// Defaults are the style values new shapes are created with. They are
// injected at session start and changed through setter calls.
type Defaults struct {
	Pen           document.Color
	Alpha         uint8
	LineThickness int
	LineStyle     document.LineStyle
	ArrowHeadSize int
	BrushSize     int
	Filled        bool
	Text          document.TextProperties

	BoardBackground document.Color
	BoardPen        document.Color
	BoardText       document.TextProperties
}

// BuiltinDefaults returns the style used when no defaults file is given.
func BuiltinDefaults() Defaults {
	boardText := document.DefaultTextProperties()
	boardText.Size = 14
	return Defaults{
		Pen:             document.Red,
		Alpha:           255,
		LineThickness:   2,
		LineStyle:       document.LineSolid,
		ArrowHeadSize:   document.DefaultArrowHeadSize,
		BrushSize:       5,
		Filled:          true,
		Text:            document.DefaultTextProperties(),
		BoardBackground: document.White,
		BoardPen:        document.Black,
		BoardText:       boardText,
	}
}

// normalized clamps values a defaults file may get wrong.
func (d Defaults) normalized() Defaults {
	d.LineThickness = max(d.LineThickness, 1)
	d.BrushSize = max(d.BrushSize, 1)
	if d.ArrowHeadSize <= 0 {
		d.ArrowHeadSize = document.DefaultArrowHeadSize
	}
	if !d.LineStyle.Valid() {
		d.LineStyle = document.LineSolid
	}
	d.Text = d.Text.Style()
	d.BoardText = d.BoardText.Style()
	return d
}

// Board is the whiteboard mode state: an opaque or tinted background and
// its own pen and text defaults.
type Board struct {
	Enabled    bool
	Background document.Color
	Pen        document.Color
	Text       document.TextProperties
}
