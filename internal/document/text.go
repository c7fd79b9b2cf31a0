package document

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// TextProperties is owned by a single Text shape; copy with Clone.
type TextProperties struct {
	Text       string
	Font       string
	Size       int
	Bold       bool
	Italic     bool
	Underline  bool
	Strikeout  bool
	Color      Color
	Background *Color // nil means transparent
	Alignment  Alignment
}

// DefaultTextProperties returns the built-in text style.
func DefaultTextProperties() TextProperties {
	return TextProperties{
		Font:      "Arial",
		Size:      12,
		Color:     Black,
		Alignment: AlignLeft,
	}
}

// Clone returns a copy that shares no memory with tp.
func (tp TextProperties) Clone() TextProperties {
	if tp.Background != nil {
		bg := *tp.Background
		tp.Background = &bg
	}
	return tp
}

// Equal reports whether both property sets render identically.
func (tp TextProperties) Equal(o TextProperties) bool {
	if (tp.Background == nil) != (o.Background == nil) {
		return false
	}
	if tp.Background != nil && *tp.Background != *o.Background {
		return false
	}
	a, b := tp, o
	a.Background, b.Background = nil, nil
	return a == b
}

// Style returns the properties with the text itself cleared, as kept for
// text defaults.
func (tp TextProperties) Style() TextProperties {
	tp = tp.Clone()
	tp.Text = ""
	return tp
}
