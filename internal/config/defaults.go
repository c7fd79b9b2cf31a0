package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/scene"
)

// TextDefaults is the text style section of a defaults file.
type TextDefaults struct {
	Font       string `yaml:"font"`
	Size       int    `yaml:"size"`
	Bold       bool   `yaml:"bold"`
	Italic     bool   `yaml:"italic"`
	Underline  bool   `yaml:"underline"`
	Strikeout  bool   `yaml:"strikeout"`
	Color      string `yaml:"color"`
	Background string `yaml:"background,omitempty"`
	Alignment  string `yaml:"alignment"`
}

// BoardDefaults is the board mode section of a defaults file.
type BoardDefaults struct {
	Background string       `yaml:"background"`
	Pen        string       `yaml:"pen"`
	Text       TextDefaults `yaml:"text"`
}

// DefaultsFile is the YAML layout of the style defaults. Keys left out of
// a file keep their built-in values.
type DefaultsFile struct {
	Pen           string        `yaml:"pen"`
	Alpha         int           `yaml:"alpha"`
	LineThickness int           `yaml:"line_thickness"`
	LineStyle     string        `yaml:"line_style"`
	ArrowHeadSize int           `yaml:"arrow_head_size"`
	BrushSize     int           `yaml:"brush_size"`
	Filled        bool          `yaml:"filled"`
	Text          TextDefaults  `yaml:"text"`
	Board         BoardDefaults `yaml:"board"`
}

// LoadDefaults reads a style defaults file. An empty path or a missing file
// yields the built-in defaults.
func LoadDefaults(path string) (scene.Defaults, error) {
	if path == "" {
		return scene.BuiltinDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no defaults file, using built-in style", "path", path)
		return scene.BuiltinDefaults(), nil
	}
	if err != nil {
		return scene.Defaults{}, fmt.Errorf("read defaults: %w", err)
	}
	d, err := ParseDefaults(data)
	if err != nil {
		return scene.Defaults{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDefaults decodes a defaults file over the built-in defaults.
func ParseDefaults(data []byte) (scene.Defaults, error) {
	f := FileFromDefaults(scene.BuiltinDefaults())
	if err := yaml.Unmarshal(data, &f); err != nil {
		return scene.Defaults{}, fmt.Errorf("parse defaults: %w", err)
	}
	return f.Defaults()
}

// MarshalDefaults renders d in the defaults file layout.
func MarshalDefaults(d scene.Defaults) ([]byte, error) {
	return yaml.Marshal(FileFromDefaults(d))
}

// FileFromDefaults converts d to its file form.
func FileFromDefaults(d scene.Defaults) DefaultsFile {
	return DefaultsFile{
		Pen:           d.Pen.Hex(),
		Alpha:         int(d.Alpha),
		LineThickness: d.LineThickness,
		LineStyle:     d.LineStyle.String(),
		ArrowHeadSize: d.ArrowHeadSize,
		BrushSize:     d.BrushSize,
		Filled:        d.Filled,
		Text:          textToFile(d.Text),
		Board: BoardDefaults{
			Background: d.BoardBackground.Hex(),
			Pen:        d.BoardPen.Hex(),
			Text:       textToFile(d.BoardText),
		},
	}
}

// Defaults validates the file values. Colors must parse; numbers outside
// their domain are clamped with a warning.
func (f DefaultsFile) Defaults() (scene.Defaults, error) {
	var d scene.Defaults
	var err error
	if d.Pen, err = document.ParseColor(f.Pen); err != nil {
		return d, fmt.Errorf("pen: %w", err)
	}
	if d.BoardPen, err = document.ParseColor(f.Board.Pen); err != nil {
		return d, fmt.Errorf("board.pen: %w", err)
	}
	if d.BoardBackground, err = document.ParseColor(f.Board.Background); err != nil {
		return d, fmt.Errorf("board.background: %w", err)
	}
	if d.Text, err = f.Text.properties(); err != nil {
		return d, fmt.Errorf("text: %w", err)
	}
	if d.BoardText, err = f.Board.Text.properties(); err != nil {
		return d, fmt.Errorf("board.text: %w", err)
	}
	if d.LineStyle, err = parseLineStyle(f.LineStyle); err != nil {
		return d, err
	}

	d.Alpha = uint8(clamp("alpha", f.Alpha, 0, 255))
	d.LineThickness = clamp("line_thickness", f.LineThickness, 1, 100)
	d.ArrowHeadSize = clamp("arrow_head_size", f.ArrowHeadSize, 1, 500)
	d.BrushSize = clamp("brush_size", f.BrushSize, 1, 100)
	d.Filled = f.Filled
	return d, nil
}

func clamp(key string, v, lo, hi int) int {
	c := min(max(v, lo), hi)
	if c != v {
		slog.Warn("clamping defaults value", "key", key, "value", v, "clamped", c)
	}
	return c
}

func parseLineStyle(s string) (document.LineStyle, error) {
	for _, ls := range []document.LineStyle{document.LineSolid, document.LineDash, document.LineDot} {
		if ls.String() == s {
			return ls, nil
		}
	}
	return 0, fmt.Errorf("line_style: %w: %q", document.ErrOutOfRange, s)
}

func textToFile(tp document.TextProperties) TextDefaults {
	t := TextDefaults{
		Font:      tp.Font,
		Size:      tp.Size,
		Bold:      tp.Bold,
		Italic:    tp.Italic,
		Underline: tp.Underline,
		Strikeout: tp.Strikeout,
		Color:     tp.Color.Hex(),
		Alignment: string(tp.Alignment),
	}
	if tp.Background != nil {
		t.Background = tp.Background.Hex()
	}
	return t
}

func (t TextDefaults) properties() (document.TextProperties, error) {
	c, err := document.ParseColor(t.Color)
	if err != nil {
		return document.TextProperties{}, fmt.Errorf("color: %w", err)
	}
	tp := document.TextProperties{
		Font:      t.Font,
		Size:      clamp("text.size", t.Size, 1, 500),
		Bold:      t.Bold,
		Italic:    t.Italic,
		Underline: t.Underline,
		Strikeout: t.Strikeout,
		Color:     c,
		Alignment: document.Alignment(t.Alignment),
	}
	if tp.Font == "" {
		tp.Font = document.DefaultTextProperties().Font
	}
	if !tp.Alignment.Valid() {
		slog.Warn("unknown text alignment, using left", "value", t.Alignment)
		tp.Alignment = document.AlignLeft
	}
	if t.Background != "" {
		bg, err := document.ParseColor(t.Background)
		if err != nil {
			return document.TextProperties{}, fmt.Errorf("background: %w", err)
		}
		tp.Background = &bg
	}
	return tp, nil
}
