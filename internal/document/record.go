package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/typeid"
)

// Record is the portable form of a Shape as stored in scene files.
// Numeric fields are decoded as floats so integer-valued floats from other
// writers are accepted.
type Record struct {
	Kind           string          `json:"kind"`
	LegacyType     string          `json:"type,omitempty"` // older files name the kind "type"
	Geometry       json.RawMessage `json:"geometry"`
	Color          string          `json:"color"`
	Filled         *bool           `json:"filled,omitempty"`
	Alpha          *float64        `json:"alpha,omitempty"`
	LineThickness  *float64        `json:"line_thickness,omitempty"`
	LineStyle      *float64        `json:"line_style,omitempty"`
	Rotation       *float64        `json:"rotation,omitempty"`
	TextProperties *TextRecord     `json:"text_properties"`
	ArrowHeadSize  *float64        `json:"arrow_head_size"`
}

// TextRecord is the portable form of TextProperties.
type TextRecord struct {
	Text       string   `json:"text"`
	Font       string   `json:"font,omitempty"`
	Size       *float64 `json:"size,omitempty"`
	Bold       bool     `json:"bold"`
	Italic     bool     `json:"italic"`
	Underline  bool     `json:"underline"`
	Strikeout  bool     `json:"strikeout"`
	Color      string   `json:"color,omitempty"`
	Background *string  `json:"background_color"`
	Alignment  string   `json:"alignment,omitempty"`
}

var nullJSON = json.RawMessage("null")

// ToRecord converts s to its portable form. Geometry that cannot be stored
// (unset, an empty rect, or the wrong representation for the kind) is
// written as null. Out-of-domain values are written as FromRecord would
// read them back.
func ToRecord(s Shape) Record {
	filled := s.Filled
	alpha := float64(s.Alpha)
	thickness := float64(max(s.LineThickness, 1))
	style := float64(LineSolid)
	if s.LineStyle.Valid() {
		style = float64(s.LineStyle)
	}
	rotation := s.Rotation
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		rotation = 0
	}

	geom := nullJSON
	if (s.Geometry.Type == GeometryRect) == s.Kind.UsesRect() {
		geom = encodeGeometry(s.Geometry)
	}

	rec := Record{
		Kind:          string(s.Kind),
		Geometry:      geom,
		Color:         s.Color.Hex(),
		Filled:        &filled,
		Alpha:         &alpha,
		LineThickness: &thickness,
		LineStyle:     &style,
		Rotation:      &rotation,
	}
	if s.Kind == KindText {
		tp := DefaultTextProperties()
		if s.Text != nil {
			tp = *s.Text
		}
		rec.TextProperties = ToTextRecord(tp)
	}
	if s.Kind == KindArrow {
		size := float64(DefaultArrowHeadSize)
		if s.ArrowHeadSize > 0 {
			size = float64(s.ArrowHeadSize)
		}
		rec.ArrowHeadSize = &size
	}
	return rec
}

// FromRecord rebuilds a shape from rec. err is non-nil, wrapping
// ErrMalformedRecord, only when no shape could be produced. warnings lists
// every field that was defaulted or clamped on the way; the shape is still
// usable when warnings are present.
func FromRecord(rec Record) (s Shape, warnings []error, err error) {
	kindName := rec.Kind
	if kindName == "" {
		kindName = rec.LegacyType
	}
	if kindName == "" {
		return Shape{}, nil, fmt.Errorf("%w: missing kind", ErrMalformedRecord)
	}
	kind := Kind(kindName)
	if !kind.Valid() {
		return Shape{}, nil, fmt.Errorf("%w: %w %q", ErrMalformedRecord, ErrUnknownKind, kindName)
	}

	warn := func(e error) { warnings = append(warnings, e) }

	geom, gerr := decodeGeometry(kind, rec.Geometry)
	if gerr != nil {
		warn(gerr)
	}

	color := Red
	if rec.Color == "" {
		warn(fmt.Errorf("missing color, using red"))
	} else if c, cerr := ParseColor(rec.Color); cerr != nil {
		warn(fmt.Errorf("%w, using red", cerr))
	} else {
		color = c
	}

	s = Shape{
		ID:            typeid.NewShapeID(),
		Kind:          kind,
		Geometry:      geom,
		Color:         color,
		Filled:        true,
		Alpha:         color.A,
		LineThickness: 1,
		LineStyle:     LineSolid,
	}
	if rec.Filled != nil {
		s.Filled = *rec.Filled
	}
	if rec.Alpha != nil {
		a, aerr := clampInt("alpha", *rec.Alpha, 0, 255)
		if aerr != nil {
			warn(aerr)
		}
		s.Alpha = uint8(a)
	}
	if rec.LineThickness != nil {
		t, terr := clampInt("line_thickness", *rec.LineThickness, 1, math.MaxInt32)
		if terr != nil {
			warn(terr)
		}
		s.LineThickness = t
	}
	if rec.LineStyle != nil {
		ls := LineStyle(int(*rec.LineStyle))
		if float64(ls) != *rec.LineStyle || !ls.Valid() {
			warn(fmt.Errorf("%w: line_style %v, using solid", ErrOutOfRange, *rec.LineStyle))
			ls = LineSolid
		}
		s.LineStyle = ls
	}
	if rec.Rotation != nil && !math.IsNaN(*rec.Rotation) && !math.IsInf(*rec.Rotation, 0) {
		s.Rotation = *rec.Rotation
	}

	switch kind {
	case KindText:
		tp := DefaultTextProperties()
		if rec.TextProperties != nil {
			var terrs []error
			tp, terrs = FromTextRecord(*rec.TextProperties)
			warnings = append(warnings, terrs...)
		} else {
			warn(fmt.Errorf("text shape without text_properties, using defaults"))
		}
		s.Text = &tp
	case KindArrow:
		s.ArrowHeadSize = DefaultArrowHeadSize
		if rec.ArrowHeadSize != nil {
			size, serr := clampInt("arrow_head_size", *rec.ArrowHeadSize, 1, math.MaxInt32)
			if serr != nil {
				warn(serr)
			}
			s.ArrowHeadSize = size
		}
	}
	return s, warnings, nil
}

// LoadReport summarizes a scene decode. Problems holds one error per
// skipped record and per degraded field, each prefixed with its index.
type LoadReport struct {
	Total    int
	Loaded   int
	Skipped  int
	Problems []error
}

// Err joins all problems, or returns nil when the load was clean.
func (r LoadReport) Err() error {
	return errors.Join(r.Problems...)
}

// DecodeScene parses a JSON array of records. Only a document that is not
// a JSON array fails as a whole; individual bad records are skipped and
// reported.
func DecodeScene(data []byte) ([]Shape, LoadReport, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, LoadReport{}, fmt.Errorf("decode scene: %w", err)
	}

	report := LoadReport{Total: len(raw)}
	shapes := make([]Shape, 0, len(raw))
	for i, item := range raw {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			report.skip(i, fmt.Errorf("%w: %w", ErrMalformedRecord, err))
			continue
		}
		s, warnings, err := FromRecord(rec)
		if err != nil {
			report.skip(i, err)
			continue
		}
		for _, w := range warnings {
			slog.Warn("record degraded", "index", i, "kind", s.Kind, "error", w)
			report.Problems = append(report.Problems, fmt.Errorf("record %d: %w", i, w))
		}
		shapes = append(shapes, s)
		report.Loaded++
	}
	return shapes, report, nil
}

func (r *LoadReport) skip(i int, err error) {
	slog.Warn("record skipped", "index", i, "error", err)
	r.Skipped++
	r.Problems = append(r.Problems, fmt.Errorf("record %d: %w", i, err))
}

// EncodeScene writes shapes as an indented JSON array of records.
func EncodeScene(shapes []Shape) ([]byte, error) {
	recs := make([]Record, len(shapes))
	for i, s := range shapes {
		recs[i] = ToRecord(s)
	}
	data, err := json.MarshalIndent(recs, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return data, nil
}

func encodeGeometry(g Geometry) json.RawMessage {
	var v any
	switch g.Type {
	case GeometryRect:
		if g.Rect.IsEmpty() {
			return nullJSON
		}
		v = [4]float64{g.Rect.X, g.Rect.Y, g.Rect.Width, g.Rect.Height}
	case GeometryPoints:
		pts := make([][2]float64, len(g.Points))
		for i, p := range g.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		v = pts
	default:
		return nullJSON
	}
	data, err := json.Marshal(v)
	if err != nil {
		// NaN or Inf coordinates
		return nullJSON
	}
	return data
}

func decodeGeometry(kind Kind, raw json.RawMessage) (Geometry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, nullJSON) {
		return Geometry{}, nil
	}

	if kind.UsesRect() {
		var v []float64
		if err := json.Unmarshal(raw, &v); err != nil || len(v) != 4 {
			return Geometry{}, fmt.Errorf("%w: %s wants [x, y, w, h], got %s", ErrInvalidGeometry, kind, raw)
		}
		r := geometry.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}.Normalized()
		if r.IsEmpty() {
			return Geometry{}, fmt.Errorf("%w: %s has empty rect %s", ErrInvalidGeometry, kind, raw)
		}
		return RectGeometry(r), nil
	}

	var v [][]float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return Geometry{}, fmt.Errorf("%w: %s wants a list of [x, y], got %s", ErrInvalidGeometry, kind, raw)
	}
	pts := make([]geometry.Point, 0, len(v))
	for _, p := range v {
		if len(p) != 2 {
			return Geometry{}, fmt.Errorf("%w: %s has a point that is not [x, y] in %s", ErrInvalidGeometry, kind, raw)
		}
		pts = append(pts, geometry.Pt(p[0], p[1]))
	}
	return Geometry{Type: GeometryPoints, Points: pts}, nil
}

// ToTextRecord converts text properties to their portable form.
func ToTextRecord(tp TextProperties) *TextRecord {
	size := float64(min(max(tp.Size, 1), 1000))
	if tp.Font == "" {
		tp.Font = DefaultTextProperties().Font
	}
	if !tp.Alignment.Valid() {
		tp.Alignment = AlignLeft
	}
	tr := &TextRecord{
		Text:      tp.Text,
		Font:      tp.Font,
		Size:      &size,
		Bold:      tp.Bold,
		Italic:    tp.Italic,
		Underline: tp.Underline,
		Strikeout: tp.Strikeout,
		Color:     tp.Color.Hex(),
		Alignment: string(tp.Alignment),
	}
	if tp.Background != nil {
		bg := tp.Background.Hex()
		tr.Background = &bg
	}
	return tr
}

// FromTextRecord reads text properties. Fields that had to be defaulted
// or clamped are reported as warnings.
func FromTextRecord(tr TextRecord) (TextProperties, []error) {
	var warnings []error
	tp := DefaultTextProperties()
	tp.Text = tr.Text
	tp.Bold, tp.Italic, tp.Underline, tp.Strikeout = tr.Bold, tr.Italic, tr.Underline, tr.Strikeout
	if tr.Font != "" {
		tp.Font = tr.Font
	}
	if tr.Size != nil {
		size, err := clampInt("text size", *tr.Size, 1, 1000)
		if err != nil {
			warnings = append(warnings, err)
		}
		tp.Size = size
	}
	if tr.Color != "" {
		c, err := ParseColor(tr.Color)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("text %w, using black", err))
		} else {
			tp.Color = c
		}
	}
	if tr.Background != nil {
		if c, err := ParseColor(*tr.Background); err != nil {
			warnings = append(warnings, fmt.Errorf("text background %w, using none", err))
		} else {
			tp.Background = &c
		}
	}
	if tr.Alignment != "" {
		a := Alignment(tr.Alignment)
		if a.Valid() {
			tp.Alignment = a
		} else {
			warnings = append(warnings, fmt.Errorf("%w: alignment %q, using left", ErrOutOfRange, tr.Alignment))
		}
	}
	return tp, warnings
}

func clampInt(field string, v float64, lo, hi int) (int, error) {
	if math.IsNaN(v) {
		return lo, fmt.Errorf("%w: %s is NaN, using %d", ErrOutOfRange, field, lo)
	}
	n := math.Round(v)
	switch {
	case n < float64(lo):
		return lo, fmt.Errorf("%w: %s %v clamped to %d", ErrOutOfRange, field, v, lo)
	case n > float64(hi):
		return hi, fmt.Errorf("%w: %s %v clamped to %d", ErrOutOfRange, field, v, hi)
	}
	return int(n), nil
}
