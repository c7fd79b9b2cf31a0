package document

import (
	"slices"

	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/typeid"
)

type Kind string

const (
	KindRect      Kind = "rect"
	KindEllipse   Kind = "ellipse"
	KindTriangle  Kind = "triangle"
	KindPolygon   Kind = "polygon"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindBrush     Kind = "brush"
	KindLinePoint Kind = "line_point"
	KindText      Kind = "text"
)

// Kinds lists every shape kind.
var Kinds = []Kind{
	KindRect, KindEllipse, KindTriangle, KindPolygon,
	KindLine, KindArrow, KindBrush, KindLinePoint, KindText,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// UsesRect reports whether the kind stores Rect geometry.
func (k Kind) UsesRect() bool {
	return k == KindRect || k == KindEllipse || k == KindText
}

// UsesPoints reports whether the kind stores a point list.
func (k Kind) UsesPoints() bool {
	return k.Valid() && !k.UsesRect()
}

// Stroked reports whether the kind is drawn as an open stroke, where the
// fill flag has no effect.
func (k Kind) Stroked() bool {
	switch k {
	case KindLine, KindArrow, KindBrush, KindLinePoint:
		return true
	}
	return false
}

// MinPoints returns the minimum vertex count for point kinds.
func (k Kind) MinPoints() int {
	switch k {
	case KindLine, KindArrow:
		return 2
	case KindTriangle, KindPolygon:
		return 3
	case KindBrush, KindLinePoint:
		return 1
	}
	return 0
}

type GeometryType uint8

const (
	GeometryNone GeometryType = iota
	GeometryRect
	GeometryPoints
)

// Geometry is either a rectangle or an ordered point list, never both.
type Geometry struct {
	Type   GeometryType
	Rect   geometry.Rect
	Points []geometry.Point
}

// RectGeometry wraps r.
func RectGeometry(r geometry.Rect) Geometry {
	return Geometry{Type: GeometryRect, Rect: r}
}

// PointsGeometry wraps a copy of pts.
func PointsGeometry(pts []geometry.Point) Geometry {
	return Geometry{Type: GeometryPoints, Points: slices.Clone(pts)}
}

// IsNone reports whether the geometry is unset.
func (g Geometry) IsNone() bool {
	return g.Type == GeometryNone
}

// Clone returns a copy that shares no memory with g.
func (g Geometry) Clone() Geometry {
	g.Points = slices.Clone(g.Points)
	return g
}

// Equal reports exact equality.
func (g Geometry) Equal(o Geometry) bool {
	if g.Type != o.Type {
		return false
	}
	switch g.Type {
	case GeometryRect:
		return g.Rect == o.Rect
	case GeometryPoints:
		return slices.Equal(g.Points, o.Points)
	}
	return true
}

// Centroid returns the rect center or the mean of the points. ok is false
// when there is nothing to take the center of.
func (g Geometry) Centroid() (geometry.Point, bool) {
	switch g.Type {
	case GeometryRect:
		return g.Rect.Center(), true
	case GeometryPoints:
		return geometry.Centroid(g.Points)
	}
	return geometry.Point{}, false
}

// Vertices returns the rect corners or a copy of the points.
func (g Geometry) Vertices() []geometry.Point {
	switch g.Type {
	case GeometryRect:
		return g.Rect.Corners()
	case GeometryPoints:
		return slices.Clone(g.Points)
	}
	return nil
}

// FitsKind reports whether g has the representation and minimum size k needs.
func (g Geometry) FitsKind(k Kind) bool {
	switch {
	case k.UsesRect():
		return g.Type == GeometryRect
	case k == KindLine || k == KindArrow:
		return g.Type == GeometryPoints && len(g.Points) == 2
	case k.UsesPoints():
		return g.Type == GeometryPoints && len(g.Points) >= k.MinPoints()
	}
	return false
}

// LineStyle values follow the Qt pen style integers used in saved scenes.
type LineStyle int

const (
	LineSolid LineStyle = 1
	LineDash  LineStyle = 2
	LineDot   LineStyle = 3
)

// Valid reports whether s is one of the supported styles.
func (s LineStyle) Valid() bool {
	return s == LineSolid || s == LineDash || s == LineDot
}

func (s LineStyle) String() string {
	switch s {
	case LineDash:
		return "dash"
	case LineDot:
		return "dot"
	}
	return "solid"
}

const DefaultArrowHeadSize = 10

// Style holds the drawing attributes a new shape is created with.
type Style struct {
	Color         Color
	Filled        bool
	Alpha         uint8
	LineThickness int
	LineStyle     LineStyle
	ArrowHeadSize int
}

// Shape is one drawable entity. Rotation is in degrees about the geometry
// centroid and is kept as supplied; use geometry.NormalizeDegrees for display.
type Shape struct {
	ID            string
	Kind          Kind
	Geometry      Geometry
	Color         Color
	Filled        bool
	Alpha         uint8
	LineThickness int
	LineStyle     LineStyle
	Rotation      float64
	Text          *TextProperties // Text only
	ArrowHeadSize int             // Arrow only
}

// NewShape creates a shape with a fresh identity. Kind-specific fields that
// do not apply to kind are dropped.
func NewShape(kind Kind, geom Geometry, style Style) Shape {
	s := Shape{
		ID:            typeid.NewShapeID(),
		Kind:          kind,
		Geometry:      geom.Clone(),
		Color:         style.Color,
		Filled:        style.Filled,
		Alpha:         style.Alpha,
		LineThickness: max(style.LineThickness, 1),
		LineStyle:     style.LineStyle,
	}
	if !s.LineStyle.Valid() {
		s.LineStyle = LineSolid
	}
	if kind == KindArrow {
		s.ArrowHeadSize = style.ArrowHeadSize
		if s.ArrowHeadSize <= 0 {
			s.ArrowHeadSize = DefaultArrowHeadSize
		}
	}
	if kind == KindText {
		tp := DefaultTextProperties()
		s.Text = &tp
	}
	return s
}

// Clone returns a deep copy with the same identity.
func (s Shape) Clone() Shape {
	s.Geometry = s.Geometry.Clone()
	if s.Text != nil {
		tp := s.Text.Clone()
		s.Text = &tp
	}
	return s
}

// Centroid is the rotation and scale pivot of the shape.
func (s Shape) Centroid() (geometry.Point, bool) {
	return s.Geometry.Centroid()
}

// Outline returns the shape's vertices with its rotation applied.
func (s Shape) Outline() []geometry.Point {
	pts := s.Geometry.Vertices()
	if c, ok := s.Centroid(); ok && s.Rotation != 0 {
		return geometry.RotatePoints(pts, c, s.Rotation)
	}
	return pts
}

// BoundingBox returns the screen-space box around the rotated shape,
// padded for the stroke and including arrow wings. ok is false when the
// geometry cannot be bounded.
func (s Shape) BoundingBox() (geometry.Rect, bool) {
	if !s.Geometry.FitsKind(s.Kind) {
		return geometry.Rect{}, false
	}
	if s.Kind.UsesRect() && s.Geometry.Rect.IsEmpty() {
		return geometry.Rect{}, false
	}

	pts := s.Outline()
	if s.Kind == KindArrow {
		if l, r, ok := geometry.ArrowWings(pts[0], pts[1], float64(s.ArrowHeadSize)); ok {
			pts = append(pts, l, r)
		}
	}
	return geometry.BoundingBox(pts, s.LineThickness)
}
